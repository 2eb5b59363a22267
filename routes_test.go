package techcv_test

import (
	"testing"

	techcv "github.com/sky0621/techcv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultRouteTableMatch(t *testing.T) {
	table := techcv.DefaultRouteTable()

	tests := []struct {
		path      string
		name      string
		protected bool
		found     bool
	}{
		{"/", "dashboard", true, true},
		{"/cv/edit", "cv-edit", true, true},
		{"/cv/preview", "cv-preview", true, true},
		{"/settings/public-url", "public-url-settings", true, true},
		{"/login", "login", false, true},
		{"/auth/callback", "oauth-callback", false, true},
		{"/auth/verify", "registration-verify", false, true},
		{"/cv/a1b2c3", "public-cv", false, true},
		{"/nope/nested/deep", "not-found", false, false},
	}

	for _, tc := range tests {
		route, ok := table.Match(tc.path)
		assert.Equal(t, tc.found, ok, tc.path)
		assert.Equal(t, tc.name, route.Name, tc.path)
		assert.Equal(t, tc.protected, route.Protected, tc.path)
	}
}

func TestRouteTableDeclarationOrderWins(t *testing.T) {
	table := techcv.DefaultRouteTable()

	// "/cv/edit" must resolve to the editor, not the ":publicId" pattern
	// declared later in the table.
	route, ok := table.Match("/cv/edit")
	require.True(t, ok)
	assert.Equal(t, "cv-edit", route.Name)
	assert.True(t, route.Protected)
}

func TestRouteTableParams(t *testing.T) {
	table := techcv.DefaultRouteTable()

	route, ok := table.Match("/cv/my-public-cv")
	require.True(t, ok)
	require.Equal(t, "public-cv", route.Name)

	params := table.Params(route, "/cv/my-public-cv")
	assert.Equal(t, "my-public-cv", params["publicId"])
}

func TestRouteTableTrailingSlashEquivalence(t *testing.T) {
	table := techcv.DefaultRouteTable()

	route, ok := table.Match("/cv/edit/")
	require.True(t, ok)
	assert.Equal(t, "cv-edit", route.Name)
}
