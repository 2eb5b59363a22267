package techcv_test

import (
	"context"
	"errors"
	"testing"
	"time"

	techcv "github.com/sky0621/techcv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestRegistrationPayloadValidate(t *testing.T) {
	tests := []struct {
		name    string
		payload techcv.RegistrationPayload
		want    map[string]string
	}{
		{
			name: "valid payload",
			payload: techcv.RegistrationPayload{
				Email:                "dev@example.com",
				Password:             "password123",
				PasswordConfirmation: "password123",
			},
			want: map[string]string{},
		},
		{
			name: "malformed email",
			payload: techcv.RegistrationPayload{
				Email:                "invalid-email",
				Password:             "password123",
				PasswordConfirmation: "password123",
			},
			want: map[string]string{
				"email": "メールアドレスの形式が正しくありません",
			},
		},
		{
			name:    "everything missing",
			payload: techcv.RegistrationPayload{},
			want: map[string]string{
				"email":                 "メールアドレスを入力してください",
				"password":              "パスワードを入力してください",
				"password_confirmation": "確認用パスワードを入力してください",
			},
		},
		{
			name: "short password",
			payload: techcv.RegistrationPayload{
				Email:                "dev@example.com",
				Password:             "short",
				PasswordConfirmation: "short",
			},
			want: map[string]string{
				"password": "パスワードは8文字以上で、英字と数字を含む必要があります",
			},
		},
		{
			name: "digits-only password",
			payload: techcv.RegistrationPayload{
				Email:                "dev@example.com",
				Password:             "12345678",
				PasswordConfirmation: "12345678",
			},
			want: map[string]string{
				"password": "パスワードは8文字以上で、英字と数字を含む必要があります",
			},
		},
		{
			name: "letters-only password",
			payload: techcv.RegistrationPayload{
				Email:                "dev@example.com",
				Password:             "passwordonly",
				PasswordConfirmation: "passwordonly",
			},
			want: map[string]string{
				"password": "パスワードは8文字以上で、英字と数字を含む必要があります",
			},
		},
		{
			name: "confirmation mismatch",
			payload: techcv.RegistrationPayload{
				Email:                "dev@example.com",
				Password:             "password123",
				PasswordConfirmation: "password124",
			},
			want: map[string]string{
				"password_confirmation": "パスワードが一致しません",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.payload.Validate()
			assert.Equal(t, tt.want, techcv.FormatValidationErrorToMap(err))
		})
	}
}

func TestRegistrationSubmitSkipsNetworkOnValidationFailure(t *testing.T) {
	api := &MockRegistrationService{}
	controller := techcv.NewRegistrationController(api)

	result, fields, err := controller.Submit(context.Background(), techcv.RegistrationPayload{
		Email:                "invalid-email",
		Password:             "password123",
		PasswordConfirmation: "password123",
	})

	require.Error(t, err)
	assert.Nil(t, result)
	assert.Equal(t, "メールアドレスの形式が正しくありません", fields["email"])
	api.AssertNotCalled(t, "Register", mock.Anything, mock.Anything)
}

func TestRegistrationSubmitSuccess(t *testing.T) {
	payload := techcv.RegistrationPayload{
		Email:                "dev@example.com",
		Password:             "password123",
		PasswordConfirmation: "password123",
	}
	expires := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)
	api := &MockRegistrationService{}
	api.On("Register", mock.Anything, payload).
		Return(&techcv.RegisterResult{Message: "確認メールを送信しました", ExpiresAt: expires}, nil).Once()

	controller := techcv.NewRegistrationController(api)
	result, fields, err := controller.Submit(context.Background(), payload)

	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, "確認メールを送信しました", result.Message)
	assert.Equal(t, expires, result.ExpiresAt)
	assert.Empty(t, fields)
	api.AssertExpectations(t)
}

func TestRegistrationSubmitMapsServerDetailsToFields(t *testing.T) {
	payload := techcv.RegistrationPayload{
		Email:                "dev@example.com",
		Password:             "password123",
		PasswordConfirmation: "password123",
	}
	apiErr := &techcv.APIError{
		Message: "validation failed",
		Code:    "validation_failed",
		Status:  422,
		Details: []techcv.FieldError{
			{Field: "password", Code: "weak_password", Message: "too weak"},
		},
	}
	api := &MockRegistrationService{}
	api.On("Register", mock.Anything, payload).Return(nil, apiErr).Once()

	controller := techcv.NewRegistrationController(api)
	result, fields, err := controller.Submit(context.Background(), payload)

	require.Error(t, err)
	assert.Nil(t, result)
	assert.Equal(t, "too weak", fields["password"])
	assert.NotContains(t, fields, techcv.FormErrorKey)
}

func TestRegistrationSubmitUnknownDetailFieldFallsToForm(t *testing.T) {
	payload := techcv.RegistrationPayload{
		Email:                "dev@example.com",
		Password:             "password123",
		PasswordConfirmation: "password123",
	}
	apiErr := &techcv.APIError{
		Status: 422,
		Details: []techcv.FieldError{
			{Field: "username", Message: "already taken"},
		},
	}
	api := &MockRegistrationService{}
	api.On("Register", mock.Anything, payload).Return(nil, apiErr).Once()

	controller := techcv.NewRegistrationController(api)
	_, fields, err := controller.Submit(context.Background(), payload)

	require.Error(t, err)
	assert.Equal(t, "already taken", fields[techcv.FormErrorKey])
}

func TestRegistrationSubmitDetailLessErrorUsesMessage(t *testing.T) {
	payload := techcv.RegistrationPayload{
		Email:                "dev@example.com",
		Password:             "password123",
		PasswordConfirmation: "password123",
	}
	api := &MockRegistrationService{}
	api.On("Register", mock.Anything, payload).
		Return(nil, &techcv.APIError{Message: "このメールアドレスは既に登録されています", Status: 409}).Once()

	controller := techcv.NewRegistrationController(api)
	_, fields, err := controller.Submit(context.Background(), payload)

	require.Error(t, err)
	assert.Equal(t, "このメールアドレスは既に登録されています", fields[techcv.FormErrorKey])
}

func TestRegistrationSubmitUntypedErrorUsesGenericMessage(t *testing.T) {
	payload := techcv.RegistrationPayload{
		Email:                "dev@example.com",
		Password:             "password123",
		PasswordConfirmation: "password123",
	}
	api := &MockRegistrationService{}
	api.On("Register", mock.Anything, payload).Return(nil, errors.New("connection reset")).Once()

	controller := techcv.NewRegistrationController(api)
	_, fields, err := controller.Submit(context.Background(), payload)

	require.Error(t, err)
	assert.Equal(t, techcv.RegistrationFailureMessage, fields[techcv.FormErrorKey])
}
