// Package techcv is the client-side auth and session library for the techcv
// CV management application. It talks to the techcv backend HTTP API and
// keeps the client's view of "who is signed in" consistent across flows.
//
// Session lifecycle:
//   - SessionStore holds a single SessionState value (unauthenticated,
//     loading, or authenticated with an AuthUser). Transitions are total
//     replacements performed through SetLoading, SignIn, SignOut, and
//     Update. Subscribers are notified after every replacement.
//   - RouteGuard reads the store and decides whether a protected route may
//     render, redirecting unauthenticated viewers to the login route with a
//     redirectTo parameter so they can return afterwards.
//
// Flows:
//   - OAuthCallbackFlow completes a redirect-based OAuth login: it extracts
//     the one-time code from the callback URL, exchanges it with the
//     backend, fetches the resulting identity, and signs the session in.
//   - VerificationFlow exchanges an email verification token for the
//     long-lived auth token, persists it through a TokenStore, and signs
//     the session in with the verified identity.
//
// Remote calls go through Client, which wraps the backend API with JSON
// headers, explicit retry/timeout configuration, and normalizes every
// failure into *APIError before it reaches UI code.
package techcv
