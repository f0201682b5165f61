// Package common contains shared constants and sentinel errors used across
// complaintdesk components.
package common

const (
	// SessionCookieName carries the opaque server-side session id.
	SessionCookieName = "sid"

	// TokenCookieName carries the signed JWT issued alongside the session.
	TokenCookieName = "token"

	// BearerPrefix is the Authorization header scheme accepted by the API.
	BearerPrefix = "Bearer "
)
