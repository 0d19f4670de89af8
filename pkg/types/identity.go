// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// Identity is the caller identity established at the HTTP boundary. The set
// is closed: a request is either Authenticated or Anonymous. Middleware
// constructs the Identity from trusted front-end headers; handlers only read
// it. Any future session or token layer must produce this same type.
type Identity interface {
	identity()
}

// Authenticated carries the trusted user attributes forwarded with a request.
type Authenticated struct {
	// UserID keys the user's shelf.
	UserID string `json:"user_id"`

	// Email is informational only; no engine stage branches on it.
	Email string `json:"email,omitempty"`
}

// Anonymous is the identity of a request carrying no user attributes.
type Anonymous struct{}

func (Authenticated) identity() {}
func (Anonymous) identity()     {}

// UserIDOf returns the user ID carried by id, and whether id is an
// authenticated identity with a non-empty user ID.
func UserIDOf(id Identity) (string, bool) {
	a, ok := id.(Authenticated)
	if !ok || a.UserID == "" {
		return "", false
	}
	return a.UserID, true
}
