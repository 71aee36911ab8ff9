package models

// Caller identifies who is invoking an operation. The zero value is an
// anonymous caller.
type Caller struct {
	UserID uint
}

// Anonymous is the caller used when no credentials were presented.
var Anonymous = Caller{}

// AsUser returns a Caller for an authenticated user.
func AsUser(userID uint) Caller {
	return Caller{UserID: userID}
}

// Authenticated reports whether the caller carries a user identity.
func (c Caller) Authenticated() bool {
	return c.UserID != 0
}
