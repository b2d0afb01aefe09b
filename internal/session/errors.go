package session

import "errors"

// ErrNotLoggedIn is returned when a transaction is attempted without a session.
var ErrNotLoggedIn = errors.New("not logged in")
