// Package session drives the interactive bank console.
//
// FILE: state.go
// PURPOSE: Session state machine definitions.
//
// KEY TYPES:
// - SessionState: LoggedOut until a successful login, LoggedIn until logout
//
// RELATED FILES:
// - controller.go: Menu loops and bank operations
// - console.go: Line-oriented prompt reading
package session

// SessionState represents whether a user is logged in
type SessionState int

const (
	StateLoggedOut SessionState = iota
	StateLoggedIn
)

func (s SessionState) String() string {
	switch s {
	case StateLoggedOut:
		return "LoggedOut"
	case StateLoggedIn:
		return "LoggedIn"
	default:
		return "Unknown"
	}
}
