// Package access decides whether the current session may enter a view.
package access

import "github.com/travelreviews/webclient/internal/core/domain"

// Decision is the outcome of a gate check.
type Decision int

const (
	// Pending means the session is still booting and no decision can be made.
	Pending Decision = iota
	RedirectLogin
	RedirectUnauthorized
	Allow
)

func (d Decision) String() string {
	switch d {
	case Pending:
		return "pending"
	case RedirectLogin:
		return "redirect_login"
	case RedirectUnauthorized:
		return "redirect_unauthorized"
	case Allow:
		return "allow"
	default:
		return "unknown"
	}
}

// Decide maps a required role and a session snapshot to exactly one Decision.
// A required role at or below user rank, including the empty role and unknown
// role names, admits any signed-in user.
func Decide(required domain.Role, s domain.Session) Decision {
	switch {
	case s.Loading:
		return Pending
	case s.User == nil:
		return RedirectLogin
	case required.Rank() <= domain.RoleUser.Rank():
		return Allow
	case s.User.Role.AtLeast(required):
		return Allow
	default:
		return RedirectUnauthorized
	}
}
