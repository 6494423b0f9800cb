package domain

// SessionState is the observable phase of a client session.
type SessionState string

const (
	StateBooting       SessionState = "booting"
	StateAnonymous     SessionState = "anonymous"
	StateAuthenticated SessionState = "authenticated"
)

// Session is a point-in-time view of the in-memory session.
type Session struct {
	User            *UserProfile `json:"user,omitempty"`
	IsAuthenticated bool         `json:"isAuthenticated"`
	Loading         bool         `json:"loading"`
}

// State derives the session phase from the three observable fields.
func (s Session) State() SessionState {
	switch {
	case s.Loading:
		return StateBooting
	case s.IsAuthenticated && s.User != nil:
		return StateAuthenticated
	default:
		return StateAnonymous
	}
}

// Role returns the role of the current user, or RoleAnonymous.
func (s Session) Role() Role {
	if s.User == nil {
		return RoleAnonymous
	}
	return s.User.Role
}

// Result is returned by session operations in place of an error.
type Result struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

// Ok is the successful Result.
func Ok() Result { return Result{Success: true} }

// Fail builds a failed Result carrying msg.
func Fail(msg string) Result { return Result{Success: false, Message: msg} }
