package domain

import (
	"encoding/json"
	"strings"
)

// Role is the server-assigned privilege level of a user.
type Role string

const (
	RoleAnonymous Role = ""
	RoleUser      Role = "user"
	RoleModerator Role = "moderator"
	RoleAdmin     Role = "admin"
)

// roleRank orders the closed role set. Unknown non-empty roles rank as RoleUser.
var roleRank = map[Role]int{
	RoleAnonymous: 0,
	RoleUser:      1,
	RoleModerator: 2,
	RoleAdmin:     3,
}

// Rank returns the position of r in the role hierarchy.
func (r Role) Rank() int {
	if rank, ok := roleRank[r]; ok {
		return rank
	}
	return roleRank[RoleUser]
}

// AtLeast reports whether r grants every privilege of other.
func (r Role) AtLeast(other Role) bool {
	return r.Rank() >= other.Rank()
}

// ValidRole reports whether s names an assignable role.
func ValidRole(s string) bool {
	switch Role(s) {
	case RoleUser, RoleModerator, RoleAdmin:
		return true
	default:
		return false
	}
}

// UserProfile is the profile record returned by the auth endpoints and cached
// next to the bearer token.
type UserProfile struct {
	ID        string `json:"id"`
	Username  string `json:"username,omitempty"`
	Email     string `json:"email"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Role      Role   `json:"role"`
	Avatar    string `json:"avatar,omitempty"`
}

// userProfileWire accepts the deprecated snake_case name fields and Mongo's _id.
type userProfileWire struct {
	ID        string `json:"id"`
	MongoID   string `json:"_id"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	FirstSnk  string `json:"first_name"`
	LastSnk   string `json:"last_name"`
	Role      Role   `json:"role"`
	Avatar    string `json:"avatar"`
}

// UnmarshalJSON decodes the canonical camelCase shape, falling back to the
// first_name/last_name aliases only when the canonical keys are absent.
func (u *UserProfile) UnmarshalJSON(data []byte) error {
	var w userProfileWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	*u = UserProfile{
		ID:        firstNonEmpty(w.ID, w.MongoID),
		Username:  w.Username,
		Email:     w.Email,
		FirstName: firstNonEmpty(w.FirstName, w.FirstSnk),
		LastName:  firstNonEmpty(w.LastName, w.LastSnk),
		Role:      Role(strings.ToLower(strings.TrimSpace(string(w.Role)))),
		Avatar:    w.Avatar,
	}
	return nil
}

// Clone returns a copy that shares no memory with u.
func (u *UserProfile) Clone() *UserProfile {
	if u == nil {
		return nil
	}
	c := *u
	return &c
}

// DisplayName joins first and last name, falling back to username then email.
func (u *UserProfile) DisplayName() string {
	if u == nil {
		return ""
	}
	name := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if name != "" {
		return name
	}
	return firstNonEmpty(u.Username, u.Email)
}

// ProfileUpdate is a partial profile edit. Nil fields are left untouched.
type ProfileUpdate struct {
	FirstName *string `json:"firstName,omitempty" validate:"omitempty,min=1,max=50"`
	LastName  *string `json:"lastName,omitempty" validate:"omitempty,min=1,max=50"`
	Avatar    *string `json:"avatar,omitempty" validate:"omitempty,url"`
}

// Empty reports whether the update carries no field.
func (p ProfileUpdate) Empty() bool {
	return p.FirstName == nil && p.LastName == nil && p.Avatar == nil
}

// ApplyTo returns a copy of u with the non-nil fields of p applied.
func (p ProfileUpdate) ApplyTo(u *UserProfile) *UserProfile {
	out := u.Clone()
	if out == nil {
		return nil
	}
	if p.FirstName != nil {
		out.FirstName = *p.FirstName
	}
	if p.LastName != nil {
		out.LastName = *p.LastName
	}
	if p.Avatar != nil {
		out.Avatar = *p.Avatar
	}
	return out
}

// Credentials identify a user at login. Either Email or Username is required.
type Credentials struct {
	Email    string `json:"email,omitempty" validate:"required_without=Username,omitempty,email"`
	Username string `json:"username,omitempty" validate:"required_without=Email"`
	Password string `json:"password" validate:"required"`
}

// Registration carries the fields required to create an account.
type Registration struct {
	Username  string `json:"username" validate:"required,min=3,max=30"`
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required,min=8"`
	FirstName string `json:"firstName" validate:"required"`
	LastName  string `json:"lastName" validate:"required"`
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
