package domain

import "time"

// Account is the server-side record behind a UserProfile. Only the dev API
// stores accounts; the client never sees PasswordHash.
type Account struct {
	ID           string
	Username     string
	Email        string
	PasswordHash string
	FirstName    string
	LastName     string
	Role         Role
	Avatar       string
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Profile projects the account onto its public profile.
func (a *Account) Profile() *UserProfile {
	if a == nil {
		return nil
	}
	return &UserProfile{
		ID:        a.ID,
		Username:  a.Username,
		Email:     a.Email,
		FirstName: a.FirstName,
		LastName:  a.LastName,
		Role:      a.Role,
		Avatar:    a.Avatar,
	}
}
