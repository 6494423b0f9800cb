package domain

import "encoding/json"

// ErrorBody is the error object of a failed envelope.
type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Pagination accompanies list responses.
type Pagination struct {
	Page    int  `json:"page"`
	Limit   int  `json:"limit"`
	Total   int  `json:"total"`
	Pages   int  `json:"pages"`
	HasNext bool `json:"hasNext,omitempty"`
}

// Envelope is the response wrapper used by every API endpoint.
type Envelope[T any] struct {
	Success    bool        `json:"success"`
	Data       T           `json:"data"`
	Message    string      `json:"message,omitempty"`
	Error      *ErrorBody  `json:"error,omitempty"`
	Pagination *Pagination `json:"pagination,omitempty"`
}

// FailureMessage returns the most specific message of a failed envelope.
func (e *Envelope[T]) FailureMessage() string {
	if e == nil {
		return "empty response"
	}
	if e.Error != nil && e.Error.Message != "" {
		return e.Error.Message
	}
	if e.Message != "" {
		return e.Message
	}
	return "request was not successful"
}

// AuthPayload is the data of a login or registration response.
type AuthPayload struct {
	User  *UserProfile `json:"user"`
	Token string       `json:"token"`
}

// UnmarshalJSON accepts accessToken as an alias for token.
func (p *AuthPayload) UnmarshalJSON(data []byte) error {
	var w struct {
		User        *UserProfile `json:"user"`
		Token       string       `json:"token"`
		AccessToken string       `json:"accessToken"`
	}
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	p.User = w.User
	p.Token = firstNonEmpty(w.Token, w.AccessToken)
	return nil
}

// UserPayload is the data of a profile response. Both {"user": {...}} and a
// bare profile object are accepted.
type UserPayload struct {
	User *UserProfile `json:"user"`
}

func (p *UserPayload) UnmarshalJSON(data []byte) error {
	var wrapped struct {
		User *UserProfile `json:"user"`
	}
	if err := json.Unmarshal(data, &wrapped); err != nil {
		return err
	}
	if wrapped.User != nil {
		p.User = wrapped.User
		return nil
	}
	var bare UserProfile
	if err := json.Unmarshal(data, &bare); err != nil {
		return err
	}
	if bare.ID == "" && bare.Email == "" {
		p.User = nil
		return nil
	}
	p.User = &bare
	return nil
}
