package validation

import (
	"strings"
	"testing"

	"github.com/travelreviews/webclient/internal/core/domain"
)

func TestValidate_UsesJSONFieldNames(t *testing.T) {
	v := New()
	err := v.Validate(domain.Registration{Username: "ab", Email: "nope", Password: "short"})
	if err == nil {
		t.Fatalf("expected validation error")
	}
	msg := err.Error()
	for _, want := range []string{
		"username must be at least 3 characters",
		"email must be a valid email",
		"password must be at least 8 characters",
		"firstName is required",
		"lastName is required",
	} {
		if !strings.Contains(msg, want) {
			t.Fatalf("message %q missing %q", msg, want)
		}
	}
}

func TestValidate_CredentialsNeedEmailOrUsername(t *testing.T) {
	v := New()
	if err := v.Validate(domain.Credentials{Password: "x"}); err == nil {
		t.Fatalf("expected error without email and username")
	}
	if err := v.Validate(domain.Credentials{Username: "amal", Password: "x"}); err != nil {
		t.Fatalf("username login rejected: %v", err)
	}
	if err := v.Validate(domain.Credentials{Email: "amal@example.com", Password: "x"}); err != nil {
		t.Fatalf("email login rejected: %v", err)
	}
	if err := v.Validate(domain.Credentials{Email: "not-an-email", Password: "x"}); err == nil {
		t.Fatalf("expected malformed email to be rejected")
	}
}

func TestValidate_ProfileUpdateSkipsNilFields(t *testing.T) {
	v := New()
	if err := v.Validate(domain.ProfileUpdate{}); err != nil {
		t.Fatalf("empty update rejected: %v", err)
	}
	bad := "not a url"
	if err := v.Validate(domain.ProfileUpdate{Avatar: &bad}); err == nil || !strings.Contains(err.Error(), "avatar must be a valid URL") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestVar_NamesTheField(t *testing.T) {
	err := New().Var("role", "owner", "oneof=user moderator admin")
	if err == nil || err.Error() != "role must be one of: user moderator admin" {
		t.Fatalf("unexpected error: %v", err)
	}
}
