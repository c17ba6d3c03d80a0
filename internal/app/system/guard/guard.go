// Package guard makes the access decision for role-gated views.
//
// Check is transport-agnostic: it returns a tagged Decision and never
// writes a response. The HTTP layer (system/auth) turns a Decision into a
// redirect or a status code.
package guard

import (
	"net/url"
	"strings"
)

// DefaultFallback is where authenticated users without the required role go.
const DefaultFallback = "/dashboard"

// LoginPath is where anonymous users are sent.
const LoginPath = "/login"

// Outcome tags a Decision.
type Outcome int

const (
	// Allow lets the request through with the resolved identity.
	Allow Outcome = iota
	// RedirectLogin sends an anonymous caller to the login page.
	RedirectLogin
	// RedirectFallback sends a signed-in caller without the role elsewhere.
	RedirectFallback
)

func (o Outcome) String() string {
	switch o {
	case Allow:
		return "allow"
	case RedirectLogin:
		return "redirect_login"
	case RedirectFallback:
		return "redirect_fallback"
	}
	return "unknown"
}

// Identity is the signed-in caller as seen by the guard.
type Identity struct {
	UserID string
	Name   string
	Email  string
	Role   string
}

// RoleSet is the set of roles allowed through. An empty set means any
// authenticated user.
type RoleSet []string

// AnyRole allows any signed-in user.
func AnyRole() RoleSet { return nil }

// Roles allows the listed roles.
func Roles(roles ...string) RoleSet { return RoleSet(roles) }

// AdminOnly allows ADMIN.
func AdminOnly() RoleSet { return RoleSet{"ADMIN"} }

// Contains reports whether role is in the set. Comparison ignores case.
func (s RoleSet) Contains(role string) bool {
	if len(s) == 0 {
		return true
	}
	for _, want := range s {
		if strings.EqualFold(strings.TrimSpace(want), strings.TrimSpace(role)) {
			return true
		}
	}
	return false
}

// Decision is the result of Check.
type Decision struct {
	Outcome  Outcome
	Identity *Identity
	Location string // redirect target; empty for Allow
}

// Check decides whether identity may view a page gated by required.
// A nil identity redirects to the login page carrying callbackURL; a role
// outside the set redirects to fallback (DefaultFallback when empty).
func Check(identity *Identity, required RoleSet, callbackURL, fallback string) Decision {
	if identity == nil {
		return Decision{Outcome: RedirectLogin, Location: LoginURL(callbackURL)}
	}
	if !required.Contains(identity.Role) {
		if fallback == "" {
			fallback = DefaultFallback
		}
		return Decision{Outcome: RedirectFallback, Identity: identity, Location: fallback}
	}
	return Decision{Outcome: Allow, Identity: identity}
}

// LoginURL builds the login redirect for callbackURL.
func LoginURL(callbackURL string) string {
	if callbackURL == "" {
		return LoginPath
	}
	return LoginPath + "?callbackUrl=" + url.QueryEscape(callbackURL)
}

// SafeCallback returns cb when it is a local absolute path, otherwise def.
// Used when following callbackUrl after sign-in.
func SafeCallback(cb, def string) string {
	if cb == "" || !strings.HasPrefix(cb, "/") || strings.HasPrefix(cb, "//") || strings.HasPrefix(cb, "/\\") {
		return def
	}
	return cb
}
