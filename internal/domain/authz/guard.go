// Package authz decides whether a protected view may render for the current
// session state. It is a pure read-only consumer of session snapshots: no
// side effects beyond the redirect signal it returns.
package authz

// LoginPath is where unauthenticated visitors are redirected.
const LoginPath = "/login"

// RoleAdmin is the role the catalog administration area requires.
const RoleAdmin = "ADMIN"

// Outcome enumerates the four possible render decisions.
type Outcome int

const (
	// OutcomePending means session validation is still in flight; render a
	// loading placeholder.
	OutcomePending Outcome = iota
	// OutcomeRedirect means there is no authenticated identity.
	OutcomeRedirect
	// OutcomeForbidden means the identity's role does not match the
	// required role.
	OutcomeForbidden
	// OutcomeAllow means the protected content may render.
	OutcomeAllow
)

func (o Outcome) String() string {
	switch o {
	case OutcomePending:
		return "pending"
	case OutcomeRedirect:
		return "redirect"
	case OutcomeForbidden:
		return "forbidden"
	case OutcomeAllow:
		return "allow"
	default:
		return "unknown"
	}
}

// Input is the session state the guard evaluates.
type Input struct {
	Loading       bool
	Authenticated bool
	Role          string
	RequiredRole  string
}

// Decision is the guard's verdict. RedirectTo is set only for OutcomeRedirect.
type Decision struct {
	Outcome    Outcome
	RedirectTo string
}

// Evaluate maps session state to a render decision. Role comparison is exact
// string equality; there is no role hierarchy.
func Evaluate(in Input) Decision {
	if in.Loading {
		return Decision{Outcome: OutcomePending}
	}
	if !in.Authenticated {
		return Decision{Outcome: OutcomeRedirect, RedirectTo: LoginPath}
	}
	if in.RequiredRole != "" && in.Role != in.RequiredRole {
		return Decision{Outcome: OutcomeForbidden}
	}
	return Decision{Outcome: OutcomeAllow}
}
