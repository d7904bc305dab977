package policy

import (
	"strings"

	"github.com/bibliodesk/library-service/internal/errs"
	"github.com/bibliodesk/library-service/internal/model"
	"github.com/bibliodesk/library-service/pkg/auth"
)

// Requirement says what a matched rule demands from the caller.
type Requirement int

const (
	// Public allows everyone, identity or not.
	Public Requirement = iota
	// AnonymousOnly rejects authenticated callers (registration endpoints).
	AnonymousOnly
	// Authenticated allows any valid identity.
	Authenticated
	// RoleSet allows identities holding at least one of the listed roles.
	RoleSet
)

// Rule is one immutable entry of the ordered policy table.
// Method "*" matches any verb. Patterns support "*" for a single path
// segment and a trailing "**" for any suffix, including an empty one.
type Rule struct {
	Method      string
	Pattern     string
	Requirement Requirement
	Roles       []model.Role
}

func rule(method, pattern string, req Requirement, roles ...model.Role) Rule {
	return Rule{Method: method, Pattern: pattern, Requirement: req, Roles: roles}
}

// Policy evaluates rules in declared order; the first match wins. A path
// that matches no rule requires authentication.
type Policy struct {
	rules []Rule
}

func New(rules []Rule) *Policy {
	return &Policy{rules: rules}
}

// Default is the access table applied ahead of every handler.
func Default() *Policy {
	return New([]Rule{
		rule("GET", "/docs/**", Public),
		rule("GET", "/openapi/**", Public),
		rule("POST", "/auth/token", Public),
		rule("POST", "/users", AnonymousOnly),
		rule("*", "/users/me", Authenticated),
		rule("GET", "/books/**", Public),
		rule("GET", "/categories/**", Public),
		rule("POST", "/books/**", RoleSet, model.RoleLibrarian, model.RoleAdmin),
		rule("PUT", "/books/**", RoleSet, model.RoleLibrarian, model.RoleAdmin),
		rule("DELETE", "/books/**", RoleSet, model.RoleLibrarian, model.RoleAdmin),
		rule("*", "/categories/**", RoleSet, model.RoleLibrarian, model.RoleAdmin),
		rule("DELETE", "/users/**", RoleSet, model.RoleAdmin),
		rule("GET", "/users/**", RoleSet, model.RoleAdmin),
		rule("POST", "/users/**", AnonymousOnly),
		rule("*", "/loans/**", Authenticated),
		rule("*", "/notifications/**", Authenticated),
		rule("*", "/reports/**", RoleSet, model.RoleAdmin),
	})
}

// Evaluate decides whether the identity may perform method on path.
// It returns nil on ALLOW, errs.ErrUnauthorized when a missing identity
// is the problem and errs.ErrForbidden when the identity is valid but
// not acceptable here.
func (p *Policy) Evaluate(method, path string, id auth.Identity) error {
	req := Authenticated
	var roles []model.Role
	for _, r := range p.rules {
		if r.matches(method, path) {
			req = r.Requirement
			roles = r.Roles
			break
		}
	}

	switch req {
	case Public:
		return nil
	case AnonymousOnly:
		if !id.Anonymous() {
			return errs.ErrForbidden
		}
		return nil
	case Authenticated:
		if id.Anonymous() {
			return errs.ErrUnauthorized
		}
		return nil
	case RoleSet:
		if id.Anonymous() {
			return errs.ErrUnauthorized
		}
		for _, role := range roles {
			if model.Role(id.Role) == role {
				return nil
			}
		}
		return errs.ErrForbidden
	}
	return errs.ErrUnauthorized
}

func (r Rule) matches(method, path string) bool {
	if r.Method != "*" && r.Method != method {
		return false
	}
	return matchPattern(r.Pattern, path)
}

func matchPattern(pattern, path string) bool {
	pp := splitPath(pattern)
	ps := splitPath(path)

	for i, seg := range pp {
		if seg == "**" {
			// trailing wildcard, anything beyond this point matches
			return i == len(pp)-1
		}
		if i >= len(ps) {
			return false
		}
		if seg != "*" && seg != ps[i] {
			return false
		}
	}
	return len(pp) == len(ps)
}

func splitPath(p string) []string {
	p = strings.Trim(p, "/")
	if p == "" {
		return nil
	}
	return strings.Split(p, "/")
}
