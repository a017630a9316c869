package model

import "slices"

// Role is the mass-assignment scope a principal acts under.
//
// Every request resolves to exactly one role: admins get RoleAdmin, everyone
// else (including anonymous visitors) gets RoleDefault. The role decides which
// attributes an incoming form or XML document may set on an entity.
type Role string

const (
	RoleAdmin   Role = "admin"
	RoleDefault Role = "default"
)

func (r Role) String() string {
	return string(r)
}

// IsAdmin reports whether the role carries administrator privileges.
func (r Role) IsAdmin() bool {
	return r == RoleAdmin
}

// RoleFor maps the admin flag of a user to a role.
func RoleFor(admin bool) Role {
	if admin {
		return RoleAdmin
	}
	return RoleDefault
}

// Attributes is an untrusted bag of field values keyed by attribute name,
// e.g. the decoded snippet[slug]=... form fields of a request.
type Attributes map[string]string

// AllowList maps each role to the attribute names it may mass-assign.
//
// A role missing from the map may assign nothing.
type AllowList map[Role][]string

// Permits reports whether role may assign attr.
func (a AllowList) Permits(role Role, attr string) bool {
	return slices.Contains(a[role], attr)
}

// Filter returns the subset of attrs that role is allowed to set.
//
// Attributes outside the allow-list are dropped silently. Filtering is not
// a validation step: a request carrying forbidden keys still succeeds, the
// keys just never reach the entity.
func (a AllowList) Filter(role Role, attrs Attributes) Attributes {
	kept := make(Attributes, len(attrs))
	for name, value := range attrs {
		if a.Permits(role, name) {
			kept[name] = value
		}
	}
	return kept
}

// Assignable returns the attribute names role may set, in declaration order.
func (a AllowList) Assignable(role Role) []string {
	return slices.Clone(a[role])
}
