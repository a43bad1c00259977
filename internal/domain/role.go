package domain

import (
	"slices"
	"strings"
)

// Role is the duty a person performs in one activity.
type Role string

const (
	RoleCompetitor Role = "competitor"
	RoleRunner     Role = "runner"
	RoleJudge      Role = "judge"
	RoleScrambler  Role = "scrambler"
	RoleDelegate   Role = "delegate"
	RoleLead       Role = "lead"
)

const staffPrefix = "staff-"

var allowedRoles = []Role{RoleCompetitor, RoleRunner, RoleJudge, RoleScrambler, RoleDelegate, RoleLead}

// NormalizeRole maps a raw assignment code onto a Role.
// "staff-judge" becomes judge and "staff-stagelead" becomes lead.
// The second result is false for codes outside the allowed set.
func NormalizeRole(raw string) (Role, bool) {
	code := strings.ToLower(strings.TrimSpace(raw))
	code = strings.TrimPrefix(code, staffPrefix)
	if code == "stagelead" {
		code = string(RoleLead)
	}
	role := Role(code)
	if !slices.Contains(allowedRoles, role) {
		return "", false
	}
	return role, true
}

// IsHelper reports whether the role is a staff duty rather than competing.
func (r Role) IsHelper() bool {
	return r != RoleCompetitor && slices.Contains(allowedRoles, r)
}

// Initial returns the uppercase first letter used in compact helper labels.
func (r Role) Initial() string {
	if r == "" {
		return ""
	}
	return strings.ToUpper(string(r)[:1])
}
