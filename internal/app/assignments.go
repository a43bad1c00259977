package app

import (
	"github.com/hylla/nametag/internal/domain"
	"github.com/hylla/nametag/internal/wcif"
)

// ResolveAssignments joins raw assignments with the activity index, keeping
// input order. Unknown activities and unsupported roles are skipped.
func ResolveAssignments(raw []wcif.Assignment, activities map[int]domain.ActivityDescriptor, diag *Diagnostics) []domain.Assignment {
	out := make([]domain.Assignment, 0, len(raw))
	for _, a := range raw {
		desc, ok := activities[a.ActivityID]
		if !ok {
			diag.Warn(WarningUnknownActivity, "activity %d (%s)", a.ActivityID, a.AssignmentCode)
			continue
		}
		role, ok := domain.NormalizeRole(a.AssignmentCode)
		if !ok {
			diag.Warn(WarningUnsupportedRole, "role %q in %s", a.AssignmentCode, desc.Code)
			continue
		}
		out = append(out, domain.NewAssignment(desc, role))
	}
	return out
}

// ResolveRosterAssignments resolves every row's raw assignments keyed by registrant id.
func ResolveRosterAssignments(rows []RosterRow, schedule Schedule, diag *Diagnostics) map[int][]domain.Assignment {
	out := make(map[int][]domain.Assignment, len(rows))
	for _, row := range rows {
		out[row.RegistrantID] = ResolveAssignments(row.Assignments, schedule.Activities, diag)
	}
	return out
}
