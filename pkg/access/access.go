// Package access decides who can see and change which task.
//
// There are three kinds of principals.
//
//   - ADMIN sees and changes everything.
//   - COLLABORATOR in a team sees and edits own tasks and tasks assigned to teammates.
//   - COLLABORATOR without team sees and edits own tasks only.
//
// Tasks without assignee are visible only to ADMINs.
package access

import (
	"errors"
	"fmt"

	kdb "github.com/opst/taskboard/pkg/db"
)

// Principal is the user who requests an operation.
type Principal struct {
	UserId string
	Role   kdb.Role
	TeamId *string
}

func PrincipalOf(u kdb.User) Principal {
	return Principal{UserId: u.Id, Role: u.Role, TeamId: u.TeamId}
}

func (p Principal) IsAdmin() bool {
	return p.Role == kdb.RoleAdmin
}

func (p Principal) team() (string, bool) {
	if p.TeamId == nil || *p.TeamId == "" {
		return "", false
	}
	return *p.TeamId, true
}

func (p Principal) sameTeam(teamId *string) bool {
	mine, ok := p.team()
	return ok && teamId != nil && *teamId == mine
}

// Scope is the range of tasks requested by listing.
type Scope string

const (
	// the widest scope the principal can see.
	ScopeDefault Scope = ""

	ScopeMine Scope = "mine"
	ScopeTeam Scope = "team"
	ScopeAll  Scope = "all"
)

var ErrUnknownScope = errors.New("unknown scope")

func AsScope(s string) (Scope, error) {
	switch Scope(s) {
	case ScopeDefault, ScopeMine, ScopeTeam, ScopeAll:
		return Scope(s), nil
	}
	return "", fmt.Errorf("%w: %s", ErrUnknownScope, s)
}

// Visibility returns a filter selecting tasks which the principal can see in the scope.
//
// Requests wider than the principal's visibility are narrowed silently.
//
// When assignee is not nil, the filter is narrowed to the tasks assigned to the user.
// If the user is out of the scope, it returns ErrForbidden.
func Visibility(p Principal, scope Scope, assignee *kdb.User) (kdb.TaskFilter, error) {
	f := scoped(p, scope)
	if assignee == nil {
		return f, nil
	}

	if !covers(f, *assignee) {
		return kdb.TaskFilter{}, fmt.Errorf(
			"%w: tasks of the user %s are out of scope", kdb.ErrForbidden, assignee.Id,
		)
	}
	f.Assignee = assignee.Id
	return f, nil
}

func scoped(p Principal, scope Scope) kdb.TaskFilter {
	own := kdb.TaskFilter{UserIds: []string{p.UserId}}
	if scope == ScopeMine {
		return own
	}

	team, hasTeam := p.team()
	if p.IsAdmin() {
		if scope == ScopeTeam && hasTeam {
			return kdb.TaskFilter{UserIds: []string{p.UserId}, TeamId: team}
		}
		return kdb.TaskFilter{Unrestricted: true}
	}

	if !hasTeam {
		return own
	}
	return kdb.TaskFilter{UserIds: []string{p.UserId}, TeamId: team}
}

func covers(f kdb.TaskFilter, u kdb.User) bool {
	if f.Unrestricted {
		return true
	}
	for _, id := range f.UserIds {
		if id == u.Id {
			return true
		}
	}
	return f.TeamId != "" && u.TeamId != nil && *u.TeamId == f.TeamId
}

func assigneeTeam(t kdb.Task) *string {
	if t.User == nil {
		return nil
	}
	return t.User.TeamId
}

func isAssignee(p Principal, t kdb.Task) bool {
	return t.UserId != nil && *t.UserId == p.UserId
}

// CanView tells whether the principal can see the task.
func CanView(p Principal, t kdb.Task) bool {
	if p.IsAdmin() || isAssignee(p, t) {
		return true
	}
	return t.UserId != nil && p.sameTeam(assigneeTeam(t))
}

// CanEdit tells whether the principal can change title, description,
// due date, status and estimation of the task.
func CanEdit(p Principal, t kdb.Task) bool {
	return CanView(p, t)
}

// CanDelete tells whether the principal can delete the task.
//
// Teammates cannot delete others' tasks, unless they have created them.
func CanDelete(p Principal, t kdb.Task) bool {
	if p.IsAdmin() || isAssignee(p, t) {
		return true
	}
	return t.CreatedBy != nil && *t.CreatedBy == p.UserId
}

// CanAssign tells whether the principal can assign tasks to the user.
func CanAssign(p Principal, target kdb.User) bool {
	if p.IsAdmin() || target.Id == p.UserId {
		return true
	}
	return p.sameTeam(target.TeamId)
}

// Authorize returns ErrForbidden unless ok.
func Authorize(ok bool, what string) error {
	if ok {
		return nil
	}
	return fmt.Errorf("%w: %s", kdb.ErrForbidden, what)
}
