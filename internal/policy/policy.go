// Package policy decides whether a principal may perform an action on a
// resource. Every mutation and every owner-restricted read goes through
// Authorize, both at route level and inside the services.
package policy

import (
	"errors"

	"github.com/adanyl0v/go-task-tracker/internal/models"
)

var ErrForbidden = errors.New("unauthorized access")

type Action string

const (
	ActionIndex  Action = "index"
	ActionView   Action = "view"
	ActionCreate Action = "create"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
)

// Authorize returns nil when p may perform action on resource and
// ErrForbidden otherwise. Resource is a *models.Task or *models.TaskList;
// a nil pointer of either type stands for the collection, which is enough
// for the index and create actions.
func Authorize(p models.Principal, action Action, resource any) error {
	if !p.IsAuthenticated() {
		return ErrForbidden
	}

	switch r := resource.(type) {
	case *models.Task:
		return authorizeTask(p, action)
	case *models.TaskList:
		return authorizeList(p, action, r)
	default:
		return ErrForbidden
	}
}

// Any admin may mutate any task, not only its creator.
func authorizeTask(p models.Principal, action Action) error {
	switch action {
	case ActionIndex, ActionView:
		return nil
	case ActionCreate, ActionUpdate, ActionDelete:
		if p.IsAdmin() {
			return nil
		}
	}
	return ErrForbidden
}

func authorizeList(p models.Principal, action Action, list *models.TaskList) error {
	switch action {
	case ActionIndex, ActionCreate:
		return nil
	case ActionView, ActionUpdate, ActionDelete:
		if list != nil && list.UserID == p.ID {
			return nil
		}
	}
	return ErrForbidden
}

// RequireRole reports whether p holds role.
func RequireRole(p models.Principal, role string) bool {
	return p.IsAuthenticated() && p.Role == role
}
