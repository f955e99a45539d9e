package policy

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/adanyl0v/go-task-tracker/internal/models"
)

func TestAuthorize(t *testing.T) {
	admin := models.Principal{ID: 1, Role: models.RoleAdmin}
	otherAdmin := models.Principal{ID: 4, Role: models.RoleAdmin}
	owner := models.Principal{ID: 2, Role: models.RoleUser}
	stranger := models.Principal{ID: 3, Role: models.RoleUser}
	anonymous := models.Principal{}

	task := &models.Task{ID: 10, CreatedBy: admin.ID}
	list := &models.TaskList{ID: 20, TaskID: task.ID, UserID: owner.ID}

	tests := []struct {
		name      string
		principal models.Principal
		action    Action
		resource  any
		allowed   bool
	}{
		{"user lists tasks", owner, ActionIndex, (*models.Task)(nil), true},
		{"user views task", owner, ActionView, task, true},
		{"user creates task", owner, ActionCreate, (*models.Task)(nil), false},
		{"user updates task", owner, ActionUpdate, task, false},
		{"user deletes task", owner, ActionDelete, task, false},
		{"admin creates task", admin, ActionCreate, (*models.Task)(nil), true},
		{"admin updates foreign task", otherAdmin, ActionUpdate, task, true},
		{"admin deletes foreign task", otherAdmin, ActionDelete, task, true},
		{"anonymous lists tasks", anonymous, ActionIndex, (*models.Task)(nil), false},

		{"user creates list", stranger, ActionCreate, (*models.TaskList)(nil), true},
		{"owner views list", owner, ActionView, list, true},
		{"owner updates list", owner, ActionUpdate, list, true},
		{"owner deletes list", owner, ActionDelete, list, true},
		{"stranger views list", stranger, ActionView, list, false},
		{"stranger updates list", stranger, ActionUpdate, list, false},
		{"stranger deletes list", stranger, ActionDelete, list, false},
		{"admin views foreign list", admin, ActionView, list, false},
		{"nil list is never owned", owner, ActionView, (*models.TaskList)(nil), false},

		{"unknown resource", admin, ActionView, "task", false},
		{"unknown action", admin, Action("archive"), task, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Authorize(tt.principal, tt.action, tt.resource)
			if tt.allowed {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, ErrForbidden)
			}
		})
	}
}

func TestRequireRole(t *testing.T) {
	assert.True(t, RequireRole(models.Principal{ID: 1, Role: models.RoleAdmin}, models.RoleAdmin))
	assert.False(t, RequireRole(models.Principal{ID: 1, Role: models.RoleUser}, models.RoleAdmin))
	assert.False(t, RequireRole(models.Principal{Role: models.RoleAdmin}, models.RoleAdmin))
}
