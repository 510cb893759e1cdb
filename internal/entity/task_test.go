package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewTask(t *testing.T) {
	task, err := NewTask("acc-1", "lead-1", "Follow up", "2026-09-04", "10:30")

	assert.NoError(t, err)
	assert.NotEmpty(t, task.ID)
	assert.False(t, task.Done)
}

func TestNewTaskDueTimeOptional(t *testing.T) {
	task, err := NewTask("acc-1", "lead-1", "Follow up", "2026-09-04", "")

	assert.NoError(t, err)
	assert.Empty(t, task.DueTime)
}

func TestNewTaskValidation(t *testing.T) {
	_, err := NewTask("acc-1", "lead-1", "", "2026-09-04", "")
	assert.ErrorIs(t, err, ErrTaskTitleRequired)

	_, err = NewTask("acc-1", "lead-1", "Follow up", "", "")
	assert.ErrorIs(t, err, ErrTaskDueDateRequired)

	_, err = NewTask("acc-1", "lead-1", "Follow up", "04/09/2026", "")
	assert.ErrorIs(t, err, ErrTaskDueDateInvalid)

	_, err = NewTask("acc-1", "lead-1", "Follow up", "2026-09-04", "10:30pm")
	assert.ErrorIs(t, err, ErrTaskDueTimeInvalid)
}
