package core

import (
	"context"
	"fmt"

	"venturecore/pkg/domain"
)

// NewTaskOwnerRule returns the default in-transaction rule flagging task
// records whose owning user no longer exists. The violation is a warning
// rather than a block: snapshot repair already drops orphaned tasks, so a
// dangling reference mid-transaction is surfaced but does not abort.
func NewTaskOwnerRule() domain.Rule {
	return taskOwnerRule{}
}

type taskOwnerRule struct{}

func (taskOwnerRule) Name() string { return "task_owner" }

func (taskOwnerRule) Evaluate(_ context.Context, view domain.TransactionView, _ []domain.Change) (domain.Result, error) {
	users := make(map[string]struct{})
	for _, user := range view.ListUsers() {
		users[user.ID] = struct{}{}
	}
	res := domain.Result{}
	for _, task := range view.ListTasks() {
		if _, ok := users[task.UserID]; ok {
			continue
		}
		res.Violations = append(res.Violations, domain.Violation{
			Rule:     "task_owner",
			Severity: domain.SeverityWarn,
			Message:  fmt.Sprintf("task %s references missing user %s", task.ID, task.UserID),
			Entity:   domain.EntityTask,
			EntityID: task.ID,
		})
	}
	return res, nil
}
