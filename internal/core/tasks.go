package core

import (
	"context"
	"fmt"

	"venturecore/pkg/domain"
)

// SubmitTask attaches a submission to an assigned task and moves it to
// SUBMITTED with a store-observed timestamp. A missing task or a task in any
// other state is a silent no-op; callers probe the returned flag.
func (s *Service) SubmitTask(ctx context.Context, userID, taskID, payload string) (TaskRecord, bool, Result, error) {
	var (
		updated   TaskRecord
		submitted bool
		result    Result
	)
	err := s.run(ctx, "submit_task", func(ctx context.Context) error {
		res, err := s.store.RunInTransaction(ctx, func(tx Transaction) error {
			task, ok := tx.FindTask(taskID)
			if !ok || task.UserID != userID || task.Status != TaskAssigned {
				return nil
			}
			now := s.nowFn()
			out, err := tx.UpdateTask(taskID, func(t *TaskRecord) error {
				t.Status = TaskSubmitted
				t.Submission = &TaskSubmission{Payload: payload, SubmittedAt: now}
				return nil
			})
			if err != nil {
				return err
			}
			updated = out
			submitted = true
			_, err = tx.AppendActivity(ActivityLog{UserID: userID, Event: "task_submitted", Detail: task.Title})
			return err
		})
		result = res
		return err
	})
	if err != nil {
		return TaskRecord{}, false, result, err
	}
	return updated, submitted, result, nil
}

// ApplyTaskReview persists a review outcome the caller already obtained from
// the evaluation collaborator. Approval finalizes the task, awards the level
// badge, and unlocks the next level. Rejection records the review and
// returns the task to ASSIGNED so the user can resubmit. Tasks not in
// SUBMITTED state are a silent no-op.
func (s *Service) ApplyTaskReview(ctx context.Context, userID, taskID string, review TaskReview, approved bool) (TaskRecord, bool, Result, error) {
	var (
		updated TaskRecord
		applied bool
		result  Result
	)
	err := s.run(ctx, "apply_task_review", func(ctx context.Context) error {
		res, err := s.store.RunInTransaction(ctx, func(tx Transaction) error {
			task, ok := tx.FindTask(taskID)
			if !ok {
				return ErrNotFound{Entity: EntityTask, ID: taskID}
			}
			if task.UserID != userID || task.Status != TaskSubmitted {
				return nil
			}
			if review.ReviewedAt.IsZero() {
				review.ReviewedAt = s.nowFn()
			}
			out, err := tx.UpdateTask(taskID, func(t *TaskRecord) error {
				stored := review
				t.AIReview = &stored
				if approved {
					t.Status = TaskApproved
				} else {
					t.Status = TaskAssigned
					t.Submission = nil
				}
				return nil
			})
			if err != nil {
				return err
			}
			updated = out
			applied = true
			if approved {
				if err := s.unlockNextLevel(tx, userID, task.LevelID); err != nil {
					return err
				}
				if err := awardBadge(tx, userID, fmt.Sprintf("level-%d", task.LevelID)); err != nil {
					return err
				}
			}
			_, err = tx.AppendActivity(ActivityLog{UserID: userID, Event: "task_reviewed", Detail: out.Title})
			return err
		})
		result = res
		return err
	})
	if err != nil {
		return TaskRecord{}, false, result, err
	}
	return updated, applied, result, nil
}

// unlockNextLevel flips the user's next locked level to ASSIGNED, if one
// exists past the approved level.
func (s *Service) unlockNextLevel(tx Transaction, userID string, approvedLevel int) error {
	view := tx.Snapshot()
	for _, task := range view.ListTasks() {
		if task.UserID != userID || task.LevelID != approvedLevel+1 {
			continue
		}
		if task.Status != TaskLocked {
			return nil
		}
		_, err := tx.UpdateTask(task.ID, func(t *TaskRecord) error {
			t.Status = TaskAssigned
			return nil
		})
		return err
	}
	return nil
}

// awardBadge appends a badge to the user's earned set, once.
func awardBadge(tx Transaction, userID, badge string) error {
	_, err := tx.UpdateUser(userID, func(u *User) error {
		for _, earned := range u.EarnedBadges {
			if earned == badge {
				return nil
			}
		}
		u.EarnedBadges = append(u.EarnedBadges, badge)
		return nil
	})
	return err
}

// GetUserTasks lists a user's task records sorted by level.
func (s *Service) GetUserTasks(ctx context.Context, userID string) ([]TaskRecord, error) {
	var tasks []TaskRecord
	err := s.view(ctx, func(view domain.TransactionView) error {
		for _, task := range view.ListTasks() {
			if task.UserID == userID {
				tasks = append(tasks, task)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return tasks, nil
}

// AverageTaskScore computes the mean review score across a user's approved
// tasks. The second return reports whether any approved review exists.
func (s *Service) AverageTaskScore(ctx context.Context, userID string) (float64, bool, error) {
	var (
		total float64
		count int
	)
	err := s.view(ctx, func(view domain.TransactionView) error {
		for _, task := range view.ListTasks() {
			if task.UserID != userID || task.Status != TaskApproved || task.AIReview == nil {
				continue
			}
			total += task.AIReview.Score
			count++
		}
		return nil
	})
	if err != nil {
		return 0, false, err
	}
	if count == 0 {
		return 0, false, nil
	}
	return total / float64(count), true, nil
}
