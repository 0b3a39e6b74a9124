package core

import (
	"context"
	"errors"
	"testing"
)

func assignedTask(t *testing.T, svc *Service, userID string) TaskRecord {
	t.Helper()
	tasks, err := svc.GetUserTasks(context.Background(), userID)
	if err != nil {
		t.Fatalf("tasks: %v", err)
	}
	for _, task := range tasks {
		if task.Status == TaskAssigned {
			return task
		}
	}
	t.Fatalf("no assigned task for %s", userID)
	return TaskRecord{}
}

func TestSubmitTaskTransitionsAssignedToSubmitted(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)
	founder, _ := registerFounder(t, svc, "task@x.com", "Task Co")
	task := assignedTask(t, svc, founder.ID)

	updated, submitted, _, err := svc.SubmitTask(ctx, founder.ID, task.ID, "submission payload")
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if !submitted {
		t.Fatalf("expected submission to apply")
	}
	if updated.Status != TaskSubmitted {
		t.Fatalf("expected SUBMITTED, got %s", updated.Status)
	}
	if updated.Submission == nil || updated.Submission.Payload != "submission payload" {
		t.Fatalf("expected submission metadata, got %+v", updated.Submission)
	}
	if updated.Submission.SubmittedAt.IsZero() {
		t.Fatalf("expected store-observed timestamp")
	}
}

func TestSubmitTaskGuardIsNoop(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)
	founder, _ := registerFounder(t, svc, "guarded@x.com", "Guarded")
	task := assignedTask(t, svc, founder.ID)

	if _, submitted, _, err := svc.SubmitTask(ctx, founder.ID, task.ID, "first"); err != nil || !submitted {
		t.Fatalf("first submit: submitted=%v err=%v", submitted, err)
	}

	// Resubmission of an already-submitted task must not overwrite.
	_, submitted, _, err := svc.SubmitTask(ctx, founder.ID, task.ID, "second")
	if err != nil {
		t.Fatalf("resubmit: %v", err)
	}
	if submitted {
		t.Fatalf("resubmission of a SUBMITTED task must be a no-op")
	}
	tasks, err := svc.GetUserTasks(ctx, founder.ID)
	if err != nil {
		t.Fatalf("tasks: %v", err)
	}
	if tasks[0].Submission.Payload != "first" {
		t.Fatalf("submission payload must be unchanged, got %q", tasks[0].Submission.Payload)
	}

	// Missing task and foreign task are silent no-ops too.
	if _, submitted, _, err := svc.SubmitTask(ctx, founder.ID, "missing-task", "x"); err != nil || submitted {
		t.Fatalf("missing task must be a no-op: submitted=%v err=%v", submitted, err)
	}
	if _, submitted, _, err := svc.SubmitTask(ctx, "other-user", tasks[1].ID, "x"); err != nil || submitted {
		t.Fatalf("foreign task must be a no-op: submitted=%v err=%v", submitted, err)
	}
}

func TestApplyTaskReviewApprovalUnlocksNextLevel(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)
	founder, _ := registerFounder(t, svc, "approve@x.com", "Approve")
	task := assignedTask(t, svc, founder.ID)

	if _, _, _, err := svc.SubmitTask(ctx, founder.ID, task.ID, "work"); err != nil {
		t.Fatalf("submit: %v", err)
	}
	reviewed, applied, _, err := svc.ApplyTaskReview(ctx, founder.ID, task.ID, TaskReview{Score: 8.5, Feedback: "solid"}, true)
	if err != nil {
		t.Fatalf("review: %v", err)
	}
	if !applied || reviewed.Status != TaskApproved {
		t.Fatalf("expected APPROVED, got applied=%v status=%s", applied, reviewed.Status)
	}
	if reviewed.AIReview == nil || reviewed.AIReview.Score != 8.5 {
		t.Fatalf("expected review attached, got %+v", reviewed.AIReview)
	}

	tasks, err := svc.GetUserTasks(ctx, founder.ID)
	if err != nil {
		t.Fatalf("tasks: %v", err)
	}
	if tasks[1].LevelID != 2 || tasks[1].Status != TaskAssigned {
		t.Fatalf("expected level 2 unlocked to ASSIGNED, got %s", tasks[1].Status)
	}

	user, ok := svc.GetUser(founder.ID)
	if !ok {
		t.Fatalf("user lookup")
	}
	if len(user.EarnedBadges) != 1 || user.EarnedBadges[0] != "level-1" {
		t.Fatalf("expected level-1 badge, got %v", user.EarnedBadges)
	}
}

func TestApplyTaskReviewRejectionReturnsToAssigned(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)
	founder, _ := registerFounder(t, svc, "rejecttask@x.com", "RejectTask")
	task := assignedTask(t, svc, founder.ID)

	if _, _, _, err := svc.SubmitTask(ctx, founder.ID, task.ID, "weak"); err != nil {
		t.Fatalf("submit: %v", err)
	}
	reviewed, applied, _, err := svc.ApplyTaskReview(ctx, founder.ID, task.ID, TaskReview{Score: 2, Feedback: "needs work"}, false)
	if err != nil {
		t.Fatalf("review: %v", err)
	}
	if !applied || reviewed.Status != TaskAssigned {
		t.Fatalf("rejection must return task to ASSIGNED, got %s", reviewed.Status)
	}
	if reviewed.Submission != nil {
		t.Fatalf("rejection must clear the submission for resubmit")
	}
	if reviewed.AIReview == nil || reviewed.AIReview.Feedback != "needs work" {
		t.Fatalf("rejection must retain the review feedback")
	}

	// The returned task accepts a fresh submission.
	if _, submitted, _, err := svc.SubmitTask(ctx, founder.ID, task.ID, "better"); err != nil || !submitted {
		t.Fatalf("resubmit after rejection: submitted=%v err=%v", submitted, err)
	}
}

func TestApplyTaskReviewGuards(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)
	founder, _ := registerFounder(t, svc, "rg@x.com", "RG")
	task := assignedTask(t, svc, founder.ID)

	var notFound ErrNotFound
	if _, _, _, err := svc.ApplyTaskReview(ctx, founder.ID, "missing", TaskReview{}, true); !errors.As(err, &notFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	// Reviewing a task that was never submitted is a no-op.
	if _, applied, _, err := svc.ApplyTaskReview(ctx, founder.ID, task.ID, TaskReview{}, true); err != nil || applied {
		t.Fatalf("review of ASSIGNED task must be a no-op: applied=%v err=%v", applied, err)
	}
}

func TestAverageTaskScore(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)
	founder, _ := registerFounder(t, svc, "avg@x.com", "Avg")

	if _, ok, err := svc.AverageTaskScore(ctx, founder.ID); err != nil || ok {
		t.Fatalf("expected no average before approvals: ok=%v err=%v", ok, err)
	}

	// Approve the first two levels with different scores.
	for _, score := range []float64{6, 10} {
		task := assignedTask(t, svc, founder.ID)
		if _, _, _, err := svc.SubmitTask(ctx, founder.ID, task.ID, "work"); err != nil {
			t.Fatalf("submit: %v", err)
		}
		if _, _, _, err := svc.ApplyTaskReview(ctx, founder.ID, task.ID, TaskReview{Score: score}, true); err != nil {
			t.Fatalf("review: %v", err)
		}
	}

	avg, ok, err := svc.AverageTaskScore(ctx, founder.ID)
	if err != nil || !ok {
		t.Fatalf("average: ok=%v err=%v", ok, err)
	}
	if avg != 8 {
		t.Fatalf("expected average 8, got %v", avg)
	}
}
