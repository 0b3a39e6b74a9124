package core

import (
	"context"
	"errors"
	"testing"
)

func TestCanTransitionTable(t *testing.T) {
	cases := []struct {
		from, to ApplicationStatus
		allowed  bool
	}{
		{ApplicationNeedsCompletion, ApplicationPendingScreening, true},
		{ApplicationNeedsCompletion, ApplicationApproved, false},
		{ApplicationPendingScreening, ApplicationApproved, true},
		{ApplicationPendingScreening, ApplicationRejected, true},
		{ApplicationPendingScreening, ApplicationReviewRequired, true},
		{ApplicationPendingScreening, ApplicationNeedsCompletion, true},
		{ApplicationReviewRequired, ApplicationApproved, true},
		{ApplicationReviewRequired, ApplicationPendingScreening, false},
		{ApplicationRejected, ApplicationPendingScreening, true},
		{ApplicationRejected, ApplicationApproved, false},
		{ApplicationApproved, ApplicationRejected, false},
		{ApplicationApproved, ApplicationPendingScreening, false},
	}
	for _, tc := range cases {
		if got := CanTransition(tc.from, tc.to); got != tc.allowed {
			t.Fatalf("CanTransition(%s, %s) = %v, want %v", tc.from, tc.to, got, tc.allowed)
		}
	}
}

func TestUpdateStartupApplicationEnforcesMachine(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)
	_, startup := registerFounder(t, svc, "machine@x.com", "Machine")

	// Screening outcomes are only reachable after submission.
	_, _, err := svc.UpdateStartupApplication(ctx, startup.ID, ApplicationApproved, nil, nil)
	var transition StateTransitionError
	if !errors.As(err, &transition) {
		t.Fatalf("expected StateTransitionError, got %v", err)
	}

	if _, _, err := svc.SubmitStartupApplication(ctx, startup.ID); err != nil {
		t.Fatalf("submit: %v", err)
	}
	score := 87.5
	feedback := "strong fit"
	updated, _, err := svc.UpdateStartupApplication(ctx, startup.ID, ApplicationApproved, &score, &feedback)
	if err != nil {
		t.Fatalf("approve: %v", err)
	}
	if updated.ApplicationStatus != ApplicationApproved {
		t.Fatalf("expected APPROVED, got %s", updated.ApplicationStatus)
	}
	if updated.FitScore == nil || *updated.FitScore != score {
		t.Fatalf("expected fit score persisted")
	}
	if updated.AIFeedback == nil || *updated.AIFeedback != feedback {
		t.Fatalf("expected feedback persisted")
	}
	if updated.Status != StartupApproved {
		t.Fatalf("approval must also approve the startup, got %s", updated.Status)
	}

	// APPROVED is terminal.
	if _, _, err := svc.UpdateStartupApplication(ctx, startup.ID, ApplicationRejected, nil, nil); !errors.As(err, &transition) {
		t.Fatalf("expected terminal APPROVED, got %v", err)
	}
}

func TestSubmitStartupApplicationResubmitAfterRejection(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)
	_, startup := registerFounder(t, svc, "resubmit@x.com", "Resubmit")

	if _, _, err := svc.SubmitStartupApplication(ctx, startup.ID); err != nil {
		t.Fatalf("submit: %v", err)
	}
	if _, _, err := svc.UpdateStartupApplication(ctx, startup.ID, ApplicationRejected, nil, nil); err != nil {
		t.Fatalf("reject: %v", err)
	}
	updated, _, err := svc.SubmitStartupApplication(ctx, startup.ID)
	if err != nil {
		t.Fatalf("resubmit: %v", err)
	}
	if updated.ApplicationStatus != ApplicationPendingScreening {
		t.Fatalf("expected PENDING_SCREENING after resubmit, got %s", updated.ApplicationStatus)
	}

	// Submitting while already in screening is rejected.
	var transition StateTransitionError
	if _, _, err := svc.SubmitStartupApplication(ctx, startup.ID); !errors.As(err, &transition) {
		t.Fatalf("expected StateTransitionError, got %v", err)
	}

	var notFound ErrNotFound
	if _, _, err := svc.SubmitStartupApplication(ctx, "missing-project"); !errors.As(err, &notFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
