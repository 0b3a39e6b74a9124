package core

import (
	"context"
	"errors"
	"testing"
)

func newTestService(t *testing.T, opts ...Option) *Service {
	t.Helper()
	return NewInMemoryService(NewDefaultRulesEngine(), opts...)
}

func registerFounder(t *testing.T, svc *Service, email, startupName string) (User, Startup) {
	t.Helper()
	user, startup, _, err := svc.RegisterUser(context.Background(), RegisterProfile{
		FirstName:   "Test",
		LastName:    "Founder",
		Email:       email,
		Role:        RoleStartup,
		StartupName: startupName,
	})
	if err != nil {
		t.Fatalf("register founder: %v", err)
	}
	if startup == nil {
		t.Fatalf("expected startup for STARTUP registration")
	}
	return user, *startup
}

func TestRegisterUserHappyPath(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	user, startup, _, err := svc.RegisterUser(ctx, RegisterProfile{
		FirstName:   "Ada",
		LastName:    "Kim",
		Email:       "A@X.com",
		Role:        RoleStartup,
		StartupName: "Acme",
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if user.ID == "" {
		t.Fatalf("expected generated uid")
	}
	if user.Email != "a@x.com" {
		t.Fatalf("expected normalized email, got %q", user.Email)
	}
	if startup == nil || startup.OwnerID != user.ID {
		t.Fatalf("expected startup owned by %s, got %+v", user.ID, startup)
	}
	if startup.ApplicationStatus != ApplicationNeedsCompletion {
		t.Fatalf("expected initial application status NEEDS_COMPLETION, got %s", startup.ApplicationStatus)
	}

	tasks, err := svc.GetUserTasks(ctx, user.ID)
	if err != nil {
		t.Fatalf("tasks: %v", err)
	}
	if len(tasks) != len(defaultTaskTemplate) {
		t.Fatalf("expected %d tasks, got %d", len(defaultTaskTemplate), len(tasks))
	}
	if tasks[0].LevelID != 1 || tasks[0].Status != TaskAssigned {
		t.Fatalf("expected level 1 ASSIGNED, got level %d %s", tasks[0].LevelID, tasks[0].Status)
	}
	for _, task := range tasks[1:] {
		if task.Status != TaskLocked {
			t.Fatalf("expected level %d LOCKED, got %s", task.LevelID, task.Status)
		}
	}

	sess, ok := svc.CurrentSession()
	if !ok || sess.UserID != user.ID {
		t.Fatalf("expected session for %s, got %+v ok=%v", user.ID, sess, ok)
	}
	if sess.ProjectID == nil || *sess.ProjectID != startup.ID {
		t.Fatalf("expected session project id %s", startup.ID)
	}
}

func TestRegisterUserDuplicateEmailConflicts(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)
	registerFounder(t, svc, "dupe@x.com", "First")

	_, _, _, err := svc.RegisterUser(ctx, RegisterProfile{Email: "DUPE@x.com", Role: RoleStartup, StartupName: "Second"})
	var conflict ConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("expected ConflictError, got %v", err)
	}
	if len(svc.GetAllUsers()) != 1 {
		t.Fatalf("conflicting registration must not commit")
	}
}

func TestRegisterUserDistinctIDs(t *testing.T) {
	svc := newTestService(t)
	seen := map[string]bool{}
	for _, email := range []string{"u1@x.com", "u2@x.com", "u3@x.com", "u4@x.com"} {
		user, _ := registerFounder(t, svc, email, "S-"+email)
		if seen[user.ID] {
			t.Fatalf("duplicate uid %s", user.ID)
		}
		seen[user.ID] = true
	}
}

func TestLoginUnknownEmailLeavesSessionUntouched(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)
	founder, _ := registerFounder(t, svc, "known@x.com", "Known")

	_, _, found, err := svc.LoginUser(ctx, "ghost@x.com")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if found {
		t.Fatalf("expected absent result for unknown email")
	}
	sess, ok := svc.CurrentSession()
	if !ok || sess.UserID != founder.ID {
		t.Fatalf("session must remain pointed at %s", founder.ID)
	}
}

func TestLoginRewritesSession(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)
	registerFounder(t, svc, "first@x.com", "First")
	second, secondStartup := registerFounder(t, svc, "second@x.com", "Second")

	user, startup, found, err := svc.LoginUser(ctx, "Second@X.com")
	if err != nil || !found {
		t.Fatalf("login: found=%v err=%v", found, err)
	}
	if user.ID != second.ID {
		t.Fatalf("expected login as %s, got %s", second.ID, user.ID)
	}
	if startup == nil || startup.ID != secondStartup.ID {
		t.Fatalf("expected owned startup resolved on login")
	}
	sess, ok := svc.CurrentSession()
	if !ok || sess.UserID != second.ID {
		t.Fatalf("expected session rewritten to %s", second.ID)
	}
}

func TestLogoutClearsSession(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)
	registerFounder(t, svc, "out@x.com", "Out")

	if err := svc.Logout(ctx); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if _, ok := svc.CurrentSession(); ok {
		t.Fatalf("expected no session after logout")
	}
	// Logging out twice stays a no-op.
	if err := svc.Logout(ctx); err != nil {
		t.Fatalf("second logout: %v", err)
	}
}

func TestUpdateUserUnknownIDIsNoop(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)
	registerFounder(t, svc, "solo@x.com", "Solo")

	_, _, err := svc.UpdateUser(ctx, "nonexistent-uid", func(u *User) error {
		u.Phone = "555"
		return nil
	})
	if err != nil {
		t.Fatalf("update of unknown uid must not fail: %v", err)
	}
	users := svc.GetAllUsers()
	if len(users) != 1 || users[0].Phone != "" {
		t.Fatalf("users collection must be unchanged, got %+v", users)
	}
}

func TestUpdateUserPartialFields(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)
	founder, _ := registerFounder(t, svc, "partial@x.com", "Partial")

	updated, _, err := svc.UpdateUser(ctx, founder.ID, func(u *User) error {
		u.Phone = "123-456"
		return nil
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Phone != "123-456" {
		t.Fatalf("expected phone updated")
	}
	if updated.Email != founder.Email || updated.FirstName != founder.FirstName {
		t.Fatalf("untouched fields must not be clobbered")
	}
}

func TestUpdateStartupCannotMoveApplicationStatus(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)
	_, startup := registerFounder(t, svc, "guard@x.com", "Guard")

	updated, _, err := svc.UpdateStartup(ctx, startup.ID, func(st *Startup) error {
		st.Description = "new description"
		st.ApplicationStatus = ApplicationApproved
		return nil
	})
	if err != nil {
		t.Fatalf("update startup: %v", err)
	}
	if updated.Description != "new description" {
		t.Fatalf("expected description updated")
	}
	if updated.ApplicationStatus != ApplicationNeedsCompletion {
		t.Fatalf("profile edits must not move the application machine, got %s", updated.ApplicationStatus)
	}
}

func TestUpdateStartupUnknownIDIsNoop(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)
	registerFounder(t, svc, "su@x.com", "SU")

	if _, _, err := svc.UpdateStartup(ctx, "missing-project", func(st *Startup) error {
		st.Name = "renamed"
		return nil
	}); err != nil {
		t.Fatalf("update of unknown startup must not fail: %v", err)
	}
	startups := svc.GetAllStartups()
	if len(startups) != 1 || startups[0].Name != "SU" {
		t.Fatalf("startups collection must be unchanged")
	}
}

func TestRegisterAsPartnerUpsertsUserRow(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)
	founder, _ := registerFounder(t, svc, "founder@x.com", "Founder Co")

	profile, _, err := svc.RegisterAsPartner(ctx, PartnerProfile{
		UserID:      founder.ID,
		Name:        "Test Founder",
		Email:       founder.Email,
		PrimaryRole: "CEO",
	})
	if err != nil {
		t.Fatalf("register as partner: %v", err)
	}
	if profile.UserID != founder.ID {
		t.Fatalf("expected profile bound to %s", founder.ID)
	}
	if got := len(svc.GetAllUsers()); got != 1 {
		t.Fatalf("existing user must not be duplicated, have %d users", got)
	}

	// A second profile for the same user is a conflict.
	_, _, err = svc.RegisterAsPartner(ctx, PartnerProfile{UserID: founder.ID, Name: "Again", Email: founder.Email})
	var conflict ConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("expected ConflictError for duplicate profile, got %v", err)
	}
}

func TestRegisterAsPartnerCreatesDerivedUser(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	profile, _, err := svc.RegisterAsPartner(ctx, PartnerProfile{
		Name:        "Nora Vale",
		Email:       "nora@x.com",
		PrimaryRole: "CFO",
	})
	if err != nil {
		t.Fatalf("register as partner: %v", err)
	}
	user, ok := svc.GetUser(profile.UserID)
	if !ok {
		t.Fatalf("expected derived user row")
	}
	if user.Role != RolePartner {
		t.Fatalf("derived user must have role PARTNER, got %s", user.Role)
	}
	if user.FirstName != "Nora" || user.LastName != "Vale" {
		t.Fatalf("expected name split, got %q %q", user.FirstName, user.LastName)
	}
	if got := len(svc.GetAllUsers()); got != 1 {
		t.Fatalf("expected exactly one user, have %d", got)
	}
}

func TestSeedDemoAccountsIdempotent(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	for i := 0; i < 3; i++ {
		if _, err := svc.SeedDemoAccounts(ctx); err != nil {
			t.Fatalf("seed run %d: %v", i, err)
		}
	}
	if got := len(svc.GetAllUsers()); got != len(demoAccounts) {
		t.Fatalf("expected %d demo users, got %d", len(demoAccounts), got)
	}
	if got := len(svc.GetAllStartups()); got != 2 {
		t.Fatalf("expected 2 demo startups, got %d", got)
	}
	if got := len(svc.GetAllPartners()); got != 1 {
		t.Fatalf("expected 1 demo partner profile, got %d", got)
	}
}

func TestRejectThenConvertToPartnerScenario(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)
	founder, startup := registerFounder(t, svc, "reject@x.com", "Rejectable")

	if _, _, err := svc.SubmitStartupApplication(ctx, startup.ID); err != nil {
		t.Fatalf("submit application: %v", err)
	}
	if _, _, err := svc.UpdateStartupApplication(ctx, startup.ID, ApplicationRejected, nil, nil); err != nil {
		t.Fatalf("reject application: %v", err)
	}

	converted, _, err := svc.ConvertToPartner(ctx, founder.ID)
	if err != nil {
		t.Fatalf("convert: %v", err)
	}
	if converted.Role != RolePartner {
		t.Fatalf("expected role PARTNER, got %s", converted.Role)
	}
	after, ok := svc.GetStartup(startup.ID)
	if !ok {
		t.Fatalf("startup must survive conversion")
	}
	if after.ApplicationStatus != ApplicationNeedsCompletion {
		t.Fatalf("expected application reset to NEEDS_COMPLETION, got %s", after.ApplicationStatus)
	}
	if after.Name != startup.Name || after.OwnerID != founder.ID {
		t.Fatalf("startup must be otherwise untouched")
	}
}

func TestRequestServiceAndComplete(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)
	founder, _ := registerFounder(t, svc, "svc@x.com", "Svc")

	req, _, err := svc.RequestService(ctx, founder.ID, "legal", "starter", "incorporation docs")
	if err != nil {
		t.Fatalf("request service: %v", err)
	}
	if req.Status != RequestPending || req.ID == "" {
		t.Fatalf("expected pending request with id, got %+v", req)
	}

	done, _, err := svc.CompleteServiceRequest(ctx, req.ID)
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if done.Status != RequestCompleted {
		t.Fatalf("expected COMPLETED, got %s", done.Status)
	}

	list, err := svc.GetUserServiceRequests(ctx, founder.ID)
	if err != nil || len(list) != 1 {
		t.Fatalf("expected one request, got %d err=%v", len(list), err)
	}

	var notFound ErrNotFound
	if _, _, err := svc.CompleteServiceRequest(ctx, "missing-request"); !errors.As(err, &notFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestRequestServiceUnknownUser(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)
	var notFound ErrNotFound
	if _, _, err := svc.RequestService(ctx, "ghost", "legal", "starter", ""); !errors.As(err, &notFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestRateProgramOverwritesSlot(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)
	founder, _ := registerFounder(t, svc, "rate@x.com", "Rate")

	if _, _, err := svc.RateProgram(ctx, founder.ID, 3, "fine"); err != nil {
		t.Fatalf("rate: %v", err)
	}
	if _, _, err := svc.RateProgram(ctx, founder.ID, 5, "great"); err != nil {
		t.Fatalf("re-rate: %v", err)
	}
	rating, found, err := svc.ProgramRatingFor(ctx, founder.ID)
	if err != nil || !found {
		t.Fatalf("rating lookup: found=%v err=%v", found, err)
	}
	if rating.Score != 5 || rating.Comment != "great" {
		t.Fatalf("expected overwritten rating, got %+v", rating)
	}

	if _, _, err := svc.RateProgram(ctx, founder.ID, 9, "?"); err == nil {
		t.Fatalf("expected out-of-range score to fail")
	}
}

func TestActivityFeedRecordsOperations(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)
	founder, _ := registerFounder(t, svc, "feed@x.com", "Feed")

	if _, _, found, err := svc.LoginUser(ctx, "feed@x.com"); err != nil || !found {
		t.Fatalf("login: found=%v err=%v", found, err)
	}
	entries, err := svc.ActivityFor(ctx, founder.ID)
	if err != nil {
		t.Fatalf("activity: %v", err)
	}
	if len(entries) < 2 {
		t.Fatalf("expected registration and login entries, got %d", len(entries))
	}
	if entries[0].Event != "user_registered" {
		t.Fatalf("expected first entry user_registered, got %s", entries[0].Event)
	}
}
