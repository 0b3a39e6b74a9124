package core

import (
	"context"
	"fmt"

	"venturecore/pkg/domain"
)

// NewStartupOwnerRule returns the default in-transaction rule keeping
// startup ownership consistent: every startup references an existing
// user and no user owns more than one startup.
func NewStartupOwnerRule() domain.Rule {
	return startupOwnerRule{}
}

type startupOwnerRule struct{}

func (startupOwnerRule) Name() string { return "startup_owner" }

func (startupOwnerRule) Evaluate(_ context.Context, view domain.TransactionView, _ []domain.Change) (domain.Result, error) {
	users := make(map[string]struct{})
	for _, user := range view.ListUsers() {
		users[user.ID] = struct{}{}
	}
	owners := make(map[string]string)
	res := domain.Result{}
	for _, startup := range view.ListStartups() {
		if _, ok := users[startup.OwnerID]; !ok {
			res.Violations = append(res.Violations, startupOwnerViolation(startup.ID,
				fmt.Sprintf("startup %s references missing owner %s", startup.ID, startup.OwnerID)))
			continue
		}
		if otherID, dup := owners[startup.OwnerID]; dup {
			res.Violations = append(res.Violations, startupOwnerViolation(startup.ID,
				fmt.Sprintf("user %s owns startups %s and %s", startup.OwnerID, otherID, startup.ID)))
			continue
		}
		owners[startup.OwnerID] = startup.ID
	}
	return res, nil
}

func startupOwnerViolation(startupID, message string) domain.Violation {
	return domain.Violation{
		Rule:     "startup_owner",
		Severity: domain.SeverityBlock,
		Message:  message,
		Entity:   domain.EntityStartup,
		EntityID: startupID,
	}
}
