package core

import (
	"context"
	"fmt"

	"venturecore/pkg/domain"
)

// NewPartnerProfileRule returns the default in-transaction rule keeping
// partner profiles one-per-user and bound to existing accounts.
func NewPartnerProfileRule() domain.Rule {
	return partnerProfileRule{}
}

type partnerProfileRule struct{}

func (partnerProfileRule) Name() string { return "partner_profile_user" }

func (partnerProfileRule) Evaluate(_ context.Context, view domain.TransactionView, _ []domain.Change) (domain.Result, error) {
	users := make(map[string]struct{})
	for _, user := range view.ListUsers() {
		users[user.ID] = struct{}{}
	}
	claimed := make(map[string]string)
	res := domain.Result{}
	for _, profile := range view.ListPartnerProfiles() {
		if _, ok := users[profile.UserID]; !ok {
			res.Violations = append(res.Violations, partnerProfileViolation(profile.ID,
				fmt.Sprintf("partner profile %s references missing user %s", profile.ID, profile.UserID)))
			continue
		}
		if otherID, dup := claimed[profile.UserID]; dup {
			res.Violations = append(res.Violations, partnerProfileViolation(profile.ID,
				fmt.Sprintf("user %s has partner profiles %s and %s", profile.UserID, otherID, profile.ID)))
			continue
		}
		claimed[profile.UserID] = profile.ID
	}
	return res, nil
}

func partnerProfileViolation(profileID, message string) domain.Violation {
	return domain.Violation{
		Rule:     "partner_profile_user",
		Severity: domain.SeverityBlock,
		Message:  message,
		Entity:   domain.EntityPartnerProfile,
		EntityID: profileID,
	}
}
