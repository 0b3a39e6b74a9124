package core

import (
	"context"
	"fmt"
	"strings"

	"venturecore/pkg/domain"
)

// NewUniqueEmailRule returns the default in-transaction rule enforcing
// case-insensitive email uniqueness across user accounts.
func NewUniqueEmailRule() domain.Rule {
	return uniqueEmailRule{}
}

type uniqueEmailRule struct{}

func (uniqueEmailRule) Name() string { return "unique_email" }

func (uniqueEmailRule) Evaluate(_ context.Context, view domain.TransactionView, _ []domain.Change) (domain.Result, error) {
	seen := make(map[string]string)
	res := domain.Result{}
	for _, user := range view.ListUsers() {
		key := strings.ToLower(strings.TrimSpace(user.Email))
		if key == "" {
			res.Violations = append(res.Violations, domain.Violation{
				Rule:     "unique_email",
				Severity: domain.SeverityBlock,
				Message:  fmt.Sprintf("user %s has no email", user.ID),
				Entity:   domain.EntityUser,
				EntityID: user.ID,
			})
			continue
		}
		if otherID, dup := seen[key]; dup {
			res.Violations = append(res.Violations, domain.Violation{
				Rule:     "unique_email",
				Severity: domain.SeverityBlock,
				Message:  fmt.Sprintf("users %s and %s share email %s", otherID, user.ID, key),
				Entity:   domain.EntityUser,
				EntityID: user.ID,
			})
			continue
		}
		seen[key] = user.ID
	}
	return res, nil
}
