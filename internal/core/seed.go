package core

import (
	"context"
	"fmt"
)

// demoAccount describes one seeded identity. Seeding keys on email, so
// repeated runs leave existing rows untouched.
type demoAccount struct {
	FirstName string
	LastName  string
	Email     string
	Role      Role

	StartupName        string
	StartupDescription string
	StartupIndustry    string
	ApplicationStatus  ApplicationStatus
	StartupStatus      StartupStatus

	PartnerRole       string
	PartnerExperience int
	PartnerSkills     []string
	PartnerHours      int
}

var demoAccounts = []demoAccount{
	{
		FirstName: "Dana", LastName: "Reyes", Email: "dana@demo.venturecore.dev", Role: RoleStartup,
		StartupName: "Loopwise", StartupDescription: "Churn prediction for subscription commerce.",
		StartupIndustry: "SaaS", ApplicationStatus: ApplicationPendingScreening, StartupStatus: StartupPending,
	},
	{
		FirstName: "Omar", LastName: "Haddad", Email: "omar@demo.venturecore.dev", Role: RoleStartup,
		StartupName: "Fieldgrid", StartupDescription: "Logistics routing for agricultural cooperatives.",
		StartupIndustry: "AgTech", ApplicationStatus: ApplicationApproved, StartupStatus: StartupApproved,
	},
	{
		FirstName: "Priya", LastName: "Nair", Email: "priya@demo.venturecore.dev", Role: RolePartner,
		PartnerRole: "CTO", PartnerExperience: 12,
		PartnerSkills: []string{"distributed systems", "hiring", "due diligence"}, PartnerHours: 8,
	},
	{
		FirstName: "Alex", LastName: "Moreau", Email: "alex@demo.venturecore.dev", Role: RoleAdmin,
	},
}

// SeedDemoAccounts installs the demo identities. Idempotent by email:
// running it any number of times yields the same four accounts.
func (s *Service) SeedDemoAccounts(ctx context.Context) (Result, error) {
	var result Result
	err := s.run(ctx, "seed_demo_accounts", func(ctx context.Context) error {
		res, err := s.store.RunInTransaction(ctx, func(tx Transaction) error {
			for _, acct := range demoAccounts {
				if _, exists := tx.FindUserByEmail(acct.Email); exists {
					continue
				}
				user, err := tx.CreateUser(User{
					FirstName: acct.FirstName,
					LastName:  acct.LastName,
					Email:     acct.Email,
					Role:      acct.Role,
				})
				if err != nil {
					return fmt.Errorf("seed user %s: %w", acct.Email, err)
				}
				switch acct.Role {
				case RoleStartup:
					_, err := tx.CreateStartup(Startup{
						OwnerID:           user.ID,
						Name:              acct.StartupName,
						Description:       acct.StartupDescription,
						Industry:          acct.StartupIndustry,
						Status:            acct.StartupStatus,
						ApplicationStatus: acct.ApplicationStatus,
					})
					if err != nil {
						return fmt.Errorf("seed startup %s: %w", acct.StartupName, err)
					}
					for _, task := range cloneTaskTemplate(user.ID) {
						if _, err := tx.CreateTask(task); err != nil {
							return fmt.Errorf("seed tasks for %s: %w", acct.Email, err)
						}
					}
				case RolePartner:
					if _, err := tx.CreatePartnerProfile(PartnerProfile{
						UserID:            user.ID,
						Name:              acct.FirstName + " " + acct.LastName,
						Email:             acct.Email,
						PrimaryRole:       acct.PartnerRole,
						ExperienceYears:   acct.PartnerExperience,
						Skills:            acct.PartnerSkills,
						AvailabilityHours: acct.PartnerHours,
					}); err != nil {
						return fmt.Errorf("seed partner %s: %w", acct.Email, err)
					}
				}
			}
			return nil
		})
		result = res
		return err
	})
	return result, err
}
