package core

import (
	"context"

	"venturecore/pkg/domain"
)

// UpdateStartup applies a partial update through the mutator. An unknown id
// is a silent no-op. The application status must not be changed here; use
// UpdateStartupApplication or SubmitStartupApplication instead.
func (s *Service) UpdateStartup(ctx context.Context, id string, mutator func(*Startup) error) (Startup, Result, error) {
	var (
		updated Startup
		result  Result
	)
	err := s.run(ctx, "update_startup", func(ctx context.Context) error {
		res, err := s.store.RunInTransaction(ctx, func(tx Transaction) error {
			current, ok := tx.FindStartup(id)
			if !ok {
				return nil
			}
			out, err := tx.UpdateStartup(id, func(st *Startup) error {
				if err := mutator(st); err != nil {
					return err
				}
				// Profile edits cannot move the application machine.
				st.ApplicationStatus = current.ApplicationStatus
				return nil
			})
			if err != nil {
				return err
			}
			updated = out
			return nil
		})
		result = res
		return err
	})
	return updated, result, err
}

// UpdateStartupApplication records an evaluation outcome: the new
// application status plus the fit score and feedback produced by the
// screening step. Transitions outside the permitted machine fail.
func (s *Service) UpdateStartupApplication(ctx context.Context, startupID string, newStatus ApplicationStatus, fitScore *float64, feedback *string) (Startup, Result, error) {
	var (
		updated Startup
		result  Result
	)
	err := s.run(ctx, "update_startup_application", func(ctx context.Context) error {
		res, err := s.store.RunInTransaction(ctx, func(tx Transaction) error {
			current, ok := tx.FindStartup(startupID)
			if !ok {
				return ErrNotFound{Entity: EntityStartup, ID: startupID}
			}
			if !CanTransition(current.ApplicationStatus, newStatus) {
				return StateTransitionError{From: current.ApplicationStatus, To: newStatus}
			}
			out, err := tx.UpdateStartup(startupID, func(st *Startup) error {
				st.ApplicationStatus = newStatus
				if fitScore != nil {
					score := *fitScore
					st.FitScore = &score
				}
				if feedback != nil {
					text := *feedback
					st.AIFeedback = &text
				}
				if newStatus == ApplicationApproved {
					st.Status = StartupApproved
				}
				return nil
			})
			if err != nil {
				return err
			}
			updated = out
			_, err = tx.AppendActivity(ActivityLog{UserID: current.OwnerID, Event: "application_status_changed", Detail: string(newStatus)})
			return err
		})
		result = res
		return err
	})
	if err != nil {
		return Startup{}, result, err
	}
	return updated, result, nil
}

// SubmitStartupApplication moves a completed application into screening.
// Valid from NEEDS_COMPLETION (first submission) and REJECTED (resubmission).
func (s *Service) SubmitStartupApplication(ctx context.Context, startupID string) (Startup, Result, error) {
	var (
		updated Startup
		result  Result
	)
	err := s.run(ctx, "submit_startup_application", func(ctx context.Context) error {
		res, err := s.store.RunInTransaction(ctx, func(tx Transaction) error {
			current, ok := tx.FindStartup(startupID)
			if !ok {
				return ErrNotFound{Entity: EntityStartup, ID: startupID}
			}
			if !CanTransition(current.ApplicationStatus, ApplicationPendingScreening) {
				return StateTransitionError{From: current.ApplicationStatus, To: ApplicationPendingScreening}
			}
			out, err := tx.UpdateStartup(startupID, func(st *Startup) error {
				st.ApplicationStatus = ApplicationPendingScreening
				return nil
			})
			if err != nil {
				return err
			}
			updated = out
			_, err = tx.AppendActivity(ActivityLog{UserID: current.OwnerID, Event: "application_submitted", Detail: current.Name})
			return err
		})
		result = res
		return err
	})
	if err != nil {
		return Startup{}, result, err
	}
	return updated, result, nil
}

// GetStartup retrieves a startup by id from committed state.
func (s *Service) GetStartup(id string) (Startup, bool) {
	return s.store.GetStartup(id)
}

// GetAllStartups lists all startups.
func (s *Service) GetAllStartups() []Startup {
	return s.store.ListStartups()
}

// FindStartupByOwner resolves the startup owned by a user, if any.
func (s *Service) FindStartupByOwner(ctx context.Context, ownerID string) (Startup, bool, error) {
	var (
		startup Startup
		found   bool
	)
	err := s.view(ctx, func(view domain.TransactionView) error {
		startup, found = view.FindStartupByOwner(ownerID)
		return nil
	})
	if err != nil {
		return Startup{}, false, err
	}
	return startup, found, nil
}
