package core

import (
	"context"
	"fmt"

	"venturecore/pkg/domain"
)

// RequestService appends a new PENDING service request for the user.
func (s *Service) RequestService(ctx context.Context, userID, serviceID, packageID, details string) (ServiceRequest, Result, error) {
	var (
		created ServiceRequest
		result  Result
	)
	err := s.run(ctx, "request_service", func(ctx context.Context) error {
		res, err := s.store.RunInTransaction(ctx, func(tx Transaction) error {
			if _, ok := tx.FindUser(userID); !ok {
				return ErrNotFound{Entity: EntityUser, ID: userID}
			}
			out, err := tx.CreateServiceRequest(ServiceRequest{
				UserID:    userID,
				ServiceID: serviceID,
				PackageID: packageID,
				Details:   details,
				Status:    RequestPending,
			})
			if err != nil {
				return err
			}
			created = out
			_, err = tx.AppendActivity(ActivityLog{UserID: userID, Event: "service_requested", Detail: serviceID})
			return err
		})
		result = res
		return err
	})
	if err != nil {
		return ServiceRequest{}, result, err
	}
	return created, result, nil
}

// CompleteServiceRequest marks a pending request fulfilled.
func (s *Service) CompleteServiceRequest(ctx context.Context, requestID string) (ServiceRequest, Result, error) {
	var (
		updated ServiceRequest
		result  Result
	)
	err := s.run(ctx, "complete_service_request", func(ctx context.Context) error {
		res, err := s.store.RunInTransaction(ctx, func(tx Transaction) error {
			current, ok := tx.FindServiceRequest(requestID)
			if !ok {
				return ErrNotFound{Entity: EntityServiceRequest, ID: requestID}
			}
			if current.Status == RequestCompleted {
				updated = current
				return nil
			}
			out, err := tx.UpdateServiceRequest(requestID, func(r *ServiceRequest) error {
				r.Status = RequestCompleted
				return nil
			})
			if err != nil {
				return err
			}
			updated = out
			_, err = tx.AppendActivity(ActivityLog{UserID: current.UserID, Event: "service_completed", Detail: current.ServiceID})
			return err
		})
		result = res
		return err
	})
	if err != nil {
		return ServiceRequest{}, result, err
	}
	return updated, result, nil
}

// GetUserServiceRequests lists a user's service requests, oldest first.
func (s *Service) GetUserServiceRequests(ctx context.Context, userID string) ([]ServiceRequest, error) {
	var requests []ServiceRequest
	err := s.view(ctx, func(view domain.TransactionView) error {
		for _, req := range view.ListServiceRequests() {
			if req.UserID == userID {
				requests = append(requests, req)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return requests, nil
}

// RateProgram writes the user's program rating slot, overwriting any
// previous rating. Scores run 1 through 5.
func (s *Service) RateProgram(ctx context.Context, userID string, score int, comment string) (ProgramRating, Result, error) {
	var (
		rating ProgramRating
		result Result
	)
	err := s.run(ctx, "rate_program", func(ctx context.Context) error {
		if score < 1 || score > 5 {
			return fmt.Errorf("program rating score %d out of range [1,5]", score)
		}
		res, err := s.store.RunInTransaction(ctx, func(tx Transaction) error {
			if _, ok := tx.FindUser(userID); !ok {
				return ErrNotFound{Entity: EntityUser, ID: userID}
			}
			out, err := tx.PutProgramRating(ProgramRating{UserID: userID, Score: score, Comment: comment})
			if err != nil {
				return err
			}
			rating = out
			_, err = tx.AppendActivity(ActivityLog{UserID: userID, Event: "program_rated", Detail: fmt.Sprintf("score=%d", score)})
			return err
		})
		result = res
		return err
	})
	if err != nil {
		return ProgramRating{}, result, err
	}
	return rating, result, nil
}

// ProgramRatingFor reads the user's rating slot, if set.
func (s *Service) ProgramRatingFor(ctx context.Context, userID string) (ProgramRating, bool, error) {
	var (
		rating ProgramRating
		found  bool
	)
	err := s.view(ctx, func(view domain.TransactionView) error {
		rating, found = view.FindProgramRating(userID)
		return nil
	})
	if err != nil {
		return ProgramRating{}, false, err
	}
	return rating, found, nil
}

// ActivityFor lists the audit entries recorded for a user, in append order.
func (s *Service) ActivityFor(ctx context.Context, userID string) ([]ActivityLog, error) {
	var entries []ActivityLog
	err := s.view(ctx, func(view domain.TransactionView) error {
		for _, entry := range view.ListActivity() {
			if entry.UserID == userID {
				entries = append(entries, entry)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return entries, nil
}
