package core

import "venturecore/pkg/domain"

// applicationTransitions is the permitted application-status machine.
// ConvertToPartner resets the status laterally and deliberately bypasses
// this table; everything else goes through CanTransition.
var applicationTransitions = map[domain.ApplicationStatus][]domain.ApplicationStatus{
	domain.ApplicationNeedsCompletion: {
		domain.ApplicationPendingScreening,
	},
	domain.ApplicationPendingScreening: {
		domain.ApplicationApproved,
		domain.ApplicationRejected,
		domain.ApplicationNeedsCompletion,
		domain.ApplicationReviewRequired,
	},
	domain.ApplicationReviewRequired: {
		domain.ApplicationApproved,
		domain.ApplicationRejected,
		domain.ApplicationNeedsCompletion,
	},
	domain.ApplicationRejected: {
		domain.ApplicationPendingScreening,
	},
}

// CanTransition reports whether the application status may move from one
// state to the other. APPROVED is terminal.
func CanTransition(from, to domain.ApplicationStatus) bool {
	for _, allowed := range applicationTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}
