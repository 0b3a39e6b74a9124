// Package domain defines the core persistent entities, value types, and
// rule evaluation primitives used by venturecore.
package domain

import "time"

// EntityType identifies the type of record stored in the core domain.
type EntityType string

// Supported entity type identifiers used in Change records and persistence buckets.
const (
	// EntityUser identifies an account record.
	EntityUser EntityType = "user"
	// EntityStartup identifies a startup project record.
	EntityStartup EntityType = "startup"
	// EntityPartnerProfile identifies a partner profile record.
	EntityPartnerProfile EntityType = "partner_profile"
	// EntityTask identifies a program task record.
	EntityTask EntityType = "task"
	// EntityServiceRequest identifies a service request record.
	EntityServiceRequest EntityType = "service_request"
	// EntityProgramRating identifies a per-user program rating slot.
	EntityProgramRating EntityType = "program_rating"
	// EntityActivity identifies an activity log entry.
	EntityActivity EntityType = "activity"
	// EntitySession identifies the singleton session pointer.
	EntitySession EntityType = "session"
)

// Role enumerates the account roles recognised by the accelerator program.
type Role string

// Account roles. Serialized values are part of the persisted contract.
const (
	RoleStartup Role = "STARTUP"
	RolePartner Role = "PARTNER"
	RoleMentor  Role = "MENTOR"
	RoleAdmin   Role = "ADMIN"
)

// StartupStatus enumerates the coarse program standing of a startup.
type StartupStatus string

// Program standing values for startups.
const (
	StartupPending  StartupStatus = "PENDING"
	StartupApproved StartupStatus = "APPROVED"
	StartupStalled  StartupStatus = "STALLED"
)

// ApplicationStatus enumerates the screening states of a startup application.
// Transitions are restricted; see the transition table in internal/core.
type ApplicationStatus string

// Application screening states.
const (
	// ApplicationNeedsCompletion routes the owner to the application-completion flow.
	ApplicationNeedsCompletion ApplicationStatus = "NEEDS_COMPLETION"
	// ApplicationPendingScreening awaits the external AI evaluation result.
	ApplicationPendingScreening ApplicationStatus = "PENDING_SCREENING"
	// ApplicationReviewRequired flags the application for human review.
	ApplicationReviewRequired ApplicationStatus = "REVIEW_REQUIRED"
	ApplicationApproved       ApplicationStatus = "APPROVED"
	ApplicationRejected       ApplicationStatus = "REJECTED"
)

// TaskStatus enumerates program task workflow states.
type TaskStatus string

// Task workflow states. Only the lowest level starts ASSIGNED; higher levels
// unlock as reviews approve the preceding level.
const (
	TaskLocked    TaskStatus = "LOCKED"
	TaskAssigned  TaskStatus = "ASSIGNED"
	TaskSubmitted TaskStatus = "SUBMITTED"
	TaskApproved  TaskStatus = "APPROVED"
	// TaskRejected is reserved for imported snapshots produced by external
	// tooling. In-process review rejections return the task to TaskAssigned
	// with the submission cleared so it can be resubmitted.
	TaskRejected TaskStatus = "REJECTED"
)

// RequestStatus enumerates service request fulfilment states.
type RequestStatus string

// Service request states.
const (
	RequestPending   RequestStatus = "PENDING"
	RequestCompleted RequestStatus = "COMPLETED"
)

// Severity captures rule outcomes.
type Severity string

// Rule evaluation severities determine commit behavior and logging.
const (
	// SeverityBlock blocks transaction commit.
	SeverityBlock Severity = "block"
	// SeverityWarn logs a warning but allows commit.
	SeverityWarn Severity = "warn"
	SeverityLog  Severity = "log"
)

// Base contains common fields for all domain records.
type Base struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// User represents a program account. The ID is the stable uid referenced by
// startups, partner profiles, tasks, requests, and the session pointer.
type User struct {
	Base
	FirstName    string   `json:"first_name"`
	LastName     string   `json:"last_name"`
	Email        string   `json:"email"`
	Phone        string   `json:"phone"`
	Role         Role     `json:"role"`
	EarnedBadges []string `json:"earned_badges"`
}

// StartupMetrics holds the self-reported traction figures on a startup profile.
type StartupMetrics struct {
	MonthlyRevenue float64 `json:"monthly_revenue"`
	UserCount      int     `json:"user_count"`
	GrowthRate     float64 `json:"growth_rate"`
}

// Startup represents a startup project owned by exactly one user. The ID is
// the project id referenced by the session pointer.
type Startup struct {
	Base
	OwnerID           string            `json:"owner_id"`
	Name              string            `json:"name"`
	Description       string            `json:"description"`
	Industry          string            `json:"industry"`
	Status            StartupStatus     `json:"status"`
	ApplicationStatus ApplicationStatus `json:"application_status"`
	FitScore          *float64          `json:"fit_score,omitempty"`
	AIFeedback        *string           `json:"ai_feedback,omitempty"`
	Metrics           StartupMetrics    `json:"metrics"`
	PartnerIDs        []string          `json:"partner_ids"`
}

// PartnerProfile captures the service-provider profile attached to a user.
// At most one profile exists per user.
type PartnerProfile struct {
	Base
	UserID            string   `json:"user_id"`
	Name              string   `json:"name"`
	Email             string   `json:"email"`
	PrimaryRole       string   `json:"primary_role"`
	ExperienceYears   int      `json:"experience_years"`
	Skills            []string `json:"skills"`
	AvailabilityHours int      `json:"availability_hours"`
}

// TaskSubmission records the payload a user attached when submitting a task.
type TaskSubmission struct {
	Payload     string    `json:"payload"`
	SubmittedAt time.Time `json:"submitted_at"`
}

// TaskReview records the evaluation result attached to a submitted task by
// the external review collaborator.
type TaskReview struct {
	Score      float64   `json:"score"`
	Feedback   string    `json:"feedback"`
	ReviewedAt time.Time `json:"reviewed_at"`
}

// TaskRecord represents one level of the program task ladder cloned per user
// at registration.
type TaskRecord struct {
	Base
	LevelID     int             `json:"level_id"`
	UserID      string          `json:"user_id"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Status      TaskStatus      `json:"status"`
	Submission  *TaskSubmission `json:"submission,omitempty"`
	AIReview    *TaskReview     `json:"ai_review,omitempty"`
}

// ServiceRequest represents a user's request for a packaged partner service.
// Append-only from the requesting user's perspective.
type ServiceRequest struct {
	Base
	UserID    string        `json:"user_id"`
	ServiceID string        `json:"service_id"`
	PackageID string        `json:"package_id"`
	Details   string        `json:"details"`
	Status    RequestStatus `json:"status"`
}

// ProgramRating is the per-user program feedback slot. Re-submission
// overwrites the previous rating.
type ProgramRating struct {
	UserID    string    `json:"user_id"`
	Score     int       `json:"score"`
	Comment   string    `json:"comment"`
	RatedAt   time.Time `json:"rated_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ActivityLog is an append-only audit entry recorded by repository operations.
type ActivityLog struct {
	ID         string    `json:"id"`
	UserID     string    `json:"user_id"`
	Event      string    `json:"event"`
	Detail     string    `json:"detail,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

// Session is the singleton pointer identifying the currently active user and,
// for startup owners, the derived project id. At most one session is live per
// store instance.
type Session struct {
	UserID    string    `json:"user_id"`
	ProjectID *string   `json:"project_id,omitempty"`
	StartedAt time.Time `json:"started_at"`
}

// Change describes a mutation applied to an entity during a transaction.
type Change struct {
	Entity EntityType
	Action Action
	Before any
	After  any
}

// Action indicates the type of modification performed.
type Action string

// Change actions enumerate supported mutations captured in the audit trail.
const (
	// ActionCreate indicates an entity was created.
	ActionCreate Action = "create"
	// ActionUpdate indicates an entity was updated.
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
)

// Violation reports a failed rule evaluation.
type Violation struct {
	Rule     string
	Severity Severity
	Message  string
	Entity   EntityType
	EntityID string
}

// Result aggregates violations from the rules engine.
type Result struct {
	Violations []Violation
}

// Merge appends violations from another result.
func (r *Result) Merge(other Result) {
	if len(other.Violations) == 0 {
		return
	}
	r.Violations = append(r.Violations, other.Violations...)
}

// HasBlocking returns true if the result contains blocking violations.
func (r Result) HasBlocking() bool {
	for _, v := range r.Violations {
		if v.Severity == SeverityBlock {
			return true
		}
	}
	return false
}

// RuleViolationError is returned when blocking violations are present.
type RuleViolationError struct {
	Result Result
}

func (e RuleViolationError) Error() string {
	return "transaction blocked by rules"
}
