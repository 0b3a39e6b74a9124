package core

import "venturecore/pkg/domain"

type (
	EntityType         = domain.EntityType
	Role               = domain.Role
	StartupStatus      = domain.StartupStatus
	ApplicationStatus  = domain.ApplicationStatus
	TaskStatus         = domain.TaskStatus
	RequestStatus      = domain.RequestStatus
	Severity           = domain.Severity
	Base               = domain.Base
	User               = domain.User
	Startup            = domain.Startup
	StartupMetrics     = domain.StartupMetrics
	PartnerProfile     = domain.PartnerProfile
	TaskRecord         = domain.TaskRecord
	TaskSubmission     = domain.TaskSubmission
	TaskReview         = domain.TaskReview
	ServiceRequest     = domain.ServiceRequest
	ProgramRating      = domain.ProgramRating
	ActivityLog        = domain.ActivityLog
	Session            = domain.Session
	Change             = domain.Change
	Action             = domain.Action
	Violation          = domain.Violation
	Result             = domain.Result
	RulesEngine        = domain.RulesEngine
	Rule               = domain.Rule
	RuleViolationError = domain.RuleViolationError
	Transaction        = domain.Transaction
	TransactionView    = domain.TransactionView
	PersistentStore    = domain.PersistentStore
)

const (
	EntityUser           = domain.EntityUser
	EntityStartup        = domain.EntityStartup
	EntityPartnerProfile = domain.EntityPartnerProfile
	EntityTask           = domain.EntityTask
	EntityServiceRequest = domain.EntityServiceRequest
	EntityProgramRating  = domain.EntityProgramRating
	EntityActivity       = domain.EntityActivity
	EntitySession        = domain.EntitySession
)

const (
	RoleStartup = domain.RoleStartup
	RolePartner = domain.RolePartner
	RoleMentor  = domain.RoleMentor
	RoleAdmin   = domain.RoleAdmin
)

const (
	StartupPending  = domain.StartupPending
	StartupApproved = domain.StartupApproved
	StartupStalled  = domain.StartupStalled
)

const (
	ApplicationNeedsCompletion  = domain.ApplicationNeedsCompletion
	ApplicationPendingScreening = domain.ApplicationPendingScreening
	ApplicationReviewRequired   = domain.ApplicationReviewRequired
	ApplicationApproved         = domain.ApplicationApproved
	ApplicationRejected         = domain.ApplicationRejected
)

const (
	TaskLocked    = domain.TaskLocked
	TaskAssigned  = domain.TaskAssigned
	TaskSubmitted = domain.TaskSubmitted
	TaskApproved  = domain.TaskApproved
	TaskRejected  = domain.TaskRejected
)

const (
	RequestPending   = domain.RequestPending
	RequestCompleted = domain.RequestCompleted
)

const (
	SeverityBlock = domain.SeverityBlock
	SeverityWarn  = domain.SeverityWarn
	SeverityLog   = domain.SeverityLog
)

const (
	ActionCreate = domain.ActionCreate
	ActionUpdate = domain.ActionUpdate
	ActionDelete = domain.ActionDelete
)
