package domain

import "context"

// Transaction exposes the domain operations that a persistence implementation
// must support within an atomic scope. All mutations made through a single
// Transaction commit together or not at all.
type Transaction interface {
	Snapshot() TransactionView
	CreateUser(User) (User, error)
	UpdateUser(id string, mutator func(*User) error) (User, error)
	CreateStartup(Startup) (Startup, error)
	UpdateStartup(id string, mutator func(*Startup) error) (Startup, error)
	CreatePartnerProfile(PartnerProfile) (PartnerProfile, error)
	UpdatePartnerProfile(id string, mutator func(*PartnerProfile) error) (PartnerProfile, error)
	CreateTask(TaskRecord) (TaskRecord, error)
	UpdateTask(id string, mutator func(*TaskRecord) error) (TaskRecord, error)
	CreateServiceRequest(ServiceRequest) (ServiceRequest, error)
	UpdateServiceRequest(id string, mutator func(*ServiceRequest) error) (ServiceRequest, error)
	PutProgramRating(ProgramRating) (ProgramRating, error)
	AppendActivity(ActivityLog) (ActivityLog, error)
	SetSession(Session) Session
	ClearSession()
	FindUser(id string) (User, bool)
	FindUserByEmail(email string) (User, bool)
	FindStartup(id string) (Startup, bool)
	FindStartupByOwner(ownerID string) (Startup, bool)
	FindPartnerProfileByUser(userID string) (PartnerProfile, bool)
	FindTask(id string) (TaskRecord, bool)
	FindServiceRequest(id string) (ServiceRequest, bool)
}

// TransactionView provides read-only access to snapshot data for rules and
// derived aggregation helpers.
type TransactionView interface {
	ListUsers() []User
	ListStartups() []Startup
	ListPartnerProfiles() []PartnerProfile
	ListTasks() []TaskRecord
	ListServiceRequests() []ServiceRequest
	ListActivity() []ActivityLog
	FindUser(id string) (User, bool)
	FindUserByEmail(email string) (User, bool)
	FindStartup(id string) (Startup, bool)
	FindStartupByOwner(ownerID string) (Startup, bool)
	FindPartnerProfileByUser(userID string) (PartnerProfile, bool)
	FindTask(id string) (TaskRecord, bool)
	FindProgramRating(userID string) (ProgramRating, bool)
	Session() (Session, bool)
}

// PersistentStore is a minimal abstraction over durable backends. It mirrors
// the subset of store capabilities used directly by higher layers.
type PersistentStore interface {
	RunInTransaction(ctx context.Context, fn func(Transaction) error) (Result, error)
	View(ctx context.Context, fn func(TransactionView) error) error
	GetUser(id string) (User, bool)
	ListUsers() []User
	GetStartup(id string) (Startup, bool)
	ListStartups() []Startup
	ListPartnerProfiles() []PartnerProfile
	ListTasks() []TaskRecord
	ListServiceRequests() []ServiceRequest
	Session() (Session, bool)
}
