// Package memory provides an in-memory implementation of the core persistence
// store used for tests and ephemeral environments.
package memory

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"venturecore/pkg/domain"
)

// Compile-time contract assertion ensuring memory.Store adheres to the domain persistence interfaces.
var _ domain.PersistentStore = (*Store)(nil)

type (
	// User aliases domain.User for in-memory persistence operations.
	User = domain.User
	// Startup aliases domain.Startup.
	Startup = domain.Startup
	// PartnerProfile aliases domain.PartnerProfile.
	PartnerProfile = domain.PartnerProfile
	// TaskRecord aliases domain.TaskRecord.
	TaskRecord = domain.TaskRecord
	// ServiceRequest aliases domain.ServiceRequest.
	ServiceRequest = domain.ServiceRequest
	// ProgramRating aliases domain.ProgramRating.
	ProgramRating = domain.ProgramRating
	// ActivityLog aliases domain.ActivityLog.
	ActivityLog = domain.ActivityLog
	// Session aliases domain.Session.
	Session = domain.Session
	// Change aliases domain.Change captured in transactions.
	Change = domain.Change
	// Result aliases domain.Result summarizing rule evaluation.
	Result = domain.Result
	// RulesEngine aliases domain.RulesEngine used to evaluate rules.
	RulesEngine = domain.RulesEngine
	// Transaction aliases domain.Transaction representing a mutable unit of work.
	Transaction = domain.Transaction
	// TransactionView aliases domain.TransactionView providing read-only state.
	TransactionView = domain.TransactionView
	// PersistentStore aliases domain.PersistentStore abstraction.
	PersistentStore = domain.PersistentStore
)

type memoryState struct {
	users    map[string]User
	startups map[string]Startup
	partners map[string]PartnerProfile
	tasks    map[string]TaskRecord
	requests map[string]ServiceRequest
	ratings  map[string]ProgramRating
	activity []ActivityLog
	session  *Session
}

// Snapshot captures a point-in-time clone of the store state. The JSON keys
// are the persisted collection names consumed by every client of the store.
type Snapshot struct {
	Users    map[string]User           `json:"users"`
	Startups map[string]Startup        `json:"startups"`
	Partners map[string]PartnerProfile `json:"partners"`
	Tasks    map[string]TaskRecord     `json:"tasks"`
	Requests map[string]ServiceRequest `json:"service_requests"`
	Ratings  map[string]ProgramRating  `json:"ratings"`
	Activity []ActivityLog             `json:"activity"`
	Session  *Session                  `json:"session,omitempty"`
}

func newMemoryState() memoryState {
	return memoryState{
		users:    make(map[string]User),
		startups: make(map[string]Startup),
		partners: make(map[string]PartnerProfile),
		tasks:    make(map[string]TaskRecord),
		requests: make(map[string]ServiceRequest),
		ratings:  make(map[string]ProgramRating),
	}
}

func snapshotFromMemoryState(state memoryState) Snapshot {
	s := Snapshot{
		Users:    make(map[string]User, len(state.users)),
		Startups: make(map[string]Startup, len(state.startups)),
		Partners: make(map[string]PartnerProfile, len(state.partners)),
		Tasks:    make(map[string]TaskRecord, len(state.tasks)),
		Requests: make(map[string]ServiceRequest, len(state.requests)),
		Ratings:  make(map[string]ProgramRating, len(state.ratings)),
	}
	for k, v := range state.users {
		s.Users[k] = cloneUser(v)
	}
	for k, v := range state.startups {
		s.Startups[k] = cloneStartup(v)
	}
	for k, v := range state.partners {
		s.Partners[k] = clonePartner(v)
	}
	for k, v := range state.tasks {
		s.Tasks[k] = cloneTask(v)
	}
	for k, v := range state.requests {
		s.Requests[k] = cloneRequest(v)
	}
	for k, v := range state.ratings {
		s.Ratings[k] = v
	}
	s.Activity = append([]ActivityLog(nil), state.activity...)
	if state.session != nil {
		s.Session = cloneSessionPtr(state.session)
	}
	return s
}

func memoryStateFromSnapshot(s Snapshot) memoryState {
	state := newMemoryState()
	for k, v := range s.Users {
		state.users[k] = cloneUser(v)
	}
	for k, v := range s.Startups {
		state.startups[k] = cloneStartup(v)
	}
	for k, v := range s.Partners {
		state.partners[k] = clonePartner(v)
	}
	for k, v := range s.Tasks {
		state.tasks[k] = cloneTask(v)
	}
	for k, v := range s.Requests {
		state.requests[k] = cloneRequest(v)
	}
	for k, v := range s.Ratings {
		state.ratings[k] = v
	}
	state.activity = append([]ActivityLog(nil), s.Activity...)
	if s.Session != nil {
		state.session = cloneSessionPtr(s.Session)
	}
	return state
}

// migrateSnapshot repairs referential drift in snapshots produced by earlier
// writers: records pointing at users that no longer exist are dropped, the
// session is cleared when its user is gone, and duplicate emails keep the
// oldest row.
func migrateSnapshot(snapshot Snapshot) Snapshot {
	if snapshot.Users == nil {
		snapshot.Users = map[string]User{}
	}
	if snapshot.Startups == nil {
		snapshot.Startups = map[string]Startup{}
	}
	if snapshot.Partners == nil {
		snapshot.Partners = map[string]PartnerProfile{}
	}
	if snapshot.Tasks == nil {
		snapshot.Tasks = map[string]TaskRecord{}
	}
	if snapshot.Requests == nil {
		snapshot.Requests = map[string]ServiceRequest{}
	}
	if snapshot.Ratings == nil {
		snapshot.Ratings = map[string]ProgramRating{}
	}

	userExists := func(id string) bool {
		_, ok := snapshot.Users[id]
		return ok
	}

	// Duplicate emails keep the oldest row; identical timestamps break the
	// tie on ID so repeated imports pick the same survivor. Rows without an
	// email are never collapsed into each other.
	byEmail := make(map[string]User, len(snapshot.Users))
	for _, user := range snapshot.Users {
		key := normalizeEmail(user.Email)
		if key == "" {
			continue
		}
		kept, ok := byEmail[key]
		if !ok || user.CreatedAt.Before(kept.CreatedAt) ||
			(user.CreatedAt.Equal(kept.CreatedAt) && user.ID < kept.ID) {
			byEmail[key] = user
		}
	}
	for id, user := range snapshot.Users {
		key := normalizeEmail(user.Email)
		if key == "" {
			continue
		}
		if kept := byEmail[key]; kept.ID != id {
			delete(snapshot.Users, id)
		}
	}

	for id, startup := range snapshot.Startups {
		if startup.OwnerID == "" || !userExists(startup.OwnerID) {
			delete(snapshot.Startups, id)
			continue
		}
		startup.PartnerIDs = filterIDs(startup.PartnerIDs, userExists)
		snapshot.Startups[id] = startup
	}

	for id, partner := range snapshot.Partners {
		if partner.UserID == "" || !userExists(partner.UserID) {
			delete(snapshot.Partners, id)
		}
	}

	for id, task := range snapshot.Tasks {
		if task.UserID == "" || !userExists(task.UserID) {
			delete(snapshot.Tasks, id)
		}
	}

	for id, request := range snapshot.Requests {
		if request.UserID == "" || !userExists(request.UserID) {
			delete(snapshot.Requests, id)
		}
	}

	for userID := range snapshot.Ratings {
		if !userExists(userID) {
			delete(snapshot.Ratings, userID)
		}
	}

	if snapshot.Session != nil && !userExists(snapshot.Session.UserID) {
		snapshot.Session = nil
	}

	return snapshot
}

func (s memoryState) clone() memoryState {
	cloned := newMemoryState()
	for k, v := range s.users {
		cloned.users[k] = cloneUser(v)
	}
	for k, v := range s.startups {
		cloned.startups[k] = cloneStartup(v)
	}
	for k, v := range s.partners {
		cloned.partners[k] = clonePartner(v)
	}
	for k, v := range s.tasks {
		cloned.tasks[k] = cloneTask(v)
	}
	for k, v := range s.requests {
		cloned.requests[k] = cloneRequest(v)
	}
	for k, v := range s.ratings {
		cloned.ratings[k] = v
	}
	cloned.activity = append([]ActivityLog(nil), s.activity...)
	if s.session != nil {
		cloned.session = cloneSessionPtr(s.session)
	}
	return cloned
}

func cloneUser(u User) User {
	cp := u
	cp.EarnedBadges = append([]string(nil), u.EarnedBadges...)
	return cp
}

func cloneStartup(st Startup) Startup {
	cp := st
	cp.PartnerIDs = append([]string(nil), st.PartnerIDs...)
	if st.FitScore != nil {
		score := *st.FitScore
		cp.FitScore = &score
	}
	if st.AIFeedback != nil {
		feedback := *st.AIFeedback
		cp.AIFeedback = &feedback
	}
	return cp
}

func clonePartner(p PartnerProfile) PartnerProfile {
	cp := p
	cp.Skills = append([]string(nil), p.Skills...)
	return cp
}

func cloneTask(t TaskRecord) TaskRecord {
	cp := t
	if t.Submission != nil {
		sub := *t.Submission
		cp.Submission = &sub
	}
	if t.AIReview != nil {
		review := *t.AIReview
		cp.AIReview = &review
	}
	return cp
}

func cloneRequest(r ServiceRequest) ServiceRequest { return r }

func cloneSessionPtr(s *Session) *Session {
	cp := *s
	if s.ProjectID != nil {
		project := *s.ProjectID
		cp.ProjectID = &project
	}
	return &cp
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func filterIDs(values []string, exists func(string) bool) []string {
	if len(values) == 0 {
		return nil
	}
	out := make([]string, 0, len(values))
	seen := make(map[string]struct{}, len(values))
	for _, v := range values {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		if !exists(v) {
			continue
		}
		out = append(out, v)
	}
	return out
}

// Store provides an in-memory transactional store for the core domain.
type Store struct {
	mu     sync.RWMutex
	state  memoryState
	engine *RulesEngine
	nowFn  func() time.Time
}

// NewStore constructs an in-memory store backed by the provided rules engine.
func NewStore(engine *RulesEngine) *Store {
	if engine == nil {
		engine = domain.NewRulesEngine()
	}
	return &Store{
		state:  newMemoryState(),
		engine: engine,
		nowFn:  func() time.Time { return time.Now().UTC() },
	}
}

func (s *Store) newID() string {
	var b [16]byte
	if _, err := rand.Read(b[:]); err != nil {
		panic(err)
	}
	return hex.EncodeToString(b[:])
}

// ExportState clones the current store state for external persistence.
func (s *Store) ExportState() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return snapshotFromMemoryState(s.state)
}

// ImportState replaces the store state with the provided snapshot.
func (s *Store) ImportState(snapshot Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = memoryStateFromSnapshot(migrateSnapshot(snapshot))
}

// RulesEngine exposes the currently configured engine for integration points.
func (s *Store) RulesEngine() *RulesEngine {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.engine
}

// SetNowFunc overrides the time provider. Intended for tests.
func (s *Store) SetNowFunc(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if now != nil {
		s.nowFn = now
	}
}

// transaction represents a mutation set applied to the store state.
type transaction struct {
	store   *Store
	state   memoryState
	changes []Change
	now     time.Time
}

// transactionView exposes a read-only snapshot of the transactional state to
// rules and aggregation helpers.
type transactionView struct {
	state *memoryState
}

func newTransactionView(state *memoryState) TransactionView {
	return transactionView{state: state}
}

// ListUsers returns all users within the transaction snapshot.
func (v transactionView) ListUsers() []User {
	out := make([]User, 0, len(v.state.users))
	for _, u := range v.state.users {
		out = append(out, cloneUser(u))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// ListStartups returns all startups in the snapshot.
func (v transactionView) ListStartups() []Startup {
	out := make([]Startup, 0, len(v.state.startups))
	for _, st := range v.state.startups {
		out = append(out, cloneStartup(st))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// ListPartnerProfiles returns all partner profiles in the snapshot.
func (v transactionView) ListPartnerProfiles() []PartnerProfile {
	out := make([]PartnerProfile, 0, len(v.state.partners))
	for _, p := range v.state.partners {
		out = append(out, clonePartner(p))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// ListTasks returns all task records in the snapshot.
func (v transactionView) ListTasks() []TaskRecord {
	out := make([]TaskRecord, 0, len(v.state.tasks))
	for _, t := range v.state.tasks {
		out = append(out, cloneTask(t))
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].UserID != out[j].UserID {
			return out[i].UserID < out[j].UserID
		}
		return out[i].LevelID < out[j].LevelID
	})
	return out
}

// ListServiceRequests returns all service requests in the snapshot.
func (v transactionView) ListServiceRequests() []ServiceRequest {
	out := make([]ServiceRequest, 0, len(v.state.requests))
	for _, r := range v.state.requests {
		out = append(out, cloneRequest(r))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out
}

// ListActivity returns the append-only activity log.
func (v transactionView) ListActivity() []ActivityLog {
	return append([]ActivityLog(nil), v.state.activity...)
}

// FindUser retrieves a user by ID from the snapshot.
func (v transactionView) FindUser(id string) (User, bool) {
	u, ok := v.state.users[id]
	if !ok {
		return User{}, false
	}
	return cloneUser(u), true
}

// FindUserByEmail retrieves a user by case-insensitive email match. When
// duplicates exist the oldest row wins.
func (v transactionView) FindUserByEmail(email string) (User, bool) {
	return findUserByEmail(*v.state, email)
}

// FindStartup retrieves a startup by project ID from the snapshot.
func (v transactionView) FindStartup(id string) (Startup, bool) {
	st, ok := v.state.startups[id]
	if !ok {
		return Startup{}, false
	}
	return cloneStartup(st), true
}

// FindStartupByOwner retrieves the startup owned by the given user.
func (v transactionView) FindStartupByOwner(ownerID string) (Startup, bool) {
	return findStartupByOwner(*v.state, ownerID)
}

// FindPartnerProfileByUser retrieves the partner profile attached to a user.
func (v transactionView) FindPartnerProfileByUser(userID string) (PartnerProfile, bool) {
	return findPartnerByUser(*v.state, userID)
}

// FindTask retrieves a task record by ID from the snapshot.
func (v transactionView) FindTask(id string) (TaskRecord, bool) {
	t, ok := v.state.tasks[id]
	if !ok {
		return TaskRecord{}, false
	}
	return cloneTask(t), true
}

// FindProgramRating retrieves the rating slot for a user.
func (v transactionView) FindProgramRating(userID string) (ProgramRating, bool) {
	r, ok := v.state.ratings[userID]
	return r, ok
}

// Session returns the active session pointer, if any.
func (v transactionView) Session() (Session, bool) {
	if v.state.session == nil {
		return Session{}, false
	}
	return *cloneSessionPtr(v.state.session), true
}

func findUserByEmail(state memoryState, email string) (User, bool) {
	key := normalizeEmail(email)
	var match User
	found := false
	for _, u := range state.users {
		if normalizeEmail(u.Email) != key {
			continue
		}
		if !found || u.CreatedAt.Before(match.CreatedAt) {
			match = u
			found = true
		}
	}
	if !found {
		return User{}, false
	}
	return cloneUser(match), true
}

func findStartupByOwner(state memoryState, ownerID string) (Startup, bool) {
	for _, st := range state.startups {
		if st.OwnerID == ownerID {
			return cloneStartup(st), true
		}
	}
	return Startup{}, false
}

func findPartnerByUser(state memoryState, userID string) (PartnerProfile, bool) {
	for _, p := range state.partners {
		if p.UserID == userID {
			return clonePartner(p), true
		}
	}
	return PartnerProfile{}, false
}

// RunInTransaction executes fn within a transactional copy of the store state.
// The copy is committed only after fn succeeds and no registered rule blocks.
func (s *Store) RunInTransaction(ctx context.Context, fn func(tx Transaction) error) (Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx := &transaction{
		store: s,
		state: s.state.clone(),
		now:   s.nowFn(),
	}

	if err := fn(tx); err != nil {
		return Result{}, err
	}

	var result Result
	if s.engine != nil {
		view := newTransactionView(&tx.state)
		res, err := s.engine.Evaluate(ctx, view, tx.changes)
		if err != nil {
			return Result{}, err
		}
		result = res
		if res.HasBlocking() {
			return res, domain.RuleViolationError{Result: res}
		}
	}

	s.state = tx.state
	return result, nil
}

// View executes fn against a read-only snapshot of the store state.
func (s *Store) View(_ context.Context, fn func(TransactionView) error) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snapshot := s.state.clone()
	view := newTransactionView(&snapshot)
	return fn(view)
}

func (tx *transaction) recordChange(change Change) {
	tx.changes = append(tx.changes, change)
}

// Snapshot returns a read-only view over the transactional state.
func (tx *transaction) Snapshot() TransactionView {
	return newTransactionView(&tx.state)
}

// FindUser exposes user lookup within the transaction scope.
func (tx *transaction) FindUser(id string) (User, bool) {
	u, ok := tx.state.users[id]
	if !ok {
		return User{}, false
	}
	return cloneUser(u), true
}

// FindUserByEmail exposes email lookup within the transaction scope.
func (tx *transaction) FindUserByEmail(email string) (User, bool) {
	return findUserByEmail(tx.state, email)
}

// FindStartup exposes startup lookup within the transaction scope.
func (tx *transaction) FindStartup(id string) (Startup, bool) {
	st, ok := tx.state.startups[id]
	if !ok {
		return Startup{}, false
	}
	return cloneStartup(st), true
}

// FindStartupByOwner exposes ownership lookup within the transaction scope.
func (tx *transaction) FindStartupByOwner(ownerID string) (Startup, bool) {
	return findStartupByOwner(tx.state, ownerID)
}

// FindPartnerProfileByUser exposes partner profile lookup within the transaction scope.
func (tx *transaction) FindPartnerProfileByUser(userID string) (PartnerProfile, bool) {
	return findPartnerByUser(tx.state, userID)
}

// FindTask exposes task lookup within the transaction scope.
func (tx *transaction) FindTask(id string) (TaskRecord, bool) {
	t, ok := tx.state.tasks[id]
	if !ok {
		return TaskRecord{}, false
	}
	return cloneTask(t), true
}

// FindServiceRequest exposes request lookup within the transaction scope.
func (tx *transaction) FindServiceRequest(id string) (ServiceRequest, bool) {
	r, ok := tx.state.requests[id]
	if !ok {
		return ServiceRequest{}, false
	}
	return cloneRequest(r), true
}

// CreateUser stores a new user within the transaction.
func (tx *transaction) CreateUser(u User) (User, error) {
	if u.ID == "" {
		u.ID = tx.store.newID()
	}
	if _, exists := tx.state.users[u.ID]; exists {
		return User{}, fmt.Errorf("user %q already exists", u.ID)
	}
	u.CreatedAt = tx.now
	u.UpdatedAt = tx.now
	tx.state.users[u.ID] = cloneUser(u)
	tx.recordChange(Change{Entity: domain.EntityUser, Action: domain.ActionCreate, After: cloneUser(u)})
	return cloneUser(u), nil
}

// UpdateUser mutates a user using the provided mutator function.
func (tx *transaction) UpdateUser(id string, mutator func(*User) error) (User, error) {
	current, ok := tx.state.users[id]
	if !ok {
		return User{}, fmt.Errorf("user %q not found", id)
	}
	before := cloneUser(current)
	if err := mutator(&current); err != nil {
		return User{}, err
	}
	current.ID = id
	current.UpdatedAt = tx.now
	tx.state.users[id] = cloneUser(current)
	tx.recordChange(Change{Entity: domain.EntityUser, Action: domain.ActionUpdate, Before: before, After: cloneUser(current)})
	return cloneUser(current), nil
}

// CreateStartup stores a new startup project.
func (tx *transaction) CreateStartup(st Startup) (Startup, error) {
	if st.ID == "" {
		st.ID = tx.store.newID()
	}
	if _, exists := tx.state.startups[st.ID]; exists {
		return Startup{}, fmt.Errorf("startup %q already exists", st.ID)
	}
	st.CreatedAt = tx.now
	st.UpdatedAt = tx.now
	tx.state.startups[st.ID] = cloneStartup(st)
	tx.recordChange(Change{Entity: domain.EntityStartup, Action: domain.ActionCreate, After: cloneStartup(st)})
	return cloneStartup(st), nil
}

// UpdateStartup mutates an existing startup.
func (tx *transaction) UpdateStartup(id string, mutator func(*Startup) error) (Startup, error) {
	current, ok := tx.state.startups[id]
	if !ok {
		return Startup{}, fmt.Errorf("startup %q not found", id)
	}
	before := cloneStartup(current)
	if err := mutator(&current); err != nil {
		return Startup{}, err
	}
	current.ID = id
	current.UpdatedAt = tx.now
	tx.state.startups[id] = cloneStartup(current)
	tx.recordChange(Change{Entity: domain.EntityStartup, Action: domain.ActionUpdate, Before: before, After: cloneStartup(current)})
	return cloneStartup(current), nil
}

// CreatePartnerProfile stores a new partner profile.
func (tx *transaction) CreatePartnerProfile(p PartnerProfile) (PartnerProfile, error) {
	if p.ID == "" {
		p.ID = tx.store.newID()
	}
	if _, exists := tx.state.partners[p.ID]; exists {
		return PartnerProfile{}, fmt.Errorf("partner profile %q already exists", p.ID)
	}
	p.CreatedAt = tx.now
	p.UpdatedAt = tx.now
	tx.state.partners[p.ID] = clonePartner(p)
	tx.recordChange(Change{Entity: domain.EntityPartnerProfile, Action: domain.ActionCreate, After: clonePartner(p)})
	return clonePartner(p), nil
}

// UpdatePartnerProfile mutates an existing partner profile.
func (tx *transaction) UpdatePartnerProfile(id string, mutator func(*PartnerProfile) error) (PartnerProfile, error) {
	current, ok := tx.state.partners[id]
	if !ok {
		return PartnerProfile{}, fmt.Errorf("partner profile %q not found", id)
	}
	before := clonePartner(current)
	if err := mutator(&current); err != nil {
		return PartnerProfile{}, err
	}
	current.ID = id
	current.UpdatedAt = tx.now
	tx.state.partners[id] = clonePartner(current)
	tx.recordChange(Change{Entity: domain.EntityPartnerProfile, Action: domain.ActionUpdate, Before: before, After: clonePartner(current)})
	return clonePartner(current), nil
}

// CreateTask stores a new task record.
func (tx *transaction) CreateTask(t TaskRecord) (TaskRecord, error) {
	if t.ID == "" {
		t.ID = tx.store.newID()
	}
	if _, exists := tx.state.tasks[t.ID]; exists {
		return TaskRecord{}, fmt.Errorf("task %q already exists", t.ID)
	}
	t.CreatedAt = tx.now
	t.UpdatedAt = tx.now
	tx.state.tasks[t.ID] = cloneTask(t)
	tx.recordChange(Change{Entity: domain.EntityTask, Action: domain.ActionCreate, After: cloneTask(t)})
	return cloneTask(t), nil
}

// UpdateTask mutates an existing task record.
func (tx *transaction) UpdateTask(id string, mutator func(*TaskRecord) error) (TaskRecord, error) {
	current, ok := tx.state.tasks[id]
	if !ok {
		return TaskRecord{}, fmt.Errorf("task %q not found", id)
	}
	before := cloneTask(current)
	if err := mutator(&current); err != nil {
		return TaskRecord{}, err
	}
	current.ID = id
	current.UpdatedAt = tx.now
	tx.state.tasks[id] = cloneTask(current)
	tx.recordChange(Change{Entity: domain.EntityTask, Action: domain.ActionUpdate, Before: before, After: cloneTask(current)})
	return cloneTask(current), nil
}

// CreateServiceRequest stores a new service request.
func (tx *transaction) CreateServiceRequest(r ServiceRequest) (ServiceRequest, error) {
	if r.ID == "" {
		r.ID = tx.store.newID()
	}
	if _, exists := tx.state.requests[r.ID]; exists {
		return ServiceRequest{}, fmt.Errorf("service request %q already exists", r.ID)
	}
	r.CreatedAt = tx.now
	r.UpdatedAt = tx.now
	tx.state.requests[r.ID] = cloneRequest(r)
	tx.recordChange(Change{Entity: domain.EntityServiceRequest, Action: domain.ActionCreate, After: cloneRequest(r)})
	return cloneRequest(r), nil
}

// UpdateServiceRequest mutates an existing service request.
func (tx *transaction) UpdateServiceRequest(id string, mutator func(*ServiceRequest) error) (ServiceRequest, error) {
	current, ok := tx.state.requests[id]
	if !ok {
		return ServiceRequest{}, fmt.Errorf("service request %q not found", id)
	}
	before := cloneRequest(current)
	if err := mutator(&current); err != nil {
		return ServiceRequest{}, err
	}
	current.ID = id
	current.UpdatedAt = tx.now
	tx.state.requests[id] = cloneRequest(current)
	tx.recordChange(Change{Entity: domain.EntityServiceRequest, Action: domain.ActionUpdate, Before: before, After: cloneRequest(current)})
	return cloneRequest(current), nil
}

// PutProgramRating writes the per-user rating slot, overwriting any previous value.
func (tx *transaction) PutProgramRating(r ProgramRating) (ProgramRating, error) {
	if r.UserID == "" {
		return ProgramRating{}, fmt.Errorf("program rating requires user id")
	}
	previous, existed := tx.state.ratings[r.UserID]
	if existed {
		r.RatedAt = previous.RatedAt
	} else {
		r.RatedAt = tx.now
	}
	r.UpdatedAt = tx.now
	tx.state.ratings[r.UserID] = r
	change := Change{Entity: domain.EntityProgramRating, Action: domain.ActionCreate, After: r}
	if existed {
		change.Action = domain.ActionUpdate
		change.Before = previous
	}
	tx.recordChange(change)
	return r, nil
}

// AppendActivity appends an audit entry to the activity log.
func (tx *transaction) AppendActivity(entry ActivityLog) (ActivityLog, error) {
	if entry.ID == "" {
		entry.ID = tx.store.newID()
	}
	if entry.OccurredAt.IsZero() {
		entry.OccurredAt = tx.now
	}
	tx.state.activity = append(tx.state.activity, entry)
	tx.recordChange(Change{Entity: domain.EntityActivity, Action: domain.ActionCreate, After: entry})
	return entry, nil
}

// SetSession replaces the singleton session pointer.
func (tx *transaction) SetSession(sess Session) Session {
	if sess.StartedAt.IsZero() {
		sess.StartedAt = tx.now
	}
	var before any
	if tx.state.session != nil {
		before = *cloneSessionPtr(tx.state.session)
	}
	tx.state.session = cloneSessionPtr(&sess)
	tx.recordChange(Change{Entity: domain.EntitySession, Action: domain.ActionUpdate, Before: before, After: sess})
	return sess
}

// ClearSession removes the session pointer, if one is set.
func (tx *transaction) ClearSession() {
	if tx.state.session == nil {
		return
	}
	before := *cloneSessionPtr(tx.state.session)
	tx.state.session = nil
	tx.recordChange(Change{Entity: domain.EntitySession, Action: domain.ActionDelete, Before: before})
}

// Read helpers ---------------------------------------------------------------

// GetUser retrieves a user by ID from committed state.
func (s *Store) GetUser(id string) (User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.state.users[id]
	if !ok {
		return User{}, false
	}
	return cloneUser(u), true
}

// ListUsers returns all users from committed state.
func (s *Store) ListUsers() []User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]User, 0, len(s.state.users))
	for _, u := range s.state.users {
		out = append(out, cloneUser(u))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// GetStartup retrieves a startup by project ID.
func (s *Store) GetStartup(id string) (Startup, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st, ok := s.state.startups[id]
	if !ok {
		return Startup{}, false
	}
	return cloneStartup(st), true
}

// ListStartups returns all startups.
func (s *Store) ListStartups() []Startup {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Startup, 0, len(s.state.startups))
	for _, st := range s.state.startups {
		out = append(out, cloneStartup(st))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// ListPartnerProfiles returns all partner profiles.
func (s *Store) ListPartnerProfiles() []PartnerProfile {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]PartnerProfile, 0, len(s.state.partners))
	for _, p := range s.state.partners {
		out = append(out, clonePartner(p))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// ListTasks returns all task records.
func (s *Store) ListTasks() []TaskRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]TaskRecord, 0, len(s.state.tasks))
	for _, t := range s.state.tasks {
		out = append(out, cloneTask(t))
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].UserID != out[j].UserID {
			return out[i].UserID < out[j].UserID
		}
		return out[i].LevelID < out[j].LevelID
	})
	return out
}

// ListServiceRequests returns all service requests.
func (s *Store) ListServiceRequests() []ServiceRequest {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]ServiceRequest, 0, len(s.state.requests))
	for _, r := range s.state.requests {
		out = append(out, cloneRequest(r))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out
}

// Session returns the committed session pointer, if any.
func (s *Store) Session() (Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.state.session == nil {
		return Session{}, false
	}
	return *cloneSessionPtr(s.state.session), true
}
