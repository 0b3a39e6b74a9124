// Package sqlite provides a durable persistence backend that snapshots the
// in-memory store into a single-table SQLite database after every committed
// transaction.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"venturecore/internal/infra/persistence/memory"
	"venturecore/pkg/domain"

	_ "modernc.org/sqlite" // pure go sqlite driver
)

// Compile-time contract assertion ensuring the store satisfies the domain interface.
var _ domain.PersistentStore = (*Store)(nil)

// Store persists the in-memory state to a single SQLite table as JSON blobs.
// It snapshots the full state after every successful transaction.
type Store struct {
	*memory.Store
	db   *sql.DB
	mu   sync.Mutex
	path string
}

// NewStore constructs a snapshotting SQLite-backed persistent store.
func NewStore(path string, engine *domain.RulesEngine) (*Store, error) {
	if path == "" {
		path = "venturecore.db"
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil && !errors.Is(err, os.ErrExist) {
			return nil, fmt.Errorf("create dirs: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS state (
		bucket TEXT PRIMARY KEY,
		payload BLOB NOT NULL
	)`); err != nil {
		return nil, fmt.Errorf("create state table: %w", err)
	}
	mem := memory.NewStore(engine)
	s := &Store{Store: mem, db: db, path: path}
	if err := s.load(); err != nil {
		return nil, err
	}
	return s, nil
}

var sqliteBuckets = []string{"users", "startups", "partners", "tasks", "service_requests", "ratings", "activity", "session"}

func (s *Store) load() error {
	rows, err := s.db.Query(`SELECT bucket, payload FROM state`)
	if err != nil {
		return fmt.Errorf("select state: %w", err)
	}
	defer func() { _ = rows.Close() }()
	type raw struct {
		bucket  string
		payload []byte
	}
	var raws []raw
	for rows.Next() {
		var r raw
		if err := rows.Scan(&r.bucket, &r.payload); err != nil {
			return fmt.Errorf("scan: %w", err)
		}
		raws = append(raws, r)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate state: %w", err)
	}
	if len(raws) == 0 {
		return nil
	}
	snapshot := memory.Snapshot{}
	for _, r := range raws {
		switch r.bucket {
		case "users":
			if err := json.Unmarshal(r.payload, &snapshot.Users); err != nil {
				return fmt.Errorf("decode users: %w", err)
			}
		case "startups":
			if err := json.Unmarshal(r.payload, &snapshot.Startups); err != nil {
				return fmt.Errorf("decode startups: %w", err)
			}
		case "partners":
			if err := json.Unmarshal(r.payload, &snapshot.Partners); err != nil {
				return fmt.Errorf("decode partners: %w", err)
			}
		case "tasks":
			if err := json.Unmarshal(r.payload, &snapshot.Tasks); err != nil {
				return fmt.Errorf("decode tasks: %w", err)
			}
		case "service_requests":
			if err := json.Unmarshal(r.payload, &snapshot.Requests); err != nil {
				return fmt.Errorf("decode service requests: %w", err)
			}
		case "ratings":
			if err := json.Unmarshal(r.payload, &snapshot.Ratings); err != nil {
				return fmt.Errorf("decode ratings: %w", err)
			}
		case "activity":
			if err := json.Unmarshal(r.payload, &snapshot.Activity); err != nil {
				return fmt.Errorf("decode activity: %w", err)
			}
		case "session":
			if err := json.Unmarshal(r.payload, &snapshot.Session); err != nil {
				return fmt.Errorf("decode session: %w", err)
			}
		}
	}
	s.ImportState(snapshot)
	return nil
}

func (s *Store) persist() (retErr error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	snapshot := s.ExportState()
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer func() {
		if retErr != nil {
			_ = tx.Rollback()
		}
	}()
	for _, bucket := range sqliteBuckets {
		var data []byte
		switch bucket {
		case "users":
			data, err = json.Marshal(snapshot.Users)
		case "startups":
			data, err = json.Marshal(snapshot.Startups)
		case "partners":
			data, err = json.Marshal(snapshot.Partners)
		case "tasks":
			data, err = json.Marshal(snapshot.Tasks)
		case "service_requests":
			data, err = json.Marshal(snapshot.Requests)
		case "ratings":
			data, err = json.Marshal(snapshot.Ratings)
		case "activity":
			data, err = json.Marshal(snapshot.Activity)
		case "session":
			data, err = json.Marshal(snapshot.Session)
		}
		if err != nil {
			retErr = err
			return retErr
		}
		if _, err = tx.Exec(`INSERT INTO state(bucket,payload) VALUES(?,?) ON CONFLICT(bucket) DO UPDATE SET payload=excluded.payload`, bucket, data); err != nil {
			retErr = fmt.Errorf("upsert %s: %w", bucket, err)
			return retErr
		}
	}
	if err = tx.Commit(); err != nil {
		return err
	}
	return nil
}

// RunInTransaction applies the provided function within a transaction, then
// snapshots state to SQLite if successful.
func (s *Store) RunInTransaction(ctx context.Context, fn func(tx domain.Transaction) error) (domain.Result, error) {
	res, err := s.Store.RunInTransaction(ctx, fn)
	if err != nil {
		return res, err
	}
	if pErr := s.persist(); pErr != nil {
		return res, fmt.Errorf("persist snapshot: %w", pErr)
	}
	return res, nil
}

// DB exposes the underlying sql.DB for integration testing hooks.
func (s *Store) DB() *sql.DB { return s.db }

// Path returns the configured database path.
func (s *Store) Path() string { return s.path }

// Close flushes nothing further and releases the database handle.
func (s *Store) Close() error { return s.db.Close() }
