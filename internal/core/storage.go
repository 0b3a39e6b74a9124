package core

import (
	"context"
	"fmt"

	"github.com/caarlos0/env/v11"

	"venturecore/internal/blob"
	"venturecore/internal/infra/persistence/memory"
	"venturecore/internal/infra/persistence/postgres"
	"venturecore/internal/infra/persistence/sqlite"
	"venturecore/pkg/domain"
)

// StorageDriver identifies a concrete persistent storage implementation.
type StorageDriver string

const (
	// StorageMemory keeps state in-process only (tests, ephemeral runs).
	StorageMemory StorageDriver = "memory"
	// StorageSQLite persists snapshots to an embedded sqlite file.
	StorageSQLite StorageDriver = "sqlite"
	// StoragePostgres persists snapshots to a PostgreSQL server.
	StoragePostgres StorageDriver = "postgres"
)

// StorageConfig selects the persistence and blob backends. Parsed from
// VENTURECORE_* environment variables.
type StorageConfig struct {
	Driver      StorageDriver `env:"VENTURECORE_STORAGE_DRIVER" envDefault:"sqlite"`
	SQLitePath  string        `env:"VENTURECORE_SQLITE_PATH"`
	PostgresDSN string        `env:"VENTURECORE_POSTGRES_DSN"`

	BlobDriver blob.Driver `env:"VENTURECORE_BLOB_DRIVER" envDefault:"fs"`
	BlobFSRoot string      `env:"VENTURECORE_BLOB_FS_ROOT" envDefault:"./blobdata"`

	S3Region          string `env:"VENTURECORE_S3_REGION"`
	S3Bucket          string `env:"VENTURECORE_S3_BUCKET"`
	S3Endpoint        string `env:"VENTURECORE_S3_ENDPOINT"`
	S3AccessKeyID     string `env:"VENTURECORE_S3_ACCESS_KEY_ID"`
	S3SecretAccessKey string `env:"VENTURECORE_S3_SECRET_ACCESS_KEY"`
	S3SessionToken    string `env:"VENTURECORE_S3_SESSION_TOKEN"`
	S3PathStyle       bool   `env:"VENTURECORE_S3_PATH_STYLE"`
}

// LoadStorageConfig parses the storage configuration from the environment.
func LoadStorageConfig() (StorageConfig, error) {
	var cfg StorageConfig
	if err := env.Parse(&cfg); err != nil {
		return StorageConfig{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}

// OpenPersistentStore constructs the persistence backend selected by cfg.
// Defaults to sqlite when the driver is unset.
func OpenPersistentStore(cfg StorageConfig, engine *RulesEngine) (domain.PersistentStore, error) {
	driver := cfg.Driver
	if driver == "" {
		driver = StorageSQLite
	}
	switch driver {
	case StorageMemory:
		return memory.NewStore(engine), nil
	case StorageSQLite:
		return sqlite.NewStore(cfg.SQLitePath, engine)
	case StoragePostgres:
		return postgres.NewStore(cfg.PostgresDSN, engine)
	default:
		return nil, fmt.Errorf("unknown storage driver %s", driver)
	}
}

// OpenBlobStore constructs the blob backend selected by cfg.
func OpenBlobStore(ctx context.Context, cfg StorageConfig) (blob.Store, error) {
	return blob.Open(ctx, blob.Config{
		Driver: cfg.BlobDriver,
		FSRoot: cfg.BlobFSRoot,
		S3: blob.S3Config{
			Region:          cfg.S3Region,
			Bucket:          cfg.S3Bucket,
			Endpoint:        cfg.S3Endpoint,
			AccessKeyID:     cfg.S3AccessKeyID,
			SecretAccessKey: cfg.S3SecretAccessKey,
			SessionToken:    cfg.S3SessionToken,
			PathStyle:       cfg.S3PathStyle,
		},
	})
}

// OpenService wires a full service from environment configuration: storage
// driver, blob backend, and the default rule set.
func OpenService(ctx context.Context, opts ...Option) (*Service, error) {
	cfg, err := LoadStorageConfig()
	if err != nil {
		return nil, err
	}
	store, err := OpenPersistentStore(cfg, NewDefaultRulesEngine())
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	blobs, err := OpenBlobStore(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("open blob store: %w", err)
	}
	svc := NewService(store, append([]Option{WithBlobStore(blobs)}, opts...)...)
	return svc, nil
}
