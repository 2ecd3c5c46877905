package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/ignite/open-tracker/internal/config"
	"github.com/ignite/open-tracker/internal/domain"
)

// ErrNotFound is returned by Get when no record exists for a tracking id.
// A pre-registered but unopened record is NOT a miss; it is returned with
// Opened=false.
var ErrNotFound = errors.New("tracking id not found")

// Store is the tracking-event store shared by the beacon handlers and the
// query API. RecordOpen is an atomic upsert: N calls for the same id always
// converge to a single record carrying the latest open metadata, including
// under concurrent first opens of a never-seen id.
type Store interface {
	// RecordOpen marks id as opened now with the given requester metadata,
	// creating the record with the unknown-recipient placeholder if the id
	// was never registered. Any string is accepted as an id; garbage keys
	// simply become useless records.
	RecordOpen(ctx context.Context, id, ip, userAgent string) (domain.TrackingEvent, error)

	// Register pre-creates a record for an outbound send (opened=false).
	// Registering an existing id updates the recipient email only.
	Register(ctx context.Context, id, email string) (domain.TrackingEvent, error)

	// Get returns the current record for id, or ErrNotFound.
	Get(ctx context.Context, id string) (domain.TrackingEvent, error)

	// GetAll returns every record ordered by SentTime descending. An empty
	// store yields an empty slice, never an error.
	GetAll(ctx context.Context) ([]domain.TrackingEvent, error)
}

// Open builds the store selected by cfg. The default in-memory driver is
// process-scoped: all tracking data is lost on restart. That is a documented
// operating assumption for free-tier deployments, not a bug; use the
// postgres or redis driver when the deployment needs the data to outlive
// the process.
func Open(ctx context.Context, cfg config.StorageConfig) (Store, error) {
	switch cfg.Driver {
	case "", "memory":
		return NewMemoryStore(), nil
	case "postgres":
		if cfg.DatabaseURL == "" {
			return nil, fmt.Errorf("storage driver postgres requires DATABASE_URL")
		}
		return OpenPostgres(ctx, cfg.DatabaseURL)
	case "redis":
		if cfg.RedisURL == "" {
			return nil, fmt.Errorf("storage driver redis requires REDIS_URL")
		}
		return OpenRedis(ctx, cfg.RedisURL)
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
}
