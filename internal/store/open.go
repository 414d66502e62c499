package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// DefaultAdminID is the id of the singleton admin account.
const DefaultAdminID = "admin-1"

// Open picks the PostgreSQL backend when databaseURL is set and the JSON file
// at dataPath otherwise. The returned close func releases any connections.
func Open(ctx context.Context, databaseURL, dataPath string) (Backend, func(), error) {
	if databaseURL == "" {
		return NewFileBackend(dataPath), func() {}, nil
	}

	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, nil, fmt.Errorf("connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("ping database: %w", err)
	}
	return NewPostgresBackend(pool), pool.Close, nil
}
