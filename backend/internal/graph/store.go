package graph

import (
	"context"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"go.uber.org/zap"

	apperrors "learn-graph/backend/pkg/errors"
	"learn-graph/backend/pkg/logger"
)

// Store wraps the process-wide Neo4j driver. It is constructed once at startup,
// passed down explicitly, and closed at shutdown. Every logical operation opens
// its own scoped session and releases it unconditionally; sessions are never
// shared across concurrent operations.
type Store struct {
	driver neo4j.DriverWithContext
	logger *zap.Logger
}

// NewStore creates a store from connection settings
func NewStore(uri, user, password string) (*Store, error) {
	driver, err := neo4j.NewDriverWithContext(uri, neo4j.BasicAuth(user, password, ""))
	if err != nil {
		return nil, apperrors.NewStorageUnavailable("create driver", err)
	}
	return &Store{
		driver: driver,
		logger: logger.Get(),
	}, nil
}

// VerifyConnectivity checks that the backing store is reachable
func (s *Store) VerifyConnectivity(ctx context.Context) error {
	if err := s.driver.VerifyConnectivity(ctx); err != nil {
		return apperrors.NewStorageUnavailable("verify connectivity", err)
	}
	return nil
}

// Close closes the underlying driver connection pool
func (s *Store) Close(ctx context.Context) error {
	return s.driver.Close(ctx)
}

// Read runs one parameterized statement in a read session and returns the
// result rows as key/value maps.
func (s *Store) Read(ctx context.Context, cypher string, params map[string]interface{}) ([]map[string]interface{}, error) {
	return s.run(ctx, neo4j.AccessModeRead, cypher, params)
}

// Write runs one parameterized statement in a write session. Statement-level
// atomicity comes from the store; there is no cross-statement transaction.
func (s *Store) Write(ctx context.Context, cypher string, params map[string]interface{}) ([]map[string]interface{}, error) {
	return s.run(ctx, neo4j.AccessModeWrite, cypher, params)
}

func (s *Store) run(ctx context.Context, mode neo4j.AccessMode, cypher string, params map[string]interface{}) ([]map[string]interface{}, error) {
	session := s.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: mode})
	defer session.Close(ctx)

	result, err := session.Run(ctx, cypher, params)
	if err != nil {
		s.logger.Error("Graph statement failed", zap.Error(err))
		return nil, apperrors.NewStorageUnavailable("run statement", err)
	}

	records, err := result.Collect(ctx)
	if err != nil {
		s.logger.Error("Failed to collect graph records", zap.Error(err))
		return nil, apperrors.NewStorageUnavailable("collect records", err)
	}

	rows := make([]map[string]interface{}, 0, len(records))
	for _, record := range records {
		rows = append(rows, record.AsMap())
	}
	return rows, nil
}
