// Package store defines the document-store contract used by the signal
// engine and an in-memory implementation for tests.
//
// Grounded on original_source/backend/db/mongo.py's collection-per-entity
// layout (signals, monte_carlo_simulations, parlay_generation_audit,
// ops_alerts, user_risk_profiles) and the teacher's preference for testing
// stateful components (policy.PolicyEngine, paper.Engine) against in-memory
// state rather than a live external system.
package store

import (
	"context"
	"errors"
)

// ErrNotFound is returned by FindOne when no document matches the query.
var ErrNotFound = errors.New("store: document not found")

// Update describes a partial document mutation. Exactly the operators named
// in the document-store contract are supported: Set, Push (append to an
// array field), and Unset.
type Update struct {
	Set    map[string]interface{}
	Push   map[string]interface{}
	Unset  []string
	Upsert bool
}

// BulkOp is one operation inside a BulkWrite call.
type BulkOp struct {
	Filter map[string]interface{}
	Update Update
}

// IndexSpec names the fields and uniqueness of a required index. Field order
// matters for compound indexes.
type IndexSpec struct {
	Fields []string
	Unique bool
}

// Collection is a single named set of documents.
type Collection interface {
	FindOne(ctx context.Context, filter map[string]interface{}) (map[string]interface{}, error)
	Find(ctx context.Context, filter map[string]interface{}, sortField string, descending bool, limit int) ([]map[string]interface{}, error)
	InsertOne(ctx context.Context, doc map[string]interface{}) error
	UpdateOne(ctx context.Context, filter map[string]interface{}, update Update) error
	BulkWrite(ctx context.Context, ops []BulkOp) error
	CountDocuments(ctx context.Context, filter map[string]interface{}) (int64, error)
	CreateIndex(ctx context.Context, spec IndexSpec) error
}

// Store names the collections the engine persists to and exposes a
// liveness check, mirroring mongo.py's ping-on-connect pattern.
type Store interface {
	Collection(name string) Collection
	Ping(ctx context.Context) error
}

// Canonical collection names, matching original_source/backend/db/mongo.py.
const (
	CollectionSignals               = "signals"
	CollectionSimulations           = "monte_carlo_simulations"
	CollectionParlayGenerationAudit = "parlay_generation_audit"
	CollectionOpsAlerts             = "ops_alerts"
	CollectionUserRiskProfiles      = "user_risk_profiles"
	CollectionGradingRecords        = "grading_records"
)

// RequiredIndexes returns the index specs the document-store contract
// requires at startup, keyed by collection name.
func RequiredIndexes() map[string][]IndexSpec {
	return map[string][]IndexSpec{
		"events": {
			{Fields: []string{"event_id"}, Unique: true},
		},
		CollectionSignals: {
			{Fields: []string{"game_id", "market_key"}},
			{Fields: []string{"created_at"}},
		},
		CollectionSimulations: {
			{Fields: []string{"event_id", "created_at"}},
		},
		CollectionParlayGenerationAudit: {
			{Fields: []string{"timestamp"}},
		},
		CollectionOpsAlerts: {
			{Fields: []string{"timestamp"}},
		},
		CollectionGradingRecords: {
			{Fields: []string{"idempotency_key"}, Unique: true},
		},
	}
}

// EnsureIndexes creates every required index against s, stopping at the
// first failure.
func EnsureIndexes(ctx context.Context, s Store) error {
	for name, specs := range RequiredIndexes() {
		coll := s.Collection(name)
		for _, spec := range specs {
			if err := coll.CreateIndex(ctx, spec); err != nil {
				return err
			}
		}
	}
	return nil
}
