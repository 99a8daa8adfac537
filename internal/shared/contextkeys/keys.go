package contextkeys

import "context"

// contextKey is an unexported type to prevent collisions with context keys defined in
// other packages.
type contextKey string

// String makes contextKey satisfy the Stringer interface to assist with debugging.
func (c contextKey) String() string {
	return "restaurant-analytics context key " + string(c)
}

// RunIDKey is the key for the ingestion run identifier in context.Context
const RunIDKey = contextKey("runID")

// CityKey is the key for the city currently being ingested in context.Context
const CityKey = contextKey("city")

// ComponentKey is the key for the emitting component name in context.Context
const ComponentKey = contextKey("component")

// OperationKey is the key for the current operation name in context.Context
const OperationKey = contextKey("operation")

// WithRunID returns a context carrying the ingestion run identifier.
func WithRunID(ctx context.Context, runID string) context.Context {
	return context.WithValue(ctx, RunIDKey, runID)
}

// WithCity returns a context carrying the city being processed.
func WithCity(ctx context.Context, city string) context.Context {
	return context.WithValue(ctx, CityKey, city)
}

// WithOperation returns a context carrying the current operation name.
func WithOperation(ctx context.Context, operation string) context.Context {
	return context.WithValue(ctx, OperationKey, operation)
}
