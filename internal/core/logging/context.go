package logging

import "context"

type contextKey string

const (
	docIDKey contextKey = "doc_id"
	actorKey contextKey = "actor"
)

// WithDocID adds the evaluated document id to the context.
func WithDocID(ctx context.Context, docID string) context.Context {
	return context.WithValue(ctx, docIDKey, docID)
}

// WithActor adds the acting principal's name to the context.
func WithActor(ctx context.Context, actor string) context.Context {
	return context.WithValue(ctx, actorKey, actor)
}

// GetDocID retrieves the document id from the context.
// Returns empty string if not present.
func GetDocID(ctx context.Context) string {
	if id, ok := ctx.Value(docIDKey).(string); ok {
		return id
	}
	return ""
}

// GetActor retrieves the acting principal's name from the context.
// Returns empty string if not present.
func GetActor(ctx context.Context) string {
	if actor, ok := ctx.Value(actorKey).(string); ok {
		return actor
	}
	return ""
}
