package serializer

import "context"

// Serializer writes one result document to its destination. The context is
// accepted for interface consistency; file and stdout writes do not block on
// it.
type Serializer interface {
	Serialize(ctx context.Context, v any) error
}

// Closer is an optional interface for Serializers holding resources such as
// file handles.
type Closer interface {
	Close() error
}
