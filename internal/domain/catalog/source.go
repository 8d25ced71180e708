package catalog

import "context"

// Source fetches the raw catalog body for a query.
// Implementations return a *TransportError for HTTP and network failures
// and leave the shape check to ParseCollection.
type Source interface {
	Fetch(ctx context.Context, q Query) ([]byte, error)
}
