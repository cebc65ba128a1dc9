package fetch

import "context"

// Adapter is the per-vendor fetch function. Given the vendor's own
// identifier for an entity it returns the raw response payload, or a
// *fetch.Error classifying the failure.
//
// The loader core treats adapters as opaque: it never inspects payload
// shape, only the error kind.
type Adapter interface {
	// Name returns the source tag this adapter fetches from.
	Name() string
	// Fetch retrieves the payload for a source-specific identifier.
	Fetch(ctx context.Context, identifier string) ([]byte, error)
}

// AdapterFunc adapts a plain function into an Adapter.
type AdapterFunc struct {
	SourceName string
	Func       func(ctx context.Context, identifier string) ([]byte, error)
}

func (a AdapterFunc) Name() string {
	return a.SourceName
}

func (a AdapterFunc) Fetch(ctx context.Context, identifier string) ([]byte, error) {
	return a.Func(ctx, identifier)
}
