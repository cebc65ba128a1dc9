// Package fetch defines the contract between the loader core and the
// vendor-specific data source adapters.
//
// An adapter turns a source-specific identifier into a raw payload. All
// failures cross the boundary as *fetch.Error values carrying a structured
// Kind; retry and fallback logic branch on the kind and never parse error
// text.
//
// # Components
//
//   - Adapter: the per-vendor fetch function the fallback coordinator calls
//   - Error / Kind: the error taxonomy (rate-limited, network, auth,
//     not-found, unsupported, data-integrity)
//   - Client: a small shared HTTP helper that classifies status codes into
//     error kinds at the boundary
package fetch
