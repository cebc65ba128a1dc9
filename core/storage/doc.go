// Package storage provides an abstraction layer for object storage services.
//
// It wraps the MinIO Go client to provide a simplified interface for the
// raw payload archive: loaders keep the original vendor responses as
// objects next to the normalized database rows, so a bad transform can be
// replayed without refetching (and re-paying for) the data. The
// abstraction supports both AWS S3 and self-hosted MinIO instances.
//
// # Client Interface
//
// The Client interface abstracts the underlying storage provider, making it
// easier to mock storage interactions for unit testing (see
// core/storage/mocks).
//
// # Operations
//
//   - BucketExists / MakeBucket: verify or create the archive bucket.
//   - PutObject: archive a raw payload.
//   - GetObject: replay an archived payload as a stream.
//   - ListObjects: enumerate archived payloads by prefix.
//   - RemoveObject: drop a single archived payload.
//
// # Usage
//
//	client, err := storage.NewClient(config)
//	exists, err := client.BucketExists(ctx, "marketdata-archive")
package storage
