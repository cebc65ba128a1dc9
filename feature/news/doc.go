// Package news loads market news articles from the configured vendors
// and serves them over HTTP.
//
// News differs from the other loaders in two ways: a load appends
// articles instead of replacing a row (deduplicated by article URL),
// and the raw vendor payload is archived to object storage alongside
// the normalized rows so the original responses stay reprocessable.
package news
