// Package sources talks to the upstream APIs behind a channel analysis.
//
// The implementation is split by responsibility:
//
//	handle.go         : turns viewer input (handle or channel URL) into a bare @handle
//	estimator.go      : resolves a handle to a channel ID via the RapidAPI estimator
//	youtube_api.go    : YouTube Data API v3 GET helper with key fallback and rate limiting
//	youtube_channel.go: channel metadata (snippet, statistics, uploads playlist)
//	youtube_catalog.go: uploads playlist pagination with batched statistics enrichment
//	youtube_types.go  : Data API payload types and field conversion
//	isotime.go        : permissive timestamp and ISO-8601 duration parsing
package sources
