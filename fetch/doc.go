// Package fetch downloads the configured law documents into a source store.
//
// Each entry laws[language][abbreviation] of the configuration is requested
// from source_url plus its relative path and written to
// "<language>/<abbreviation>.xml". Transient failures are retried with
// exponential backoff. A law that cannot be fetched is reported and the
// remaining laws continue.
package fetch
