// Package ingestion builds the article corpus from the configured laws.
//
// A Pipeline run visits every (law, language) unit named by the bucket
// table on a worker pool. Each unit is located on the source store, parsed,
// walked for article nodes, extracted with the strategy registered for the
// unit, and tagged with its buckets and link. Missing and malformed sources
// skip only their own unit and are reported as warnings.
//
// Once every unit is processed the accumulated articles replace the stored
// corpus in one delete-then-insert step. Storage failures abort the run.
// Replacement is serialized process-wide, so two runs never interleave
// their writes.
package ingestion
