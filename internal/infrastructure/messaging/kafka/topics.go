// Package kafka publishes discovery lifecycle events.  Eventing is optional
// infrastructure: the producer is only constructed when brokers are
// configured, and every publish is best-effort from the caller's point of
// view.
package kafka

// Topic suffixes; the configured prefix is prepended at publish time.
const (
	TopicRequestImported    = "request.imported"
	TopicMappingCreated     = "mapping.created"
	TopicMappingReviewed    = "mapping.reviewed"
	TopicCoverageRecomputed = "coverage.recomputed"
)
