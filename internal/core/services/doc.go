// Package services contains the core pipeline logic: the ingestion
// pipeline, the retrieval engine and the HyDE query translator. Services
// depend only on domain types and driven ports; adapters are injected.
package services
