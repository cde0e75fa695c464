// Package ddbitem is the DynamoDB item operations layer (SPEC_FULL.md
// §5.K, peer to internal/s3ops for S3): PutItem, GetItem, DeleteItem,
// UpdateItem, Query, Scan, BatchGetItem, and BatchWriteItem, each compiling
// its expressions via internal/ddbexpr and evaluating them via
// internal/ddbeval against tables held in internal/ddbtable.
//
// Grounded on internal/s3ops's shape: a thin Service wrapping a registry,
// translating typed inputs into storage-engine calls and typed errors.
package ddbitem

import "backend2/internal/ddbtable"

// Service is the DynamoDB item operation layer, bound to one table registry.
type Service struct {
	Tables *ddbtable.Registry
}

// New constructs a Service over the given table registry.
func New(tables *ddbtable.Registry) *Service {
	return &Service{Tables: tables}
}
