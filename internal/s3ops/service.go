// Package s3ops is the S3 operation layer (spec.md §4.F): ~60 operation
// semantics built on top of s3blob/s3meta/s3registry/s3multipart —
// conditional headers, range reads, ACL shapes, tagging, lifecycle,
// object-lock checks, copy.
//
// Grounded on the teacher's command-handler layer (application/commands/
// handlers/*.go): one operation per file/method, a thin validation prelude,
// then delegation to the storage layer, returning a typed AppError on
// failure — the same shape, applied to S3 verbs instead of graph-note verbs.
package s3ops

import (
	"time"
	"unicode/utf8"

	"backend2/internal/apperr"
	"backend2/internal/s3blob"
	"backend2/internal/s3registry"
)

// Service implements the S3 operation layer.
type Service struct {
	Registry *s3registry.Registry
	Blobs    *s3blob.Store
	Now      func() time.Time
}

// New constructs the S3 operation layer over a registry and blob store.
func New(registry *s3registry.Registry, blobs *s3blob.Store) *Service {
	return &Service{Registry: registry, Blobs: blobs, Now: func() time.Time { return time.Now().UTC() }}
}

// validateKey enforces spec.md §4.F's key prelude: non-empty, length <=
// 1024 bytes, valid UTF-8, no control characters except TAB (checked only
// for metadata values, not the key itself, per spec.md wording — key
// validity here covers length/encoding).
func validateKey(key string) error {
	if key == "" {
		return apperr.InvalidArgument("object key must not be empty")
	}
	if len(key) > 1024 {
		return apperr.KeyTooLong()
	}
	if !utf8.ValidString(key) {
		return apperr.InvalidArgument("object key must be valid UTF-8")
	}
	return nil
}

// validateMetadataValue enforces "no control characters except TAB" for
// user-supplied metadata values (spec.md §4.F prelude).
func validateMetadataValue(v string) error {
	for _, r := range v {
		if r == '\t' {
			continue
		}
		if r < 0x20 || r == 0x7f {
			return apperr.InvalidArgument("metadata values must not contain control characters")
		}
	}
	return nil
}
