// Package s3registry is the S3 bucket registry (spec.md §4.D): a
// thread-safe registry of buckets and their per-bucket configuration slots.
//
// Grounded on the "inherit-and-override" design note (spec.md §9): every
// configuration slot below is an independent optional value with its own
// get/put/delete, never a hierarchy. The registry-of-entities shape mirrors
// the teacher's in-memory DI cache (infrastructure/di/cache.go).
package s3registry

import (
	"sync"
	"time"

	"backend2/internal/apperr"
	"backend2/internal/s3meta"
	"backend2/internal/s3multipart"
)

// CORSRule, LifecycleRule, etc. are intentionally untyped blobs (map or
// string) at this layer: their XML shape belongs to the out-of-scope wire
// encoder; the core only needs presence/absence semantics.

// ObjectLockConfig is the bucket-level object-lock configuration.
type ObjectLockConfig struct {
	Enabled            bool
	DefaultMode        string // "GOVERNANCE" | "COMPLIANCE"
	DefaultDays        int
	DefaultYears       int
}

// Bucket is one registered bucket with its object store, multipart
// coordinator, and independent configuration slots (spec.md §3).
type Bucket struct {
	Name         string
	Region       string
	CreationDate time.Time
	Owner        string

	Objects   *s3meta.Store
	Multipart *s3multipart.Coordinator

	eventsMu sync.Mutex
	events   []Event

	mu sync.RWMutex

	encryption       interface{}
	cors             interface{}
	lifecycle        interface{}
	policy           *string
	tags             map[string]string
	acl              interface{}
	notification     interface{}
	logging          interface{}
	publicAccessBlock interface{}
	ownershipControls interface{}
	objectLock       *ObjectLockConfig
	accelerate       *bool
	requestPayment   *string
	website          interface{}
	replication      interface{}
	analytics        map[string]interface{}
	metrics          map[string]interface{}
	inventory        map[string]interface{}
	intelligentTier  map[string]interface{}
}

func newBucket(name, region, owner string) *Bucket {
	return &Bucket{
		Name:         name,
		Region:       region,
		Owner:        owner,
		CreationDate: time.Now().UTC(),
		Objects:      s3meta.New(),
		Multipart:    s3multipart.New(),
	}
}

// Registry is the process-wide concurrent map of buckets (spec.md §4.D, §9
// "Global registry" — owned by the service instance, passed by reference).
type Registry struct {
	mu      sync.RWMutex
	buckets map[string]*Bucket
}

// NewRegistry constructs an empty bucket registry.
func NewRegistry() *Registry {
	return &Registry{buckets: make(map[string]*Bucket)}
}

// GetBucket resolves a bucket handle by name.
func (r *Registry) GetBucket(name string) (*Bucket, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	b, ok := r.buckets[name]
	if !ok {
		return nil, apperr.NoSuchBucket(name)
	}
	return b, nil
}

// CreateBucket registers a new bucket.
func (r *Registry) CreateBucket(name, region, owner string) (*Bucket, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.buckets[name]; ok {
		if existing.Owner == owner {
			return nil, apperr.BucketAlreadyOwnedByYou(name)
		}
		return nil, apperr.BucketAlreadyExists(name)
	}
	b := newBucket(name, region, owner)
	r.buckets[name] = b
	return b, nil
}

// DeleteBucket removes a bucket, failing if it still holds objects
// (spec.md §4.D).
func (r *Registry) DeleteBucket(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.buckets[name]
	if !ok {
		return apperr.NoSuchBucket(name)
	}
	if !b.Objects.IsEmpty() {
		return apperr.BucketNotEmpty(name)
	}
	delete(r.buckets, name)
	return nil
}

// ListBuckets returns every registered bucket, owner-scoped by caller if
// desired (the registry itself does not filter by owner).
func (r *Registry) ListBuckets() []*Bucket {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Bucket, 0, len(r.buckets))
	for _, b := range r.buckets {
		out = append(out, b)
	}
	return out
}
