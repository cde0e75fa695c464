// Package s3multipart is the S3 multipart coordinator (spec.md §4.E):
// in-progress multipart uploads, their parts table, and abort bookkeeping.
// Byte assembly itself is delegated to s3blob.
package s3multipart

import (
	"sort"
	"sync"
	"time"

	"backend2/internal/apperr"

	"github.com/google/uuid"
)

// PartInfo is one recorded part's metadata (spec.md §3).
type PartInfo struct {
	PartNumber   int
	ETag         string
	Size         int64
	LastModified time.Time
	Checksum     string
}

// Upload is one in-progress multipart upload (spec.md §3).
type Upload struct {
	UploadID          string
	Key               string
	Owner             string
	InitiatedAt       time.Time
	StorageClass      string
	ChecksumAlgorithm string
	SSEAlgorithm      string
	SSEKMSKeyID       string
	Metadata          map[string]string

	mu    sync.Mutex
	parts map[int]PartInfo
}

// Parts returns a snapshot of the recorded parts, sorted by part number.
func (u *Upload) Parts() []PartInfo {
	u.mu.Lock()
	defer u.mu.Unlock()
	out := make([]PartInfo, 0, len(u.parts))
	for _, p := range u.parts {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PartNumber < out[j].PartNumber })
	return out
}

func (u *Upload) recordPart(p PartInfo) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.parts[p.PartNumber] = p
}

func (u *Upload) getPart(n int) (PartInfo, bool) {
	u.mu.Lock()
	defer u.mu.Unlock()
	p, ok := u.parts[n]
	return p, ok
}

// Coordinator is the per-bucket multipart uploads table.
type Coordinator struct {
	mu      sync.RWMutex
	uploads map[string]*Upload
}

// New constructs an empty multipart coordinator.
func New() *Coordinator {
	return &Coordinator{uploads: make(map[string]*Upload)}
}

// Create starts a new multipart upload under a generated upload id and
// returns the Upload.
func (c *Coordinator) Create(key, owner, storageClass, checksumAlgo string, metadata map[string]string) *Upload {
	u := &Upload{
		UploadID:          uuid.New().String(),
		Key:               key,
		Owner:             owner,
		InitiatedAt:       time.Now().UTC(),
		StorageClass:      storageClass,
		ChecksumAlgorithm: checksumAlgo,
		Metadata:          metadata,
		parts:             make(map[int]PartInfo),
	}
	c.mu.Lock()
	c.uploads[u.UploadID] = u
	c.mu.Unlock()
	return u
}

// Get resolves an upload by id.
func (c *Coordinator) Get(uploadID string) (*Upload, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	u, ok := c.uploads[uploadID]
	if !ok {
		return nil, apperr.NoSuchUpload(uploadID)
	}
	return u, nil
}

// RecordPart stores part metadata for an in-progress upload. Part numbers
// must be in [1, 10000] (spec.md §4.F).
func (c *Coordinator) RecordPart(uploadID string, partNumber int, etag string, size int64, checksum string) error {
	if partNumber < 1 || partNumber > 10000 {
		return apperr.InvalidArgument("part number must be between 1 and 10000")
	}
	u, err := c.Get(uploadID)
	if err != nil {
		return err
	}
	u.recordPart(PartInfo{
		PartNumber:   partNumber,
		ETag:         etag,
		Size:         size,
		LastModified: time.Now().UTC(),
		Checksum:     checksum,
	})
	return nil
}

// ValidatePartList checks that the caller's requested part list is strictly
// ascending and that every requested part was actually uploaded (spec.md
// §4.E "Complete" validation).
func (c *Coordinator) ValidatePartList(uploadID string, partNumbers []int) error {
	u, err := c.Get(uploadID)
	if err != nil {
		return err
	}
	if len(partNumbers) == 0 {
		return apperr.InvalidArgument("at least one part is required")
	}
	prev := 0
	for _, pn := range partNumbers {
		if pn <= prev {
			return apperr.InvalidPartOrder()
		}
		prev = pn
		if _, ok := u.getPart(pn); !ok {
			return apperr.InvalidPart()
		}
	}
	return nil
}

// Remove deletes the upload record (used after complete/abort).
func (c *Coordinator) Remove(uploadID string) {
	c.mu.Lock()
	delete(c.uploads, uploadID)
	c.mu.Unlock()
}

// List returns every in-progress upload, for ListMultipartUploads.
func (c *Coordinator) List() []*Upload {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]*Upload, 0, len(c.uploads))
	for _, u := range c.uploads {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Key != out[j].Key {
			return out[i].Key < out[j].Key
		}
		return out[i].InitiatedAt.Before(out[j].InitiatedAt)
	})
	return out
}
