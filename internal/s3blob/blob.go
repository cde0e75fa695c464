// Package s3blob is the S3 blob backend (spec.md §4.B): a byte store keyed
// by (bucket, key, version) and by (bucket, upload,
// part-number) tuples, with transparent memory-to-disk spillover.
//
// Grounded on the teacher's concurrent-map idiom (infrastructure/di/cache.go
// uses a mutex-guarded map; infrastructure/persistence/dynamodb/*.go keys
// records by composite string tuples) adapted here to hold byte payloads
// instead of domain aggregates.
package s3blob

import (
	"crypto/md5"
	"encoding/hex"
	"errors"
	"io"
	"os"
	"strconv"
	"sync"

	"github.com/google/uuid"
)

// DefaultSpillThreshold is the default in-memory/on-disk cutover (spec.md §4.B).
const DefaultSpillThreshold = 512 * 1024

var (
	ErrNoSuchKey     = errors.New("s3blob: no such key")
	ErrInvalidPart   = errors.New("s3blob: invalid part")
	ErrInvalidRange  = errors.New("s3blob: invalid range")
)

// WriteResult is returned by every write operation.
type WriteResult struct {
	ETag   string
	Size   int64
	MD5Hex string
}

// entry holds one stored payload, either fully in memory or spilled to a
// temp file. Which variant is active is never observable to callers
// (spec.md §9 "Large-object handling").
type entry struct {
	mem  []byte
	path string
	size int64
}

func (e *entry) delete() {
	if e.path != "" {
		_ = os.Remove(e.path) // best-effort; a removal error is discarded, not logged
	}
}

func (e *entry) readAll() ([]byte, error) {
	if e.path == "" {
		return e.mem, nil
	}
	return os.ReadFile(e.path)
}

func (e *entry) readRange(start, end int64) ([]byte, error) {
	if e.path == "" {
		if end >= int64(len(e.mem)) {
			end = int64(len(e.mem)) - 1
		}
		if start > end {
			return nil, ErrInvalidRange
		}
		return e.mem[start : end+1], nil
	}
	f, err := os.Open(e.path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	if end >= e.size {
		end = e.size - 1
	}
	if start > end {
		return nil, ErrInvalidRange
	}
	length := end - start + 1
	buf := make([]byte, length)
	if _, err := f.Seek(start, io.SeekStart); err != nil {
		return nil, err
	}
	if _, err := io.ReadFull(f, buf); err != nil {
		return nil, err
	}
	return buf, nil
}

type objectKey struct {
	bucket, key, version string
}

type partKey struct {
	bucket, upload string
	partNumber     int
}

// Store is the blob backend. All entries are reached through concurrent
// maps keyed by the composite tuples named in spec.md §4.B.
type Store struct {
	mu             sync.RWMutex
	objects        map[objectKey]*entry
	parts          map[partKey]*entry
	spillThreshold int
	tempDir        string
}

// New constructs a blob store. tempDir="" uses the OS default.
func New(spillThreshold int, tempDir string) *Store {
	if spillThreshold <= 0 {
		spillThreshold = DefaultSpillThreshold
	}
	return &Store{
		objects:        make(map[objectKey]*entry),
		parts:          make(map[partKey]*entry),
		spillThreshold: spillThreshold,
		tempDir:        tempDir,
	}
}

func (s *Store) makeEntry(data []byte) (*entry, error) {
	if len(data) <= s.spillThreshold {
		buf := make([]byte, len(data))
		copy(buf, data)
		return &entry{mem: buf, size: int64(len(data))}, nil
	}
	f, err := os.CreateTemp(s.tempDir, "s3blob-*")
	if err != nil {
		return nil, err
	}
	defer f.Close()
	if _, err := f.Write(data); err != nil {
		_ = os.Remove(f.Name())
		return nil, err
	}
	return &entry{path: f.Name(), size: int64(len(data))}, nil
}

func hashMD5(data []byte) (string, string) {
	sum := md5.Sum(data)
	hexDigest := hex.EncodeToString(sum[:])
	return `"` + hexDigest + `"`, hexDigest
}

// WriteObject stores bytes for (bucket, key, version), replacing any prior
// entry and releasing its backing file.
func (s *Store) WriteObject(bucket, key, version string, data []byte) (WriteResult, error) {
	e, err := s.makeEntry(data)
	if err != nil {
		return WriteResult{}, err
	}
	etag, md5hex := hashMD5(data)

	k := objectKey{bucket, key, version}
	s.mu.Lock()
	if old, ok := s.objects[k]; ok {
		old.delete()
	}
	s.objects[k] = e
	s.mu.Unlock()

	return WriteResult{ETag: etag, Size: e.size, MD5Hex: md5hex}, nil
}

// ReadObject returns the full payload, or the inclusive byte range
// [start,end] if rng is non-nil.
func (s *Store) ReadObject(bucket, key, version string, rng *[2]int64) ([]byte, error) {
	s.mu.RLock()
	e, ok := s.objects[objectKey{bucket, key, version}]
	s.mu.RUnlock()
	if !ok {
		return nil, ErrNoSuchKey
	}
	if rng == nil {
		return e.readAll()
	}
	return e.readRange(rng[0], rng[1])
}

// CopyObject copies bytes from one (bucket,key,version) tuple to another.
func (s *Store) CopyObject(srcBucket, srcKey, srcVersion, dstBucket, dstKey, dstVersion string) (WriteResult, error) {
	data, err := s.ReadObject(srcBucket, srcKey, srcVersion, nil)
	if err != nil {
		return WriteResult{}, err
	}
	return s.WriteObject(dstBucket, dstKey, dstVersion, data)
}

// DeleteObject removes the entry if present; idempotent.
func (s *Store) DeleteObject(bucket, key, version string) {
	k := objectKey{bucket, key, version}
	s.mu.Lock()
	if e, ok := s.objects[k]; ok {
		e.delete()
		delete(s.objects, k)
	}
	s.mu.Unlock()
}

// WritePart stores one multipart part's bytes.
func (s *Store) WritePart(bucket, upload string, partNumber int, data []byte) (WriteResult, error) {
	e, err := s.makeEntry(data)
	if err != nil {
		return WriteResult{}, err
	}
	etag, md5hex := hashMD5(data)

	k := partKey{bucket, upload, partNumber}
	s.mu.Lock()
	if old, ok := s.parts[k]; ok {
		old.delete()
	}
	s.parts[k] = e
	s.mu.Unlock()

	return WriteResult{ETag: etag, Size: e.size, MD5Hex: md5hex}, nil
}

// ReadPart returns one part's full payload.
func (s *Store) ReadPart(bucket, upload string, partNumber int) ([]byte, error) {
	s.mu.RLock()
	e, ok := s.parts[partKey{bucket, upload, partNumber}]
	s.mu.RUnlock()
	if !ok {
		return nil, ErrInvalidPart
	}
	return e.readAll()
}

// CompleteMultipart reads each requested part in order, concatenates their
// bytes, stores the result as the final object, and returns the composite
// ETag alongside the per-part hex MD5s (spec.md §4.B, §4.E).
func (s *Store) CompleteMultipart(bucket, upload, key, version string, partNumbers []int) (WriteResult, []string, error) {
	var combined []byte
	var binaryMD5s []byte
	partMD5Hex := make([]string, 0, len(partNumbers))

	for _, pn := range partNumbers {
		data, err := s.ReadPart(bucket, upload, pn)
		if err != nil {
			return WriteResult{}, nil, err
		}
		sum := md5.Sum(data)
		binaryMD5s = append(binaryMD5s, sum[:]...)
		partMD5Hex = append(partMD5Hex, hex.EncodeToString(sum[:]))
		combined = append(combined, data...)
	}

	e, err := s.makeEntry(combined)
	if err != nil {
		return WriteResult{}, nil, err
	}
	compositeSum := md5.Sum(binaryMD5s)
	etag := `"` + hex.EncodeToString(compositeSum[:]) + "-" + strconv.Itoa(len(partNumbers)) + `"`

	objK := objectKey{bucket, key, version}
	s.mu.Lock()
	if old, ok := s.objects[objK]; ok {
		old.delete()
	}
	s.objects[objK] = e
	for _, pn := range partNumbers {
		pk := partKey{bucket, upload, pn}
		if old, ok := s.parts[pk]; ok {
			old.delete()
		}
		delete(s.parts, pk)
	}
	s.mu.Unlock()

	return WriteResult{ETag: etag, Size: e.size}, partMD5Hex, nil
}

// AbortMultipart removes every part recorded for one upload.
func (s *Store) AbortMultipart(bucket, upload string) {
	s.mu.Lock()
	for k, e := range s.parts {
		if k.bucket == bucket && k.upload == upload {
			e.delete()
			delete(s.parts, k)
		}
	}
	s.mu.Unlock()
}

// DeleteBucketData removes every object and part entry for one bucket.
func (s *Store) DeleteBucketData(bucket string) {
	s.mu.Lock()
	for k, e := range s.objects {
		if k.bucket == bucket {
			e.delete()
			delete(s.objects, k)
		}
	}
	for k, e := range s.parts {
		if k.bucket == bucket {
			e.delete()
			delete(s.parts, k)
		}
	}
	s.mu.Unlock()
}

// Reset clears the entire store, deleting all backing temp files.
func (s *Store) Reset() {
	s.mu.Lock()
	for _, e := range s.objects {
		e.delete()
	}
	for _, e := range s.parts {
		e.delete()
	}
	s.objects = make(map[objectKey]*entry)
	s.parts = make(map[partKey]*entry)
	s.mu.Unlock()
}

// NewVersionID generates a fresh S3 version id.
func NewVersionID() string {
	return uuid.New().String()
}
