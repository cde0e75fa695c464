package s3meta

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// VersioningStatus models the three states a bucket's versioning can be in
// (spec.md §3): once Enabled, the store stays versioned even if suspended.
type VersioningStatus int

const (
	VersioningDisabled VersioningStatus = iota
	VersioningEnabled
	VersioningSuspended
)

const nullVersionID = "null"

// Store is the per-bucket ordered object store. Keys are kept in a sorted
// slice (raw-byte order) alongside a map for O(1) lookup, mirroring the
// teacher's pattern of pairing a lookup map with ordering metadata rather
// than reaching for a third-party ordered-map/btree package — the data
// sizes an in-process dev emulator holds make a sorted slice the idiomatic
// choice here, same as the teacher's in-memory caches.
type Store struct {
	mu         sync.RWMutex
	keys       []string // sorted ascending
	versions   map[string][]versionEntry // key -> version stack, newest first
	versioning VersioningStatus
}

// New constructs an empty, unversioned object store.
func New() *Store {
	return &Store{
		versions: make(map[string][]versionEntry),
	}
}

func (s *Store) insertKeyLocked(key string) {
	i := sort.SearchStrings(s.keys, key)
	if i < len(s.keys) && s.keys[i] == key {
		return
	}
	s.keys = append(s.keys, "")
	copy(s.keys[i+1:], s.keys[i:])
	s.keys[i] = key
}

func (s *Store) removeKeyLocked(key string) {
	i := sort.SearchStrings(s.keys, key)
	if i < len(s.keys) && s.keys[i] == key {
		s.keys = append(s.keys[:i], s.keys[i+1:]...)
	}
}

// VersioningStatus returns the current versioning mode.
func (s *Store) VersioningStatus() VersioningStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.versioning
}

// SetVersioning transitions the bucket's versioning state. Transitioning
// from Disabled to Enabled/Suspended wraps every existing object as the
// single element of a new version list (spec.md §3, idempotent).
func (s *Store) SetVersioning(status VersioningStatus) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.versioning == VersioningDisabled && status != VersioningDisabled {
		s.transitionToVersionedLocked()
	}
	s.versioning = status
}

func (s *Store) transitionToVersionedLocked() {
	for _, k := range s.keys {
		stack := s.versions[k]
		if len(stack) == 1 && stack[0].Object != nil && stack[0].Object.VersionID == "" {
			stack[0].Object.VersionID = nullVersionID
		}
	}
}

func (s *Store) isVersioned() bool {
	return s.versioning == VersioningEnabled || s.versioning == VersioningSuspended
}

// Put inserts or replaces an object. In unversioned mode it replaces in
// place and returns the previous object, if any. In versioned mode it
// assigns a fresh version id when the caller supplied "null" (unless
// versioning is merely Suspended, which keeps writing "null" per spec.md
// §3), prepends to the version stack, and returns nil.
func (s *Store) Put(obj *Object) *Object {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isVersioned() {
		old := s.latestObjectLocked(obj.Key)
		obj.VersionID = nullVersionID
		s.versions[obj.Key] = []versionEntry{{Object: obj}}
		s.insertKeyLocked(obj.Key)
		return old
	}

	if s.versioning == VersioningSuspended {
		obj.VersionID = nullVersionID
		s.replaceNullVersionLocked(obj)
		return nil
	}

	if obj.VersionID == "" || obj.VersionID == nullVersionID {
		obj.VersionID = uuid.New().String()
	}
	stack := s.versions[obj.Key]
	s.versions[obj.Key] = append([]versionEntry{{Object: obj}}, stack...)
	s.insertKeyLocked(obj.Key)
	return nil
}

// replaceNullVersionLocked implements Suspended-mode semantics: a new
// write with version-id "null" overwrites any prior "null" entry in place
// rather than stacking (spec.md §3), but deeper real versions are kept.
func (s *Store) replaceNullVersionLocked(obj *Object) {
	stack := s.versions[obj.Key]
	for i, v := range stack {
		if !v.isDeleteMarker() && v.Object.VersionID == nullVersionID {
			stack[i] = versionEntry{Object: obj}
			s.versions[obj.Key] = stack
			s.insertKeyLocked(obj.Key)
			return
		}
	}
	s.versions[obj.Key] = append([]versionEntry{{Object: obj}}, stack...)
	s.insertKeyLocked(obj.Key)
}

func (s *Store) latestObjectLocked(key string) *Object {
	stack := s.versions[key]
	if len(stack) == 0 {
		return nil
	}
	return stack[0].Object
}

// Get returns the current object for key: the sole entry in unversioned
// mode, or the newest entry in versioned mode only if it is an object
// (latest-is-delete-marker returns nil, per spec.md §4.C).
func (s *Store) Get(key string) *Object {
	s.mu.RLock()
	defer s.mu.RUnlock()
	stack := s.versions[key]
	if len(stack) == 0 {
		return nil
	}
	if stack[0].isDeleteMarker() {
		return nil
	}
	return stack[0].Object
}

// GetVersion looks up one exact version. In unversioned mode only "null"
// resolves.
func (s *Store) GetVersion(key, versionID string) (*Object, *DeleteMarker, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.isVersioned() && versionID != nullVersionID {
		return nil, nil, false
	}
	for _, v := range s.versions[key] {
		if v.versionID() == versionID {
			return v.Object, v.Marker, true
		}
	}
	return nil, nil, false
}

// IsDeleteMarker reports whether the exact version is a delete marker.
func (s *Store) IsDeleteMarker(key, versionID string) bool {
	_, marker, ok := s.GetVersion(key, versionID)
	return ok && marker != nil
}

// Delete removes a key outright (unversioned mode only) and returns the
// removed object, if any.
func (s *Store) Delete(key string) *Object {
	s.mu.Lock()
	defer s.mu.Unlock()
	stack := s.versions[key]
	if len(stack) == 0 {
		return nil
	}
	old := stack[0].Object
	delete(s.versions, key)
	s.removeKeyLocked(key)
	return old
}

// DeleteVersioned inserts a delete marker (versioned mode) or removes the
// object directly (unversioned mode), per spec.md §4.C. lastModified is
// supplied by the caller so the operation layer controls the clock.
func (s *Store) DeleteVersioned(key, owner string, lastModified time.Time) (newVersionID string, hadPriorObject bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isVersioned() {
		stack := s.versions[key]
		had := len(stack) > 0
		delete(s.versions, key)
		s.removeKeyLocked(key)
		return "", had
	}

	stack := s.versions[key]
	hadPriorObject = len(stack) > 0 && !stack[0].isDeleteMarker()
	vid := uuid.New().String()
	marker := &DeleteMarker{Key: key, VersionID: vid, Owner: owner, LastModified: lastModified}
	s.versions[key] = append([]versionEntry{{Marker: marker}}, stack...)
	s.insertKeyLocked(key)
	return vid, hadPriorObject
}

// DeleteVersion removes one specific version entry (object or marker) and
// cleans up the key entirely if its stack becomes empty.
func (s *Store) DeleteVersion(key, versionID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	stack := s.versions[key]
	for i, v := range stack {
		if v.versionID() == versionID {
			stack = append(stack[:i], stack[i+1:]...)
			if len(stack) == 0 {
				delete(s.versions, key)
				s.removeKeyLocked(key)
			} else {
				s.versions[key] = stack
			}
			return true
		}
	}
	return false
}

// Len counts keys whose latest entry is a real object (spec.md §4.C).
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, k := range s.keys {
		stack := s.versions[k]
		if len(stack) > 0 && !stack[0].isDeleteMarker() {
			n++
		}
	}
	return n
}

// IsEmpty reports whether Len() == 0.
func (s *Store) IsEmpty() bool { return s.Len() == 0 }

// TransitionToVersioned is the idempotent public entry point used by
// bucket-level PutBucketVersioning handling; SetVersioning already performs
// the transition, this wraps it for callers that only need the transition
// without changing status away from Enabled.
func (s *Store) TransitionToVersioned() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.versioning == VersioningDisabled {
		s.transitionToVersionedLocked()
		s.versioning = VersioningEnabled
	}
}

// AllVersions returns every version entry stored for key, newest first, for
// use by higher layers (e.g. object-lock checks against a specific
// version). Returns a new slice holding copies of the entries; the objects
// and markers they point to are shared, not deep-copied.
func (s *Store) AllVersions(key string) []versionEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	stack := s.versions[key]
	out := make([]versionEntry, len(stack))
	copy(out, stack)
	return out
}

// LatestIsDeleteMarker reports whether key's newest version entry exists and
// is a delete marker, returning its version id for the caller's side
// effects (e.g. the x-amz-delete-marker / version-id response headers in
// spec.md §4.F's GetObject/HeadObject contract).
func (s *Store) LatestIsDeleteMarker(key string) (versionID string, ok bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	stack := s.versions[key]
	if len(stack) == 0 || !stack[0].isDeleteMarker() {
		return "", false
	}
	return stack[0].Marker.VersionID, true
}
