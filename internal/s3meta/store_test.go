package s3meta

import (
	"testing"
	"time"
)

func newObj(key, version string) *Object {
	return &Object{Key: key, VersionID: version, ETag: `"etag"`}
}

func TestUnversionedPutGetDelete(t *testing.T) {
	s := New()
	prev := s.Put(newObj("k", ""))
	if prev != nil {
		t.Fatalf("expected no previous object")
	}
	got := s.Get("k")
	if got == nil || got.VersionID != nullVersionID {
		t.Fatalf("expected stored object with null version id, got %+v", got)
	}
	prev = s.Put(newObj("k", ""))
	if prev == nil {
		t.Fatalf("expected previous object returned on overwrite")
	}
	deleted := s.Delete("k")
	if deleted == nil {
		t.Fatalf("expected delete to return removed object")
	}
	if s.Get("k") != nil {
		t.Fatalf("expected key gone after delete")
	}
}

func TestVersioningLifecycle(t *testing.T) {
	s := New()
	s.Put(newObj("k", ""))
	s.SetVersioning(VersioningEnabled)
	s.Put(newObj("k", ""))
	s.Put(newObj("k", ""))

	versions := s.AllVersions("k")
	if len(versions) != 3 {
		t.Fatalf("expected 3 versions (1 pre-versioning wrapped + 2 new), got %d", len(versions))
	}
	if versions[0].versionID() == nullVersionID {
		t.Fatalf("expected latest version to have a real uuid, not null")
	}
}

func TestGetReturnsNilWhenLatestIsDeleteMarker(t *testing.T) {
	s := New()
	s.SetVersioning(VersioningEnabled)
	s.Put(newObj("k", ""))
	vid, had := s.DeleteVersioned("k", "owner", time.Time{})
	if !had {
		t.Fatalf("expected prior object flag true")
	}
	if vid == "" {
		t.Fatalf("expected a new delete marker version id")
	}
	if s.Get("k") != nil {
		t.Fatalf("expected Get to return nil when latest is a delete marker")
	}
	if !s.IsDeleteMarker("k", vid) {
		t.Fatalf("expected IsDeleteMarker true for the new version")
	}
}

func TestDeleteVersionRemovesExactEntryAndCleansUpEmptyKey(t *testing.T) {
	s := New()
	s.SetVersioning(VersioningEnabled)
	s.Put(newObj("k", ""))
	versions := s.AllVersions("k")
	vid := versions[0].versionID()

	if !s.DeleteVersion("k", vid) {
		t.Fatalf("expected DeleteVersion to succeed")
	}
	if _, _, ok := s.GetVersion("k", vid); ok {
		t.Fatalf("expected version gone")
	}
	if s.Len() != 0 {
		t.Fatalf("expected key entry removed entirely once its version stack is empty")
	}
}

func TestSuspendedVersioningOverwritesNull(t *testing.T) {
	s := New()
	s.SetVersioning(VersioningEnabled)
	s.Put(newObj("k", ""))
	s.SetVersioning(VersioningSuspended)
	s.Put(newObj("k", ""))
	s.Put(newObj("k", ""))

	versions := s.AllVersions("k")
	nullCount := 0
	for _, v := range versions {
		if v.versionID() == nullVersionID {
			nullCount++
		}
	}
	if nullCount != 1 {
		t.Fatalf("expected exactly one null-version entry under suspended versioning, got %d", nullCount)
	}
}

func TestListObjectsPrefixAndDelimiter(t *testing.T) {
	s := New()
	for _, k := range []string{"a/b", "a/c", "a/d/e", "z"} {
		s.Put(newObj(k, ""))
	}
	res := s.ListObjects("a/", "/", "", 0)
	if len(res.Objects) != 2 {
		t.Fatalf("expected 2 objects directly under a/, got %d", len(res.Objects))
	}
	if len(res.CommonPrefixes) != 1 || res.CommonPrefixes[0] != "a/d/" {
		t.Fatalf("expected common prefix a/d/, got %v", res.CommonPrefixes)
	}
}

func TestListObjectsPagination(t *testing.T) {
	s := New()
	keys := []string{"a", "b", "c", "d", "e"}
	for _, k := range keys {
		s.Put(newObj(k, ""))
	}
	var collected []string
	marker := ""
	for {
		res := s.ListObjects("", "", marker, 2)
		for _, o := range res.Objects {
			collected = append(collected, o.Key)
		}
		if !res.IsTruncated {
			break
		}
		marker = res.NextMarker
	}
	if len(collected) != len(keys) {
		t.Fatalf("expected all %d keys via pagination, got %d: %v", len(keys), len(collected), collected)
	}
	for i, k := range keys {
		if collected[i] != k {
			t.Fatalf("expected ascending order, got %v", collected)
		}
	}
}

func TestListObjectVersionsIsLatest(t *testing.T) {
	s := New()
	s.SetVersioning(VersioningEnabled)
	s.Put(newObj("k", ""))
	s.Put(newObj("k", ""))

	res := s.ListObjectVersions("", "", "", "", 0)
	if len(res.Versions) != 2 {
		t.Fatalf("expected 2 versions, got %d", len(res.Versions))
	}
	if !res.Versions[0].IsLatest || res.Versions[1].IsLatest {
		t.Fatalf("expected only position 0 to be latest")
	}
}
