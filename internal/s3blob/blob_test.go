package s3blob

import (
	"strings"
	"testing"
)

func TestWriteReadObjectRoundTrip(t *testing.T) {
	s := New(DefaultSpillThreshold, t.TempDir())
	res, err := s.WriteObject("b", "k", "null", []byte("hello"))
	if err != nil {
		t.Fatalf("write: %v", err)
	}
	if res.ETag != `"5d41402abc4b2a76b9719d911017c592"` {
		t.Fatalf("unexpected etag: %s", res.ETag)
	}
	data, err := s.ReadObject("b", "k", "null", nil)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(data) != "hello" {
		t.Fatalf("expected hello, got %s", data)
	}
}

func TestReadObjectRange(t *testing.T) {
	s := New(DefaultSpillThreshold, t.TempDir())
	if _, err := s.WriteObject("b", "k", "null", []byte("hello world")); err != nil {
		t.Fatalf("write: %v", err)
	}
	data, err := s.ReadObject("b", "k", "null", &[2]int64{0, 4})
	if err != nil {
		t.Fatalf("range read: %v", err)
	}
	if string(data) != "hello" {
		t.Fatalf("expected hello, got %s", data)
	}
}

func TestReadObjectMissingKey(t *testing.T) {
	s := New(DefaultSpillThreshold, t.TempDir())
	if _, err := s.ReadObject("b", "missing", "null", nil); err != ErrNoSuchKey {
		t.Fatalf("expected ErrNoSuchKey, got %v", err)
	}
}

func TestSpillToDiskAboveThreshold(t *testing.T) {
	s := New(8, t.TempDir())
	big := strings.Repeat("x", 100)
	if _, err := s.WriteObject("b", "k", "null", []byte(big)); err != nil {
		t.Fatalf("write: %v", err)
	}
	data, err := s.ReadObject("b", "k", "null", nil)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(data) != big {
		t.Fatalf("spilled entry round-trip mismatch")
	}
}

func TestOverwriteDropsOldEntry(t *testing.T) {
	s := New(DefaultSpillThreshold, t.TempDir())
	if _, err := s.WriteObject("b", "k", "null", []byte("first")); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := s.WriteObject("b", "k", "null", []byte("second")); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	data, err := s.ReadObject("b", "k", "null", nil)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(data) != "second" {
		t.Fatalf("expected second, got %s", data)
	}
}

func TestCompleteMultipartProducesCompositeETag(t *testing.T) {
	s := New(DefaultSpillThreshold, t.TempDir())
	if _, err := s.WritePart("b", "upload1", 1, []byte("hello ")); err != nil {
		t.Fatalf("part1: %v", err)
	}
	if _, err := s.WritePart("b", "upload1", 2, []byte("world")); err != nil {
		t.Fatalf("part2: %v", err)
	}
	res, partMD5s, err := s.CompleteMultipart("b", "upload1", "k2", "null", []int{1, 2})
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if len(partMD5s) != 2 {
		t.Fatalf("expected 2 part md5s, got %d", len(partMD5s))
	}
	if !strings.HasSuffix(res.ETag, `-2"`) {
		t.Fatalf("expected composite etag ending in -2, got %s", res.ETag)
	}
	data, err := s.ReadObject("b", "k2", "null", nil)
	if err != nil {
		t.Fatalf("read assembled object: %v", err)
	}
	if string(data) != "hello world" {
		t.Fatalf("expected 'hello world', got %s", data)
	}
	// parts removed after completion
	if _, err := s.ReadPart("b", "upload1", 1); err != ErrInvalidPart {
		t.Fatalf("expected parts to be cleaned up after complete")
	}
}

func TestAbortMultipartRemovesParts(t *testing.T) {
	s := New(DefaultSpillThreshold, t.TempDir())
	if _, err := s.WritePart("b", "upload2", 1, []byte("data")); err != nil {
		t.Fatalf("part: %v", err)
	}
	s.AbortMultipart("b", "upload2")
	if _, err := s.ReadPart("b", "upload2", 1); err != ErrInvalidPart {
		t.Fatalf("expected part removed after abort")
	}
}

func TestDeleteObjectIdempotent(t *testing.T) {
	s := New(DefaultSpillThreshold, t.TempDir())
	s.DeleteObject("b", "missing", "null") // must not panic
	if _, err := s.WriteObject("b", "k", "null", []byte("x")); err != nil {
		t.Fatalf("write: %v", err)
	}
	s.DeleteObject("b", "k", "null")
	if _, err := s.ReadObject("b", "k", "null", nil); err != ErrNoSuchKey {
		t.Fatalf("expected deleted object to be gone")
	}
}
