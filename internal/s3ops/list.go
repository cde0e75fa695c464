package s3ops

import (
	"backend2/internal/s3meta"
)

// ListObjectsInput carries the inputs for ListObjects (spec.md §4.C).
type ListObjectsInput struct {
	Bucket     string
	Prefix     string
	Delimiter  string
	StartAfter string
	MaxKeys    int
}

// ListObjects is a thin wrapper resolving the bucket then delegating to the
// metadata store's listing algorithm.
func (s *Service) ListObjects(in ListObjectsInput) (*s3meta.ListObjectsResult, error) {
	bucket, err := s.Registry.GetBucket(in.Bucket)
	if err != nil {
		return nil, err
	}
	result := bucket.Objects.ListObjects(in.Prefix, in.Delimiter, in.StartAfter, in.MaxKeys)
	return &result, nil
}

// ListObjectVersionsInput carries the inputs for ListObjectVersions.
type ListObjectVersionsInput struct {
	Bucket          string
	Prefix          string
	Delimiter       string
	KeyMarker       string
	VersionIDMarker string
	MaxKeys         int
}

// ListObjectVersions is a thin wrapper over the metadata store's versioned
// listing algorithm.
func (s *Service) ListObjectVersions(in ListObjectVersionsInput) (*s3meta.ListObjectVersionsResult, error) {
	bucket, err := s.Registry.GetBucket(in.Bucket)
	if err != nil {
		return nil, err
	}
	result := bucket.Objects.ListObjectVersions(in.Prefix, in.Delimiter, in.KeyMarker, in.VersionIDMarker, in.MaxKeys)
	return &result, nil
}
