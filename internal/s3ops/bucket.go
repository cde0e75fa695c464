package s3ops

import (
	"regexp"

	"backend2/internal/apperr"
	"backend2/internal/s3meta"
	"backend2/internal/s3registry"
)

var bucketNamePattern = regexp.MustCompile(`^[a-z0-9][a-z0-9.-]{1,61}[a-z0-9]$`)

func validateBucketName(name string) error {
	if !bucketNamePattern.MatchString(name) {
		return apperr.InvalidBucketName(name)
	}
	return nil
}

// CreateBucket registers a new bucket (spec.md §4.D).
func (s *Service) CreateBucket(name, region, owner string) (*s3registry.Bucket, error) {
	if err := validateBucketName(name); err != nil {
		return nil, err
	}
	return s.Registry.CreateBucket(name, region, owner)
}

// DeleteBucket removes an empty bucket and its blob data.
func (s *Service) DeleteBucket(name string) error {
	if err := s.Registry.DeleteBucket(name); err != nil {
		return err
	}
	s.Blobs.DeleteBucketData(name)
	return nil
}

// ListBuckets returns every registered bucket.
func (s *Service) ListBuckets() []*s3registry.Bucket {
	return s.Registry.ListBuckets()
}

// PutBucketVersioning sets the bucket's versioning status (spec.md §3).
func (s *Service) PutBucketVersioning(bucketName string, status s3meta.VersioningStatus) error {
	b, err := s.Registry.GetBucket(bucketName)
	if err != nil {
		return err
	}
	b.Objects.SetVersioning(status)
	return nil
}

// GetBucketVersioning returns the bucket's current versioning status.
func (s *Service) GetBucketVersioning(bucketName string) (s3meta.VersioningStatus, error) {
	b, err := s.Registry.GetBucket(bucketName)
	if err != nil {
		return s3meta.VersioningDisabled, err
	}
	return b.Objects.VersioningStatus(), nil
}
