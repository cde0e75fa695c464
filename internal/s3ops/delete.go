package s3ops

import (
	"backend2/internal/apperr"
	"backend2/internal/s3meta"
)

// DeleteObjectInput carries the inputs for DeleteObject (spec.md §4.F).
type DeleteObjectInput struct {
	Bucket        string
	Key           string
	VersionID     string // empty deletes/marks the latest version
	Owner         string
	BypassGovernance bool
}

// DeleteObjectOutput is returned on success.
type DeleteObjectOutput struct {
	DeleteMarker bool
	VersionID    string
}

// DeleteObject implements spec.md §4.F's DeleteObject contract: deleting a
// specific version enforces object-lock, while deleting "the object" in a
// versioned bucket inserts a delete marker instead of removing data.
func (s *Service) DeleteObject(in DeleteObjectInput) (*DeleteObjectOutput, error) {
	bucket, err := s.Registry.GetBucket(in.Bucket)
	if err != nil {
		return nil, err
	}

	if in.VersionID != "" {
		if err := s.checkObjectLock(bucket.Objects, in.Key, in.VersionID, in.BypassGovernance); err != nil {
			return nil, err
		}
		bucket.Objects.DeleteVersion(in.Key, in.VersionID)
		bucket.RecordEvent("Delete", in.Key, in.VersionID, s.Now())
		return &DeleteObjectOutput{VersionID: in.VersionID}, nil
	}

	if bucket.Objects.VersioningStatus() == s3meta.VersioningDisabled {
		bucket.Objects.Delete(in.Key)
		s.Blobs.DeleteObject(in.Bucket, in.Key, "null")
		bucket.RecordEvent("Delete", in.Key, "", s.Now())
		return &DeleteObjectOutput{}, nil
	}

	vid, _ := bucket.Objects.DeleteVersioned(in.Key, in.Owner, s.Now())
	bucket.RecordEvent("Delete", in.Key, vid, s.Now())
	return &DeleteObjectOutput{DeleteMarker: true, VersionID: vid}, nil
}

// DeleteObjectsInput carries one batch delete request (spec.md §4.F).
type DeleteObjectsInput struct {
	Bucket string
	Owner  string
	Keys   []DeleteObjectsKey
	Quiet  bool
}

// DeleteObjectsKey is one (key, optional version) pair in a batch delete.
type DeleteObjectsKey struct {
	Key       string
	VersionID string
}

// DeletedObject describes one object successfully processed by DeleteObjects.
type DeletedObject struct {
	Key          string
	VersionID    string
	DeleteMarker bool
}

// DeleteError describes one object that failed within a DeleteObjects batch.
type DeleteError struct {
	Key       string
	VersionID string
	Err       *apperr.Error
}

// DeleteObjectsOutput aggregates per-object results (spec.md §4.F: "Quiet
// suppresses the deleted[] list in the response, not the errors[] list").
type DeleteObjectsOutput struct {
	Deleted []DeletedObject
	Errors  []DeleteError
}

// DeleteObjects implements spec.md §4.F's DeleteObjects: each key is
// processed independently, failures of one do not abort the rest.
func (s *Service) DeleteObjects(in DeleteObjectsInput) (*DeleteObjectsOutput, error) {
	// Validate the bucket exists up front; each DeleteObject call below
	// re-resolves it independently, so the lookup result itself is unused here.
	if _, err := s.Registry.GetBucket(in.Bucket); err != nil {
		return nil, err
	}

	out := &DeleteObjectsOutput{}
	for _, k := range in.Keys {
		res, derr := s.DeleteObject(DeleteObjectInput{
			Bucket:    in.Bucket,
			Key:       k.Key,
			VersionID: k.VersionID,
			Owner:     in.Owner,
		})
		if derr != nil {
			appErr, ok := apperr.As(derr)
			if !ok {
				appErr = apperr.Internal(derr.Error())
			}
			out.Errors = append(out.Errors, DeleteError{Key: k.Key, VersionID: k.VersionID, Err: appErr})
			continue
		}
		if !in.Quiet {
			out.Deleted = append(out.Deleted, DeletedObject{
				Key:          k.Key,
				VersionID:    res.VersionID,
				DeleteMarker: res.DeleteMarker,
			})
		}
	}
	return out, nil
}

// checkObjectLock enforces spec.md §4.F's object-lock law: a COMPLIANCE
// hold, or a GOVERNANCE hold without BypassGovernance, or any legal hold,
// blocks deletion of that exact version with AccessDenied.
func (s *Service) checkObjectLock(store *s3meta.Store, key, versionID string, bypassGovernance bool) error {
	obj, marker, ok := store.GetVersion(key, versionID)
	if !ok || marker != nil {
		return nil // nothing but a marker to remove; no lock applies
	}
	if obj.Metadata.ObjectLockLegalHold {
		return apperr.AccessDenied("object is under a legal hold and cannot be deleted")
	}
	if obj.Metadata.ObjectLockMode == "" {
		return nil
	}
	if s.Now().After(obj.Metadata.ObjectLockRetainUntilDate) {
		return nil
	}
	if obj.Metadata.ObjectLockMode == "GOVERNANCE" && bypassGovernance {
		return nil
	}
	return apperr.AccessDenied("object is locked and cannot be deleted")
}
