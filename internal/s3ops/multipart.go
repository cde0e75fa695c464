package s3ops

import (
	"backend2/internal/apperr"
	"backend2/internal/s3blob"
	"backend2/internal/s3meta"
	"backend2/internal/s3multipart"
)

// CreateMultipartUploadInput carries the inputs for CreateMultipartUpload
// (spec.md §4.E).
type CreateMultipartUploadInput struct {
	Bucket            string
	Key               string
	Owner             string
	ContentType       string
	StorageClass      string
	ChecksumAlgorithm string
	UserMetadata      map[string]string
	SSEAlgorithm      string
	SSEKMSKeyID       string
}

// CreateMultipartUpload starts a new multipart upload and returns the Upload,
// which carries its generated id.
func (s *Service) CreateMultipartUpload(in CreateMultipartUploadInput) (*s3multipart.Upload, error) {
	if err := validateKey(in.Key); err != nil {
		return nil, err
	}
	bucket, err := s.Registry.GetBucket(in.Bucket)
	if err != nil {
		return nil, err
	}
	u := bucket.Multipart.Create(in.Key, in.Owner, in.StorageClass, in.ChecksumAlgorithm, in.UserMetadata)
	u.SSEAlgorithm = in.SSEAlgorithm
	u.SSEKMSKeyID = in.SSEKMSKeyID
	return u, nil
}

// UploadPartInput carries the inputs for UploadPart (spec.md §4.E).
type UploadPartInput struct {
	Bucket     string
	Key        string
	UploadID   string
	PartNumber int
	Body       []byte
	ContentMD5 string
}

// UploadPartOutput is returned on success.
type UploadPartOutput struct {
	ETag string
}

// UploadPart stores one part's bytes under the upload's id and records its
// metadata in the multipart coordinator.
func (s *Service) UploadPart(in UploadPartInput) (*UploadPartOutput, error) {
	bucket, err := s.Registry.GetBucket(in.Bucket)
	if err != nil {
		return nil, err
	}
	if _, err := bucket.Multipart.Get(in.UploadID); err != nil {
		return nil, err
	}
	if in.ContentMD5 != "" {
		if err := verifyContentMD5(in.ContentMD5, in.Body); err != nil {
			return nil, err
		}
	}

	writeRes, err := s.Blobs.WritePart(in.Bucket, in.UploadID, in.PartNumber, in.Body)
	if err != nil {
		return nil, apperr.Internal("failed to write part bytes").WithCause(err)
	}
	if err := bucket.Multipart.RecordPart(in.UploadID, in.PartNumber, writeRes.ETag, writeRes.Size, ""); err != nil {
		return nil, err
	}
	return &UploadPartOutput{ETag: writeRes.ETag}, nil
}

// UploadPartCopyInput carries the inputs for UploadPartCopy (spec.md §4.E):
// a part's bytes come from an existing object instead of the request body.
type UploadPartCopyInput struct {
	Bucket       string
	Key          string
	UploadID     string
	PartNumber   int
	SrcBucket    string
	SrcKey       string
	SrcVersionID string
}

// UploadPartCopy reads the source object's bytes and stores them as one
// part of an in-progress multipart upload.
func (s *Service) UploadPartCopy(in UploadPartCopyInput) (*UploadPartOutput, error) {
	bucket, err := s.Registry.GetBucket(in.Bucket)
	if err != nil {
		return nil, err
	}
	if _, err := bucket.Multipart.Get(in.UploadID); err != nil {
		return nil, err
	}

	srcBucket, err := s.Registry.GetBucket(in.SrcBucket)
	if err != nil {
		return nil, err
	}
	srcObj, err := s.resolveObject(srcBucket.Objects, in.SrcKey, in.SrcVersionID)
	if err != nil {
		return nil, err
	}
	body, err := s.Blobs.ReadObject(in.SrcBucket, in.SrcKey, srcObj.VersionID, nil)
	if err != nil {
		return nil, apperr.Internal("failed to read source object bytes").WithCause(err)
	}

	writeRes, err := s.Blobs.WritePart(in.Bucket, in.UploadID, in.PartNumber, body)
	if err != nil {
		return nil, apperr.Internal("failed to write part bytes").WithCause(err)
	}
	if err := bucket.Multipart.RecordPart(in.UploadID, in.PartNumber, writeRes.ETag, writeRes.Size, ""); err != nil {
		return nil, err
	}
	return &UploadPartOutput{ETag: writeRes.ETag}, nil
}

// CompleteMultipartUploadInput carries the inputs for
// CompleteMultipartUpload (spec.md §4.E).
type CompleteMultipartUploadInput struct {
	Bucket      string
	Key         string
	UploadID    string
	PartNumbers []int
	Owner       string
}

// CompleteMultipartUpload assembles the recorded parts into a final object
// and discards the upload's bookkeeping.
func (s *Service) CompleteMultipartUpload(in CompleteMultipartUploadInput) (*PutObjectOutput, error) {
	bucket, err := s.Registry.GetBucket(in.Bucket)
	if err != nil {
		return nil, err
	}
	upload, err := bucket.Multipart.Get(in.UploadID)
	if err != nil {
		return nil, err
	}
	if err := bucket.Multipart.ValidatePartList(in.UploadID, in.PartNumbers); err != nil {
		return nil, err
	}

	versioning := bucket.Objects.VersioningStatus()
	versionID := "null"
	if versioning == s3meta.VersioningEnabled {
		versionID = s3blob.NewVersionID()
	}

	writeRes, partMD5s, err := s.Blobs.CompleteMultipart(in.Bucket, in.UploadID, in.Key, versionID, in.PartNumbers)
	if err != nil {
		return nil, apperr.Internal("failed to assemble multipart object").WithCause(err)
	}

	obj := &s3meta.Object{
		Key:          in.Key,
		VersionID:    versionID,
		ETag:         writeRes.ETag,
		Size:         writeRes.Size,
		LastModified: s.Now(),
		StorageClass: upload.StorageClass,
		Owner:        in.Owner,
		Metadata: s3meta.ObjectMetadata{
			UserMetadata: upload.Metadata,
			SSEAlgorithm: upload.SSEAlgorithm,
			SSEKMSKeyID:  upload.SSEKMSKeyID,
		},
		PartsCount: len(in.PartNumbers),
		PartETags:  partMD5s,
	}
	bucket.Objects.Put(obj)
	bucket.Multipart.Remove(in.UploadID)
	bucket.RecordEvent("CompleteMultipartUpload", obj.Key, obj.VersionID, obj.LastModified)

	out := &PutObjectOutput{ETag: writeRes.ETag}
	if versioning == s3meta.VersioningEnabled {
		out.VersionID = obj.VersionID
	}
	return out, nil
}

// AbortMultipartUpload discards an in-progress upload and its recorded
// parts.
func (s *Service) AbortMultipartUpload(bucketName, uploadID string) error {
	bucket, err := s.Registry.GetBucket(bucketName)
	if err != nil {
		return err
	}
	if _, err := bucket.Multipart.Get(uploadID); err != nil {
		return err
	}
	s.Blobs.AbortMultipart(bucketName, uploadID)
	bucket.Multipart.Remove(uploadID)
	return nil
}

// ListMultipartUploads returns every in-progress upload for a bucket.
func (s *Service) ListMultipartUploads(bucketName string) ([]*s3multipart.Upload, error) {
	bucket, err := s.Registry.GetBucket(bucketName)
	if err != nil {
		return nil, err
	}
	return bucket.Multipart.List(), nil
}

// ListParts returns every recorded part for one upload.
func (s *Service) ListParts(bucketName, uploadID string) ([]s3multipart.PartInfo, error) {
	bucket, err := s.Registry.GetBucket(bucketName)
	if err != nil {
		return nil, err
	}
	upload, err := bucket.Multipart.Get(uploadID)
	if err != nil {
		return nil, err
	}
	return upload.Parts(), nil
}
