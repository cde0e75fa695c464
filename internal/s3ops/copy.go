package s3ops

import (
	"backend2/internal/apperr"
	"backend2/internal/s3blob"
	"backend2/internal/s3meta"
)

// CopyObjectInput carries the inputs for CopyObject (spec.md §4.F). The
// x-amz-copy-source header is parsed by the HTTP layer into SrcBucket/
// SrcKey/SrcVersionID before reaching this operation.
type CopyObjectInput struct {
	SrcBucket   string
	SrcKey      string
	SrcVersionID string // empty means "latest"

	DstBucket string
	DstKey    string
	Owner     string

	// MetadataDirective is "COPY" (default, keep source metadata) or
	// "REPLACE" (use the fields below instead).
	MetadataDirective string
	ContentType       string
	ContentEncoding   string
	CacheControl      string
	UserMetadata      map[string]string
	Tags              map[string]string
	StorageClass      string

	CopySourceIfMatch     string
	CopySourceIfNoneMatch string
}

// CopyObjectOutput is returned on success.
type CopyObjectOutput struct {
	ETag         string
	LastModified int64 // unix seconds, kept primitive to avoid importing time at call sites
	VersionID    string
}

// CopyObject implements spec.md §4.F's CopyObject contract: same-semantics
// read of the source (conditional headers honored against the source
// ETag), a fresh write into the destination honoring its own versioning
// mode, and either COPY or REPLACE of metadata.
func (s *Service) CopyObject(in CopyObjectInput) (*CopyObjectOutput, error) {
	srcBucket, err := s.Registry.GetBucket(in.SrcBucket)
	if err != nil {
		return nil, err
	}
	srcObj, err := s.resolveObject(srcBucket.Objects, in.SrcKey, in.SrcVersionID)
	if err != nil {
		return nil, err
	}
	if err := evaluateConditionals(srcObj.ETag, in.CopySourceIfMatch, in.CopySourceIfNoneMatch); err != nil {
		return nil, err
	}

	dstBucket, err := s.Registry.GetBucket(in.DstBucket)
	if err != nil {
		return nil, err
	}

	body, err := s.Blobs.ReadObject(in.SrcBucket, in.SrcKey, srcObj.VersionID, nil)
	if err != nil {
		return nil, apperr.Internal("failed to read source object bytes").WithCause(err)
	}

	versioning := dstBucket.Objects.VersioningStatus()
	versionID := "null"
	if versioning == s3meta.VersioningEnabled {
		versionID = s3blob.NewVersionID()
	}

	writeRes, err := s.Blobs.WriteObject(in.DstBucket, in.DstKey, versionID, body)
	if err != nil {
		return nil, apperr.Internal("failed to write destination object bytes").WithCause(err)
	}

	meta := srcObj.Metadata
	if in.MetadataDirective == "REPLACE" {
		meta = s3meta.ObjectMetadata{
			ContentType:     in.ContentType,
			ContentEncoding: in.ContentEncoding,
			CacheControl:    in.CacheControl,
			UserMetadata:    in.UserMetadata,
			Tags:            in.Tags,
		}
	}

	storageClass := in.StorageClass
	if storageClass == "" {
		storageClass = srcObj.StorageClass
	}

	now := s.Now()
	dstObj := &s3meta.Object{
		Key:          in.DstKey,
		VersionID:    versionID,
		ETag:         writeRes.ETag,
		Size:         writeRes.Size,
		LastModified: now,
		StorageClass: storageClass,
		Owner:        in.Owner,
		Metadata:     meta,
	}
	dstBucket.Objects.Put(dstObj)

	out := &CopyObjectOutput{ETag: writeRes.ETag, LastModified: now.Unix()}
	if versioning == s3meta.VersioningEnabled {
		out.VersionID = dstObj.VersionID
	}
	return out, nil
}
