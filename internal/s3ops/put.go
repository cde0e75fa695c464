package s3ops

import (
	"crypto/md5"
	"encoding/base64"
	"encoding/hex"
	"net/url"

	"backend2/internal/apperr"
	"backend2/internal/s3blob"
	"backend2/internal/s3meta"
)

// PutObjectInput carries the validated inputs for PutObject (spec.md §4.F).
type PutObjectInput struct {
	Bucket          string
	Key             string
	Body            []byte
	ContentMD5      string // base64, as supplied on the wire; validated if present
	ContentType     string
	ContentEncoding string
	CacheControl    string
	UserMetadata    map[string]string
	TaggingRaw      string // form-urlencoded, e.g. "k1=v1&k2=v2"
	CannedACL       string
	SSEAlgorithm    string
	SSEKMSKeyID     string
	StorageClass    string
	Owner           string
	ObjectLockMode  string
}

// PutObjectOutput is returned on success.
type PutObjectOutput struct {
	ETag      string
	VersionID string
}

// PutObject implements spec.md §4.F's PutObject contract.
func (s *Service) PutObject(in PutObjectInput) (*PutObjectOutput, error) {
	if err := validateKey(in.Key); err != nil {
		return nil, err
	}
	for _, v := range in.UserMetadata {
		if err := validateMetadataValue(v); err != nil {
			return nil, err
		}
	}
	if in.ContentMD5 != "" {
		if err := verifyContentMD5(in.ContentMD5, in.Body); err != nil {
			return nil, err
		}
	}

	bucket, err := s.Registry.GetBucket(in.Bucket)
	if err != nil {
		return nil, err
	}

	// A version id is chosen before any bytes are written, so the blob
	// store's (bucket,key,version) tuple is final from the first write and
	// concurrent puts to the same key never contend on a shared slot.
	versioning := bucket.Objects.VersioningStatus()
	versionID := "null"
	if versioning == s3meta.VersioningEnabled {
		versionID = s3blob.NewVersionID()
	}

	tags, err := parseTagging(in.TaggingRaw)
	if err != nil {
		return nil, err
	}

	writeRes, err := s.Blobs.WriteObject(in.Bucket, in.Key, versionID, in.Body)
	if err != nil {
		return nil, apperr.Internal("failed to write object bytes").WithCause(err)
	}

	obj := &s3meta.Object{
		Key:          in.Key,
		VersionID:    versionID,
		ETag:         writeRes.ETag,
		Size:         writeRes.Size,
		LastModified: s.Now(),
		StorageClass: in.StorageClass,
		Owner:        in.Owner,
		Metadata: s3meta.ObjectMetadata{
			ContentType:     in.ContentType,
			ContentEncoding: in.ContentEncoding,
			CacheControl:    in.CacheControl,
			UserMetadata:    in.UserMetadata,
			Tags:            tags,
			CannedACL:       in.CannedACL,
			SSEAlgorithm:    in.SSEAlgorithm,
			SSEKMSKeyID:     in.SSEKMSKeyID,
			ObjectLockMode:  in.ObjectLockMode,
		},
	}
	bucket.Objects.Put(obj)
	bucket.RecordEvent("Put", obj.Key, obj.VersionID, obj.LastModified)

	out := &PutObjectOutput{ETag: writeRes.ETag}
	if versioning == s3meta.VersioningEnabled {
		out.VersionID = obj.VersionID
	}
	return out, nil
}

func verifyContentMD5(b64 string, body []byte) error {
	decoded, err := base64.StdEncoding.DecodeString(b64)
	if err != nil {
		return apperr.InvalidDigest("Content-MD5 is not valid base64")
	}
	sum := md5.Sum(body)
	if hex.EncodeToString(decoded) != hex.EncodeToString(sum[:]) {
		return apperr.BadDigest()
	}
	return nil
}

func parseTagging(raw string) (map[string]string, error) {
	if raw == "" {
		return nil, nil
	}
	values, err := url.ParseQuery(raw)
	if err != nil {
		return nil, apperr.InvalidArgument("tagging must be form-urlencoded")
	}
	tags := make(map[string]string, len(values))
	for k, v := range values {
		if len(v) > 0 {
			tags[k] = v[0]
		}
	}
	return tags, nil
}
