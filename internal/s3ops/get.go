package s3ops

import (
	"fmt"
	"strconv"
	"strings"

	"backend2/internal/apperr"
	"backend2/internal/s3meta"
)

// GetObjectInput carries the inputs for GetObject/HeadObject.
type GetObjectInput struct {
	Bucket      string
	Key         string
	VersionID   string // empty means "latest"
	IfMatch     string
	IfNoneMatch string
	Range       string // raw "bytes=a-b" header, GetObject only
}

// GetObjectOutput is returned on success.
type GetObjectOutput struct {
	Object       *s3meta.Object
	Body         []byte
	ContentRange string // set only when a Range was honored
}

// deleteMarkerError carries the version id of the delete marker that was
// hit, so the HTTP layer can emit x-amz-delete-marker:true and the version
// id header alongside the MethodNotAllowed status (spec.md §4.F).
type deleteMarkerError struct {
	Err       *apperr.Error
	VersionID string
}

func (e *deleteMarkerError) Error() string { return e.Err.Error() }
func (e *deleteMarkerError) Unwrap() error { return e.Err }

// AsDeleteMarkerError extracts delete-marker detail from an error returned
// by GetObject/HeadObject, if any.
func AsDeleteMarkerError(err error) (versionID string, ok bool) {
	if dm, is := err.(*deleteMarkerError); is {
		return dm.VersionID, true
	}
	return "", false
}

// GetObject implements spec.md §4.F's GetObject contract: version
// resolution, conditional-header evaluation, and Range parsing.
func (s *Service) GetObject(in GetObjectInput) (*GetObjectOutput, error) {
	bucket, err := s.Registry.GetBucket(in.Bucket)
	if err != nil {
		return nil, err
	}
	obj, err := s.resolveObject(bucket.Objects, in.Key, in.VersionID)
	if err != nil {
		return nil, err
	}

	if err := evaluateConditionals(obj.ETag, in.IfMatch, in.IfNoneMatch); err != nil {
		return nil, err
	}

	out := &GetObjectOutput{Object: obj}

	if in.Range != "" {
		start, end, err := parseRange(in.Range, obj.Size)
		if err != nil {
			return nil, err
		}
		body, err := s.Blobs.ReadObject(in.Bucket, in.Key, obj.VersionID, &[2]int64{start, end})
		if err != nil {
			return nil, apperr.Internal("failed to read object bytes").WithCause(err)
		}
		out.Body = body
		out.ContentRange = fmt.Sprintf("bytes %d-%d/%d", start, end, obj.Size)
		return out, nil
	}

	body, err := s.Blobs.ReadObject(in.Bucket, in.Key, obj.VersionID, nil)
	if err != nil {
		return nil, apperr.Internal("failed to read object bytes").WithCause(err)
	}
	out.Body = body
	return out, nil
}

// HeadObject is GetObject without the byte read (no Range honored either,
// matching real S3 semantics).
func (s *Service) HeadObject(in GetObjectInput) (*GetObjectOutput, error) {
	bucket, err := s.Registry.GetBucket(in.Bucket)
	if err != nil {
		return nil, err
	}
	obj, err := s.resolveObject(bucket.Objects, in.Key, in.VersionID)
	if err != nil {
		return nil, err
	}
	if err := evaluateConditionals(obj.ETag, in.IfMatch, in.IfNoneMatch); err != nil {
		return nil, err
	}
	return &GetObjectOutput{Object: obj}, nil
}

// resolveObject finds the object to read, surfacing a delete-marker hit as
// a distinct MethodNotAllowed error with the marker's version id attached
// (spec.md §4.F).
func (s *Service) resolveObject(store *s3meta.Store, key, versionID string) (*s3meta.Object, error) {
	if versionID != "" {
		obj, marker, ok := store.GetVersion(key, versionID)
		if !ok {
			return nil, apperr.NoSuchVersion(key, versionID)
		}
		if marker != nil {
			return nil, &deleteMarkerError{
				Err:       apperr.MethodNotAllowed("The specified method is not allowed against this resource"),
				VersionID: marker.VersionID,
			}
		}
		return obj, nil
	}
	if obj := store.Get(key); obj != nil {
		return obj, nil
	}
	if markerVersionID, ok := store.LatestIsDeleteMarker(key); ok {
		return nil, &deleteMarkerError{
			Err:       apperr.MethodNotAllowed("The specified method is not allowed against this resource"),
			VersionID: markerVersionID,
		}
	}
	return nil, apperr.NoSuchKey(key)
}

// evaluateConditionals implements spec.md §4.F's conditional-request laws
// (also spec.md §8 property 7).
func evaluateConditionals(etag, ifMatch, ifNoneMatch string) error {
	if ifMatch != "" && !etagMatches(ifMatch, etag) {
		return apperr.PreconditionFailed()
	}
	if ifNoneMatch != "" && etagMatches(ifNoneMatch, etag) {
		return apperr.NotModified()
	}
	return nil
}

func etagMatches(header, etag string) bool {
	if header == "*" {
		return true
	}
	return normalizeETag(header) == normalizeETag(etag)
}

func normalizeETag(s string) string {
	return strings.Trim(strings.TrimSpace(s), `"`)
}

// parseRange parses "bytes=a-b" | "bytes=-n" | "bytes=n-" into an inclusive
// [start,end] clamped to size-1 (spec.md §4.F).
func parseRange(header string, size int64) (start, end int64, err error) {
	const prefix = "bytes="
	if !strings.HasPrefix(header, prefix) {
		return 0, 0, apperr.InvalidRange()
	}
	spec := strings.TrimPrefix(header, prefix)
	parts := strings.SplitN(spec, "-", 2)
	if len(parts) != 2 {
		return 0, 0, apperr.InvalidRange()
	}
	startStr, endStr := parts[0], parts[1]

	switch {
	case startStr == "" && endStr != "":
		n, perr := strconv.ParseInt(endStr, 10, 64)
		if perr != nil || n <= 0 {
			return 0, 0, apperr.InvalidRange()
		}
		if n > size {
			n = size
		}
		start = size - n
		end = size - 1
	case startStr != "" && endStr == "":
		v, perr := strconv.ParseInt(startStr, 10, 64)
		if perr != nil || v < 0 {
			return 0, 0, apperr.InvalidRange()
		}
		start = v
		end = size - 1
	case startStr != "" && endStr != "":
		v1, perr1 := strconv.ParseInt(startStr, 10, 64)
		v2, perr2 := strconv.ParseInt(endStr, 10, 64)
		if perr1 != nil || perr2 != nil || v1 < 0 || v2 < v1 {
			return 0, 0, apperr.InvalidRange()
		}
		start = v1
		end = v2
		if end > size-1 {
			end = size - 1
		}
	default:
		return 0, 0, apperr.InvalidRange()
	}

	if size == 0 || start > size-1 || start > end {
		return 0, 0, apperr.InvalidRange()
	}
	return start, end, nil
}
