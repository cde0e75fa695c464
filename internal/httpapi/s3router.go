package httpapi

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"backend2/internal/apperr"
	"backend2/internal/auth"
	"backend2/internal/observability"
	"backend2/internal/s3meta"
	"backend2/internal/s3ops"
	"backend2/internal/s3registry"
	"backend2/internal/sigv4"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"
)

// S3Router is the path-style HTTP surface for the S3 operation layer
// (SPEC_FULL.md §6): sub-resource query-param dispatch mapped to
// internal/s3ops, with SigV4 authentication in front of every route.
// Grounded on interfaces/http/rest/router.go's chi wiring, generalized
// from the teacher's REST resources to S3's bucket/key addressing.
type S3Router struct {
	ops        *s3ops.Service
	logger     *zap.Logger
	resolver   *auth.StaticResolver
	tracer     *observability.Tracer
	metrics    *observability.Metrics
	enableCORS bool
}

// NewS3Router constructs the S3 HTTP surface.
func NewS3Router(ops *s3ops.Service, resolver *auth.StaticResolver, logger *zap.Logger, tracer *observability.Tracer, metrics *observability.Metrics, enableCORS bool) *S3Router {
	return &S3Router{ops: ops, logger: logger, resolver: resolver, tracer: tracer, metrics: metrics, enableCORS: enableCORS}
}

// trace brackets h in an X-Ray subsegment named after operation (SPEC_FULL.md
// §3), a no-op pass-through when tracing is disabled, and emits a
// CloudWatch OperationCount/OperationLatency datum pair via s.metrics
// (also a no-op pass-through when metrics are disabled).
func (s *S3Router) trace(operation string, h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		s.tracer.TraceOperation(r.Context(), operation, func(ctx context.Context) error {
			h(w, r.WithContext(ctx))
			return nil
		})
		s.metrics.RecordOperation(r.Context(), "S3", operation, time.Since(start), nil)
	}
}

// Handler builds the chi router.
func (s *S3Router) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.Recoverer)
	r.Use(Logging(s.logger))
	if s.enableCORS {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   []string{"*"},
			AllowedMethods:   []string{"GET", "PUT", "POST", "DELETE", "HEAD"},
			AllowedHeaders:   []string{"*"},
			AllowCredentials: false,
		}))
	}
	r.Use(sigv4Auth(s.resolver))

	r.Get("/", s.trace("ListBuckets", s.listBuckets))
	r.Route("/{bucket}", func(r chi.Router) {
		r.Put("/", s.trace("PutBucket", s.bucketPut))
		r.Delete("/", s.trace("DeleteBucket", s.bucketDelete))
		r.Get("/", s.trace("GetBucket", s.bucketGet))
		r.Put("/*", s.trace("PutObject", s.objectPut))
		r.Get("/*", s.trace("GetObject", s.objectGet))
		r.Head("/*", s.trace("HeadObject", s.objectHead))
		r.Delete("/*", s.trace("DeleteObject", s.objectDelete))
		r.Post("/*", s.trace("PostObject", s.objectPost))
	})
	return r
}

func objectKey(r *http.Request) string {
	return chi.URLParam(r, "*")
}

func (s *S3Router) listBuckets(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.ops.ListBuckets())
}

// bucketPut dispatches PUT /{bucket}?subresource the way AWS's own bucket
// endpoint does (spec.md §4.F "Bucket configuration": put replaces); with
// no recognized sub-resource this is bucket creation.
func (s *S3Router) bucketPut(w http.ResponseWriter, r *http.Request) {
	bucket := chi.URLParam(r, "bucket")
	q := r.URL.Query()

	switch {
	case q.Has("versioning"):
		status := versioningStatusFromString(r.Header.Get("X-Amz-Versioning-Status"))
		writeConfigErr(w, s.ops.PutBucketVersioning(bucket, status))
	case q.Has("encryption"):
		writeConfigPut(w, r, s.ops.PutBucketEncryption, bucket)
	case q.Has("cors"):
		writeConfigPut(w, r, s.ops.PutBucketCORS, bucket)
	case q.Has("lifecycle"):
		writeConfigPut(w, r, s.ops.PutBucketLifecycle, bucket)
	case q.Has("policy"):
		writeConfigErr(w, s.ops.PutBucketPolicy(bucket, readBodyString(r)))
	case q.Has("tagging"):
		var body struct {
			TagSet []struct{ Key, Value string } `json:"TagSet"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			writeError(w, apperr.MalformedXML("failed to parse tagging body"))
			return
		}
		tags := make(map[string]string, len(body.TagSet))
		for _, t := range body.TagSet {
			tags[t.Key] = t.Value
		}
		writeConfigErr(w, s.ops.PutBucketTagging(bucket, tags))
	case q.Has("acl"):
		writeConfigPut(w, r, s.ops.PutBucketACL, bucket)
	case q.Has("notification"):
		writeConfigPut(w, r, s.ops.PutBucketNotification, bucket)
	case q.Has("logging"):
		writeConfigPut(w, r, s.ops.PutBucketLogging, bucket)
	case q.Has("publicAccessBlock"):
		writeConfigPut(w, r, s.ops.PutPublicAccessBlock, bucket)
	case q.Has("ownershipControls"):
		writeConfigPut(w, r, s.ops.PutBucketOwnershipControls, bucket)
	case q.Has("object-lock"):
		var cfg s3registry.ObjectLockConfig
		if err := json.NewDecoder(r.Body).Decode(&cfg); err != nil {
			writeError(w, apperr.MalformedXML("failed to parse object lock configuration"))
			return
		}
		writeConfigErr(w, s.ops.PutObjectLockConfiguration(bucket, &cfg))
	case q.Has("accelerate"):
		var body struct{ Status string }
		json.NewDecoder(r.Body).Decode(&body)
		writeConfigErr(w, s.ops.PutBucketAccelerateConfiguration(bucket, body.Status == "Enabled"))
	case q.Has("requestPayment"):
		var body struct{ Payer string }
		json.NewDecoder(r.Body).Decode(&body)
		writeConfigErr(w, s.ops.PutBucketRequestPayment(bucket, body.Payer))
	case q.Has("website"):
		writeConfigPut(w, r, s.ops.PutBucketWebsite, bucket)
	case q.Has("replication"):
		writeConfigPut(w, r, s.ops.PutBucketReplication, bucket)
	case q.Has("analytics"):
		writeConfigPutWithID(w, r, s.ops.PutBucketAnalyticsConfiguration, bucket, q.Get("id"))
	case q.Has("metrics"):
		writeConfigPutWithID(w, r, s.ops.PutBucketMetricsConfiguration, bucket, q.Get("id"))
	case q.Has("inventory"):
		writeConfigPutWithID(w, r, s.ops.PutBucketInventoryConfiguration, bucket, q.Get("id"))
	case q.Has("intelligent-tiering"):
		writeConfigPutWithID(w, r, s.ops.PutBucketIntelligentTieringConfiguration, bucket, q.Get("id"))
	default:
		owner := callerOwner(r)
		b, err := s.ops.CreateBucket(bucket, r.Header.Get("X-Amz-Bucket-Region"), owner)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, b)
	}
}

// bucketDelete dispatches DELETE /{bucket}?subresource; with no recognized
// sub-resource this deletes the (empty) bucket.
func (s *S3Router) bucketDelete(w http.ResponseWriter, r *http.Request) {
	bucket := chi.URLParam(r, "bucket")
	q := r.URL.Query()

	switch {
	case q.Has("encryption"):
		writeConfigDelete(w, s.ops.DeleteBucketEncryption(bucket))
	case q.Has("cors"):
		writeConfigDelete(w, s.ops.DeleteBucketCORS(bucket))
	case q.Has("lifecycle"):
		writeConfigDelete(w, s.ops.DeleteBucketLifecycle(bucket))
	case q.Has("policy"):
		writeConfigDelete(w, s.ops.DeleteBucketPolicy(bucket))
	case q.Has("tagging"):
		writeConfigDelete(w, s.ops.DeleteBucketTagging(bucket))
	case q.Has("publicAccessBlock"):
		writeConfigDelete(w, s.ops.DeletePublicAccessBlock(bucket))
	case q.Has("ownershipControls"):
		writeConfigDelete(w, s.ops.DeleteBucketOwnershipControls(bucket))
	case q.Has("website"):
		writeConfigDelete(w, s.ops.DeleteBucketWebsite(bucket))
	default:
		if err := s.ops.DeleteBucket(bucket); err != nil {
			writeError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// bucketGet dispatches on sub-resource query parameters, matching the
// query-param dispatch table spec.md §6 describes for S3's wire layer.
func (s *S3Router) bucketGet(w http.ResponseWriter, r *http.Request) {
	bucket := chi.URLParam(r, "bucket")
	q := r.URL.Query()

	switch {
	case q.Has("versioning"):
		status, err := s.ops.GetBucketVersioning(bucket)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"Status": versioningStatusString(status)})
	case q.Has("uploads"):
		uploads, err := s.ops.ListMultipartUploads(bucket)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, uploads)
	case q.Has("versions"):
		out, err := s.ops.ListObjectVersions(s3ops.ListObjectVersionsInput{
			Bucket:          bucket,
			Prefix:          q.Get("prefix"),
			Delimiter:       q.Get("delimiter"),
			KeyMarker:       q.Get("key-marker"),
			VersionIDMarker: q.Get("version-id-marker"),
			MaxKeys:         queryInt(q, "max-keys", 1000),
		})
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, out)
	case q.Has("encryption"):
		cfg, err := s.ops.GetBucketEncryption(bucket)
		writeConfigGet(w, cfg, err)
	case q.Has("cors"):
		cfg, err := s.ops.GetBucketCORS(bucket)
		writeConfigGet(w, cfg, err)
	case q.Has("lifecycle"):
		cfg, err := s.ops.GetBucketLifecycle(bucket)
		writeConfigGet(w, cfg, err)
	case q.Has("policy"):
		cfg, err := s.ops.GetBucketPolicy(bucket)
		writeConfigGet(w, cfg, err)
	case q.Has("tagging"):
		cfg, err := s.ops.GetBucketTagging(bucket)
		writeConfigGet(w, cfg, err)
	case q.Has("acl"):
		cfg, err := s.ops.GetBucketACL(bucket)
		writeConfigGet(w, cfg, err)
	case q.Has("notification"):
		cfg, err := s.ops.GetBucketNotification(bucket)
		writeConfigGet(w, cfg, err)
	case q.Has("logging"):
		cfg, err := s.ops.GetBucketLogging(bucket)
		writeConfigGet(w, cfg, err)
	case q.Has("publicAccessBlock"):
		cfg, err := s.ops.GetPublicAccessBlock(bucket)
		writeConfigGet(w, cfg, err)
	case q.Has("ownershipControls"):
		cfg, err := s.ops.GetBucketOwnershipControls(bucket)
		writeConfigGet(w, cfg, err)
	case q.Has("object-lock"):
		cfg, err := s.ops.GetObjectLockConfiguration(bucket)
		writeConfigGet(w, cfg, err)
	case q.Has("accelerate"):
		cfg, err := s.ops.GetBucketAccelerateConfiguration(bucket)
		writeConfigGet(w, cfg, err)
	case q.Has("requestPayment"):
		cfg, err := s.ops.GetBucketRequestPayment(bucket)
		writeConfigGet(w, cfg, err)
	case q.Has("website"):
		cfg, err := s.ops.GetBucketWebsite(bucket)
		writeConfigGet(w, cfg, err)
	case q.Has("replication"):
		cfg, err := s.ops.GetBucketReplication(bucket)
		writeConfigGet(w, cfg, err)
	case q.Has("analytics"):
		cfg, err := s.ops.GetBucketAnalyticsConfiguration(bucket, q.Get("id"))
		writeConfigGet(w, cfg, err)
	case q.Has("metrics"):
		cfg, err := s.ops.GetBucketMetricsConfiguration(bucket, q.Get("id"))
		writeConfigGet(w, cfg, err)
	case q.Has("inventory"):
		cfg, err := s.ops.GetBucketInventoryConfiguration(bucket, q.Get("id"))
		writeConfigGet(w, cfg, err)
	case q.Has("intelligent-tiering"):
		cfg, err := s.ops.GetBucketIntelligentTieringConfiguration(bucket, q.Get("id"))
		writeConfigGet(w, cfg, err)
	default:
		out, err := s.ops.ListObjects(s3ops.ListObjectsInput{
			Bucket:     bucket,
			Prefix:     q.Get("prefix"),
			Delimiter:  q.Get("delimiter"),
			StartAfter: q.Get("start-after"),
			MaxKeys:    queryInt(q, "max-keys", 1000),
		})
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, out)
	}
}

// writeConfigGet writes cfg as JSON, or the error if the slot is absent/the
// bucket doesn't exist (spec.md §4.F "no such configuration" taxonomy).
func writeConfigGet(w http.ResponseWriter, cfg interface{}, err error) {
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, cfg)
}

func writeConfigErr(w http.ResponseWriter, err error) {
	if err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func writeConfigDelete(w http.ResponseWriter, err error) {
	if err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// writeConfigPut decodes the request body as JSON into an interface{} and
// forwards it to put, matching the "untyped blob" shape s3registry's
// configuration slots accept (their XML/JSON wire shape is out of scope).
func writeConfigPut(w http.ResponseWriter, r *http.Request, put func(string, interface{}) error, bucket string) {
	var cfg interface{}
	if err := json.NewDecoder(r.Body).Decode(&cfg); err != nil {
		writeError(w, apperr.MalformedXML("failed to parse configuration body"))
		return
	}
	writeConfigErr(w, put(bucket, cfg))
}

func writeConfigPutWithID(w http.ResponseWriter, r *http.Request, put func(string, string, interface{}) error, bucket, id string) {
	var cfg interface{}
	if err := json.NewDecoder(r.Body).Decode(&cfg); err != nil {
		writeError(w, apperr.MalformedXML("failed to parse configuration body"))
		return
	}
	writeConfigErr(w, put(bucket, id, cfg))
}

func readBodyString(r *http.Request) string {
	b, _ := readBody(r)
	return string(b)
}

func (s *S3Router) objectPut(w http.ResponseWriter, r *http.Request) {
	bucket := chi.URLParam(r, "bucket")
	key := objectKey(r)
	q := r.URL.Query()

	if uploadID := q.Get("uploadId"); uploadID != "" && q.Has("partNumber") {
		partNumber, err := strconv.Atoi(q.Get("partNumber"))
		if err != nil {
			writeError(w, apperr.InvalidArgument("partNumber must be an integer"))
			return
		}
		body, err := readBody(r)
		if err != nil {
			writeError(w, err)
			return
		}
		if src := r.Header.Get("X-Amz-Copy-Source"); src != "" {
			srcBucket, srcKey, srcVersionID, err := parseCopySource(src)
			if err != nil {
				writeError(w, err)
				return
			}
			out, err := s.ops.UploadPartCopy(s3ops.UploadPartCopyInput{
				SrcBucket: srcBucket, SrcKey: srcKey, SrcVersionID: srcVersionID,
				Bucket: bucket, Key: key, UploadID: uploadID, PartNumber: partNumber,
			})
			if err != nil {
				writeError(w, err)
				return
			}
			writeJSON(w, http.StatusOK, out)
			return
		}
		out, err := s.ops.UploadPart(s3ops.UploadPartInput{
			Bucket: bucket, Key: key, UploadID: uploadID, PartNumber: partNumber,
			Body: body, ContentMD5: r.Header.Get("Content-MD5"),
		})
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, out)
		return
	}

	if src := r.Header.Get("X-Amz-Copy-Source"); src != "" {
		srcBucket, srcKey, srcVersionID, err := parseCopySource(src)
		if err != nil {
			writeError(w, err)
			return
		}
		out, err := s.ops.CopyObject(s3ops.CopyObjectInput{
			SrcBucket: srcBucket, SrcKey: srcKey, SrcVersionID: srcVersionID,
			DstBucket: bucket, DstKey: key, Owner: callerOwner(r),
		})
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, out)
		return
	}

	body, err := readBody(r)
	if err != nil {
		writeError(w, err)
		return
	}
	out, err := s.ops.PutObject(s3ops.PutObjectInput{
		Bucket:          bucket,
		Key:             key,
		Body:            body,
		ContentMD5:      r.Header.Get("Content-MD5"),
		ContentType:     r.Header.Get("Content-Type"),
		ContentEncoding: r.Header.Get("Content-Encoding"),
		CacheControl:    r.Header.Get("Cache-Control"),
		UserMetadata:    userMetadata(r.Header),
		TaggingRaw:      r.Header.Get("X-Amz-Tagging"),
		CannedACL:       r.Header.Get("X-Amz-Acl"),
		SSEAlgorithm:    r.Header.Get("X-Amz-Server-Side-Encryption"),
		SSEKMSKeyID:     r.Header.Get("X-Amz-Server-Side-Encryption-Aws-Kms-Key-Id"),
		StorageClass:    r.Header.Get("X-Amz-Storage-Class"),
		Owner:           callerOwner(r),
		ObjectLockMode:  r.Header.Get("X-Amz-Object-Lock-Mode"),
	})
	if err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("ETag", out.ETag)
	if out.VersionID != "" {
		w.Header().Set("X-Amz-Version-Id", out.VersionID)
	}
	w.WriteHeader(http.StatusOK)
}

func (s *S3Router) objectGet(w http.ResponseWriter, r *http.Request) {
	bucket := chi.URLParam(r, "bucket")
	key := objectKey(r)
	q := r.URL.Query()

	if uploadID := q.Get("uploadId"); uploadID != "" {
		parts, err := s.ops.ListParts(bucket, uploadID)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, parts)
		return
	}

	out, err := s.ops.GetObject(s3ops.GetObjectInput{
		Bucket:      bucket,
		Key:         key,
		VersionID:   q.Get("versionId"),
		IfMatch:     r.Header.Get("If-Match"),
		IfNoneMatch: r.Header.Get("If-None-Match"),
		Range:       r.Header.Get("Range"),
	})
	if err != nil {
		if versionID, ok := s3ops.AsDeleteMarkerError(err); ok {
			w.Header().Set("X-Amz-Delete-Marker", "true")
			w.Header().Set("X-Amz-Version-Id", versionID)
		}
		writeError(w, err)
		return
	}
	writeObjectHeaders(w, out)
	w.Write(out.Body)
}

func (s *S3Router) objectHead(w http.ResponseWriter, r *http.Request) {
	bucket := chi.URLParam(r, "bucket")
	key := objectKey(r)
	q := r.URL.Query()

	out, err := s.ops.HeadObject(s3ops.GetObjectInput{
		Bucket:      bucket,
		Key:         key,
		VersionID:   q.Get("versionId"),
		IfMatch:     r.Header.Get("If-Match"),
		IfNoneMatch: r.Header.Get("If-None-Match"),
	})
	if err != nil {
		if versionID, ok := s3ops.AsDeleteMarkerError(err); ok {
			w.Header().Set("X-Amz-Delete-Marker", "true")
			w.Header().Set("X-Amz-Version-Id", versionID)
		}
		writeError(w, err)
		return
	}
	writeObjectHeaders(w, out)
	w.WriteHeader(http.StatusOK)
}

func (s *S3Router) objectDelete(w http.ResponseWriter, r *http.Request) {
	bucket := chi.URLParam(r, "bucket")
	key := objectKey(r)
	q := r.URL.Query()

	if uploadID := q.Get("uploadId"); uploadID != "" {
		if err := s.ops.AbortMultipartUpload(bucket, uploadID); err != nil {
			writeError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
		return
	}

	out, err := s.ops.DeleteObject(s3ops.DeleteObjectInput{
		Bucket:           bucket,
		Key:              key,
		VersionID:        q.Get("versionId"),
		Owner:            callerOwner(r),
		BypassGovernance: r.Header.Get("X-Amz-Bypass-Governance-Retention") == "true",
	})
	if err != nil {
		writeError(w, err)
		return
	}
	if out.VersionID != "" {
		w.Header().Set("X-Amz-Version-Id", out.VersionID)
	}
	if out.DeleteMarker {
		w.Header().Set("X-Amz-Delete-Marker", "true")
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *S3Router) objectPost(w http.ResponseWriter, r *http.Request) {
	bucket := chi.URLParam(r, "bucket")
	key := objectKey(r)
	q := r.URL.Query()

	if q.Has("uploads") {
		upload, err := s.ops.CreateMultipartUpload(s3ops.CreateMultipartUploadInput{
			Bucket:            bucket,
			Key:               key,
			Owner:             callerOwner(r),
			ContentType:       r.Header.Get("Content-Type"),
			StorageClass:      r.Header.Get("X-Amz-Storage-Class"),
			ChecksumAlgorithm: r.Header.Get("X-Amz-Checksum-Algorithm"),
			UserMetadata:      userMetadata(r.Header),
			SSEAlgorithm:      r.Header.Get("X-Amz-Server-Side-Encryption"),
			SSEKMSKeyID:       r.Header.Get("X-Amz-Server-Side-Encryption-Aws-Kms-Key-Id"),
		})
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, upload)
		return
	}

	if uploadID := q.Get("uploadId"); uploadID != "" {
		var req struct {
			PartNumbers []int `json:"partNumbers"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, apperr.MalformedXML("failed to parse complete-multipart-upload request"))
			return
		}
		out, err := s.ops.CompleteMultipartUpload(s3ops.CompleteMultipartUploadInput{
			Bucket: bucket, Key: key, UploadID: uploadID,
			PartNumbers: req.PartNumbers, Owner: callerOwner(r),
		})
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, out)
		return
	}

	if q.Has("delete") {
		var req struct {
			Objects []struct {
				Key       string `json:"key"`
				VersionID string `json:"versionId"`
			} `json:"objects"`
			Quiet bool `json:"quiet"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, apperr.MalformedXML("failed to parse delete request"))
			return
		}
		keys := make([]s3ops.DeleteObjectsKey, 0, len(req.Objects))
		for _, o := range req.Objects {
			keys = append(keys, s3ops.DeleteObjectsKey{Key: o.Key, VersionID: o.VersionID})
		}
		out, err := s.ops.DeleteObjects(s3ops.DeleteObjectsInput{Bucket: bucket, Owner: callerOwner(r), Keys: keys, Quiet: req.Quiet})
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, out)
		return
	}

	writeError(w, apperr.NotImplemented("unsupported S3 POST sub-resource"))
}

func writeObjectHeaders(w http.ResponseWriter, out *s3ops.GetObjectOutput) {
	w.Header().Set("ETag", out.Object.ETag)
	w.Header().Set("Content-Length", strconv.FormatInt(out.Object.Size, 10))
	w.Header().Set("Last-Modified", out.Object.LastModified.UTC().Format(http.TimeFormat))
	if out.Object.VersionID != "" {
		w.Header().Set("X-Amz-Version-Id", out.Object.VersionID)
	}
	if out.ContentRange != "" {
		w.Header().Set("Content-Range", out.ContentRange)
		w.WriteHeader(http.StatusPartialContent)
	}
}

func userMetadata(h http.Header) map[string]string {
	const prefix = "X-Amz-Meta-"
	out := map[string]string{}
	for k, v := range h {
		if strings.HasPrefix(strings.ToLower(k), strings.ToLower(prefix)) && len(v) > 0 {
			name := strings.ToLower(strings.TrimPrefix(k, prefix))
			out[name] = v[0]
		}
	}
	return out
}

func readBody(r *http.Request) ([]byte, error) {
	if r.Body == nil {
		return nil, nil
	}
	body, err := io.ReadAll(r.Body)
	if err != nil {
		return nil, apperr.InvalidArgument("failed to read request body")
	}
	return body, nil
}

// parseCopySource parses x-amz-copy-source into (bucket, key, versionId),
// matching spec.md §4.F's CopyObject contract: leading slash optional, key
// percent-decoded, versionId taken from an optional "?versionId=" suffix.
func parseCopySource(raw string) (bucket, key, versionID string, err error) {
	raw = strings.TrimPrefix(raw, "/")
	parts := strings.SplitN(raw, "/", 2)
	if len(parts) != 2 {
		return "", "", "", apperr.InvalidArgument("x-amz-copy-source must be of the form bucket/key")
	}
	bucket = parts[0]
	rest := parts[1]
	if idx := strings.Index(rest, "?versionId="); idx >= 0 {
		versionID = rest[idx+len("?versionId="):]
		rest = rest[:idx]
	}
	key, err = url.PathUnescape(rest)
	if err != nil {
		return "", "", "", apperr.InvalidArgument("x-amz-copy-source key is not valid percent-encoding")
	}
	return bucket, key, versionID, nil
}

func callerOwner(r *http.Request) string {
	if result, ok := SigV4FromContext(r.Context()); ok {
		return result.AccessKeyID
	}
	return ""
}

func queryInt(q map[string][]string, key string, def int) int {
	values, ok := q[key]
	if !ok || len(values) == 0 {
		return def
	}
	n, err := strconv.Atoi(values[0])
	if err != nil || n <= 0 {
		return def
	}
	return n
}

func versioningStatusString(status s3meta.VersioningStatus) string {
	switch status {
	case s3meta.VersioningEnabled:
		return "Enabled"
	case s3meta.VersioningSuspended:
		return "Suspended"
	default:
		return "Disabled"
	}
}

func versioningStatusFromString(s string) s3meta.VersioningStatus {
	switch s {
	case "Enabled":
		return s3meta.VersioningEnabled
	case "Suspended":
		return s3meta.VersioningSuspended
	default:
		return s3meta.VersioningDisabled
	}
}

var _ sigv4.CredentialResolver = (*auth.StaticResolver)(nil)
