package s3ops

import (
	"testing"
	"time"

	"backend2/internal/apperr"
	"backend2/internal/s3blob"
	"backend2/internal/s3meta"
	"backend2/internal/s3registry"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	svc := New(s3registry.NewRegistry(), s3blob.New(s3blob.DefaultSpillThreshold, t.TempDir()))
	_, err := svc.CreateBucket("test-bucket", "us-east-1", "alice")
	require.NoError(t, err)
	return svc
}

func TestPutGetRoundTrip(t *testing.T) {
	svc := newTestService(t)

	putOut, err := svc.PutObject(PutObjectInput{
		Bucket: "test-bucket",
		Key:    "hello.txt",
		Body:   []byte("hello world"),
		Owner:  "alice",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, putOut.ETag)
	assert.Empty(t, putOut.VersionID)

	getOut, err := svc.GetObject(GetObjectInput{Bucket: "test-bucket", Key: "hello.txt"})
	require.NoError(t, err)
	assert.Equal(t, []byte("hello world"), getOut.Body)
	assert.Equal(t, putOut.ETag, getOut.Object.ETag)
}

func TestGetObjectMissingKey(t *testing.T) {
	svc := newTestService(t)
	_, err := svc.GetObject(GetObjectInput{Bucket: "test-bucket", Key: "nope"})
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.CodeNoSuchKey))
}

func TestConditionalGet(t *testing.T) {
	svc := newTestService(t)
	putOut, err := svc.PutObject(PutObjectInput{Bucket: "test-bucket", Key: "k", Body: []byte("abc")})
	require.NoError(t, err)

	_, err = svc.GetObject(GetObjectInput{Bucket: "test-bucket", Key: "k", IfNoneMatch: putOut.ETag})
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.CodeNotModified))

	_, err = svc.GetObject(GetObjectInput{Bucket: "test-bucket", Key: "k", IfMatch: `"not-the-etag"`})
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.CodePreconditionFailed))
}

func TestRangeRead(t *testing.T) {
	svc := newTestService(t)
	_, err := svc.PutObject(PutObjectInput{Bucket: "test-bucket", Key: "k", Body: []byte("0123456789")})
	require.NoError(t, err)

	out, err := svc.GetObject(GetObjectInput{Bucket: "test-bucket", Key: "k", Range: "bytes=2-4"})
	require.NoError(t, err)
	assert.Equal(t, []byte("234"), out.Body)
	assert.Equal(t, "bytes 2-4/10", out.ContentRange)

	out, err = svc.GetObject(GetObjectInput{Bucket: "test-bucket", Key: "k", Range: "bytes=-3"})
	require.NoError(t, err)
	assert.Equal(t, []byte("789"), out.Body)

	out, err = svc.GetObject(GetObjectInput{Bucket: "test-bucket", Key: "k", Range: "bytes=8-"})
	require.NoError(t, err)
	assert.Equal(t, []byte("89"), out.Body)

	_, err = svc.GetObject(GetObjectInput{Bucket: "test-bucket", Key: "k", Range: "bytes=20-30"})
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.CodeInvalidRange))
}

func TestVersionedPutGetDelete(t *testing.T) {
	svc := newTestService(t)
	require.NoError(t, svc.PutBucketVersioning("test-bucket", s3meta.VersioningEnabled))

	v1, err := svc.PutObject(PutObjectInput{Bucket: "test-bucket", Key: "k", Body: []byte("v1")})
	require.NoError(t, err)
	require.NotEmpty(t, v1.VersionID)

	v2, err := svc.PutObject(PutObjectInput{Bucket: "test-bucket", Key: "k", Body: []byte("v2")})
	require.NoError(t, err)
	require.NotEmpty(t, v2.VersionID)
	assert.NotEqual(t, v1.VersionID, v2.VersionID)

	latest, err := svc.GetObject(GetObjectInput{Bucket: "test-bucket", Key: "k"})
	require.NoError(t, err)
	assert.Equal(t, []byte("v2"), latest.Body)

	old, err := svc.GetObject(GetObjectInput{Bucket: "test-bucket", Key: "k", VersionID: v1.VersionID})
	require.NoError(t, err)
	assert.Equal(t, []byte("v1"), old.Body)

	delOut, err := svc.DeleteObject(DeleteObjectInput{Bucket: "test-bucket", Key: "k", Owner: "alice"})
	require.NoError(t, err)
	assert.True(t, delOut.DeleteMarker)

	_, err = svc.GetObject(GetObjectInput{Bucket: "test-bucket", Key: "k"})
	require.Error(t, err)
	marker, isMarker := AsDeleteMarkerError(err)
	require.True(t, isMarker)
	assert.Equal(t, delOut.VersionID, marker)

	// the historical version is still readable by exact version id
	old2, err := svc.GetObject(GetObjectInput{Bucket: "test-bucket", Key: "k", VersionID: v1.VersionID})
	require.NoError(t, err)
	assert.Equal(t, []byte("v1"), old2.Body)
}

func TestObjectLockBlocksDelete(t *testing.T) {
	svc := newTestService(t)
	require.NoError(t, svc.PutBucketVersioning("test-bucket", s3meta.VersioningEnabled))

	putOut, err := svc.PutObject(PutObjectInput{
		Bucket:         "test-bucket",
		Key:            "locked",
		Body:           []byte("data"),
		ObjectLockMode: "GOVERNANCE",
	})
	require.NoError(t, err)

	bucket, err := svc.Registry.GetBucket("test-bucket")
	require.NoError(t, err)
	obj, _, ok := bucket.Objects.GetVersion("locked", putOut.VersionID)
	require.True(t, ok)
	obj.Metadata.ObjectLockRetainUntilDate = time.Now().Add(24 * time.Hour)

	_, err = svc.DeleteObject(DeleteObjectInput{Bucket: "test-bucket", Key: "locked", VersionID: putOut.VersionID})
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.CodeAccessDenied))

	_, err = svc.DeleteObject(DeleteObjectInput{Bucket: "test-bucket", Key: "locked", VersionID: putOut.VersionID, BypassGovernance: true})
	require.NoError(t, err)
}

func TestDeleteObjectsAggregatesQuietly(t *testing.T) {
	svc := newTestService(t)
	_, err := svc.PutObject(PutObjectInput{Bucket: "test-bucket", Key: "a", Body: []byte("1")})
	require.NoError(t, err)

	out, err := svc.DeleteObjects(DeleteObjectsInput{
		Bucket: "test-bucket",
		Quiet:  true,
		Keys: []DeleteObjectsKey{
			{Key: "a"},
			{Key: "does-not-exist"},
		},
	})
	require.NoError(t, err)
	assert.Empty(t, out.Deleted) // quiet suppresses deleted[]
	require.Len(t, out.Errors, 0)
}

func TestCopyObject(t *testing.T) {
	svc := newTestService(t)
	_, err := svc.CreateBucket("dst-bucket", "us-east-1", "alice")
	require.NoError(t, err)

	_, err = svc.PutObject(PutObjectInput{
		Bucket:       "test-bucket",
		Key:          "src",
		Body:         []byte("payload"),
		ContentType:  "text/plain",
		UserMetadata: map[string]string{"a": "1"},
	})
	require.NoError(t, err)

	out, err := svc.CopyObject(CopyObjectInput{
		SrcBucket: "test-bucket",
		SrcKey:    "src",
		DstBucket: "dst-bucket",
		DstKey:    "dst",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, out.ETag)

	got, err := svc.GetObject(GetObjectInput{Bucket: "dst-bucket", Key: "dst"})
	require.NoError(t, err)
	assert.Equal(t, []byte("payload"), got.Body)
	assert.Equal(t, "text/plain", got.Object.Metadata.ContentType)
}

func TestMultipartUploadLifecycle(t *testing.T) {
	svc := newTestService(t)
	upload, err := svc.CreateMultipartUpload(CreateMultipartUploadInput{Bucket: "test-bucket", Key: "big"})
	require.NoError(t, err)
	require.NotEmpty(t, upload.UploadID)

	p1, err := svc.UploadPart(UploadPartInput{Bucket: "test-bucket", Key: "big", UploadID: upload.UploadID, PartNumber: 1, Body: make([]byte, 5*1024*1024)})
	require.NoError(t, err)
	p2, err := svc.UploadPart(UploadPartInput{Bucket: "test-bucket", Key: "big", UploadID: upload.UploadID, PartNumber: 2, Body: []byte("tail")})
	require.NoError(t, err)
	assert.NotEmpty(t, p1.ETag)
	assert.NotEmpty(t, p2.ETag)

	completed, err := svc.CompleteMultipartUpload(CompleteMultipartUploadInput{
		Bucket:      "test-bucket",
		Key:         "big",
		UploadID:    upload.UploadID,
		PartNumbers: []int{1, 2},
	})
	require.NoError(t, err)
	assert.Contains(t, completed.ETag, "-2")

	parts, err := svc.ListParts("test-bucket", upload.UploadID)
	assert.Error(t, err) // the upload was removed on completion
	assert.Nil(t, parts)

	got, err := svc.GetObject(GetObjectInput{Bucket: "test-bucket", Key: "big"})
	require.NoError(t, err)
	assert.Equal(t, 5*1024*1024+4, len(got.Body))
}

func TestAbortMultipartUpload(t *testing.T) {
	svc := newTestService(t)
	upload, err := svc.CreateMultipartUpload(CreateMultipartUploadInput{Bucket: "test-bucket", Key: "abandoned"})
	require.NoError(t, err)

	_, err = svc.UploadPart(UploadPartInput{Bucket: "test-bucket", Key: "abandoned", UploadID: upload.UploadID, PartNumber: 1, Body: []byte("x")})
	require.NoError(t, err)

	require.NoError(t, svc.AbortMultipartUpload("test-bucket", upload.UploadID))

	_, err = svc.ListParts("test-bucket", upload.UploadID)
	require.Error(t, err)
}

func TestListObjectsPrefixAndDelimiter(t *testing.T) {
	svc := newTestService(t)
	for _, k := range []string{"a/1", "a/2", "b/1", "c"} {
		_, err := svc.PutObject(PutObjectInput{Bucket: "test-bucket", Key: k, Body: []byte("x")})
		require.NoError(t, err)
	}

	result, err := svc.ListObjects(ListObjectsInput{Bucket: "test-bucket", Delimiter: "/"})
	require.NoError(t, err)
	assert.Len(t, result.Objects, 1) // only "c"
	assert.ElementsMatch(t, []string{"a/", "b/"}, result.CommonPrefixes)
}
