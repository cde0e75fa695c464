package s3ops

import (
	"testing"

	"backend2/internal/apperr"
	"backend2/internal/s3registry"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBucketEncryptionRoundTrip(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.GetBucketEncryption("test-bucket")
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.CodeServerSideEncryptionConfigurationNotFoundError))

	require.NoError(t, svc.PutBucketEncryption("test-bucket", map[string]string{"SSEAlgorithm": "AES256"}))
	cfg, err := svc.GetBucketEncryption("test-bucket")
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"SSEAlgorithm": "AES256"}, cfg)

	require.NoError(t, svc.DeleteBucketEncryption("test-bucket"))
	_, err = svc.GetBucketEncryption("test-bucket")
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.CodeServerSideEncryptionConfigurationNotFoundError))
}

func TestBucketCORSRoundTrip(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.GetBucketCORS("test-bucket")
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.CodeNoSuchCORSConfiguration))

	require.NoError(t, svc.PutBucketCORS("test-bucket", []string{"GET"}))
	cfg, err := svc.GetBucketCORS("test-bucket")
	require.NoError(t, err)
	assert.Equal(t, []string{"GET"}, cfg)

	require.NoError(t, svc.DeleteBucketCORS("test-bucket"))
	_, err = svc.GetBucketCORS("test-bucket")
	require.Error(t, err)
}

func TestBucketTaggingRoundTrip(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.GetBucketTagging("test-bucket")
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.CodeNoSuchTagSet))

	require.NoError(t, svc.PutBucketTagging("test-bucket", map[string]string{"env": "test"}))
	tags, err := svc.GetBucketTagging("test-bucket")
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"env": "test"}, tags)

	require.NoError(t, svc.DeleteBucketTagging("test-bucket"))
	_, err = svc.GetBucketTagging("test-bucket")
	require.Error(t, err)
}

func TestBucketACLAndNotificationHaveNoDeleteSlot(t *testing.T) {
	svc := newTestService(t)

	acl, err := svc.GetBucketACL("test-bucket")
	require.NoError(t, err)
	assert.Nil(t, acl)

	require.NoError(t, svc.PutBucketACL("test-bucket", "private"))
	acl, err = svc.GetBucketACL("test-bucket")
	require.NoError(t, err)
	assert.Equal(t, "private", acl)

	notif, err := svc.GetBucketNotification("test-bucket")
	require.NoError(t, err)
	assert.Nil(t, notif)

	require.NoError(t, svc.PutBucketNotification("test-bucket", "topic-arn"))
	notif, err = svc.GetBucketNotification("test-bucket")
	require.NoError(t, err)
	assert.Equal(t, "topic-arn", notif)
}

func TestObjectLockConfigurationRoundTrip(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.GetObjectLockConfiguration("test-bucket")
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.CodeNoSuchObjectLockConfiguration))

	cfg := &s3registry.ObjectLockConfig{Enabled: true}
	require.NoError(t, svc.PutObjectLockConfiguration("test-bucket", cfg))

	got, err := svc.GetObjectLockConfiguration("test-bucket")
	require.NoError(t, err)
	assert.True(t, got.Enabled)
}

func TestBucketAccelerateAndRequestPayment(t *testing.T) {
	svc := newTestService(t)

	enabled, err := svc.GetBucketAccelerateConfiguration("test-bucket")
	require.NoError(t, err)
	assert.Nil(t, enabled)

	require.NoError(t, svc.PutBucketAccelerateConfiguration("test-bucket", true))
	enabled, err = svc.GetBucketAccelerateConfiguration("test-bucket")
	require.NoError(t, err)
	require.NotNil(t, enabled)
	assert.True(t, *enabled)

	payer, err := svc.GetBucketRequestPayment("test-bucket")
	require.NoError(t, err)
	assert.Nil(t, payer)

	require.NoError(t, svc.PutBucketRequestPayment("test-bucket", "Requester"))
	payer, err = svc.GetBucketRequestPayment("test-bucket")
	require.NoError(t, err)
	require.NotNil(t, payer)
	assert.Equal(t, "Requester", *payer)
}

func TestBucketAnalyticsConfigurationByID(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.GetBucketAnalyticsConfiguration("test-bucket", "report-1")
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.CodeNoSuchAnalyticsConfiguration))

	require.NoError(t, svc.PutBucketAnalyticsConfiguration("test-bucket", "report-1", "storage-class-analysis"))
	cfg, err := svc.GetBucketAnalyticsConfiguration("test-bucket", "report-1")
	require.NoError(t, err)
	assert.Equal(t, "storage-class-analysis", cfg)

	_, err = svc.GetBucketAnalyticsConfiguration("test-bucket", "report-2")
	require.Error(t, err)
}

func TestBucketConfigurationUnknownBucket(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.GetBucketEncryption("no-such-bucket")
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.CodeNoSuchBucket))

	require.Error(t, svc.PutBucketEncryption("no-such-bucket", nil))
	require.Error(t, svc.DeleteBucketEncryption("no-such-bucket"))
}
