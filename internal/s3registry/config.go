package s3registry

import "backend2/internal/apperr"

// Each configuration slot below follows the same present/absent shape
// (spec.md §9 "Inherit-and-override configuration"): a dedicated
// Get/Put/Delete triple, independent of every other slot.

func (b *Bucket) GetEncryption() (interface{}, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.encryption == nil {
		return nil, apperr.NoSuchConfiguration(apperr.CodeServerSideEncryptionConfigurationNotFoundError, "The server side encryption configuration was not found")
	}
	return b.encryption, nil
}

func (b *Bucket) PutEncryption(cfg interface{}) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.encryption = cfg
}

func (b *Bucket) DeleteEncryption() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.encryption = nil
}

func (b *Bucket) GetCORS() (interface{}, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.cors == nil {
		return nil, apperr.NoSuchConfiguration(apperr.CodeNoSuchCORSConfiguration, "The CORS configuration does not exist")
	}
	return b.cors, nil
}

func (b *Bucket) PutCORS(cfg interface{}) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.cors = cfg
}

func (b *Bucket) DeleteCORS() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.cors = nil
}

func (b *Bucket) GetLifecycle() (interface{}, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.lifecycle == nil {
		return nil, apperr.NoSuchConfiguration(apperr.CodeNoSuchLifecycleConfiguration, "The lifecycle configuration does not exist")
	}
	return b.lifecycle, nil
}

func (b *Bucket) PutLifecycle(cfg interface{}) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.lifecycle = cfg
}

func (b *Bucket) DeleteLifecycle() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.lifecycle = nil
}

func (b *Bucket) GetPolicy() (string, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.policy == nil {
		return "", apperr.NoSuchConfiguration(apperr.CodeNoSuchBucketPolicy, "The bucket policy does not exist")
	}
	return *b.policy, nil
}

func (b *Bucket) PutPolicy(policy string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.policy = &policy
}

func (b *Bucket) DeletePolicy() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.policy = nil
}

func (b *Bucket) GetTags() (map[string]string, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.tags == nil {
		return nil, apperr.NoSuchConfiguration(apperr.CodeNoSuchTagSet, "The TagSet does not exist")
	}
	return b.tags, nil
}

func (b *Bucket) PutTags(tags map[string]string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.tags = tags
}

func (b *Bucket) DeleteTags() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.tags = nil
}

func (b *Bucket) GetACL() interface{} {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.acl
}

func (b *Bucket) PutACL(acl interface{}) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.acl = acl
}

func (b *Bucket) GetNotification() interface{} {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.notification
}

func (b *Bucket) PutNotification(cfg interface{}) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.notification = cfg
}

func (b *Bucket) GetLogging() interface{} {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.logging
}

func (b *Bucket) PutLogging(cfg interface{}) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.logging = cfg
}

func (b *Bucket) GetPublicAccessBlock() (interface{}, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.publicAccessBlock == nil {
		return nil, apperr.NoSuchConfiguration(apperr.CodeNoSuchPublicAccessBlockConfiguration, "The public access block configuration was not found")
	}
	return b.publicAccessBlock, nil
}

func (b *Bucket) PutPublicAccessBlock(cfg interface{}) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.publicAccessBlock = cfg
}

func (b *Bucket) DeletePublicAccessBlock() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.publicAccessBlock = nil
}

func (b *Bucket) GetOwnershipControls() (interface{}, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.ownershipControls == nil {
		return nil, apperr.NoSuchConfiguration(apperr.CodeOwnershipControlsNotFoundError, "The ownership controls were not found")
	}
	return b.ownershipControls, nil
}

func (b *Bucket) PutOwnershipControls(cfg interface{}) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.ownershipControls = cfg
}

func (b *Bucket) DeleteOwnershipControls() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.ownershipControls = nil
}

// GetObjectLockConfig returns the object-lock configuration.
func (b *Bucket) GetObjectLockConfig() (*ObjectLockConfig, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.objectLock == nil {
		return nil, apperr.NoSuchConfiguration(apperr.CodeNoSuchObjectLockConfiguration, "Object Lock configuration does not exist for this bucket")
	}
	return b.objectLock, nil
}

// PutObjectLockConfig enables object-lock, which implicitly enables
// versioning (spec.md §4.F "Bucket configuration").
func (b *Bucket) PutObjectLockConfig(cfg *ObjectLockConfig) {
	b.mu.Lock()
	b.objectLock = cfg
	b.mu.Unlock()
	if cfg.Enabled {
		b.Objects.TransitionToVersioned()
	}
}

func (b *Bucket) GetAccelerate() *bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.accelerate
}

func (b *Bucket) PutAccelerate(enabled bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.accelerate = &enabled
}

func (b *Bucket) GetRequestPayment() *string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.requestPayment
}

func (b *Bucket) PutRequestPayment(mode string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.requestPayment = &mode
}

func (b *Bucket) GetWebsite() (interface{}, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.website == nil {
		return nil, apperr.NoSuchConfiguration(apperr.CodeNoSuchWebsiteConfiguration, "The specified bucket does not have a website configuration")
	}
	return b.website, nil
}

func (b *Bucket) PutWebsite(cfg interface{}) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.website = cfg
}

func (b *Bucket) DeleteWebsite() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.website = nil
}

func (b *Bucket) GetReplication() interface{} {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.replication
}

func (b *Bucket) PutReplication(cfg interface{}) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.replication = cfg
}

func (b *Bucket) PutAnalytics(id string, cfg interface{}) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.analytics == nil {
		b.analytics = make(map[string]interface{})
	}
	b.analytics[id] = cfg
}

func (b *Bucket) GetAnalytics(id string) (interface{}, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	cfg, ok := b.analytics[id]
	return cfg, ok
}

func (b *Bucket) PutMetrics(id string, cfg interface{}) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.metrics == nil {
		b.metrics = make(map[string]interface{})
	}
	b.metrics[id] = cfg
}

func (b *Bucket) GetMetrics(id string) (interface{}, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	cfg, ok := b.metrics[id]
	return cfg, ok
}

func (b *Bucket) PutInventory(id string, cfg interface{}) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.inventory == nil {
		b.inventory = make(map[string]interface{})
	}
	b.inventory[id] = cfg
}

func (b *Bucket) GetInventory(id string) (interface{}, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	cfg, ok := b.inventory[id]
	return cfg, ok
}

func (b *Bucket) PutIntelligentTiering(id string, cfg interface{}) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.intelligentTier == nil {
		b.intelligentTier = make(map[string]interface{})
	}
	b.intelligentTier[id] = cfg
}

func (b *Bucket) GetIntelligentTiering(id string) (interface{}, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	cfg, ok := b.intelligentTier[id]
	return cfg, ok
}
