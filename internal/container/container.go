// Package container is the emulator's dependency-injection container
// (SPEC_FULL.md §2 "Dependency injection / wiring"), grounded on
// infrastructure/di/providers.go and infrastructure/di/wire.go: a small
// hand-written set of constructors, no reflection-based DI framework.
// Construction order mirrors the teacher's InitializeContainer: logger
// first, then the storage registries, then anything that depends on them.
package container

import (
	"context"
	"fmt"
	"os"

	"backend2/internal/auth"
	"backend2/internal/config"
	"backend2/internal/ddbitem"
	"backend2/internal/ddbtable"
	"backend2/internal/observability"
	"backend2/internal/s3blob"
	"backend2/internal/s3ops"
	"backend2/internal/s3registry"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awscloudwatch "github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	"go.uber.org/zap"
)

// Container exposes every long-lived dependency the HTTP layer needs,
// constructed once at startup and passed by reference into handlers
// (spec.md §9 "Global registry").
type Container struct {
	Config *config.Config
	Logger *zap.Logger

	Buckets     *s3registry.Registry
	Blobs       *s3blob.Store
	S3          *s3ops.Service
	Tables      *ddbtable.Registry
	DynamoDB    *ddbitem.Service
	Credentials *auth.StaticResolver
	Tracer      *observability.Tracer
	Metrics     *observability.Metrics
}

// New builds the container from a loaded Config. ctx is only used to load
// AWS SDK configuration for the optional CloudWatch metrics client
// (provideMetrics); it is not retained.
func New(ctx context.Context, cfg *config.Config) (*Container, error) {
	logger, err := provideLogger(cfg)
	if err != nil {
		return nil, err
	}

	buckets := s3registry.NewRegistry()
	blobs := s3blob.New(int(cfg.BlobSpilloverBytes), os.TempDir())
	s3Service := s3ops.New(buckets, blobs)

	tables := ddbtable.NewRegistry()
	dynamoService := ddbitem.New(tables)

	creds := auth.NewStaticResolver(cfg.AccessKeyID, cfg.SecretAccessKey)
	tracer := observability.NewTracer("emulator", cfg.EnableTracing)

	metrics, err := provideMetrics(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	return &Container{
		Config:      cfg,
		Logger:      logger,
		Buckets:     buckets,
		Blobs:       blobs,
		S3:          s3Service,
		Tables:      tables,
		DynamoDB:    dynamoService,
		Credentials: creds,
		Tracer:      tracer,
		Metrics:     metrics,
	}, nil
}

// provideMetrics mirrors infrastructure/di/providers.go's
// ProvideAWSConfig/ProvideCloudWatchClient/ProvideMetrics chain: load the
// default AWS SDK config, build a CloudWatch client from it, and wrap it in
// an observability.Metrics. Only attempted when Config.EnableMetrics is set
// so LoadDefaultConfig's environment/file probing never runs in tests.
func provideMetrics(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*observability.Metrics, error) {
	if !cfg.EnableMetrics {
		return observability.NewMetrics("", nil, logger), nil
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Region))
	if err != nil {
		return nil, fmt.Errorf("loading AWS config for CloudWatch metrics: %w", err)
	}
	client := awscloudwatch.NewFromConfig(awsCfg)
	namespace := fmt.Sprintf("Emulator/%s", cfg.Environment)
	return observability.NewMetrics(namespace, client, logger), nil
}

// provideLogger constructs a *zap.Logger the way
// infrastructure/di/providers.go's ProvideLogger does: production config
// outside development/test, development config (human-readable, debug
// level) otherwise.
func provideLogger(cfg *config.Config) (*zap.Logger, error) {
	if cfg.Environment == "production" {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}

// Close flushes the logger, matching the teacher's main.go shutdown
// sequence (cmd/api/main.go's container.Logger.Sync()).
func (c *Container) Close() error {
	return c.Logger.Sync()
}
