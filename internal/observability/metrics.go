package observability

import (
	"context"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"
	"go.uber.org/zap"
)

// Metrics emits S3/DynamoDB operation counts and latencies to CloudWatch,
// grounded on the sibling teacher repo's pkg/observability/metrics.go
// (2lar-b2/backend). Like Tracer, it is disabled by default — client is nil
// unless Config.EnableMetrics is set, so unit and integration tests never
// need real AWS credentials or a reachable CloudWatch endpoint.
type Metrics struct {
	namespace string
	client    *cloudwatch.Client
	logger    *zap.Logger
}

// NewMetrics constructs a Metrics emitter. client is nil when metrics are
// disabled, matching the teacher's own "skip if no client configured" guard.
func NewMetrics(namespace string, client *cloudwatch.Client, logger *zap.Logger) *Metrics {
	return &Metrics{namespace: namespace, client: client, logger: logger}
}

// Enabled reports whether a CloudWatch client is configured.
func (m *Metrics) Enabled() bool {
	return m.client != nil
}

// RecordOperation emits an operation-count and operation-latency datum for
// one S3 or DynamoDB operation dispatch, dimensioned by service/operation/
// status the way the teacher's RecordCommandExecution dimensions by
// command name and status.
func (m *Metrics) RecordOperation(ctx context.Context, service, operation string, duration time.Duration, err error) {
	if m.client == nil {
		return
	}

	status := "Success"
	if err != nil {
		status = "Failure"
	}

	dims := []types.Dimension{
		{Name: aws.String("Service"), Value: aws.String(service)},
		{Name: aws.String("Operation"), Value: aws.String(operation)},
		{Name: aws.String("Status"), Value: aws.String(status)},
	}

	input := &cloudwatch.PutMetricDataInput{
		Namespace: aws.String(m.namespace),
		MetricData: []types.MetricDatum{
			{
				MetricName: aws.String("OperationCount"),
				Dimensions: dims,
				Value:      aws.Float64(1),
				Unit:       types.StandardUnitCount,
				Timestamp:  aws.Time(time.Now()),
			},
			{
				MetricName: aws.String("OperationLatency"),
				Dimensions: dims,
				Value:      aws.Float64(float64(duration.Milliseconds())),
				Unit:       types.StandardUnitMilliseconds,
				Timestamp:  aws.Time(time.Now()),
			},
		},
	}

	if _, putErr := m.client.PutMetricData(ctx, input); putErr != nil && m.logger != nil {
		m.logger.Warn("failed to emit CloudWatch metrics", zap.Error(putErr))
	}
}
