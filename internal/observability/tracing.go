// Package observability wraps AWS X-Ray tracing around operation dispatch,
// grounded on pkg/observability/tracing.go. The teacher's tracer always
// traces; this one is gated by Config.EnableTracing (SPEC_FULL.md §3) so
// unit and integration tests never need a live X-Ray daemon.
package observability

import (
	"context"
	"fmt"

	"github.com/aws/aws-xray-sdk-go/xray"
)

// Tracer brackets S3 and DynamoDB operation dispatch with an X-Ray
// subsegment when enabled, and is a no-op otherwise.
type Tracer struct {
	serviceName string
	enabled     bool
}

// NewTracer constructs a Tracer for the given logical service name.
func NewTracer(serviceName string, enabled bool) *Tracer {
	return &Tracer{serviceName: serviceName, enabled: enabled}
}

// TraceOperation runs fn, wrapped in an X-Ray subsegment named
// "<serviceName>.<operation>" when tracing is enabled; any error fn
// returns is recorded on the segment.
func (t *Tracer) TraceOperation(ctx context.Context, operation string, fn func(context.Context) error) error {
	if !t.enabled {
		return fn(ctx)
	}

	ctx, seg := xray.BeginSubsegment(ctx, fmt.Sprintf("%s.%s", t.serviceName, operation))
	defer seg.Close(nil)

	err := fn(ctx)
	if err != nil {
		seg.AddError(err)
	}
	return err
}

// Enabled reports whether tracing is active.
func (t *Tracer) Enabled() bool {
	return t.enabled
}
