package provider

import (
	"context"

	apperrors "github.com/kbukum/voxscribe/errors"
	"github.com/kbukum/voxscribe/observability"
)

// WithTracing opens a span named "{serviceName}.{backend}" around each
// call. Failed spans carry the call outcome and, for an AppError, its code.
func WithTracing[I, O any](serviceName string) Middleware[I, O] {
	return func(inner RequestResponse[I, O]) RequestResponse[I, O] {
		return &tracingRR[I, O]{RequestResponse: inner, serviceName: serviceName}
	}
}

type tracingRR[I, O any] struct {
	RequestResponse[I, O]
	serviceName string
}

func (t *tracingRR[I, O]) Execute(ctx context.Context, input I) (O, error) {
	backend := t.Name()
	ctx, span := observability.StartSpan(ctx, t.serviceName+"."+backend)
	defer span.End()
	observability.SetSpanAttribute(ctx, observability.AttrServiceName, t.serviceName)
	observability.SetSpanAttribute(ctx, observability.AttrBackend, backend)

	output, err := t.RequestResponse.Execute(ctx, input)
	if err != nil {
		observability.SetSpanError(ctx, err)
		observability.SetSpanAttribute(ctx, observability.AttrOutcome, Outcome(ctx, err))
		if appErr, ok := apperrors.AsAppError(err); ok {
			observability.SetSpanAttribute(ctx, observability.AttrErrorCode, string(appErr.Code))
		}
	}
	return output, err
}
