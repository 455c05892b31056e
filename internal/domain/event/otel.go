package event

import (
	"context"

	"go.opentelemetry.io/otel/propagation"
)

var propagator = propagation.NewCompositeTextMapPropagator(
	propagation.TraceContext{},
	propagation.Baggage{},
)

// Otel carries the trace context of the request that raised an event so the
// asynchronous handler can continue the same trace.
type Otel struct {
	Carrier map[string]string `json:"otel_carrier,omitempty"`
}

func (o *Otel) Propagate(ctx context.Context) {
	if o.Carrier == nil {
		o.Carrier = make(map[string]string)
	}
	propagator.Inject(ctx, propagation.MapCarrier(o.Carrier))
}

func (o *Otel) Extract() context.Context {
	return o.ExtractInto(context.Background())
}

// ExtractInto returns ctx enriched with the propagated span context and baggage.
func (o *Otel) ExtractInto(ctx context.Context) context.Context {
	if len(o.Carrier) == 0 {
		return ctx
	}
	return propagator.Extract(ctx, propagation.MapCarrier(o.Carrier))
}
