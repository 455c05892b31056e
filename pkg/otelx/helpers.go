package otelx

import (
	"errors"
	"fmt"
	"reflect"
	"time"

	"github.com/ARUMANDESU/validation"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/ARUMANDESU/storefront-identity/pkg/errorx"
)

// RecordSpanError records err on span. Client errors (4xx I18nError) are
// attached as events only, so expected business outcomes do not mark the span failed.
func RecordSpanError(span trace.Span, err error, desc string) {
	if span == nil || err == nil {
		return
	}
	if desc == "" {
		desc = err.Error()
	}

	var i18nErr *errorx.I18nError
	if errors.As(err, &i18nErr) && i18nErr.HTTPStatusCode() < 500 {
		span.AddEvent(desc, trace.WithAttributes(
			attribute.String("error.code", i18nErr.Code.String()),
			attribute.String("error.message", err.Error()),
		))
		return
	}

	span.RecordError(err)
	span.SetStatus(codes.Error, desc)
}

// SetSpanAttrs sets attributes on a span from a map of key-value pairs.
func SetSpanAttrs(span trace.Span, attrs map[string]any) {
	if span == nil || len(attrs) == 0 {
		return
	}

	spanAttrs := make([]attribute.KeyValue, 0, len(attrs))
	for key, value := range attrs {
		spanAttrs = append(spanAttrs, toAttribute(key, value))
	}

	span.SetAttributes(spanAttrs...)
}

func toAttribute(key string, value any) attribute.KeyValue {
	value, isNil := validation.Indirect(value)
	if isNil {
		return attribute.String(key, "<nil>")
	}

	switch v := value.(type) {
	case string:
		return attribute.String(key, v)
	case bool:
		return attribute.Bool(key, v)
	case int:
		return attribute.Int(key, v)
	case int64:
		return attribute.Int64(key, v)
	case float64:
		return attribute.Float64(key, v)
	case []string:
		return attribute.StringSlice(key, v)
	case time.Time:
		return attribute.String(key, v.Format(time.RFC3339Nano))
	case time.Duration:
		return attribute.String(key, v.String())
	case uuid.UUID:
		return attribute.String(key, v.String())
	case fmt.Stringer:
		return attribute.String(key, v.String())
	}

	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.String:
		return attribute.String(key, rv.String())
	case reflect.Bool:
		return attribute.Bool(key, rv.Bool())
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return attribute.Int64(key, rv.Int())
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32:
		return attribute.Int64(key, int64(rv.Uint()))
	case reflect.Float32, reflect.Float64:
		return attribute.Float64(key, rv.Float())
	case reflect.Array:
		if rv.Len() == 16 && rv.Type().Elem().Kind() == reflect.Uint8 {
			var b [16]byte
			reflect.Copy(reflect.ValueOf(b[:]), rv)
			return attribute.String(key, uuid.UUID(b).String())
		}
	}

	return attribute.String(key, fmt.Sprintf("%v", value))
}
