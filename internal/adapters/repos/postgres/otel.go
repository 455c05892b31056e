package postgres

import (
	"go.opentelemetry.io/contrib/bridges/otelslog"
	"go.opentelemetry.io/otel"
)

var (
	tracer = otel.Tracer("storefront-identity/internal/adapters/repos/postgres")
	logger = otelslog.NewLogger("storefront-identity/internal/adapters/repos/postgres")
)
