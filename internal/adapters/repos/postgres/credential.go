package postgres

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel/trace"

	"github.com/ARUMANDESU/storefront-identity/internal/domain/user"
	"github.com/ARUMANDESU/storefront-identity/pkg/ctxs"
	"github.com/ARUMANDESU/storefront-identity/pkg/errorx"
	"github.com/ARUMANDESU/storefront-identity/pkg/otelx"
)

const deleteCredentialQuery = `DELETE FROM user_credentials WHERE user_id = $1;`

var ErrNoTx = errors.New("credential changes require a transaction in context")

// CredentialStore replaces password credentials. It only works inside the
// transaction opened by CodeRepo.UpdateLatestCode, found through ctxs.Tx.
type CredentialStore struct {
	tracer trace.Tracer
	logger *slog.Logger
	pool   *pgxpool.Pool
}

// NewCredentialStore creates a new instance of CredentialStore.
//
// WARNING: panics if pool is nil
func NewCredentialStore(pool *pgxpool.Pool, t trace.Tracer, l *slog.Logger) *CredentialStore {
	if pool == nil {
		panic("pgxpool.Pool cannot be nil")
	}
	if t == nil {
		t = tracer
	}
	if l == nil {
		l = logger
	}

	return &CredentialStore{
		tracer: t,
		logger: l,
		pool:   pool,
	}
}

func (s *CredentialStore) RemovePassword(ctx context.Context, id user.ID) error {
	const op = "postgres.CredentialStore.RemovePassword"
	ctx, span := s.tracer.Start(ctx, "CredentialStore.RemovePassword")
	defer span.End()

	tx, ok := ctxs.Tx(ctx)
	if !ok {
		otelx.RecordSpanError(span, ErrNoTx, "no transaction in context")
		return errorx.Wrap(ErrNoTx, op)
	}

	res, err := tx.Exec(ctx, deleteCredentialQuery, uuid.UUID(id))
	if err != nil {
		otelx.RecordSpanError(span, err, "failed to delete credential")
		return errorx.Wrap(err, op)
	}
	if res.RowsAffected() == 0 {
		otelx.RecordSpanError(span, ErrNoRowsAffected, "no credential to remove")
		return errorx.Wrap(ErrNoRowsAffected, op)
	}
	return nil
}

func (s *CredentialStore) AddPassword(ctx context.Context, id user.ID, passHash []byte) error {
	const op = "postgres.CredentialStore.AddPassword"
	ctx, span := s.tracer.Start(ctx, "CredentialStore.AddPassword")
	defer span.End()

	tx, ok := ctxs.Tx(ctx)
	if !ok {
		otelx.RecordSpanError(span, ErrNoTx, "no transaction in context")
		return errorx.Wrap(ErrNoTx, op)
	}

	_, err := tx.Exec(ctx, insertCredentialQuery, uuid.UUID(id), passHash)
	if err != nil {
		otelx.RecordSpanError(span, err, "failed to insert credential")
		if isUniqueViolation(err) {
			return errorx.NewDuplicateEntryWithField("credential", "user_id").WithCause(err)
		}
		return errorx.Wrap(err, op)
	}
	return nil
}
