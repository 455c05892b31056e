package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/ARUMANDESU/storefront-identity/internal/domain/event"
	"github.com/ARUMANDESU/storefront-identity/internal/domain/user"
	"github.com/ARUMANDESU/storefront-identity/internal/domain/verification"
	"github.com/ARUMANDESU/storefront-identity/pkg/errorx"
	"github.com/ARUMANDESU/storefront-identity/pkg/otelx"
	"github.com/ARUMANDESU/storefront-identity/pkg/postgres"
	"github.com/ARUMANDESU/storefront-identity/pkg/watermillx"
)

const (
	supersedeCodesQuery = `UPDATE verification_codes SET is_active = FALSE
        WHERE user_id = $1 AND purpose = $2 AND is_active;`
	insertCodeQuery = `INSERT INTO verification_codes (` + codeColumns + `)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8);`
	latestCodeQuery = `SELECT ` + codeColumns + ` FROM verification_codes
        WHERE user_id = $1 AND purpose = $2 AND (is_active OR NOT $3)
        ORDER BY created_at DESC LIMIT 1 FOR UPDATE;`
	updateCodeQuery = `UPDATE verification_codes
        SET is_active = $2, activated_at = $3, failed_attempts = $4 WHERE id = $1;`
)

// CodeRepo stores verification codes next to the users they belong to.
type CodeRepo struct {
	tracer  trace.Tracer
	logger  *slog.Logger
	pool    *pgxpool.Pool
	wlogger watermill.LoggerAdapter
}

// NewCodeRepo creates a new instance of CodeRepo.
//
// WARNING: panics if pool is nil
func NewCodeRepo(pool *pgxpool.Pool, t trace.Tracer, l *slog.Logger) *CodeRepo {
	if pool == nil {
		panic("pgxpool.Pool cannot be nil")
	}
	if t == nil {
		t = tracer
	}
	if l == nil {
		l = logger
	}

	return &CodeRepo{
		tracer:  t,
		logger:  l,
		pool:    pool,
		wlogger: watermillx.NewSlogAdapter(l, slog.LevelInfo),
	}
}

func (r *CodeRepo) GetUserByEmail(ctx context.Context, email string) (*user.User, error) {
	const op = "postgres.CodeRepo.GetUserByEmail"
	ctx, span := r.tracer.Start(ctx, "CodeRepo.GetUserByEmail")
	defer span.End()

	u, err := scanUser(r.pool.QueryRow(ctx, selectUserQuery+` WHERE LOWER(u.email) = LOWER($1);`, email))
	if err != nil {
		otelx.RecordSpanError(span, err, "failed to get user by email")
		return nil, errorx.Wrap(err, op)
	}
	return u, nil
}

// SaveCode deactivates every other active code of the same owner and purpose
// and inserts c, all in one transaction.
func (r *CodeRepo) SaveCode(ctx context.Context, c *verification.Code) error {
	const op = "postgres.CodeRepo.SaveCode"
	if c == nil {
		return errors.New("code cannot be nil")
	}
	ctx, span := r.tracer.Start(ctx, "CodeRepo.SaveCode", trace.WithAttributes(
		attribute.String("code.id", c.ID().String()),
		attribute.String("code.purpose", c.Purpose().String()),
	))
	defer span.End()

	err := postgres.WithTx(ctx, r.pool, func(ctx context.Context, tx pgx.Tx) error {
		dto := DomainToCodeDTO(c)
		res, err := tx.Exec(ctx, supersedeCodesQuery, dto.UserID, dto.Purpose)
		if err != nil {
			otelx.RecordSpanError(span, err, "failed to supersede codes")
			return errorx.Wrap(err, op)
		}
		span.SetAttributes(attribute.Int64("code.superseded", res.RowsAffected()))

		_, err = tx.Exec(ctx, insertCodeQuery,
			dto.ID,
			dto.UserID,
			dto.CodeHash,
			dto.Purpose,
			dto.IsActive,
			dto.CreatedAt,
			dto.ActivatedAt,
			dto.FailedAttempts,
		)
		if err != nil {
			otelx.RecordSpanError(span, err, "failed to insert code")
			return errorx.Wrap(err, op)
		}

		if err := publish(ctx, tx, r.wlogger, c.GetUncommittedEvents()); err != nil {
			otelx.RecordSpanError(span, err, "failed to publish events")
			return errorx.Wrap(err, op)
		}
		return nil
	})
	if err != nil {
		otelx.RecordSpanError(span, err, "failed to execute transaction")
		return err
	}

	c.MarkEventsAsCommitted()
	return nil
}

// UpdateLatestCode locks the user registered under email and its most recent
// code of purpose, hands both to fn and persists whatever fn changed. With
// activeOnly set, only active codes are considered. A nil code is passed when
// none matches. Errors from fn roll everything back unless they are
// errorx.Persistable.
func (r *CodeRepo) UpdateLatestCode(
	ctx context.Context,
	email string,
	purpose verification.Purpose,
	activeOnly bool,
	fn func(ctx context.Context, u *user.User, c *verification.Code) error,
) error {
	const op = "postgres.CodeRepo.UpdateLatestCode"
	ctx, span := r.tracer.Start(ctx, "CodeRepo.UpdateLatestCode", trace.WithAttributes(
		attribute.String("code.purpose", purpose.String()),
		attribute.Bool("code.active_only", activeOnly),
	))
	defer span.End()

	if fn == nil {
		otelx.RecordSpanError(span, ErrNilFunc, "update function cannot be nil")
		return ErrNilFunc
	}

	var persisted error
	err := postgres.WithTx(ctx, r.pool, func(ctx context.Context, tx pgx.Tx) error {
		u, err := lockUserByEmail(ctx, tx, email)
		if err != nil {
			otelx.RecordSpanError(span, err, "failed to lock user")
			return errorx.Wrap(err, op)
		}

		var c *verification.Code
		var dto CodeDTO
		err = tx.QueryRow(ctx, latestCodeQuery, uuid.UUID(u.ID()), purpose.String(), activeOnly).Scan(dto.scanTargets()...)
		switch {
		case err == nil:
			c = CodeToDomain(dto)
		case isNoRows(err):
		default:
			otelx.RecordSpanError(span, err, "failed to get latest code")
			return errorx.Wrap(err, op)
		}

		fnerr := fn(ctx, u, c)
		if fnerr != nil && !errorx.IsPersistable(fnerr) {
			return errorx.Wrap(fnerr, op)
		}

		if err := updateUser(ctx, tx, u); err != nil {
			otelx.RecordSpanError(span, err, "failed to update user")
			return errorx.Wrap(err, op)
		}

		events := u.GetUncommittedEvents()
		if c != nil {
			dto = DomainToCodeDTO(c)
			if _, err := tx.Exec(ctx, updateCodeQuery, dto.ID, dto.IsActive, dto.ActivatedAt, dto.FailedAttempts); err != nil {
				otelx.RecordSpanError(span, err, "failed to update code")
				return errorx.Wrap(err, op)
			}
			events = append(events, c.GetUncommittedEvents()...)
		}

		if err := publish(ctx, tx, r.wlogger, events); err != nil {
			otelx.RecordSpanError(span, err, "failed to publish events")
			return errorx.Wrap(err, op)
		}

		persisted = fnerr
		return nil
	})
	if err != nil {
		return err
	}
	if persisted != nil {
		otelx.RecordSpanError(span, persisted, "update function returned an error but its changes were persisted")
		return errorx.Wrap(persisted, op)
	}

	return nil
}

// publish propagates the trace context of ctx into evts and writes them to the outbox.
func publish(ctx context.Context, tx pgx.Tx, wlogger watermill.LoggerAdapter, evts []event.Event) error {
	for _, evt := range evts {
		if p, ok := evt.(interface{ Propagate(context.Context) }); ok {
			p.Propagate(ctx)
		}
	}
	if err := watermillx.Publish(ctx, tx, wlogger, evts...); err != nil {
		return fmt.Errorf("failed to publish %d events: %w", len(evts), err)
	}
	return nil
}
