package postgres

import (
	"context"
	"errors"
	"log/slog"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel/trace"

	"github.com/ARUMANDESU/storefront-identity/internal/domain/user"
	"github.com/ARUMANDESU/storefront-identity/pkg/errorx"
	"github.com/ARUMANDESU/storefront-identity/pkg/otelx"
	"github.com/ARUMANDESU/storefront-identity/pkg/postgres"
	"github.com/ARUMANDESU/storefront-identity/pkg/watermillx"
)

const (
	insertUserQuery = `INSERT INTO users (id, email, display_name, email_confirmed, created_at, updated_at)
    VALUES ($1, $2, $3, $4, $5, $6);`
	insertCredentialQuery = `INSERT INTO user_credentials (user_id, password_hash) VALUES ($1, $2);`
	selectUserQuery       = `SELECT ` + userColumns + `
        FROM users u LEFT JOIN user_credentials c ON c.user_id = u.id`
	updateUserQuery = `UPDATE users SET email_confirmed = $2, display_name = $3, updated_at = $4 WHERE id = $1;`
)

type UserRepo struct {
	tracer  trace.Tracer
	logger  *slog.Logger
	pool    *pgxpool.Pool
	wlogger watermill.LoggerAdapter
}

// NewUserRepo creates a new instance of UserRepo.
//
// WARNING: panics if pool is nil
func NewUserRepo(pool *pgxpool.Pool, t trace.Tracer, l *slog.Logger) *UserRepo {
	if pool == nil {
		panic("pgxpool.Pool cannot be nil")
	}
	if t == nil {
		t = tracer
	}
	if l == nil {
		l = logger
	}

	return &UserRepo{
		tracer:  t,
		logger:  l,
		pool:    pool,
		wlogger: watermillx.NewSlogAdapter(l, slog.LevelInfo),
	}
}

// SaveUser inserts u together with its password credential and publishes
// its events to the outbox.
func (r *UserRepo) SaveUser(ctx context.Context, u *user.User) error {
	const op = "postgres.UserRepo.SaveUser"
	ctx, span := r.tracer.Start(ctx, "UserRepo.SaveUser")
	defer span.End()

	if u == nil {
		return errors.New("user cannot be nil")
	}

	err := postgres.WithTx(ctx, r.pool, func(ctx context.Context, tx pgx.Tx) error {
		dto := DomainToUserDTO(u)
		res, err := tx.Exec(ctx, insertUserQuery,
			dto.ID,
			dto.Email,
			dto.DisplayName,
			dto.EmailConfirmed,
			dto.CreatedAt,
			dto.UpdatedAt,
		)
		if err != nil {
			if isUniqueViolation(err) {
				return user.ErrEmailTaken.WithCause(err)
			}
			otelx.RecordSpanError(span, err, "failed to insert user")
			return errorx.Wrap(err, op)
		}
		if res.RowsAffected() == 0 {
			otelx.RecordSpanError(span, ErrNoRowsAffected, "no rows affected while inserting user")
			return errorx.Wrap(ErrNoRowsAffected, op)
		}

		if len(dto.PassHash) > 0 {
			if _, err := tx.Exec(ctx, insertCredentialQuery, dto.ID, dto.PassHash); err != nil {
				otelx.RecordSpanError(span, err, "failed to insert credential")
				return errorx.Wrap(err, op)
			}
		}

		if err := publish(ctx, tx, r.wlogger, u.GetUncommittedEvents()); err != nil {
			otelx.RecordSpanError(span, err, "failed to publish events")
			return errorx.Wrap(err, op)
		}
		return nil
	})
	if err != nil {
		otelx.RecordSpanError(span, err, "failed to execute transaction")
		return err
	}

	u.MarkEventsAsCommitted()
	return nil
}

func (r *UserRepo) GetUserByID(ctx context.Context, id user.ID) (*user.User, error) {
	const op = "postgres.UserRepo.GetUserByID"
	ctx, span := r.tracer.Start(ctx, "UserRepo.GetUserByID")
	defer span.End()

	u, err := scanUser(r.pool.QueryRow(ctx, selectUserQuery+` WHERE u.id = $1;`, uuid.UUID(id)))
	if err != nil {
		otelx.RecordSpanError(span, err, "failed to get user by id")
		return nil, errorx.Wrap(err, op)
	}
	return u, nil
}

// GetUserByEmail matches the address case-insensitively.
func (r *UserRepo) GetUserByEmail(ctx context.Context, email string) (*user.User, error) {
	const op = "postgres.UserRepo.GetUserByEmail"
	ctx, span := r.tracer.Start(ctx, "UserRepo.GetUserByEmail")
	defer span.End()

	u, err := scanUser(r.pool.QueryRow(ctx, selectUserQuery+` WHERE LOWER(u.email) = LOWER($1);`, email))
	if err != nil {
		otelx.RecordSpanError(span, err, "failed to get user by email")
		return nil, errorx.Wrap(err, op)
	}
	return u, nil
}

func scanUser(row pgx.Row) (*user.User, error) {
	var dto UserDTO
	if err := row.Scan(dto.scanTargets()...); err != nil {
		if isNoRows(err) {
			return nil, user.ErrNotFound.WithCause(err)
		}
		return nil, err
	}
	return UserToDomain(dto), nil
}

// lockUserByEmail loads the user row inside tx and holds its lock until tx ends.
func lockUserByEmail(ctx context.Context, tx pgx.Tx, email string) (*user.User, error) {
	return scanUser(tx.QueryRow(ctx, selectUserQuery+` WHERE LOWER(u.email) = LOWER($1) FOR UPDATE OF u;`, email))
}

func updateUser(ctx context.Context, tx pgx.Tx, u *user.User) error {
	dto := DomainToUserDTO(u)
	res, err := tx.Exec(ctx, updateUserQuery, dto.ID, dto.EmailConfirmed, dto.DisplayName, dto.UpdatedAt)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return ErrNoRowsAffected
	}
	return nil
}
