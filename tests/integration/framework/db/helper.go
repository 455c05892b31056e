package db

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/ARUMANDESU/storefront-identity/internal/domain/user"
	"github.com/ARUMANDESU/storefront-identity/internal/domain/verification"
)

type Helper struct {
	pool *pgxpool.Pool
}

func NewHelper(pool *pgxpool.Pool) *Helper {
	if pool == nil {
		panic("pgxpool.Pool is required")
	}
	return &Helper{pool: pool}
}

func (h *Helper) QueryOne(t *testing.T, query string, args ...any) pgx.Row {
	t.Helper()
	return h.pool.QueryRow(context.Background(), query, args...)
}

func (h *Helper) Exec(t *testing.T, query string, args ...any) pgconn.CommandTag {
	t.Helper()

	tag, err := h.pool.Exec(context.Background(), query, args...)
	require.NoError(t, err)

	return tag
}

func (h *Helper) TruncateAll(t *testing.T) {
	t.Helper()

	tables := []string{
		"verification_codes",
		"user_credentials",
		"users",
	}

	ctx := context.Background()
	for _, table := range tables {
		_, err := h.pool.Exec(ctx, fmt.Sprintf("TRUNCATE TABLE %s CASCADE", table))
		require.NoError(t, err, "failed to truncate table %s", table)
	}
}

// SeedUser inserts u and its password credential directly.
func (h *Helper) SeedUser(t *testing.T, u *user.User) {
	t.Helper()

	h.Exec(t, `
		INSERT INTO users (id, email, display_name, email_confirmed, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		u.ID().String(), u.Email(), u.DisplayName(), u.EmailConfirmed(), u.CreatedAt(), u.UpdatedAt(),
	)
	if len(u.PassHash()) > 0 {
		h.Exec(t, `INSERT INTO user_credentials (user_id, password_hash) VALUES ($1, $2)`, u.ID().String(), u.PassHash())
	}
}

// SeedCode inserts c without touching other codes of the owner.
func (h *Helper) SeedCode(t *testing.T, c *verification.Code) {
	t.Helper()

	h.Exec(t, `
		INSERT INTO verification_codes (id, user_id, code_hash, purpose, is_active, created_at, activated_at, failed_attempts)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		c.ID().String(), c.Owner().String(), c.CodeHash(), c.Purpose().String(), c.IsActive(), c.CreatedAt(), c.ActivatedAt(),
		c.FailedAttempts(),
	)
}

func (h *Helper) RequireUserByEmail(t *testing.T, email string) *UserAssertion {
	t.Helper()

	var row UserRow
	err := h.pool.QueryRow(context.Background(), `
		SELECT u.id, u.email, u.display_name, u.email_confirmed, c.password_hash, u.created_at, u.updated_at
		FROM users u
		LEFT JOIN user_credentials c ON c.user_id = u.id
		WHERE LOWER(u.email) = LOWER($1)`, email,
	).Scan(&row.ID, &row.Email, &row.DisplayName, &row.EmailConfirmed, &row.PassHash, &row.CreatedAt, &row.UpdatedAt)
	require.NoError(t, err, "user %s not found", email)

	return &UserAssertion{row: row, t: t}
}

func (h *Helper) AssertUserNotExists(t *testing.T, email string) {
	t.Helper()

	var count int
	err := h.pool.QueryRow(context.Background(), `SELECT COUNT(*) FROM users WHERE LOWER(email) = LOWER($1)`, email).Scan(&count)
	require.NoError(t, err)
	assert.Zero(t, count, "expected no user with email %s", email)
}

// Codes returns every code of purpose owned by the user, newest first.
func (h *Helper) Codes(t *testing.T, owner user.ID, purpose verification.Purpose) []CodeRow {
	t.Helper()

	rows, err := h.pool.Query(context.Background(), `
		SELECT id, code_hash, is_active, created_at, activated_at, failed_attempts
		FROM verification_codes
		WHERE user_id = $1 AND purpose = $2
		ORDER BY created_at DESC`, owner.String(), purpose.String(),
	)
	require.NoError(t, err)
	defer rows.Close()

	var codes []CodeRow
	for rows.Next() {
		var c CodeRow
		require.NoError(t, rows.Scan(&c.ID, &c.CodeHash, &c.IsActive, &c.CreatedAt, &c.ActivatedAt, &c.FailedAttempts))
		codes = append(codes, c)
	}
	require.NoError(t, rows.Err())
	return codes
}

// AssertSingleActiveCode checks that exactly one code of purpose is active
// and that it is the newest one.
func (h *Helper) AssertSingleActiveCode(t *testing.T, owner user.ID, purpose verification.Purpose) CodeRow {
	t.Helper()

	codes := h.Codes(t, owner, purpose)
	require.NotEmpty(t, codes, "expected %s codes for %s", purpose, owner)

	active := 0
	for _, c := range codes {
		if c.IsActive {
			active++
		}
	}
	assert.Equal(t, 1, active, "expected a single active %s code", purpose)
	assert.True(t, codes[0].IsActive, "the newest %s code should be the active one", purpose)
	return codes[0]
}

type CodeRow struct {
	ID             string
	CodeHash       string
	IsActive       bool
	CreatedAt      time.Time
	ActivatedAt    *time.Time
	FailedAttempts int
}

func (a *UserAssertion) PasswordMatches(password string) *UserAssertion {
	a.t.Helper()
	assert.NoError(a.t, bcrypt.CompareHashAndPassword(a.row.PassHash, []byte(password)), "password does not match")
	return a
}
