package mocks

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ARUMANDESU/storefront-identity/internal/domain/user"
	"github.com/ARUMANDESU/storefront-identity/internal/domain/verification"
	"github.com/ARUMANDESU/storefront-identity/pkg/errorx"
)

type memTxKey struct{}

// memTx stages credential writes made inside UpdateLatestCode.
type memTx struct {
	creds map[user.ID][]byte
}

// IdentityStore is an in-memory user, code and credential store. Rows are
// kept as values, so a failed update leaves them untouched the way a
// rolled back transaction would.
type IdentityStore struct {
	*EventRepo
	mu    sync.Mutex
	users map[user.ID]user.RehydrateArgs
	codes []verification.RehydrateArgs
	creds map[user.ID][]byte

	removePasswordErr error
	addPasswordErr    error
}

func NewIdentityStore() *IdentityStore {
	return &IdentityStore{
		EventRepo: NewEventRepo(),
		users:     make(map[user.ID]user.RehydrateArgs),
		creds:     make(map[user.ID][]byte),
	}
}

// FailRemovePassword makes every following RemovePassword return err.
func (s *IdentityStore) FailRemovePassword(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.removePasswordErr = err
}

// FailAddPassword makes every following AddPassword return err.
func (s *IdentityStore) FailAddPassword(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.addPasswordErr = err
}

func (s *IdentityStore) GetUserByEmail(_ context.Context, email string) (*user.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	row, ok := s.userRowByEmail(email)
	if !ok {
		return nil, errorx.NewNotFound()
	}
	return s.loadUser(row), nil
}

func (s *IdentityStore) GetUserByID(_ context.Context, id user.ID) (*user.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	row, ok := s.users[id]
	if !ok {
		return nil, errorx.NewNotFound()
	}
	return s.loadUser(row), nil
}

func (s *IdentityStore) SaveUser(_ context.Context, u *user.User) error {
	if u == nil {
		return errors.New("user cannot be nil")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.userRowByEmail(u.Email()); ok {
		return user.ErrEmailTaken
	}
	s.users[u.ID()] = userRow(u)
	s.creds[u.ID()] = slices.Clone(u.PassHash())
	s.appendEvents(u.GetUncommittedEvents()...)
	u.MarkEventsAsCommitted()
	return nil
}

func (s *IdentityStore) SaveCode(_ context.Context, c *verification.Code) error {
	if c == nil {
		return errors.New("code cannot be nil")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[c.Owner()]; !ok {
		return fmt.Errorf("owner %s does not exist", c.Owner())
	}
	for i := range s.codes {
		if s.codes[i].Owner == c.Owner() && s.codes[i].Purpose == c.Purpose() {
			s.codes[i].IsActive = false
		}
	}
	s.codes = append(s.codes, codeRow(c))
	s.appendEvents(c.GetUncommittedEvents()...)
	c.MarkEventsAsCommitted()
	return nil
}

func (s *IdentityStore) UpdateLatestCode(
	ctx context.Context,
	email string,
	purpose verification.Purpose,
	activeOnly bool,
	fn func(context.Context, *user.User, *verification.Code) error,
) error {
	if fn == nil {
		return errors.New("update function cannot be nil")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	row, ok := s.userRowByEmail(email)
	if !ok {
		return errorx.NewNotFound()
	}
	u := s.loadUser(row)

	var c *verification.Code
	idx := s.latestCode(row.ID, purpose, activeOnly)
	if idx >= 0 {
		c = verification.Rehydrate(s.codes[idx])
	}

	tx := &memTx{creds: make(map[user.ID][]byte)}
	fnerr := fn(context.WithValue(ctx, memTxKey{}, tx), u, c)
	if fnerr != nil && !errorx.IsPersistable(fnerr) {
		return fmt.Errorf("failed to apply update function: %w", fnerr)
	}

	s.users[u.ID()] = userRow(u)
	if c != nil {
		s.codes[idx] = codeRow(c)
		s.appendEvents(c.GetUncommittedEvents()...)
	}
	for id, hash := range tx.creds {
		if hash == nil {
			delete(s.creds, id)
			continue
		}
		s.creds[id] = hash
	}
	s.appendEvents(u.GetUncommittedEvents()...)

	if fnerr != nil {
		return fmt.Errorf("failed to apply update function: %w", fnerr)
	}
	return nil
}

func (s *IdentityStore) RemovePassword(ctx context.Context, userID user.ID) error {
	tx, ok := ctx.Value(memTxKey{}).(*memTx)
	if !ok {
		return errors.New("no transaction in context")
	}
	if s.removePasswordErr != nil {
		return s.removePasswordErr
	}
	if _, staged := tx.creds[userID]; !staged {
		if _, exists := s.creds[userID]; !exists {
			return errorx.NewNoRowsAffected()
		}
	}
	tx.creds[userID] = nil
	return nil
}

func (s *IdentityStore) AddPassword(ctx context.Context, userID user.ID, passHash []byte) error {
	tx, ok := ctx.Value(memTxKey{}).(*memTx)
	if !ok {
		return errors.New("no transaction in context")
	}
	if s.addPasswordErr != nil {
		return s.addPasswordErr
	}
	if hash, staged := tx.creds[userID]; !staged || hash != nil {
		return errorx.NewDuplicateEntryWithField("credential", "user_id")
	}
	tx.creds[userID] = slices.Clone(passHash)
	return nil
}

// SeedUser stores u with its password hash as the credential.
func (s *IdentityStore) SeedUser(t *testing.T, u *user.User) {
	t.Helper()

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.userRowByEmail(u.Email()); ok {
		t.Fatalf("user with email %s already exists", u.Email())
	}
	s.users[u.ID()] = userRow(u)
	if len(u.PassHash()) > 0 {
		s.creds[u.ID()] = slices.Clone(u.PassHash())
	}
}

func (s *IdentityStore) SeedCode(t *testing.T, c *verification.Code) {
	t.Helper()

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[c.Owner()]; !ok {
		t.Fatalf("owner %s of code %s is not seeded", c.Owner(), c.ID())
	}
	s.codes = append(s.codes, codeRow(c))
}

// Codes returns the stored codes of owner for purpose, oldest first.
func (s *IdentityStore) Codes(owner user.ID, purpose verification.Purpose) []*verification.Code {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []*verification.Code
	for _, row := range s.codes {
		if row.Owner == owner && row.Purpose == purpose {
			out = append(out, verification.Rehydrate(row))
		}
	}
	return out
}

func (s *IdentityStore) RequireLatestCode(t *testing.T, owner user.ID, purpose verification.Purpose) *verification.Code {
	t.Helper()
	codes := s.Codes(owner, purpose)
	require.NotEmpty(t, codes, "no %s code stored for %s", purpose, owner)
	return codes[len(codes)-1]
}

func (s *IdentityStore) AssertCodeCount(t *testing.T, owner user.ID, purpose verification.Purpose, want int) *IdentityStore {
	t.Helper()
	assert.Len(t, s.Codes(owner, purpose), want)
	return s
}

func (s *IdentityStore) AssertEmailConfirmed(t *testing.T, email string, want bool) *IdentityStore {
	t.Helper()
	u, err := s.GetUserByEmail(t.Context(), email)
	require.NoError(t, err)
	assert.Equal(t, want, u.EmailConfirmed())
	return s
}

// AssertPassword checks that password authenticates the stored credential.
func (s *IdentityStore) AssertPassword(t *testing.T, email, password string) *IdentityStore {
	t.Helper()
	u, err := s.GetUserByEmail(t.Context(), email)
	require.NoError(t, err)
	assert.NoError(t, u.ComparePassword(password), "password should authenticate")
	return s
}

func (s *IdentityStore) AssertNotPassword(t *testing.T, email, password string) *IdentityStore {
	t.Helper()
	u, err := s.GetUserByEmail(t.Context(), email)
	require.NoError(t, err)
	assert.Error(t, u.ComparePassword(password), "password should not authenticate")
	return s
}

func (s *IdentityStore) userRowByEmail(email string) (user.RehydrateArgs, bool) {
	for _, row := range s.users {
		if strings.EqualFold(row.Email, email) {
			return row, true
		}
	}
	return user.RehydrateArgs{}, false
}

func (s *IdentityStore) loadUser(row user.RehydrateArgs) *user.User {
	row.PassHash = slices.Clone(s.creds[row.ID])
	return user.Rehydrate(row)
}

// latestCode mirrors ORDER BY created_at DESC LIMIT 1. Later inserts win ties.
func (s *IdentityStore) latestCode(owner user.ID, purpose verification.Purpose, activeOnly bool) int {
	idx := -1
	for i, row := range s.codes {
		if row.Owner != owner || row.Purpose != purpose || (activeOnly && !row.IsActive) {
			continue
		}
		if idx < 0 || !row.CreatedAt.Before(s.codes[idx].CreatedAt) {
			idx = i
		}
	}
	return idx
}

func userRow(u *user.User) user.RehydrateArgs {
	return user.RehydrateArgs{
		ID:             u.ID(),
		Email:          u.Email(),
		DisplayName:    u.DisplayName(),
		EmailConfirmed: u.EmailConfirmed(),
		CreatedAt:      u.CreatedAt(),
		UpdatedAt:      u.UpdatedAt(),
	}
}

func codeRow(c *verification.Code) verification.RehydrateArgs {
	return verification.RehydrateArgs{
		ID:             c.ID(),
		Owner:          c.Owner(),
		CodeHash:       c.CodeHash(),
		Purpose:        c.Purpose(),
		IsActive:       c.IsActive(),
		CreatedAt:      c.CreatedAt(),
		ActivatedAt:    c.ActivatedAt(),
		FailedAttempts: c.FailedAttempts(),
	}
}
