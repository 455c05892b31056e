package db

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/ARUMANDESU/storefront-identity/internal/domain/user"
)

type UserRow struct {
	ID             string
	Email          string
	DisplayName    string
	EmailConfirmed bool
	PassHash       []byte
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

type UserAssertion struct {
	row UserRow
	t   *testing.T
}

func (a *UserAssertion) Row() UserRow {
	return a.row
}

func (a *UserAssertion) ID() user.ID {
	a.t.Helper()
	id, err := user.ParseID(a.row.ID)
	assert.NoError(a.t, err)
	return id
}

func (a *UserAssertion) HasDisplayName(expected string) *UserAssertion {
	a.t.Helper()
	assert.Equal(a.t, expected, a.row.DisplayName, "unexpected display name")
	return a
}

func (a *UserAssertion) IsConfirmed() *UserAssertion {
	a.t.Helper()
	assert.True(a.t, a.row.EmailConfirmed, "expected email to be confirmed")
	return a
}

func (a *UserAssertion) IsNotConfirmed() *UserAssertion {
	a.t.Helper()
	assert.False(a.t, a.row.EmailConfirmed, "expected email to be unconfirmed")
	return a
}
