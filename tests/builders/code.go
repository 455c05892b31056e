package builders

import (
	"time"

	"github.com/ARUMANDESU/storefront-identity/internal/domain/user"
	"github.com/ARUMANDESU/storefront-identity/internal/domain/verification"
)

const TestCode = "482193"

type CodeBuilder struct {
	id          verification.ID
	owner       user.ID
	plaintext   string
	purpose     verification.Purpose
	isActive    bool
	createdAt   time.Time
	activatedAt *time.Time
	failures    int
}

// NewCodeBuilder starts from a fresh registration code holding TestCode.
func NewCodeBuilder() *CodeBuilder {
	return &CodeBuilder{
		id:        verification.NewID(),
		owner:     user.NewID(),
		plaintext: TestCode,
		purpose:   verification.PurposeRegistrationConfirmation,
		isActive:  true,
		createdAt: time.Now().UTC(),
	}
}

func (b *CodeBuilder) ForOwner(owner user.ID) *CodeBuilder {
	b.owner = owner
	return b
}

func (b *CodeBuilder) WithPlaintext(code string) *CodeBuilder {
	b.plaintext = code
	return b
}

// AsReset switches to a freshly issued, not yet activated reset code.
func (b *CodeBuilder) AsReset() *CodeBuilder {
	b.purpose = verification.PurposePasswordReset
	b.isActive = false
	b.activatedAt = nil
	return b
}

// Activated marks a reset code as activated at t.
func (b *CodeBuilder) Activated(t time.Time) *CodeBuilder {
	b.purpose = verification.PurposePasswordReset
	b.isActive = true
	b.activatedAt = &t
	return b
}

func (b *CodeBuilder) Inactive() *CodeBuilder {
	b.isActive = false
	return b
}

func (b *CodeBuilder) WithFailedAttempts(n int) *CodeBuilder {
	b.failures = n
	return b
}

func (b *CodeBuilder) WithCreatedAt(t time.Time) *CodeBuilder {
	b.createdAt = t
	return b
}

func (b *CodeBuilder) RehydrateArgs() verification.RehydrateArgs {
	return verification.RehydrateArgs{
		ID:             b.id,
		Owner:          b.owner,
		CodeHash:       verification.HashCode(b.plaintext),
		Purpose:        b.purpose,
		IsActive:       b.isActive,
		CreatedAt:      b.createdAt,
		ActivatedAt:    b.activatedAt,
		FailedAttempts: b.failures,
	}
}

func (b *CodeBuilder) Build() *verification.Code {
	return verification.Rehydrate(b.RehydrateArgs())
}
