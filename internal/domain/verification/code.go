package verification

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/ARUMANDESU/storefront-identity/internal/domain/event"
	"github.com/ARUMANDESU/storefront-identity/internal/domain/user"
	"github.com/ARUMANDESU/storefront-identity/pkg/errorx"
)

const (
	// CodeValidity bounds how long an issued code can be used to verify or activate.
	CodeValidity = 5 * time.Minute
	// ActivationValidity bounds how long an activated reset code authorizes a password change.
	ActivationValidity = 30 * time.Minute
	// MaxFailedAttempts is the number of wrong submissions after which a code is burned.
	MaxFailedAttempts = 5
)

type Purpose string

const (
	PurposeRegistrationConfirmation Purpose = "registration_confirmation"
	PurposePasswordReset            Purpose = "password_reset"
)

func (p Purpose) String() string {
	return string(p)
}

func (p Purpose) Valid() bool {
	switch p {
	case PurposeRegistrationConfirmation, PurposePasswordReset:
		return true
	default:
		return false
	}
}

type ID uuid.UUID

func NewID() ID {
	return ID(uuid.New())
}

func (id ID) String() string {
	return uuid.UUID(id).String()
}

func (id ID) MarshalJSON() ([]byte, error) {
	return json.Marshal(uuid.UUID(id).String())
}

func (id *ID) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}

	uid, err := uuid.Parse(s)
	if err != nil {
		return err
	}

	*id = ID(uid)
	return nil
}

// Code is a single issued verification code. Only its hash is kept.
//
// Registration codes move Issued(active) -> Consumed(inactive).
// Reset codes move Issued(inactive) -> Activated(active) -> Consumed(inactive).
type Code struct {
	event.Recorder
	id          ID
	owner       user.ID
	codeHash    string
	purpose     Purpose
	isActive    bool
	createdAt   time.Time
	activatedAt *time.Time
	failures    int
}

// NewCode issues a code for owner and returns it together with the plaintext,
// which the caller must hand to the mail queue and then drop.
func NewCode(owner user.ID, purpose Purpose, now time.Time) (*Code, string, error) {
	const op = "verification.NewCode"
	if owner.IsZero() {
		return nil, "", errorx.Wrap(ErrMissingOwner, op)
	}
	if !purpose.Valid() {
		return nil, "", errorx.Wrap(ErrUnknownPurpose, op)
	}

	plaintext, err := GenerateCode()
	if err != nil {
		return nil, "", errorx.Wrap(err, op)
	}

	c := &Code{
		id:        NewID(),
		owner:     owner,
		codeHash:  HashCode(plaintext),
		purpose:   purpose,
		isActive:  purpose == PurposeRegistrationConfirmation,
		createdAt: now.UTC(),
	}

	c.AddEvent(&CodeIssued{
		Header:  event.NewEventHeader(),
		CodeID:  c.id,
		UserID:  owner,
		Purpose: purpose,
	})

	return c, plaintext, nil
}

type RehydrateArgs struct {
	ID             ID
	Owner          user.ID
	CodeHash       string
	Purpose        Purpose
	IsActive       bool
	CreatedAt      time.Time
	ActivatedAt    *time.Time
	FailedAttempts int
}

func Rehydrate(args RehydrateArgs) *Code {
	return &Code{
		id:          args.ID,
		owner:       args.Owner,
		codeHash:    args.CodeHash,
		purpose:     args.Purpose,
		isActive:    args.IsActive,
		createdAt:   args.CreatedAt,
		activatedAt: args.ActivatedAt,
		failures:    args.FailedAttempts,
	}
}

// VerifyRegistration consumes an active registration code.
func (c *Code) VerifyRegistration(submitted string, now time.Time) error {
	const op = "verification.Code.VerifyRegistration"
	if err := c.requirePurpose(PurposeRegistrationConfirmation); err != nil {
		return errorx.Wrap(err, op)
	}

	if err := c.check(submitted); err != nil {
		return errorx.Wrap(err, op)
	}
	if !c.isActive || !within(c.createdAt, now, CodeValidity) {
		return errorx.Wrap(ErrCodeExpired, op)
	}

	c.isActive = false
	return nil
}

// ActivateReset turns a freshly issued reset code into an authorization for
// one password change.
func (c *Code) ActivateReset(submitted string, now time.Time) error {
	const op = "verification.Code.ActivateReset"
	if err := c.requirePurpose(PurposePasswordReset); err != nil {
		return errorx.Wrap(err, op)
	}

	if c.isActive {
		return errorx.Wrap(ErrAlreadyActivated, op)
	}
	if err := c.check(submitted); err != nil {
		return errorx.Wrap(err, op)
	}
	// consumed codes are inactive but carry activatedAt
	if c.activatedAt != nil || !within(c.createdAt, now, CodeValidity) {
		return errorx.Wrap(ErrCodeExpired, op)
	}

	at := now.UTC()
	c.isActive = true
	c.activatedAt = &at
	c.AddEvent(&ResetCodeActivated{
		Header: event.NewEventHeader(),
		CodeID: c.id,
		UserID: c.owner,
	})
	return nil
}

// ConsumeReset spends an activated reset code.
func (c *Code) ConsumeReset(submitted string, now time.Time) error {
	const op = "verification.Code.ConsumeReset"
	if err := c.requirePurpose(PurposePasswordReset); err != nil {
		return errorx.Wrap(err, op)
	}

	if err := c.check(submitted); err != nil {
		return errorx.Wrap(err, op)
	}
	if !c.isActive || c.activatedAt == nil || !within(*c.activatedAt, now, ActivationValidity) {
		return errorx.Wrap(ErrCodeExpired, op)
	}

	c.isActive = false
	return nil
}

// Supersede deactivates a code that a newer issuance for the same owner and
// purpose has replaced.
func (c *Code) Supersede() {
	if c == nil {
		return
	}
	c.isActive = false
}

func (c *Code) requirePurpose(p Purpose) error {
	if c == nil {
		return ErrNoValidCode
	}
	if c.purpose != p {
		return errors.New("code purpose mismatch: " + c.purpose.String())
	}
	return nil
}

// check compares submitted against the stored hash. A mismatch is counted and
// the code is deactivated once MaxFailedAttempts is reached. The returned
// ErrInvalidCode is persistable because the counter changed.
func (c *Code) check(submitted string) error {
	if c.failures >= MaxFailedAttempts {
		return ErrTooManyAttempts
	}
	if ConstantTimeEquals(HashCode(submitted), c.codeHash) {
		return nil
	}

	c.failures++
	if c.failures >= MaxFailedAttempts {
		c.isActive = false
	}
	return errorx.NewPersistable(ErrInvalidCode)
}

// within reports whether no more than window has elapsed between start and now.
func within(start, now time.Time, window time.Duration) bool {
	return now.Sub(start) <= window
}

func (c *Code) ID() ID {
	if c == nil {
		return ID{}
	}
	return c.id
}

func (c *Code) Owner() user.ID {
	if c == nil {
		return user.ID{}
	}
	return c.owner
}

func (c *Code) CodeHash() string {
	if c == nil {
		return ""
	}
	return c.codeHash
}

func (c *Code) Purpose() Purpose {
	if c == nil {
		return ""
	}
	return c.purpose
}

func (c *Code) IsActive() bool {
	if c == nil {
		return false
	}
	return c.isActive
}

func (c *Code) CreatedAt() time.Time {
	if c == nil {
		return time.Time{}
	}
	return c.createdAt
}

func (c *Code) FailedAttempts() int {
	if c == nil {
		return 0
	}
	return c.failures
}

func (c *Code) ActivatedAt() *time.Time {
	if c == nil || c.activatedAt == nil {
		return nil
	}
	at := *c.activatedAt
	return &at
}
