package user

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/ARUMANDESU/validation"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/net/publicsuffix"

	"github.com/ARUMANDESU/storefront-identity/internal/domain/event"
	"github.com/ARUMANDESU/storefront-identity/pkg/env"
	"github.com/ARUMANDESU/storefront-identity/pkg/errorx"
	"github.com/ARUMANDESU/storefront-identity/pkg/validationx"
)

const PasswordCostFactor = 12

type ID uuid.UUID

func NewID() ID {
	return ID(uuid.New())
}

func ParseID(s string) (ID, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return ID{}, err
	}
	return ID(id), nil
}

func (id ID) String() string {
	return uuid.UUID(id).String()
}

func (id ID) IsZero() bool {
	return id == ID{}
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

// User is the identity store record the verification workflow reads and
// mutates. The password hash lives in a separate credential record and is
// only loaded for authentication.
type User struct {
	event.Recorder
	id             ID
	email          string
	displayName    string
	emailConfirmed bool
	passHash       []byte
	createdAt      time.Time
	updatedAt      time.Time
}

type RegisterArgs struct {
	Email       string   `json:"email"`
	DisplayName string   `json:"display_name"`
	Password    string   `json:"password"`
	Mode        env.Mode `json:"-"`
}

// Register creates an unconfirmed user with a hashed password.
func Register(args RegisterArgs) (*User, error) {
	const op = "user.Register"

	err := validation.ValidateStruct(&args,
		validation.Field(&args.Email, validationx.EmailRules...),
		validation.Field(&args.DisplayName, validationx.NameRules...),
		validation.Field(&args.Password, validationx.PasswordRules...),
	)
	if err != nil {
		return nil, errorx.Wrap(err, op)
	}
	if args.Mode.Hosted() && !HasRealTLD(args.Email) {
		return nil, errorx.Wrap(ErrEmailDomainNotAllowed, op)
	}

	passHash, err := NewPasswordHash(args.Password)
	if err != nil {
		return nil, errorx.Wrap(err, op)
	}

	now := time.Now().UTC()
	u := &User{
		id:          NewID(),
		email:       args.Email,
		displayName: args.DisplayName,
		passHash:    passHash,
		createdAt:   now,
		updatedAt:   now,
	}

	u.AddEvent(&UserRegistered{
		Header:      event.NewEventHeader(),
		UserID:      u.id,
		Email:       u.email,
		DisplayName: u.displayName,
	})

	return u, nil
}

type RehydrateArgs struct {
	ID             ID
	Email          string
	DisplayName    string
	EmailConfirmed bool
	PassHash       []byte
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

func Rehydrate(args RehydrateArgs) *User {
	return &User{
		id:             args.ID,
		email:          args.Email,
		displayName:    args.DisplayName,
		emailConfirmed: args.EmailConfirmed,
		passHash:       args.PassHash,
		createdAt:      args.CreatedAt,
		updatedAt:      args.UpdatedAt,
	}
}

// ConfirmEmail marks the address as verified. It fails with
// ErrAlreadyConfirmed if the flag is already set.
func (u *User) ConfirmEmail(now time.Time) error {
	const op = "user.User.ConfirmEmail"
	if u == nil {
		return errors.New("user is nil")
	}
	if u.emailConfirmed {
		return errorx.Wrap(ErrAlreadyConfirmed, op)
	}

	u.emailConfirmed = true
	u.updatedAt = now.UTC()
	u.AddEvent(&EmailConfirmed{
		Header: event.NewEventHeader(),
		UserID: u.id,
		Email:  u.email,
	})

	return nil
}

// RequireConfirmedEmail fails with ErrEmailNotConfirmed for unconfirmed users.
func (u *User) RequireConfirmedEmail() error {
	if u == nil || !u.emailConfirmed {
		return ErrEmailNotConfirmed
	}
	return nil
}

// PasswordChanged records that the credential was replaced at now. The new
// hash is kept on the aggregate so a following login in the same process sees it.
func (u *User) PasswordChanged(passHash []byte, now time.Time) {
	if u == nil {
		return
	}
	u.passHash = passHash
	u.updatedAt = now.UTC()
	u.AddEvent(&PasswordChanged{
		Header:      event.NewEventHeader(),
		UserID:      u.id,
		Email:       u.email,
		DisplayName: u.displayName,
	})
}

func (u *User) ComparePassword(password string) error {
	if u == nil || len(u.passHash) == 0 {
		return ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword(u.passHash, []byte(password)); err != nil {
		return ErrInvalidCredentials.WithCause(err)
	}
	return nil
}

func (u *User) ID() ID {
	if u == nil {
		return ID{}
	}
	return u.id
}

func (u *User) Email() string {
	if u == nil {
		return ""
	}
	return u.email
}

// EmailLocalPart returns the part of the address before '@'.
func (u *User) EmailLocalPart() string {
	if u == nil {
		return ""
	}
	local, _, _ := strings.Cut(u.email, "@")
	return local
}

func (u *User) DisplayName() string {
	if u == nil {
		return ""
	}
	return u.displayName
}

func (u *User) EmailConfirmed() bool {
	if u == nil {
		return false
	}
	return u.emailConfirmed
}

func (u *User) PassHash() []byte {
	if u == nil {
		return nil
	}
	return u.passHash
}

func (u *User) CreatedAt() time.Time {
	if u == nil {
		return time.Time{}
	}
	return u.createdAt
}

func (u *User) UpdatedAt() time.Time {
	if u == nil {
		return time.Time{}
	}
	return u.updatedAt
}

func NewPasswordHash(password string) ([]byte, error) {
	passhash, err := bcrypt.GenerateFromPassword([]byte(password), PasswordCostFactor)
	if err != nil {
		return nil, fmt.Errorf("failed to generate password hash from password: %w", err)
	}
	return passhash, nil
}

// HasRealTLD reports whether the address domain ends in an ICANN managed
// public suffix with a registrable label in front of it.
func HasRealTLD(addr string) bool {
	parsed, err := mail.ParseAddress(addr)
	if err != nil {
		return false
	}

	at := strings.LastIndexByte(parsed.Address, '@')
	domain := parsed.Address[at+1:]

	suffix, icann := publicsuffix.PublicSuffix(domain)
	return icann && suffix != domain
}
