package builders

import (
	"fmt"
	"math/rand/v2"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/ARUMANDESU/storefront-identity/internal/domain/user"
)

const (
	TestPasswordCost = 4
	TestPassword     = "Sup3r!secret"
	TestDisplayName  = "Aigerim Nurlanovna"
)

type UserBuilder struct {
	id             user.ID
	email          string
	displayName    string
	emailConfirmed bool
	password       string
	passHash       []byte
	createdAt      time.Time
	updatedAt      time.Time
}

func NewUserBuilder() *UserBuilder {
	now := time.Now().UTC()

	return &UserBuilder{
		id:          user.NewID(),
		email:       fmt.Sprintf("user_%d_%d@storefront.kz", rand.Uint()%1000, now.UnixNano()),
		displayName: TestDisplayName,
		password:    TestPassword,
		createdAt:   now,
		updatedAt:   now,
	}
}

func (b *UserBuilder) WithID(id user.ID) *UserBuilder {
	b.id = id
	return b
}

func (b *UserBuilder) WithEmail(email string) *UserBuilder {
	b.email = email
	return b
}

func (b *UserBuilder) WithDisplayName(name string) *UserBuilder {
	b.displayName = name
	return b
}

func (b *UserBuilder) Confirmed() *UserBuilder {
	b.emailConfirmed = true
	return b
}

func (b *UserBuilder) WithPassword(password string) *UserBuilder {
	b.password = password
	b.passHash = nil
	return b
}

func (b *UserBuilder) WithPassHash(hash []byte) *UserBuilder {
	b.passHash = hash
	return b
}

func (b *UserBuilder) WithCreatedAt(t time.Time) *UserBuilder {
	b.createdAt = t
	b.updatedAt = t
	return b
}

func (b *UserBuilder) RehydrateArgs() user.RehydrateArgs {
	hash := b.passHash
	if hash == nil {
		var err error
		hash, err = bcrypt.GenerateFromPassword([]byte(b.password), TestPasswordCost)
		if err != nil {
			panic(err)
		}
	}

	return user.RehydrateArgs{
		ID:             b.id,
		Email:          b.email,
		DisplayName:    b.displayName,
		EmailConfirmed: b.emailConfirmed,
		PassHash:       hash,
		CreatedAt:      b.createdAt,
		UpdatedAt:      b.updatedAt,
	}
}

func (b *UserBuilder) Build() *user.User {
	return user.Rehydrate(b.RehydrateArgs())
}
