package postgres

import (
	"time"

	"github.com/google/uuid"

	"github.com/ARUMANDESU/storefront-identity/internal/domain/user"
	"github.com/ARUMANDESU/storefront-identity/internal/domain/verification"
)

const userColumns = `u.id, u.email, u.display_name, u.email_confirmed, u.created_at, u.updated_at, c.password_hash`

const codeColumns = `id, user_id, code_hash, purpose, is_active, created_at, activated_at, failed_attempts`

type UserDTO struct {
	ID             uuid.UUID
	Email          string
	DisplayName    string
	EmailConfirmed bool
	PassHash       []byte
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

func (d *UserDTO) scanTargets() []any {
	return []any{&d.ID, &d.Email, &d.DisplayName, &d.EmailConfirmed, &d.CreatedAt, &d.UpdatedAt, &d.PassHash}
}

func DomainToUserDTO(u *user.User) UserDTO {
	return UserDTO{
		ID:             uuid.UUID(u.ID()),
		Email:          u.Email(),
		DisplayName:    u.DisplayName(),
		EmailConfirmed: u.EmailConfirmed(),
		PassHash:       u.PassHash(),
		CreatedAt:      u.CreatedAt(),
		UpdatedAt:      u.UpdatedAt(),
	}
}

func UserToDomain(dto UserDTO) *user.User {
	return user.Rehydrate(user.RehydrateArgs{
		ID:             user.ID(dto.ID),
		Email:          dto.Email,
		DisplayName:    dto.DisplayName,
		EmailConfirmed: dto.EmailConfirmed,
		PassHash:       dto.PassHash,
		CreatedAt:      dto.CreatedAt,
		UpdatedAt:      dto.UpdatedAt,
	})
}

type CodeDTO struct {
	ID             uuid.UUID
	UserID         uuid.UUID
	CodeHash       string
	Purpose        string
	IsActive       bool
	CreatedAt      time.Time
	ActivatedAt    *time.Time
	FailedAttempts int16
}

func (d *CodeDTO) scanTargets() []any {
	return []any{&d.ID, &d.UserID, &d.CodeHash, &d.Purpose, &d.IsActive, &d.CreatedAt, &d.ActivatedAt, &d.FailedAttempts}
}

func DomainToCodeDTO(c *verification.Code) CodeDTO {
	return CodeDTO{
		ID:             uuid.UUID(c.ID()),
		UserID:         uuid.UUID(c.Owner()),
		CodeHash:       c.CodeHash(),
		Purpose:        c.Purpose().String(),
		IsActive:       c.IsActive(),
		CreatedAt:      c.CreatedAt(),
		ActivatedAt:    c.ActivatedAt(),
		FailedAttempts: int16(c.FailedAttempts()),
	}
}

func CodeToDomain(dto CodeDTO) *verification.Code {
	return verification.Rehydrate(verification.RehydrateArgs{
		ID:             verification.ID(dto.ID),
		Owner:          user.ID(dto.UserID),
		CodeHash:       dto.CodeHash,
		Purpose:        verification.Purpose(dto.Purpose),
		IsActive:       dto.IsActive,
		CreatedAt:      dto.CreatedAt,
		ActivatedAt:    dto.ActivatedAt,
		FailedAttempts: int(dto.FailedAttempts),
	})
}
