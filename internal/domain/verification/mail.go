package verification

import (
	"strings"
	"time"

	"github.com/ARUMANDESU/storefront-identity/internal/domain/user"
)

// SendCodeMail asks the mail worker to deliver a freshly issued code. It
// carries the plaintext, so it only travels over the in-process queue and is
// never written to the outbox.
type SendCodeMail struct {
	CodeID      ID        `json:"code_id"`
	UserID      user.ID   `json:"user_id"`
	Email       string    `json:"email"`
	DisplayName string    `json:"display_name"`
	Purpose     Purpose   `json:"purpose"`
	Code        string    `json:"code"`
	IssuedAt    time.Time `json:"issued_at"`
}

// NewSendCodeMail builds the delivery request for c addressed to u.
func NewSendCodeMail(u *user.User, c *Code, plaintext string) *SendCodeMail {
	return &SendCodeMail{
		CodeID:      c.ID(),
		UserID:      u.ID(),
		Email:       u.Email(),
		DisplayName: u.DisplayName(),
		Purpose:     c.Purpose(),
		Code:        plaintext,
		IssuedAt:    c.CreatedAt(),
	}
}

// LocalPart returns the mailbox name of Email.
func (m *SendCodeMail) LocalPart() string {
	local, _, _ := strings.Cut(m.Email, "@")
	return local
}
