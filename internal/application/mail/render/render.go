package mailrender

import (
	"bytes"
	"fmt"
	"html/template"
	"io/fs"

	identity "github.com/ARUMANDESU/storefront-identity"
)

const (
	verificationCodeTemplate = "verification_code.html"
	passwordChangedTemplate  = "password_changed.html"
)

type VerificationCodeData struct {
	Title        string
	UserName     string
	Message      string
	Code         string
	ValidMinutes int
	Year         int
}

type PasswordChangedData struct {
	UserName  string
	ChangedAt string
	Year      int
}

// Renderer executes the embedded mail templates. It is safe for concurrent use.
type Renderer struct {
	tmpl *template.Template
}

func New() (*Renderer, error) {
	return NewFromFS(identity.MailTemplates)
}

// NewFromFS parses every templates/*.html file in fsys.
func NewFromFS(fsys fs.FS) (*Renderer, error) {
	tmpl, err := template.ParseFS(fsys, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse mail templates: %w", err)
	}
	return &Renderer{tmpl: tmpl}, nil
}

func (r *Renderer) VerificationCode(data VerificationCodeData) (string, error) {
	return r.execute(verificationCodeTemplate, data)
}

func (r *Renderer) PasswordChanged(data PasswordChangedData) (string, error) {
	return r.execute(passwordChangedTemplate, data)
}

func (r *Renderer) execute(name string, data any) (string, error) {
	var buf bytes.Buffer
	if err := r.tmpl.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("failed to render %s: %w", name, err)
	}
	return buf.String(), nil
}
