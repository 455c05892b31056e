// Package env names the deployments the identity service runs in.
package env

import (
	"fmt"
	"log/slog"
	"strings"
)

type Mode string

const (
	Test  Mode = "test"
	Local Mode = "local"
	Dev   Mode = "dev"
	Prod  Mode = "prod"
)

// ParseMode accepts a mode name in any case and surrounding whitespace.
func ParseMode(s string) (Mode, error) {
	m := Mode(strings.ToLower(strings.TrimSpace(s)))
	if !m.Validate() {
		return "", fmt.Errorf("unknown mode %q, want one of test, local, dev, prod", s)
	}
	return m, nil
}

func (m Mode) String() string {
	return string(m)
}

func (m Mode) Validate() bool {
	switch m {
	case Local, Test, Dev, Prod:
		return true
	default:
		return false
	}
}

// Hosted reports whether the service is deployed and reachable by real
// customers. Hosted modes log JSON and only accept registrable email domains.
func (m Mode) Hosted() bool {
	return m == Dev || m == Prod
}

func (m Mode) SlogLevel() slog.Level {
	if m == Prod {
		return slog.LevelInfo
	}
	return slog.LevelDebug
}
