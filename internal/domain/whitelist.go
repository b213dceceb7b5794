package domain

import (
	"fmt"
	"regexp"
	"strings"
)

// Namespace separa las dos familias de clientes. Se fija al crear la entrada.
type Namespace int

const (
	Primary Namespace = iota
	Alternate
)

func (n Namespace) Valid() bool { return n == Primary || n == Alternate }

func (n Namespace) String() string {
	if n == Alternate {
		return "alternate"
	}
	return "primary"
}

// ParseNamespace acepta "primary"/"alternate" y los alias viejos java/bedrock.
func ParseNamespace(s string) (Namespace, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "primary", "java":
		return Primary, nil
	case "alternate", "bedrock":
		return Alternate, nil
	}
	return Primary, fmt.Errorf("unknown namespace %q", s)
}

// TimestampLayout es fecha-hora local ISO-8601 sin zona.
const TimestampLayout = "2006-01-02T15:04:05.999999999"

// Entry es un registro persistido de la whitelist.
type Entry struct {
	Identity     string    `json:"identity"` // forma guardada (con prefijo si es alternate)
	AccountID    string    `json:"account_id"`
	RegisteredAt string    `json:"registered_at"`
	Namespace    Namespace `json:"-"`
}

func (e Entry) Alternate() bool { return e.Namespace == Alternate }

var (
	rePrimary   = regexp.MustCompile(`^[A-Za-z0-9_]+$`)
	reAlternate = regexp.MustCompile(`^[A-Za-z0-9_ ]+$`)
)

const (
	MinIdentityLen = 3
	MaxIdentityLen = 16
)

// ValidIdentity aplica la política de formato del namespace sobre el handle
// tal cual lo escribió el usuario (antes de prefijar).
func ValidIdentity(name string, ns Namespace) bool {
	if len(name) < MinIdentityLen || len(name) > MaxIdentityLen {
		return false
	}
	if ns == Alternate {
		return reAlternate.MatchString(name)
	}
	return rePrimary.MatchString(name)
}
