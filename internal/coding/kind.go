package coding

import (
	"fmt"
	"strings"
)

// Kind classifies a rubric label and decides which agreement statistic
// applies to it.
type Kind int

const (
	// Categorical labels hold free-form class names.
	Categorical Kind = iota
	// Binary labels hold Yes/No flags coded as 1/0.
	Binary
	// Ordinal labels hold ratings on an ordered numeric scale.
	Ordinal
)

func (k Kind) String() string {
	switch k {
	case Binary:
		return "binary"
	case Ordinal:
		return "ordinal"
	case Categorical:
		return "categorical"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// ParseKind parses the names produced by Kind.String.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "binary", "yes/no", "yesno":
		return Binary, nil
	case "ordinal", "rating":
		return Ordinal, nil
	case "categorical", "nominal":
		return Categorical, nil
	default:
		return Categorical, fmt.Errorf("unknown label kind %q", s)
	}
}

// MarshalText implements encoding.TextMarshaler so kinds read naturally in
// JSON and YAML.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *Kind) UnmarshalText(b []byte) error {
	parsed, err := ParseKind(string(b))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}
