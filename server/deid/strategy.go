package deid

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"math/rand"
	"strings"

	"github.com/pkg/errors"
)

// Strategy selects the substitution applied to every kept span in one
// rewrite call.
type Strategy string

// Supported anonymization strategies.
const (
	StrategyRedaction   Strategy = "REDACTION"
	StrategyReplacement Strategy = "REPLACEMENT"
	StrategyHashing     Strategy = "HASHING"
	StrategySynthesize  Strategy = "SYNTHESIZE"
)

// ErrUnsupportedStrategy is returned for a strategy value outside the
// known set. This indicates a caller or config bug and is never recovered.
var ErrUnsupportedStrategy = errors.New("unsupported anonymization strategy")

// ParseStrategy converts a wire value into a Strategy.
func ParseStrategy(s string) (Strategy, error) {
	switch Strategy(strings.ToUpper(s)) {
	case StrategyRedaction:
		return StrategyRedaction, nil
	case StrategyReplacement:
		return StrategyReplacement, nil
	case StrategyHashing:
		return StrategyHashing, nil
	case StrategySynthesize:
		return StrategySynthesize, nil
	default:
		return "", errors.Wrapf(ErrUnsupportedStrategy, "%q", s)
	}
}

// substituter produces the replacement text for one span. One variant per
// strategy keeps the rewriter free of branching on strategy identity.
type substituter interface {
	Substitute(entityType EntityType, value string) string
}

func (s Strategy) substituter() (substituter, error) {
	switch s {
	case StrategyRedaction:
		return redactionSubstituter{}, nil
	case StrategyReplacement:
		return replacementSubstituter{}, nil
	case StrategyHashing:
		return hashingSubstituter{}, nil
	case StrategySynthesize:
		return synthesizeSubstituter{}, nil
	default:
		return nil, errors.Wrapf(ErrUnsupportedStrategy, "%q", string(s))
	}
}

type redactionSubstituter struct{}

func (redactionSubstituter) Substitute(EntityType, string) string {
	return "[REDACTED]"
}

type replacementSubstituter struct{}

func (replacementSubstituter) Substitute(entityType EntityType, _ string) string {
	switch entityType {
	case EntityEmail:
		return "email@example.com"
	case EntityPhone:
		return "[PHONE]"
	case EntitySSN:
		return "[SSN]"
	case EntityPerson:
		return "[PATIENT]"
	default:
		return "[REDACTED]"
	}
}

type hashingSubstituter struct{}

// Substitute replaces the value with the first 8 hex characters of its
// unsalted SHA-256, so the same value maps to the same token across calls.
// If the digest cannot be produced the literal [HASHED] token is used.
func (hashingSubstituter) Substitute(_ EntityType, value string) string {
	sum := sha256.Sum256([]byte(value))
	hexed := hex.EncodeToString(sum[:])
	if len(hexed) < 8 {
		return "[HASHED]"
	}
	return hexed[:8]
}

type synthesizeSubstituter struct{}

// Substitute generates a plausible synthetic value of the same shape as
// the original. Output varies across calls.
func (synthesizeSubstituter) Substitute(entityType EntityType, _ string) string {
	switch entityType {
	case EntityEmail:
		return fmt.Sprintf("patient%d@hospital.com", rand.Intn(1000))
	case EntityPhone:
		return fmt.Sprintf("+33-%d-%d-%d", rand.Intn(900)+100, rand.Intn(900)+100, rand.Intn(9000)+1000)
	case EntitySSN:
		return fmt.Sprintf("%03d-%02d-%04d", rand.Intn(900)+100, rand.Intn(90)+10, rand.Intn(9000)+1000)
	case EntityPerson:
		return fmt.Sprintf("Patient %c%c", 'A'+rand.Intn(26), 'a'+rand.Intn(26))
	default:
		return "[SYNTHETIC]"
	}
}
