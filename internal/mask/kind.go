package mask

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrInvalidMaskType is returned for a Kind outside binary, flag and continuous.
	ErrInvalidMaskType = errors.New("mask: invalid mask type")
	// ErrUnknownHandle is returned when a handle names no registered parameter set.
	ErrUnknownHandle = errors.New("mask: unknown handle")
	// ErrNonBinaryCompositeInput is returned when a composite candidate is not binary.
	ErrNonBinaryCompositeInput = errors.New("mask: composite input is not binary")
	// ErrNilBuilder is returned when registering without a builder.
	ErrNilBuilder = errors.New("mask: nil builder")
	// ErrInvalidParams is returned for missing, non-comparable or invalid parameters.
	ErrInvalidParams = errors.New("mask: invalid parameters")
	// ErrTooManyCandidates is returned when a bitwise composite would overflow.
	ErrTooManyCandidates = errors.New("mask: too many composite candidates")
	// ErrKindMismatch is returned when a builder produces a layer of the wrong kind.
	ErrKindMismatch = errors.New("mask: built layer kind does not match definition")
)

// Kind is the semantic type of a mask.
type Kind int

const (
	// KindBinary masks hold 0 or 1; 1 marks the classified category.
	KindBinary Kind = iota + 1
	// KindFlag masks hold 0 for background and positive feature identifiers.
	KindFlag
	// KindContinuous masks hold a real value per cell, or no data.
	KindContinuous
)

// Kinds lists the valid kinds in enumeration order.
var Kinds = []Kind{KindBinary, KindFlag, KindContinuous}

// Valid reports whether k is one of the defined kinds.
func (k Kind) Valid() bool {
	return k >= KindBinary && k <= KindContinuous
}

func (k Kind) String() string {
	switch k {
	case KindBinary:
		return "binary"
	case KindFlag:
		return "flag"
	case KindContinuous:
		return "cont"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// ParseKind converts a kind name to a Kind.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "binary":
		return KindBinary, nil
	case "flag":
		return KindFlag, nil
	case "cont", "continuous":
		return KindContinuous, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidMaskType, s)
}
