package types

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// OperationKind names a pipeline step
type OperationKind string

const (
	Translate OperationKind = "translate"
	RotateCW  OperationKind = "rotate-cw"
	RotateCCW OperationKind = "rotate-ccw"
	Threshold OperationKind = "threshold"
	Dither    OperationKind = "dither"
	FillHoles OperationKind = "fill-holes"
	// Background replaces the image with its border-connected background mask.
	Background OperationKind = "background"
	Invert     OperationKind = "invert"
)

// ErrUnknownOperation indicates an operation name that is not recognized.
var ErrUnknownOperation = errors.New("types: unknown operation")

// Operation is one parsed pipeline step
type Operation struct {
	Kind      OperationKind `json:"kind"`
	DY        int           `json:"dy,omitempty"`
	DX        int           `json:"dx,omitempty"`
	Threshold uint8         `json:"threshold,omitempty"`
}

// String renders the operation in the syntax accepted by ParseOperation
func (o Operation) String() string {
	switch o.Kind {
	case Translate:
		return fmt.Sprintf("%s=%d,%d", o.Kind, o.DY, o.DX)
	case Threshold:
		return fmt.Sprintf("%s=%d", o.Kind, o.Threshold)
	default:
		return string(o.Kind)
	}
}

// ParseOperation parses "translate=dy,dx", "threshold=t" or a bare
// operation name such as "fill-holes".
func ParseOperation(s string) (Operation, error) {
	name, arg, hasArg := strings.Cut(strings.TrimSpace(s), "=")
	kind := OperationKind(strings.ToLower(strings.TrimSpace(name)))
	arg = strings.TrimSpace(arg)

	switch kind {
	case Translate:
		dyStr, dxStr, ok := strings.Cut(arg, ",")
		if !ok {
			return Operation{}, fmt.Errorf("translate expects dy,dx, got %q", arg)
		}
		dy, err := strconv.Atoi(strings.TrimSpace(dyStr))
		if err != nil {
			return Operation{}, fmt.Errorf("invalid translate dy: %w", err)
		}
		dx, err := strconv.Atoi(strings.TrimSpace(dxStr))
		if err != nil {
			return Operation{}, fmt.Errorf("invalid translate dx: %w", err)
		}
		return Operation{Kind: kind, DY: dy, DX: dx}, nil
	case Threshold:
		t, err := strconv.ParseUint(arg, 10, 8)
		if err != nil {
			return Operation{}, fmt.Errorf("threshold must be in [0,255]: %w", err)
		}
		return Operation{Kind: kind, Threshold: uint8(t)}, nil
	case RotateCW, RotateCCW, Dither, FillHoles, Background, Invert:
		if hasArg {
			return Operation{}, fmt.Errorf("%s takes no argument", kind)
		}
		return Operation{Kind: kind}, nil
	default:
		return Operation{}, fmt.Errorf("%w: %q", ErrUnknownOperation, name)
	}
}

// ParseOperations parses a ';' separated list of operations. Empty entries
// are ignored.
func ParseOperations(s string) ([]Operation, error) {
	var ops []Operation
	for _, part := range strings.Split(s, ";") {
		if strings.TrimSpace(part) == "" {
			continue
		}
		op, err := ParseOperation(part)
		if err != nil {
			return nil, err
		}
		ops = append(ops, op)
	}
	return ops, nil
}

// ProcessingOptions contains options for file processing
type ProcessingOptions struct {
	OutputDir string
	Prefix    string
	Suffix    string
	// Format overrides the output format; empty uses the processor's
	// configured format.
	Format string
	// Overlay additionally writes a color image tinting the pixels changed
	// by the last fill-holes or background step.
	Overlay bool
}
