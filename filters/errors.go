package filters

import "fmt"

type Kind uint8

const (
	KindSyntax Kind = iota + 1
	KindForbidden
	KindExecution
	KindClassCount
	KindMissingDefault
	KindSignature
	KindInstantiate
)

func (k Kind) String() string {
	switch k {
	case KindSyntax:
		return "syntax"
	case KindForbidden:
		return "forbidden"
	case KindExecution:
		return "execution"
	case KindClassCount:
		return "class_count"
	case KindMissingDefault:
		return "missing_default"
	case KindSignature:
		return "signature"
	case KindInstantiate:
		return "instantiate"
	}
	return fmt.Sprintf("Kind(%d)", k)
}

// ValidationError rejects a candidate policy program. Its message is fed back
// verbatim to the generators as error context.
type ValidationError struct {
	Kind    Kind
	Line    int
	Message string
}

var _ error = new(ValidationError)

func (v *ValidationError) Error() string {
	return v.Message
}

func reject(kind Kind, format string, args ...any) *ValidationError {
	return &ValidationError{
		Kind:    kind,
		Message: fmt.Sprintf(format, args...),
	}
}
