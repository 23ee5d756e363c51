package hitview

import "github.com/cockroachdb/errors"

// ErrorCode identifies the failure class of a search backend call.
type ErrorCode int

const (
	// ErrCodeEmptyQuery is returned when a backend requires a query and got none.
	ErrCodeEmptyQuery ErrorCode = iota + 1000

	// ErrCodeInvalidOption is returned when an invalid option is provided.
	ErrCodeInvalidOption

	// ErrCodeInvalidExpression is returned when a filter cannot be translated.
	ErrCodeInvalidExpression

	// ErrCodeTimeout is returned when a search operation times out.
	ErrCodeTimeout

	// ErrCodeCanceled is returned when a search or render pass is canceled.
	ErrCodeCanceled

	// ErrCodeNotImplemented is returned when a feature is not implemented.
	ErrCodeNotImplemented

	// ErrCodeBackendUnavailable is returned when the search backend is unavailable.
	ErrCodeBackendUnavailable
)

// String implements fmt.Stringer.
func (e ErrorCode) String() string {
	switch e {
	case ErrCodeEmptyQuery:
		return "empty query"
	case ErrCodeInvalidOption:
		return "invalid option"
	case ErrCodeInvalidExpression:
		return "invalid expression"
	case ErrCodeTimeout:
		return "operation timed out"
	case ErrCodeCanceled:
		return "operation canceled"
	case ErrCodeNotImplemented:
		return "not implemented"
	case ErrCodeBackendUnavailable:
		return "backend unavailable"
	default:
		return "unknown error"
	}
}

func newErrorWithCode(code ErrorCode, msg string) error {
	err := errors.New(msg)
	return errors.WithSecondaryError(err, errors.Newf("code: %d", int(code)))
}

var (
	ErrEmptyQuery         = newErrorWithCode(ErrCodeEmptyQuery, "hitview: empty query")
	ErrInvalidOption      = newErrorWithCode(ErrCodeInvalidOption, "hitview: invalid option")
	ErrInvalidExpression  = newErrorWithCode(ErrCodeInvalidExpression, "hitview: invalid expression")
	ErrTimeout            = newErrorWithCode(ErrCodeTimeout, "hitview: operation timed out")
	ErrCanceled           = newErrorWithCode(ErrCodeCanceled, "hitview: operation canceled")
	ErrNotImplemented     = newErrorWithCode(ErrCodeNotImplemented, "hitview: not implemented")
	ErrBackendUnavailable = newErrorWithCode(ErrCodeBackendUnavailable, "hitview: backend unavailable")
)

// CodeOf reports the code of the first sentinel err matches, or 0.
func CodeOf(err error) ErrorCode {
	for _, sentinel := range []struct {
		err  error
		code ErrorCode
	}{
		{ErrEmptyQuery, ErrCodeEmptyQuery},
		{ErrInvalidOption, ErrCodeInvalidOption},
		{ErrInvalidExpression, ErrCodeInvalidExpression},
		{ErrTimeout, ErrCodeTimeout},
		{ErrCanceled, ErrCodeCanceled},
		{ErrNotImplemented, ErrCodeNotImplemented},
		{ErrBackendUnavailable, ErrCodeBackendUnavailable},
	} {
		if errors.Is(err, sentinel.err) {
			return sentinel.code
		}
	}
	return 0
}
