package classverse

import "github.com/pkg/errors"

// Sentinel errors returned by services. Handlers map these onto HTTP
// status codes; anything unrecognized is reported as a generic
// internal failure.
var (
	ErrPermissionDenied = errors.New("permission denied")
	ErrNotFound         = errors.New("not found")
	ErrAlreadyExists    = errors.New("already exists")
	ErrAlreadyMember    = errors.New("user is already a member")
	ErrNotContact       = errors.New("user is not in your contacts")
	ErrSelfTarget       = errors.New("operation cannot target yourself")
	ErrEmptyMessage     = errors.New("message content is empty")
	ErrUnauthenticated  = errors.New("not authenticated")
)

// FieldError indicates an error with a specific input field.
type FieldError struct {
	Field string `json:"field"`
	Error string `json:"error"`
}

// ValidationError reports rejected input along with per-field detail.
type ValidationError struct {
	Err    error        `json:"-"`
	Fields []FieldError `json:"fields,omitempty"`
}

// NewValidationError wraps err with field-level detail.
func NewValidationError(err error, flds ...FieldError) error {
	return &ValidationError{Err: err, Fields: flds}
}

func (e *ValidationError) Error() string {
	if e.Err == nil {
		return "invalid input"
	}
	return e.Err.Error()
}

func (e *ValidationError) Unwrap() error { return e.Err }

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
