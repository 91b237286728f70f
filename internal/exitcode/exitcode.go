package exitcode

import (
	"os"

	"github.com/IbtissamELANSARI/school-management-app/internal/errors"
)

// Exit codes for consistent error handling across the CLI
const (
	// Success indicates successful execution
	Success = 0

	// GeneralError indicates a general error condition
	GeneralError = 1

	// UsageError indicates invalid command usage (bad flags, missing args, etc.)
	UsageError = 2

	// AuthError indicates an authentication or authorization failure
	AuthError = 3

	// ValidationError indicates the backend rejected submitted data
	ValidationError = 4

	// NotFound indicates a requested resource does not exist
	NotFound = 5

	// NetworkError indicates a network connectivity issue
	NetworkError = 6

	// Interrupted indicates the user cancelled the operation
	Interrupted = 130
)

// Exit terminates the program with the given exit code
func Exit(code int) {
	os.Exit(code)
}

// ExitWithError exits with an appropriate code based on error type
func ExitWithError(err error) {
	Exit(DetermineExitCode(err))
}

// DetermineExitCode maps an error to an exit code using its AppError code.
func DetermineExitCode(err error) int {
	if err == nil {
		return Success
	}

	switch errors.CodeOf(err) {
	case errors.ErrCodeAuthUnauthorized,
		errors.ErrCodeAuthBadCredentials,
		errors.ErrCodeAuthNotAuthenticated:
		return AuthError
	case errors.ErrCodeAuthValidation,
		errors.ErrCodeResourceValidation:
		return ValidationError
	case errors.ErrCodeResourceNotFound:
		return NotFound
	case errors.ErrCodeAPITransport,
		errors.ErrCodeCSRFAcquisition,
		errors.ErrCodeCSRFTokenEmpty:
		return NetworkError
	case errors.ErrCodeConfigLoad,
		errors.ErrCodeConfigInvalid:
		return UsageError
	default:
		return GeneralError
	}
}
