package mindjourney

import "net/http"

// ValidationError is a client error with a public message. Status is the
// HTTP status it maps to.
type ValidationError struct {
	Message string
	status  int
}

func (e *ValidationError) Error() string { return e.Message }

// Status returns the HTTP status code for the error.
func (e *ValidationError) Status() int { return e.status }

func newValidationError(status int, msg string) *ValidationError {
	return &ValidationError{Message: msg, status: status}
}

// Comment submission and retrieval errors.
var (
	ErrFieldsRequired  = newValidationError(http.StatusBadRequest, "All fields are required")
	ErrInvalidEmail    = newValidationError(http.StatusBadRequest, "Invalid email format")
	ErrCommentTooShort = newValidationError(http.StatusBadRequest, "Comment must be at least 10 characters")
	ErrPostIDRequired  = newValidationError(http.StatusBadRequest, "Post ID required")
	ErrInvalidBody     = newValidationError(http.StatusBadRequest, "Invalid request body")
	ErrRateLimited     = newValidationError(http.StatusTooManyRequests, "Too many comments. Try again later.")
)

// Messages returned when the store fails.
const (
	msgCreateFailed = "Failed to create comment"
	msgFetchFailed  = "Failed to fetch comments"
)

type errorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}
