package errors

import (
	"errors"
	"net/http"
)

var (
	// ErrUserAlreadyExists is returned on a register with an email that is taken.
	ErrUserAlreadyExists = errors.New("user already exists")
	// ErrUserNotFound is returned when a user lookup by email or id fails.
	ErrUserNotFound = errors.New("user not found")
	// ErrInvalidCredentials is returned for an unknown email or a wrong password.
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrInvalidRefreshToken is returned when a refresh token is unknown, rotated away or expired.
	ErrInvalidRefreshToken = errors.New("invalid refresh token")
	// ErrInvalidToken is returned when a valid token does not belong to the requested user.
	ErrInvalidToken = errors.New("token does not belong to user")
	// ErrUnauthorized is returned when an access token is missing, malformed or expired.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrInvalidQuery is returned when a search query is too short.
	ErrInvalidQuery = errors.New("query must be at least 3 characters")

	// ErrRepositoryExists is returned when a repository name is already taken.
	ErrRepositoryExists = errors.New("repository already exists")
	// ErrRepositoryNotFound is returned when no repository has the given name.
	ErrRepositoryNotFound = errors.New("repository not found")
	// ErrInvalidRepoName is returned when a name cannot be used as a directory.
	ErrInvalidRepoName = errors.New("invalid repository name")
	// ErrAccessDenied is returned when the policy rejects the principal.
	ErrAccessDenied = errors.New("access denied")
	// ErrNoFile is returned when a commit carries no file or an empty one.
	ErrNoFile = errors.New("no file uploaded")
	// ErrInvalidFileName is returned when an upload has no usable base name.
	ErrInvalidFileName = errors.New("invalid file name")
	// ErrFileTooLarge is returned when an upload exceeds the configured limit.
	ErrFileTooLarge = errors.New("file too large")
	// ErrNothingToCommit is returned when the uploaded file matches HEAD.
	ErrNothingToCommit = errors.New("nothing to commit")
)

// ErrorResponse represents a standardized error response.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// HTTPError represents an HTTP error with status code.
type HTTPError struct {
	StatusCode int
	Message    string
	Code       string
}

func (e *HTTPError) Error() string {
	return e.Message
}

// NewHTTPError creates a new HTTP error.
func NewHTTPError(statusCode int, message, code string) *HTTPError {
	return &HTTPError{
		StatusCode: statusCode,
		Message:    message,
		Code:       code,
	}
}

// ToErrorResponse converts an HTTPError to ErrorResponse.
func (e *HTTPError) ToErrorResponse() ErrorResponse {
	return ErrorResponse{
		Error: e.Message,
		Code:  e.Code,
	}
}

type mapping struct {
	target error
	status int
	code   string
}

var mappings = []mapping{
	{ErrUserAlreadyExists, http.StatusConflict, "USER_ALREADY_EXISTS"},
	{ErrUserNotFound, http.StatusNotFound, "USER_NOT_FOUND"},
	{ErrInvalidCredentials, http.StatusUnauthorized, "INVALID_CREDENTIALS"},
	{ErrInvalidRefreshToken, http.StatusUnauthorized, "INVALID_REFRESH_TOKEN"},
	{ErrInvalidToken, http.StatusBadRequest, "INVALID_TOKEN"},
	{ErrUnauthorized, http.StatusUnauthorized, "UNAUTHORIZED"},
	{ErrInvalidQuery, http.StatusBadRequest, "INVALID_QUERY"},
	{ErrRepositoryExists, http.StatusBadRequest, "REPOSITORY_EXISTS"},
	{ErrRepositoryNotFound, http.StatusNotFound, "REPOSITORY_NOT_FOUND"},
	{ErrInvalidRepoName, http.StatusBadRequest, "INVALID_REPOSITORY_NAME"},
	{ErrAccessDenied, http.StatusUnauthorized, "ACCESS_DENIED"},
	{ErrNoFile, http.StatusBadRequest, "NO_FILE"},
	{ErrInvalidFileName, http.StatusBadRequest, "INVALID_FILE_NAME"},
	{ErrFileTooLarge, http.StatusRequestEntityTooLarge, "FILE_TOO_LARGE"},
	{ErrNothingToCommit, http.StatusBadRequest, "NOTHING_TO_COMMIT"},
}

// MapErrorToHTTP maps domain errors to HTTP errors. Wrapped errors are matched
// with errors.Is; anything unknown becomes an opaque 500.
func MapErrorToHTTP(err error) *HTTPError {
	for _, m := range mappings {
		if errors.Is(err, m.target) {
			return NewHTTPError(m.status, m.target.Error(), m.code)
		}
	}
	return NewHTTPError(http.StatusInternalServerError, "internal server error", "INTERNAL_ERROR")
}

// Is reports whether any error in err's chain matches target.
func Is(err, target error) bool {
	return errors.Is(err, target)
}
