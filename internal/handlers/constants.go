package handlers

const (
	ErrInvalidFormData     = "Invalid form data"
	ErrUnauthorized        = "Unauthorized"
	ErrForbiddenMsg        = "You are not allowed to do that"
	ErrNotFoundMsg         = "Not found"
	ErrInternalServerError = "Internal server error"
	ErrUnavailable         = "The service is temporarily unavailable, please try again"
	ErrInvalidCSRF         = "Invalid or missing CSRF token"
	ErrTooManyRequests     = "Too many requests, please slow down"

	csrfFieldName  = "csrf_token"
	csrfHeaderName = "X-CSRF-Token"

	// extra room for the non-file fields of the registration form
	multipartOverhead = 1 << 20
)
