package errs

// Shared REST error codes. HTTP status is derived by the handler layer.
var (
	ErrArgs           = NewCodeError(400, "bad request")
	ErrTokenRequired  = NewCodeError(401, "authorization required")
	ErrTokenInvalid   = NewCodeError(401, "invalid token")
	ErrTokenExpired   = NewCodeError(401, "token expired")
	ErrForbidden      = NewCodeError(403, "forbidden")
	ErrUserNotFound   = NewCodeError(404, "user not found")
	ErrRecordNotFound = NewCodeError(404, "not found")
	ErrDuplicate      = NewCodeError(409, "already exists")
	ErrInternal       = NewCodeError(500, "internal error")
)
