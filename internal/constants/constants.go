package constants

const (
	// ContextKeyUserID is the gin context key holding the authenticated account ID.
	ContextKeyUserID = "user_id"
	// ContextKeyRequestID is the gin context key holding the request correlation ID.
	ContextKeyRequestID = "request_id"

	HeaderAuthorization = "Authorization"
	HeaderRequestID     = "X-Request-ID"
	BearerPrefix        = "Bearer "

	MinPasswordLength = 6

	MinPage         = 1
	DefaultPage     = 1
	MaxPage         = 1000000
	MinPageSize     = 1
	DefaultPageSize = 10
	MaxPageSize     = 100
)
