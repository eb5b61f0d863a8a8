package domain

type ctxKey string

const (
	RequesterIdentityCtxKey ctxKey = "mp-requesterIdentity"
	RequesterIdCtxKey       ctxKey = "mp-requesterId"
	RequesterRoleCtxKey     ctxKey = "mp-requesterRole"
)

// echo.Context keys mirror the request context values for handlers.
const (
	RequesterIdentityKey = "requesterIdentity"
)

const (
	AuthorizationHeader = "Authorization"
	BearerScheme        = "Bearer"
)

const MinPasswordLength = 8
