package middlewares

const (
	CtxRequestID = "requestID"

	ctxUserIDKey = "auth.userID"
	ctxUserKey   = "auth.user"
)
