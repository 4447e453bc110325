package middlewares

// gin context keys
const (
	CtxRequestID = "request_id"
	CtxActor     = "auth.actor"
	CtxUser      = "auth.user"
	CtxNoteID    = "note_id"
)
