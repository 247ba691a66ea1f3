package domain

type (
	ThreadId = int64
	ReplyId  = int64

	// UserId is a client-chosen pseudonym. It is never authenticated.
	UserId = string
	Body   = string
)

const (
	MaxBodyLength   = 2000
	MaxUserIdLength = 64
)
