package domain

import "time"

type ReplyCreationData struct {
	ThreadId  ThreadId
	Body      Body
	UserId    UserId
	CreatedAt time.Time
}

type Reply struct {
	Id        ReplyId   `json:"id"`
	ThreadId  ThreadId  `json:"threadId"`
	Body      Body      `json:"body"`
	UserId    UserId    `json:"userId"`
	CreatedAt time.Time `json:"createdAt"`
}
