package domain

import (
	"time"
)

// to iterate thru layers: handler -> service -> storage
type ThreadCreationData struct {
	Body      Body
	UserId    UserId
	CreatedAt time.Time
}

type Thread struct {
	Id         ThreadId  `json:"id"`
	Body       Body      `json:"body"`
	UserId     UserId    `json:"userId"`
	CreatedAt  time.Time `json:"createdAt"`
	ReplyCount int       `json:"replyCount"`
}
