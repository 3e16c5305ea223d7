package reminders

import "github.com/opst/taskboard/pkg/utils/rfctime"

type Reminder struct {
	Id          string          `json:"id"`
	Content     string          `json:"content"`
	IsCompleted bool            `json:"isCompleted"`
	UserId      string          `json:"userId"`
	CreatedAt   rfctime.RFC3339 `json:"createdAt"`
}

type Create struct {
	Content string `json:"content"`
}

type Update struct {
	Content     *string `json:"content,omitempty"`
	IsCompleted *bool   `json:"isCompleted,omitempty"`
}
