package teams

import "github.com/opst/taskboard/pkg/utils/rfctime"

type Team struct {
	Id          string          `json:"id"`
	Name        string          `json:"name"`
	MemberCount int             `json:"memberCount"`
	CreatedAt   rfctime.RFC3339 `json:"createdAt"`
}

type Create struct {
	Name string `json:"name"`
}
