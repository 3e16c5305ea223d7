package tasks

import (
	apitasks "github.com/opst/taskboard/pkg/api/types/tasks"
	kdb "github.com/opst/taskboard/pkg/db"
	"github.com/opst/taskboard/pkg/utils/rfctime"
)

func Compose(t kdb.Task) apitasks.Task {
	var user *apitasks.User
	if t.User != nil {
		user = &apitasks.User{Id: t.User.UserId, Name: t.User.Name, Email: t.User.Email}
	}
	return apitasks.Task{
		Id:            t.Id,
		Title:         t.Title,
		Description:   t.Description,
		DueDate:       rfctime.RFC3339(t.DueDate),
		Status:        string(t.Status),
		EstimatedTime: t.EstimatedTime,
		UserId:        t.UserId,
		CreatedBy:     t.CreatedBy,
		User:          user,
		CreatedAt:     rfctime.RFC3339(t.CreatedAt),
		UpdatedAt:     rfctime.RFC3339(t.UpdatedAt),
	}
}
