package reminders

import (
	apireminders "github.com/opst/taskboard/pkg/api/types/reminders"
	kdb "github.com/opst/taskboard/pkg/db"
	"github.com/opst/taskboard/pkg/utils/rfctime"
)

func Compose(r kdb.Reminder) apireminders.Reminder {
	return apireminders.Reminder{
		Id:          r.Id,
		Content:     r.Content,
		IsCompleted: r.IsCompleted,
		UserId:      r.UserId,
		CreatedAt:   rfctime.RFC3339(r.CreatedAt),
	}
}
