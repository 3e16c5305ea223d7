package teams

import (
	apiteams "github.com/opst/taskboard/pkg/api/types/teams"
	kdb "github.com/opst/taskboard/pkg/db"
	"github.com/opst/taskboard/pkg/utils/rfctime"
)

func Compose(t kdb.Team) apiteams.Team {
	return apiteams.Team{
		Id:          t.Id,
		Name:        t.Name,
		MemberCount: t.MemberCount,
		CreatedAt:   rfctime.RFC3339(t.CreatedAt),
	}
}
