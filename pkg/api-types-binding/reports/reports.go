package reports

import (
	apireports "github.com/opst/taskboard/pkg/api/types/reports"
	"github.com/opst/taskboard/pkg/reports"
)

func Compose(r reports.Report) apireports.Report {
	dist := make([]apireports.Slice, 0, len(r.Distribution))
	for _, s := range r.Distribution {
		dist = append(dist, apireports.Slice{Name: s.Name, Value: s.Value, Fill: s.Fill})
	}
	activity := make([]apireports.Bucket, 0, len(r.Activity))
	for _, b := range r.Activity {
		activity = append(activity, apireports.Bucket{
			Name: b.Name(), Created: b.Created, Completed: b.Completed,
		})
	}
	return apireports.Report{
		Metrics: apireports.Metrics{
			Total:      r.Total,
			Completed:  r.Completed,
			InProgress: r.InProgress,
			Rate:       apireports.Rate{Completed: r.Completed, Total: r.Total},
		},
		StatusDistribution: dist,
		ActivityData:       activity,
	}
}
