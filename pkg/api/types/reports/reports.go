package reports

import (
	"encoding/json"
	"strconv"
)

type Report struct {
	Metrics            Metrics  `json:"metrics"`
	StatusDistribution []Slice  `json:"statusDistribution"`
	ActivityData       []Bucket `json:"activityData"`
}

type Metrics struct {
	Total      int  `json:"total"`
	Completed  int  `json:"completed"`
	InProgress int  `json:"inProgress"`
	Rate       Rate `json:"rate"`
}

// Rate is a completion rate in percent.
//
// It is marshalled as a string with one decimal ("66.7"),
// or as the number 0 when there are no tasks.
type Rate struct {
	Completed int
	Total     int
}

func (r Rate) String() string {
	if r.Total == 0 {
		return "0"
	}
	return strconv.FormatFloat(float64(r.Completed)*100/float64(r.Total), 'f', 1, 64)
}

func (r Rate) MarshalJSON() ([]byte, error) {
	if r.Total == 0 {
		return []byte("0"), nil
	}
	return json.Marshal(r.String())
}

// a slice of the status pie chart.
type Slice struct {
	Name  string `json:"name"`
	Value int    `json:"value"`
	Fill  string `json:"fill"`
}

// tasks created and completed in a day.
type Bucket struct {
	// day, formatted as dd/MM
	Name      string `json:"name"`
	Created   int    `json:"created"`
	Completed int    `json:"completed"`
}
