package calendar

import "github.com/opst/taskboard/pkg/utils/rfctime"

type Calendar struct {
	Id              string `json:"id"`
	Summary         string `json:"summary"`
	Primary         bool   `json:"primary"`
	BackgroundColor string `json:"backgroundColor,omitempty"`
	IntegrationId   string `json:"integrationId"`
	AccountEmail    string `json:"accountEmail"`
}

type Event struct {
	Id          string `json:"id"`
	Summary     string `json:"summary"`
	Description string `json:"description,omitempty"`

	// date-time, or full-date for all-day events.
	Start string `json:"start"`
	End   string `json:"end"`

	HtmlLink string `json:"htmlLink,omitempty"`

	// composite id, "integrationId:calendarId"
	CalendarId   string `json:"calendarId"`
	AccountEmail string `json:"accountEmail"`
}

type Create struct {
	Title         string          `json:"title"`
	Description   string          `json:"description,omitempty"`
	Start         rfctime.RFC3339 `json:"start"`
	End           rfctime.RFC3339 `json:"end"`
	IntegrationId string          `json:"integrationId,omitempty"`
	CalendarId    string          `json:"calendarId,omitempty"`
}

// response of GET /api/calendar/list
type Calendars struct {
	Calendars []Calendar `json:"calendars"`
}

// response of GET /api/calendar/events
type Events struct {
	Connected bool    `json:"connected"`
	Events    []Event `json:"events"`
}
