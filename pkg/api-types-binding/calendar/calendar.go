package calendar

import (
	apicalendar "github.com/opst/taskboard/pkg/api/types/calendar"
	"github.com/opst/taskboard/pkg/calendar"
)

func ComposeCalendar(c calendar.Calendar) apicalendar.Calendar {
	return apicalendar.Calendar{
		Id:              c.Id,
		Summary:         c.Summary,
		Primary:         c.Primary,
		BackgroundColor: c.BackgroundColor,
		IntegrationId:   c.IntegrationId,
		AccountEmail:    c.AccountEmail,
	}
}

func ComposeEvent(e calendar.Event) apicalendar.Event {
	return apicalendar.Event{
		Id:           e.Id,
		Summary:      e.Summary,
		Description:  e.Description,
		Start:        e.Start,
		End:          e.End,
		HtmlLink:     e.HtmlLink,
		CalendarId:   e.CalendarId,
		AccountEmail: e.AccountEmail,
	}
}

func BindNewEvent(c apicalendar.Create) calendar.NewEvent {
	return calendar.NewEvent{
		Title:         c.Title,
		Description:   c.Description,
		Start:         c.Start.Time(),
		End:           c.End.Time(),
		IntegrationId: c.IntegrationId,
		CalendarId:    c.CalendarId,
	}
}
