package calendar

import (
	"context"
	"errors"
	"net/http"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	gcalendar "google.golang.org/api/calendar/v3"
	goauth2 "google.golang.org/api/oauth2/v2"
	"google.golang.org/api/option"
)

// Provider talks to a calendar service on behalf of an account.
type Provider interface {
	// AuthCodeURL returns the URL of the consent page.
	AuthCodeURL(state string) string

	// Exchange the authorization code for a token, and find the account email.
	Exchange(ctx context.Context, code string) (*oauth2.Token, string, error)

	Calendars(ctx context.Context, tok *oauth2.Token) ([]Calendar, error)
	Events(ctx context.Context, tok *oauth2.Token, calendarId string, from, to time.Time) ([]Event, error)
	Insert(ctx context.Context, tok *oauth2.Token, calendarId string, ev NewEvent) (*Event, error)
}

type GoogleConfig struct {
	ClientId     string
	ClientSecret string
	RedirectUri  string
}

type Google struct {
	conf *oauth2.Config

	// overrides API base URLs. empty means the default.
	calendarEndpoint string
	userinfoEndpoint string
}

type GoogleOption func(*Google) *Google

// WithEndpoints overrides base URLs of Google APIs.
func WithEndpoints(calendarEndpoint, userinfoEndpoint string, oauth oauth2.Endpoint) GoogleOption {
	return func(g *Google) *Google {
		g.calendarEndpoint = calendarEndpoint
		g.userinfoEndpoint = userinfoEndpoint
		g.conf.Endpoint = oauth
		return g
	}
}

func NewGoogle(c GoogleConfig, opts ...GoogleOption) *Google {
	g := &Google{
		conf: &oauth2.Config{
			ClientID:     c.ClientId,
			ClientSecret: c.ClientSecret,
			RedirectURL:  c.RedirectUri,
			Endpoint:     google.Endpoint,
			Scopes: []string{
				gcalendar.CalendarScope,
				goauth2.UserinfoEmailScope,
			},
		},
	}
	for _, o := range opts {
		g = o(g)
	}
	return g
}

var _ Provider = &Google{}

func (g *Google) AuthCodeURL(state string) string {
	return g.conf.AuthCodeURL(state, oauth2.AccessTypeOffline, oauth2.ApprovalForce)
}

func (g *Google) client(ctx context.Context, tok *oauth2.Token) *http.Client {
	return g.conf.Client(ctx, tok)
}

func (g *Google) calendarService(ctx context.Context, tok *oauth2.Token) (*gcalendar.Service, error) {
	opts := []option.ClientOption{option.WithHTTPClient(g.client(ctx, tok))}
	if g.calendarEndpoint != "" {
		opts = append(opts, option.WithEndpoint(g.calendarEndpoint))
	}
	return gcalendar.NewService(ctx, opts...)
}

func (g *Google) Exchange(ctx context.Context, code string) (*oauth2.Token, string, error) {
	tok, err := g.conf.Exchange(ctx, code)
	if err != nil {
		return nil, "", err
	}

	opts := []option.ClientOption{option.WithHTTPClient(g.client(ctx, tok))}
	if g.userinfoEndpoint != "" {
		opts = append(opts, option.WithEndpoint(g.userinfoEndpoint))
	}
	svc, err := goauth2.NewService(ctx, opts...)
	if err != nil {
		return nil, "", err
	}
	info, err := svc.Userinfo.Get().Context(ctx).Do()
	if err != nil {
		return nil, "", err
	}
	if info.Email == "" {
		return nil, "", errors.New("could not retrieve user email")
	}
	return tok, info.Email, nil
}

func (g *Google) Calendars(ctx context.Context, tok *oauth2.Token) ([]Calendar, error) {
	svc, err := g.calendarService(ctx, tok)
	if err != nil {
		return nil, err
	}
	list, err := svc.CalendarList.List().Context(ctx).Do()
	if err != nil {
		return nil, err
	}
	cals := make([]Calendar, 0, len(list.Items))
	for _, item := range list.Items {
		cals = append(cals, Calendar{
			Id:              item.Id,
			Summary:         item.Summary,
			Primary:         item.Primary,
			BackgroundColor: item.BackgroundColor,
		})
	}
	return cals, nil
}

func when(dt *gcalendar.EventDateTime) string {
	if dt == nil {
		return ""
	}
	if dt.DateTime != "" {
		return dt.DateTime
	}
	return dt.Date
}

func fromGoogle(ev *gcalendar.Event) Event {
	return Event{
		Id:          ev.Id,
		Summary:     ev.Summary,
		Description: ev.Description,
		Start:       when(ev.Start),
		End:         when(ev.End),
		HtmlLink:    ev.HtmlLink,
	}
}

func (g *Google) Events(ctx context.Context, tok *oauth2.Token, calendarId string, from, to time.Time) ([]Event, error) {
	svc, err := g.calendarService(ctx, tok)
	if err != nil {
		return nil, err
	}
	list, err := svc.Events.List(calendarId).
		TimeMin(from.Format(time.RFC3339)).
		TimeMax(to.Format(time.RFC3339)).
		SingleEvents(true).
		OrderBy("startTime").
		Context(ctx).Do()
	if err != nil {
		return nil, err
	}
	events := make([]Event, 0, len(list.Items))
	for _, item := range list.Items {
		events = append(events, fromGoogle(item))
	}
	return events, nil
}

func (g *Google) Insert(ctx context.Context, tok *oauth2.Token, calendarId string, ev NewEvent) (*Event, error) {
	svc, err := g.calendarService(ctx, tok)
	if err != nil {
		return nil, err
	}
	created, err := svc.Events.Insert(calendarId, &gcalendar.Event{
		Summary:     ev.Title,
		Description: ev.Description,
		Start:       &gcalendar.EventDateTime{DateTime: ev.Start.UTC().Format(time.RFC3339)},
		End:         &gcalendar.EventDateTime{DateTime: ev.End.UTC().Format(time.RFC3339)},
	}).Context(ctx).Do()
	if err != nil {
		return nil, err
	}
	e := fromGoogle(created)
	return &e, nil
}
