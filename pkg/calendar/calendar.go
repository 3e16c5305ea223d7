// Package calendar connects users' Google accounts and proxies their calendars.
//
// A user may connect several accounts. Calendars and events are tagged with the
// integration they come from, and calendars are identified by composite ids
// "integrationId:calendarId".
package calendar

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"sort"
	"strings"
	"sync"
	"time"

	kdb "github.com/opst/taskboard/pkg/db"
	xe "github.com/opst/taskboard/pkg/errors"
	"golang.org/x/oauth2"
	"golang.org/x/sync/errgroup"
)

var (
	// the user has no connected account.
	ErrNotConnected = errors.New("no calendar connected")
)

const PrimaryCalendar = "primary"

// EventWindow is the range of events listed from now.
const EventWindow = 7 * 24 * time.Hour

type Calendar struct {
	Id              string
	Summary         string
	Primary         bool
	BackgroundColor string

	IntegrationId string
	AccountEmail  string
}

type Event struct {
	Id          string
	Summary     string
	Description string

	// date-time, or full-date of all-day events
	Start string
	End   string

	HtmlLink string

	// composite id of the calendar
	CalendarId   string
	AccountEmail string
}

// StartTime parses Start. Unparsable Start is treated as zero time.
func (e Event) StartTime() time.Time {
	if t, err := time.Parse(time.RFC3339, e.Start); err == nil {
		return t
	}
	if t, err := time.Parse(time.DateOnly, e.Start); err == nil {
		return t
	}
	return time.Time{}
}

type NewEvent struct {
	Title       string
	Description string
	Start       time.Time
	End         time.Time

	// empty means the latest integration of the user.
	IntegrationId string

	// empty means PrimaryCalendar.
	CalendarId string
}

// CompositeId joins an integration id and a calendar id.
func CompositeId(integrationId, calendarId string) string {
	return integrationId + ":" + calendarId
}

// ParseCompositeIds parses comma separated composite ids and groups calendar ids
// by integration id. Malformed items are ignored.
//
// Calendar ids may contain ":", so ids are split at the first ":".
func ParseCompositeIds(s string) (integrationIds []string, calendars map[string][]string) {
	calendars = map[string][]string{}
	for _, cid := range strings.Split(s, ",") {
		integrationId, calendarId, ok := strings.Cut(strings.TrimSpace(cid), ":")
		if !ok || integrationId == "" || calendarId == "" {
			continue
		}
		if _, seen := calendars[integrationId]; !seen {
			integrationIds = append(integrationIds, integrationId)
		}
		calendars[integrationId] = append(calendars[integrationId], calendarId)
	}
	return integrationIds, calendars
}

func tokenOf(i kdb.Integration) *oauth2.Token {
	tok := &oauth2.Token{AccessToken: i.AccessToken, TokenType: "Bearer"}
	if i.RefreshToken != nil {
		tok.RefreshToken = *i.RefreshToken
	}
	if i.ExpiresAt != nil {
		tok.Expiry = *i.ExpiresAt
	}
	return tok
}

type Service struct {
	integrations kdb.IntegrationInterface
	provider     Provider
	logger       *log.Logger
	now          func() time.Time
}

type Option func(*Service) *Service

func WithLogger(l *log.Logger) Option {
	return func(s *Service) *Service {
		s.logger = l
		return s
	}
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Service) *Service {
		s.now = now
		return s
	}
}

func New(integrations kdb.IntegrationInterface, provider Provider, opts ...Option) *Service {
	s := &Service{
		integrations: integrations,
		provider:     provider,
		logger:       log.New(io.Discard, "", 0),
		now:          time.Now,
	}
	for _, o := range opts {
		s = o(s)
	}
	return s
}

func (s *Service) AuthCodeURL(state string) string {
	return s.provider.AuthCodeURL(state)
}

// Connect exchanges the authorization code and saves the integration of the user.
//
// Reconnecting the same account updates the tokens. When the provider does not
// return a refresh token, the stored one is kept.
func (s *Service) Connect(ctx context.Context, userId string, code string) (*kdb.Integration, error) {
	tok, email, err := s.provider.Exchange(ctx, code)
	if err != nil {
		return nil, err
	}

	param := kdb.IntegrationParam{
		Provider:     kdb.ProviderGoogle,
		AccessToken:  tok.AccessToken,
		AccountEmail: email,
		UserId:       userId,
	}
	if tok.RefreshToken != "" {
		param.RefreshToken = &tok.RefreshToken
	}
	if !tok.Expiry.IsZero() {
		param.ExpiresAt = &tok.Expiry
	}
	i, err := s.integrations.Upsert(ctx, param)
	if err != nil {
		return nil, xe.Wrap(err)
	}
	return i, nil
}

// Calendars lists calendars of all accounts of the user.
//
// Accounts failing to respond are skipped.
//
// # Returns
//
// - error: ErrNotConnected when the user has no account connected.
func (s *Service) Calendars(ctx context.Context, userId string) ([]Calendar, error) {
	integs, err := s.integrations.Find(ctx, userId, kdb.ProviderGoogle)
	if err != nil {
		return nil, xe.Wrap(err)
	}
	if len(integs) == 0 {
		return nil, ErrNotConnected
	}

	perIntegration := make([][]Calendar, len(integs))
	eg, ectx := errgroup.WithContext(ctx)
	for n, integ := range integs {
		eg.Go(func() error {
			cals, err := s.provider.Calendars(ectx, tokenOf(integ))
			if err != nil {
				s.logger.Printf("failed to fetch calendars for integration %s: %s", integ.Id, err)
				return nil
			}
			for i := range cals {
				cals[i].IntegrationId = integ.Id
				cals[i].AccountEmail = integ.AccountEmail
			}
			perIntegration[n] = cals
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	all := []Calendar{}
	for _, cals := range perIntegration {
		all = append(all, cals...)
	}
	return all, nil
}

// Events lists events in EventWindow from now, of the calendars specified by
// composite ids, sorted by start time.
//
// Calendars of integrations not owned by the user are ignored,
// and calendars failing to respond are skipped.
func (s *Service) Events(ctx context.Context, userId string, compositeIds string) ([]Event, error) {
	integrationIds, calendars := ParseCompositeIds(compositeIds)
	if len(integrationIds) == 0 {
		return []Event{}, nil
	}

	owned, err := s.integrations.Get(ctx, userId, integrationIds)
	if err != nil {
		return nil, xe.Wrap(err)
	}

	from := s.now()
	to := from.Add(EventWindow)

	var mux sync.Mutex
	all := []Event{}
	eg, ectx := errgroup.WithContext(ctx)
	for _, intId := range integrationIds {
		integ, ok := owned[intId]
		if !ok {
			continue
		}
		tok := tokenOf(integ)
		for _, calId := range calendars[intId] {
			eg.Go(func() error {
				events, err := s.provider.Events(ectx, tok, calId, from, to)
				if err != nil {
					s.logger.Printf(
						"failed to fetch events for calendar %s (integration %s): %s",
						calId, intId, err,
					)
					return nil
				}
				for i := range events {
					events[i].CalendarId = CompositeId(intId, calId)
					events[i].AccountEmail = integ.AccountEmail
				}
				mux.Lock()
				defer mux.Unlock()
				all = append(all, events...)
				return nil
			})
		}
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	sort.SliceStable(all, func(i, j int) bool {
		return all[i].StartTime().Before(all[j].StartTime())
	})
	return all, nil
}

// Create an event on a calendar of the user.
//
// # Returns
//
// - error: ErrNotConnected when the integration is not found or not owned by the user.
func (s *Service) Create(ctx context.Context, userId string, ev NewEvent) (*Event, error) {
	var integ kdb.Integration
	if ev.IntegrationId != "" {
		owned, err := s.integrations.Get(ctx, userId, []string{ev.IntegrationId})
		if err != nil {
			return nil, xe.Wrap(err)
		}
		i, ok := owned[ev.IntegrationId]
		if !ok {
			return nil, fmt.Errorf("%w: integration %s", ErrNotConnected, ev.IntegrationId)
		}
		integ = i
	} else {
		integs, err := s.integrations.Find(ctx, userId, kdb.ProviderGoogle)
		if err != nil {
			return nil, xe.Wrap(err)
		}
		if len(integs) == 0 {
			return nil, ErrNotConnected
		}
		integ = integs[0]
	}

	calId := ev.CalendarId
	if calId == "" {
		calId = PrimaryCalendar
	}
	created, err := s.provider.Insert(ctx, tokenOf(integ), calId, ev)
	if err != nil {
		return nil, err
	}
	created.CalendarId = CompositeId(integ.Id, calId)
	created.AccountEmail = integ.AccountEmail
	return created, nil
}
