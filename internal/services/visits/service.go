package visits

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"arqueo-backend/internal/models"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/datatypes"
)

var ErrInvalidInput = errors.New("invalid input")

type RouteLister interface {
	ListByDay(ctx context.Context, sellerID int64, weekday string) ([]models.Route, error)
}

type LogStore interface {
	Upsert(ctx context.Context, log *models.VisitLog) error
	Get(ctx context.Context, sellerID int64, date string) (*models.VisitLog, error)
}

// Checklist is the route of one weekday with today's visit marks.
type Checklist struct {
	SellerID int64          `json:"seller_id"`
	Day      string         `json:"day"`
	DayName  string         `json:"day_name"`
	Visits   []models.Visit `json:"visits"`
	Progress Progress       `json:"progress"`
}

type Progress struct {
	Visited int `json:"visited"`
	Total   int `json:"total"`
	Percent int `json:"percent"`
}

type Service struct {
	routes RouteLister
	logs   LogStore
	logger *logrus.Logger
	loc    *time.Location
	now    func() time.Time
}

func NewService(routes RouteLister, logs LogStore, logger *logrus.Logger, loc *time.Location) *Service {
	if loc == nil {
		loc = time.UTC
	}
	return &Service{routes: routes, logs: logs, logger: logger, loc: loc, now: time.Now}
}

// SetClock replaces the time source.
func (s *Service) SetClock(now func() time.Time) {
	s.now = now
}

func (s *Service) today() time.Time {
	return s.now().In(s.loc)
}

// TodayCode returns the route code of the current business day.
func (s *Service) TodayCode() string {
	return models.WeekdayCode(s.today().Weekday())
}

// ListRoute returns the clients scheduled for day.
func (s *Service) ListRoute(ctx context.Context, sellerID int64, day string) ([]models.Route, error) {
	day = strings.ToUpper(strings.TrimSpace(day))
	if sellerID == 0 {
		return nil, fmt.Errorf("%w: seller required", ErrInvalidInput)
	}
	if _, ok := models.ParseWeekdayCode(day); !ok {
		return nil, fmt.Errorf("%w: unknown day %q", ErrInvalidInput, day)
	}
	return s.routes.ListByDay(ctx, sellerID, day)
}

// Checklist builds the day's route with the marks saved today for that
// scheduled day. Marks saved for another scheduled day are ignored.
func (s *Service) Checklist(ctx context.Context, sellerID int64, day string) (*Checklist, error) {
	routes, err := s.ListRoute(ctx, sellerID, day)
	if err != nil {
		return nil, err
	}
	day = strings.ToUpper(strings.TrimSpace(day))

	visited := map[string]bool{}
	saved, err := s.logs.Get(ctx, sellerID, s.today().Format(models.DateLayout))
	if err != nil {
		s.logger.WithError(err).WithField("seller_id", sellerID).Warn("visit log lookup failed")
	} else if saved != nil && saved.ScheduledDay == day {
		var marks []models.Visit
		if err := json.Unmarshal(saved.Visits, &marks); err == nil {
			for _, m := range marks {
				visited[m.Code] = m.Visited
			}
		}
	}

	list := make([]models.Visit, 0, len(routes))
	for _, r := range routes {
		list = append(list, models.Visit{Code: r.ClientCode, Name: r.ClientName, Visited: visited[r.ClientCode]})
	}
	wd, _ := models.ParseWeekdayCode(day)
	return &Checklist{
		SellerID: sellerID,
		Day:      day,
		DayName:  models.WeekdayName(wd),
		Visits:   list,
		Progress: ComputeProgress(list),
	}, nil
}

// SaveVisits stores today's checklist for the scheduled day, replacing any
// checklist saved earlier today.
func (s *Service) SaveVisits(ctx context.Context, sellerID int64, scheduledDay string, visits []models.Visit) (*models.VisitLog, error) {
	scheduledDay = strings.ToUpper(strings.TrimSpace(scheduledDay))
	if sellerID == 0 {
		return nil, fmt.Errorf("%w: seller required", ErrInvalidInput)
	}
	if _, ok := models.ParseWeekdayCode(scheduledDay); !ok {
		return nil, fmt.Errorf("%w: unknown day %q", ErrInvalidInput, scheduledDay)
	}
	if visits == nil {
		visits = []models.Visit{}
	}
	raw, err := json.Marshal(visits)
	if err != nil {
		return nil, err
	}

	today := s.today()
	entry := &models.VisitLog{
		ID:           uuid.New(),
		SellerID:     sellerID,
		Date:         today.Format(models.DateLayout),
		ScheduledDay: scheduledDay,
		ActualDay:    models.WeekdayCode(today.Weekday()),
		Visits:       datatypes.JSON(raw),
	}
	if err := s.logs.Upsert(ctx, entry); err != nil {
		return nil, fmt.Errorf("save visits: %w", err)
	}

	p := ComputeProgress(visits)
	s.logger.WithFields(logrus.Fields{
		"seller_id":     sellerID,
		"scheduled_day": scheduledDay,
		"visited":       p.Visited,
		"total":         p.Total,
	}).Info("visits saved")
	return entry, nil
}

func ComputeProgress(visits []models.Visit) Progress {
	p := Progress{Total: len(visits)}
	for _, v := range visits {
		if v.Visited {
			p.Visited++
		}
	}
	if p.Total > 0 {
		p.Percent = p.Visited * 100 / p.Total
	}
	return p
}

// ShiftDay moves a weekday index by delta, wrapping around the week.
func ShiftDay(index, delta int) int {
	return ((index+delta)%7 + 7) % 7
}
