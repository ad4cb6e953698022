//go:generate mockgen -source=$GOFILE -destination=mock/$GOFILE -package=mock
package service

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"persona/backend/internal/model"
)

const defaultReportLimit = 100

// UsageReport lists the counters of the tier currently serving requests.
type UsageReport struct {
	Backend  string
	Degraded bool
	Records  []model.RateLimitRecord
}

// UserSummary is a profile plus its session count.
type UserSummary struct {
	model.UserProfile
	Sessions int
}

// HealthReport describes the state of the request path dependencies.
type HealthReport struct {
	Status    string
	Backend   string
	Degraded  bool
	Database  string
	Provider  string
	CheckedAt time.Time
}

// CounterStatus is the part of counter.Store the admin reports read.
type CounterStatus interface {
	List(ctx context.Context, limit int) ([]model.RateLimitRecord, string, error)
	Degraded() bool
	Backend() string
	Ping(ctx context.Context) error
}

// Pinger checks a dependency.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// UserLister is the read side of the profile store used by reports.
type UserLister interface {
	List(ctx context.Context, limit int) ([]model.UserProfile, error)
}

// SessionCounter counts the sessions of a user.
type SessionCounter interface {
	CountByUser(ctx context.Context, userID int64) (int, error)
}

// QuestionLister is the read side of the unknown question store.
type QuestionLister interface {
	List(ctx context.Context, limit int) ([]model.UnknownQuestion, error)
}

// AdminService serves the operator reports.
type AdminService interface {
	Usage(ctx context.Context, limit int) (UsageReport, error)
	Users(ctx context.Context, limit int) ([]UserSummary, error)
	Questions(ctx context.Context, limit int) ([]model.UnknownQuestion, error)
	Health(ctx context.Context) HealthReport
}

type adminService struct {
	counters  CounterStatus
	users     UserLister
	sessions  SessionCounter
	questions QuestionLister
	db        Pinger
	provider  string
}

func NewAdminService(counters CounterStatus, users UserLister, sessions SessionCounter, questions QuestionLister, db Pinger, provider string) AdminService {
	return &adminService{
		counters:  counters,
		users:     users,
		sessions:  sessions,
		questions: questions,
		db:        db,
		provider:  provider,
	}
}

func (s *adminService) Usage(ctx context.Context, limit int) (UsageReport, error) {
	records, backend, err := s.counters.List(ctx, reportLimit(limit))
	if err != nil {
		return UsageReport{}, fmt.Errorf("list usage: %w", err)
	}
	if records == nil {
		records = []model.RateLimitRecord{}
	}
	return UsageReport{
		Backend:  backend,
		Degraded: s.counters.Degraded(),
		Records:  records,
	}, nil
}

func (s *adminService) Users(ctx context.Context, limit int) ([]UserSummary, error) {
	profiles, err := s.users.List(ctx, reportLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}

	summaries := make([]UserSummary, len(profiles))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(4)
	for i, profile := range profiles {
		g.Go(func() error {
			count, err := s.sessions.CountByUser(gctx, profile.ID)
			if err != nil {
				return fmt.Errorf("count sessions of %d: %w", profile.ID, err)
			}
			summaries[i] = UserSummary{UserProfile: profile, Sessions: count}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return summaries, nil
}

func (s *adminService) Questions(ctx context.Context, limit int) ([]model.UnknownQuestion, error) {
	questions, err := s.questions.List(ctx, reportLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("list questions: %w", err)
	}
	if questions == nil {
		questions = []model.UnknownQuestion{}
	}
	return questions, nil
}

// Health never fails; a broken dependency shows up in the report.
func (s *adminService) Health(ctx context.Context) HealthReport {
	report := HealthReport{
		Status:    "ok",
		Backend:   s.counters.Backend(),
		Degraded:  s.counters.Degraded(),
		Database:  "ok",
		Provider:  s.provider,
		CheckedAt: time.Now().UTC(),
	}
	if s.db != nil {
		if err := s.db.PingContext(ctx); err != nil {
			report.Database = err.Error()
			report.Status = "degraded"
		}
	}
	if report.Degraded {
		report.Status = "degraded"
	} else if err := s.counters.Ping(ctx); err != nil {
		report.Status = "degraded"
	}
	return report
}

func reportLimit(limit int) int {
	if limit <= 0 || limit > 1000 {
		return defaultReportLimit
	}
	return limit
}
