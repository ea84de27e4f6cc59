// Package service owns the review workflow policy on top of the application
// store: submission, the two terminal decisions, scoped and universal search,
// and aggregate statistics.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	appmetrics "village-gate/internal/application/metrics"
	"village-gate/internal/application/models"
	"village-gate/internal/application/store"
	"village-gate/internal/events"
)

// Service orchestrates the application lifecycle.
type Service struct {
	store   store.Store
	events  *events.Publisher
	metrics *appmetrics.Metrics
	logger  *slog.Logger
}

// Option configures optional service collaborators.
type Option func(*Service)

// WithMetrics attaches workflow metrics.
func WithMetrics(m *appmetrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// WithEvents attaches the lifecycle event publisher. A nil publisher is fine.
func WithEvents(p *events.Publisher) Option {
	return func(s *Service) { s.events = p }
}

// WithLogger sets the structured logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) { s.logger = l }
}

// New constructs a Service over the given store.
func New(st store.Store, opts ...Option) *Service {
	s := &Service{
		store:  st,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Submission carries the four collected fields plus platform identity. All
// strings arrive post-validation and post-sanitization from the conversation.
type Submission struct {
	ApplicantID int64
	Username    string
	FullName    string
	Phone       string
	PlotNumber  string
	DocumentRef string
}

// Submit persists a pending application for the applicant. A repeat
// submission replaces the applicant's previous row and resets it to pending.
func (s *Service) Submit(ctx context.Context, sub Submission) (*models.Application, error) {
	start := time.Now()
	app, err := s.store.Create(ctx, &models.Application{
		ApplicantID: sub.ApplicantID,
		Username:    sub.Username,
		FullName:    sub.FullName,
		Phone:       sub.Phone,
		PlotNumber:  sub.PlotNumber,
		DocumentRef: sub.DocumentRef,
	})
	if err != nil {
		return nil, fmt.Errorf("submit application: %w", err)
	}
	s.metrics.ObserveSubmit(start)
	s.metrics.IncrementSubmitted()
	s.events.Emit(ctx, events.KindSubmitted, app)
	s.logger.Info("application submitted",
		"applicant_id", app.ApplicantID,
		"application_id", app.ID,
	)
	return app, nil
}

// Get returns the applicant's stored application, sentinel.ErrNotFound when
// absent.
func (s *Service) Get(ctx context.Context, applicantID int64) (*models.Application, error) {
	return s.store.FindByApplicantID(ctx, applicantID)
}

// Approve marks the application approved. The design does not guard against
// a second decision racing the first: the later write wins.
func (s *Service) Approve(ctx context.Context, applicantID int64) (*models.Application, error) {
	app, err := s.decide(ctx, applicantID, models.StatusApproved, events.KindApproved)
	if err != nil {
		return nil, err
	}
	s.metrics.IncrementApproved()
	return app, nil
}

// Reject marks the application rejected; the applicant may register again.
func (s *Service) Reject(ctx context.Context, applicantID int64) (*models.Application, error) {
	app, err := s.decide(ctx, applicantID, models.StatusRejected, events.KindRejected)
	if err != nil {
		return nil, err
	}
	s.metrics.IncrementRejected()
	return app, nil
}

func (s *Service) decide(ctx context.Context, applicantID int64, status models.Status, kind string) (*models.Application, error) {
	if err := s.store.UpdateStatus(ctx, applicantID, status); err != nil {
		return nil, fmt.Errorf("set status %s: %w", status, err)
	}
	app, err := s.store.FindByApplicantID(ctx, applicantID)
	if err != nil {
		return nil, fmt.Errorf("load decided application: %w", err)
	}
	s.events.Emit(ctx, kind, app)
	s.logger.Info("application decided",
		"applicant_id", applicantID,
		"status", string(status),
	)
	return app, nil
}

// SearchByPlot matches the plot field, case-insensitive substring, newest first.
func (s *Service) SearchByPlot(ctx context.Context, query string) ([]*models.Application, error) {
	defer s.metrics.ObserveSearch(time.Now())
	return s.store.SearchByPlot(ctx, query)
}

// SearchByPhone matches the phone field.
func (s *Service) SearchByPhone(ctx context.Context, query string) ([]*models.Application, error) {
	defer s.metrics.ObserveSearch(time.Now())
	return s.store.SearchByPhone(ctx, query)
}

// SearchByName matches the full-name field.
func (s *Service) SearchByName(ctx context.Context, query string) ([]*models.Application, error) {
	defer s.metrics.ObserveSearch(time.Now())
	return s.store.SearchByName(ctx, query)
}

// SearchAll unions the three scoped lookups for one query, de-duplicated by
// application id, preserving first-seen order across plot, phone, name.
func (s *Service) SearchAll(ctx context.Context, query string) ([]*models.Application, error) {
	defer s.metrics.ObserveSearch(time.Now())

	byPlot, err := s.store.SearchByPlot(ctx, query)
	if err != nil {
		return nil, err
	}
	byPhone, err := s.store.SearchByPhone(ctx, query)
	if err != nil {
		return nil, err
	}
	byName, err := s.store.SearchByName(ctx, query)
	if err != nil {
		return nil, err
	}

	seen := make(map[int64]struct{})
	var union []*models.Application
	for _, apps := range [][]*models.Application{byPlot, byPhone, byName} {
		for _, app := range apps {
			if _, ok := seen[app.ID]; ok {
				continue
			}
			seen[app.ID] = struct{}{}
			union = append(union, app)
		}
	}
	return union, nil
}

// Statistics returns aggregate application counts by status.
func (s *Service) Statistics(ctx context.Context) (models.Statistics, error) {
	return s.store.CountByStatus(ctx)
}

// ListAll returns every stored application, newest first.
func (s *Service) ListAll(ctx context.Context) ([]*models.Application, error) {
	return s.store.ListAll(ctx)
}

// ListPending returns applications still awaiting review, newest first.
func (s *Service) ListPending(ctx context.Context) ([]*models.Application, error) {
	return s.store.ListPending(ctx)
}
