package store

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"village-gate/internal/application/models"
	"village-gate/pkg/platform/sentinel"
)

// InMemory keeps applications in a map keyed by applicant id. It backs unit
// tests and single-process deployments without Postgres.
type InMemory struct {
	mu          sync.RWMutex
	byApplicant map[int64]*models.Application
	nextID      int64
	now         func() time.Time
}

// NewInMemory constructs an empty in-memory application store.
func NewInMemory() *InMemory {
	return &InMemory{
		byApplicant: make(map[int64]*models.Application),
		nextID:      1,
		now:         time.Now,
	}
}

func (s *InMemory) Create(_ context.Context, app *models.Application) (*models.Application, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := *app
	stored.Status = models.StatusPending
	if existing, ok := s.byApplicant[app.ApplicantID]; ok {
		// Re-registration replaces data but keeps id and creation time.
		stored.ID = existing.ID
		stored.CreatedAt = existing.CreatedAt
	} else {
		stored.ID = s.nextID
		s.nextID++
		stored.CreatedAt = s.now()
	}
	s.byApplicant[app.ApplicantID] = &stored

	out := stored
	return &out, nil
}

func (s *InMemory) FindByApplicantID(_ context.Context, applicantID int64) (*models.Application, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	app, ok := s.byApplicant[applicantID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	out := *app
	return &out, nil
}

func (s *InMemory) UpdateStatus(_ context.Context, applicantID int64, status models.Status) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	app, ok := s.byApplicant[applicantID]
	if !ok {
		return sentinel.ErrNotFound
	}
	app.Status = status
	return nil
}

func (s *InMemory) SearchByPlot(_ context.Context, query string) ([]*models.Application, error) {
	return s.match(func(app *models.Application) bool {
		return containsFold(app.PlotNumber, query)
	}), nil
}

func (s *InMemory) SearchByPhone(_ context.Context, query string) ([]*models.Application, error) {
	return s.match(func(app *models.Application) bool {
		return containsFold(app.Phone, query)
	}), nil
}

func (s *InMemory) SearchByName(_ context.Context, query string) ([]*models.Application, error) {
	return s.match(func(app *models.Application) bool {
		return containsFold(app.FullName, query)
	}), nil
}

func (s *InMemory) ListAll(_ context.Context) ([]*models.Application, error) {
	return s.match(func(*models.Application) bool { return true }), nil
}

func (s *InMemory) ListPending(_ context.Context) ([]*models.Application, error) {
	return s.match(func(app *models.Application) bool {
		return app.Status == models.StatusPending
	}), nil
}

func (s *InMemory) CountByStatus(_ context.Context) (models.Statistics, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var stats models.Statistics
	for _, app := range s.byApplicant {
		stats.Total++
		switch app.Status {
		case models.StatusPending:
			stats.Pending++
		case models.StatusApproved:
			stats.Approved++
		case models.StatusRejected:
			stats.Rejected++
		}
	}
	return stats, nil
}

// match returns copies of matching applications, newest first.
func (s *InMemory) match(pred func(*models.Application) bool) []*models.Application {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var apps []*models.Application
	for _, app := range s.byApplicant {
		if pred(app) {
			out := *app
			apps = append(apps, &out)
		}
	}
	sort.Slice(apps, func(i, j int) bool {
		if !apps[i].CreatedAt.Equal(apps[j].CreatedAt) {
			return apps[i].CreatedAt.After(apps[j].CreatedAt)
		}
		return apps[i].ID > apps[j].ID
	})
	return apps
}

func containsFold(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}
