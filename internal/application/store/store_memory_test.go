package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"village-gate/internal/application/models"
	"village-gate/pkg/platform/sentinel"
)

type MemoryStoreSuite struct {
	suite.Suite
	store *InMemory
	ctx   context.Context
	clock time.Time
}

func TestMemoryStoreSuite(t *testing.T) {
	suite.Run(t, new(MemoryStoreSuite))
}

func (s *MemoryStoreSuite) SetupTest() {
	s.store = NewInMemory()
	s.ctx = context.Background()
	// Deterministic, strictly increasing clock so "newest first" is testable.
	s.clock = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	s.store.now = func() time.Time {
		s.clock = s.clock.Add(time.Minute)
		return s.clock
	}
}

func (s *MemoryStoreSuite) newApplication(applicantID int64, name, phone, plot string) *models.Application {
	return &models.Application{
		ApplicantID: applicantID,
		Username:    "user",
		FullName:    name,
		Phone:       phone,
		PlotNumber:  plot,
		DocumentRef: "file-ref",
	}
}

func (s *MemoryStoreSuite) TestCreateAndFind() {
	s.Run("assigns id and pending status", func() {
		created, err := s.store.Create(s.ctx, s.newApplication(1, "Иванов Иван", "+79001234567", "50:28:0090247"))
		s.Require().NoError(err)
		s.Equal(int64(1), created.ID)
		s.Equal(models.StatusPending, created.Status)
		s.False(created.CreatedAt.IsZero())

		found, err := s.store.FindByApplicantID(s.ctx, 1)
		s.Require().NoError(err)
		s.Equal(created.ID, found.ID)
		s.Equal("Иванов Иван", found.FullName)
	})

	s.Run("returns ErrNotFound for unknown applicant", func() {
		_, err := s.store.FindByApplicantID(s.ctx, 999)
		s.Require().ErrorIs(err, sentinel.ErrNotFound)
	})
}

func (s *MemoryStoreSuite) TestReRegistrationReplacesRow() {
	first, err := s.store.Create(s.ctx, s.newApplication(1, "Иванов Иван", "+79001234567", "50:28:0090247"))
	s.Require().NoError(err)
	s.Require().NoError(s.store.UpdateStatus(s.ctx, 1, models.StatusRejected))

	second, err := s.store.Create(s.ctx, s.newApplication(1, "Петров Пётр", "+79007654321", "50:28:0000001"))
	s.Require().NoError(err)

	// Same row: id and creation time survive, data and status reset.
	s.Equal(first.ID, second.ID)
	s.Equal(first.CreatedAt, second.CreatedAt)
	s.Equal(models.StatusPending, second.Status)
	s.Equal("Петров Пётр", second.FullName)

	all, err := s.store.ListAll(s.ctx)
	s.Require().NoError(err)
	s.Len(all, 1)
}

func (s *MemoryStoreSuite) TestUpdateStatus() {
	_, err := s.store.Create(s.ctx, s.newApplication(1, "Иванов Иван", "+79001234567", "50:28:0090247"))
	s.Require().NoError(err)

	s.Run("applies transition", func() {
		s.Require().NoError(s.store.UpdateStatus(s.ctx, 1, models.StatusApproved))
		found, err := s.store.FindByApplicantID(s.ctx, 1)
		s.Require().NoError(err)
		s.Equal(models.StatusApproved, found.Status)
	})

	s.Run("last write wins without guarding", func() {
		s.Require().NoError(s.store.UpdateStatus(s.ctx, 1, models.StatusRejected))
		found, err := s.store.FindByApplicantID(s.ctx, 1)
		s.Require().NoError(err)
		s.Equal(models.StatusRejected, found.Status)
	})

	s.Run("unknown applicant", func() {
		s.Require().ErrorIs(s.store.UpdateStatus(s.ctx, 999, models.StatusApproved), sentinel.ErrNotFound)
	})
}

func (s *MemoryStoreSuite) TestSearch() {
	seed := []*models.Application{
		s.newApplication(1, "Иванов Иван", "+79001234567", "50:28:0090247"),
		s.newApplication(2, "Петров Пётр", "+79005550011", "50:28:0090300"),
		s.newApplication(3, "Сидоров Семён", "+79160000000", "12-А"),
	}
	for _, app := range seed {
		_, err := s.store.Create(s.ctx, app)
		s.Require().NoError(err)
	}

	s.Run("substring match by plot, newest first", func() {
		got, err := s.store.SearchByPlot(s.ctx, "50:28")
		s.Require().NoError(err)
		s.Require().Len(got, 2)
		s.Equal(int64(2), got[0].ApplicantID)
		s.Equal(int64(1), got[1].ApplicantID)
	})

	s.Run("case-insensitive match by name", func() {
		got, err := s.store.SearchByName(s.ctx, "иванов")
		s.Require().NoError(err)
		s.Require().Len(got, 1)
		s.Equal(int64(1), got[0].ApplicantID)
	})

	s.Run("match by phone fragment", func() {
		got, err := s.store.SearchByPhone(s.ctx, "9160")
		s.Require().NoError(err)
		s.Require().Len(got, 1)
		s.Equal(int64(3), got[0].ApplicantID)
	})

	s.Run("no matches", func() {
		got, err := s.store.SearchByPlot(s.ctx, "99:99")
		s.Require().NoError(err)
		s.Empty(got)
	})
}

func (s *MemoryStoreSuite) TestListsAndCounts() {
	for _, applicant := range []int64{1, 2, 3, 4} {
		_, err := s.store.Create(s.ctx, s.newApplication(applicant, "Иванов Иван", "+79001234567", "50:28"))
		s.Require().NoError(err)
	}
	s.Require().NoError(s.store.UpdateStatus(s.ctx, 1, models.StatusApproved))
	s.Require().NoError(s.store.UpdateStatus(s.ctx, 2, models.StatusRejected))

	s.Run("list all newest first", func() {
		all, err := s.store.ListAll(s.ctx)
		s.Require().NoError(err)
		s.Require().Len(all, 4)
		s.Equal(int64(4), all[0].ApplicantID)
		s.Equal(int64(1), all[3].ApplicantID)
	})

	s.Run("list pending only", func() {
		pending, err := s.store.ListPending(s.ctx)
		s.Require().NoError(err)
		s.Require().Len(pending, 2)
		for _, app := range pending {
			s.Equal(models.StatusPending, app.Status)
		}
	})

	s.Run("counts by status", func() {
		stats, err := s.store.CountByStatus(s.ctx)
		s.Require().NoError(err)
		s.Equal(models.Statistics{Total: 4, Pending: 2, Approved: 1, Rejected: 1}, stats)
	})
}
