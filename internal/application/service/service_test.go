package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"

	"village-gate/internal/application/models"
	"village-gate/internal/application/store"
	"village-gate/pkg/platform/sentinel"
)

type ServiceSuite struct {
	suite.Suite
	svc *Service
	ctx context.Context
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.svc = New(store.NewInMemory())
	s.ctx = context.Background()
}

func (s *ServiceSuite) submit(applicantID int64, name, phone, plot string) *models.Application {
	app, err := s.svc.Submit(s.ctx, Submission{
		ApplicantID: applicantID,
		Username:    "user",
		FullName:    name,
		Phone:       phone,
		PlotNumber:  plot,
		DocumentRef: "file-ref",
	})
	s.Require().NoError(err)
	return app
}

func (s *ServiceSuite) TestSubmit() {
	app := s.submit(1, "Иванов Иван", "+79001234567", "50:28:0090247")

	s.Equal(models.StatusPending, app.Status)
	s.NotZero(app.ID)

	found, err := s.svc.Get(s.ctx, 1)
	s.Require().NoError(err)
	s.Equal(app.ID, found.ID)
}

func (s *ServiceSuite) TestDecisions() {
	s.Run("approve", func() {
		s.submit(1, "Иванов Иван", "+79001234567", "50:28:0090247")
		app, err := s.svc.Approve(s.ctx, 1)
		s.Require().NoError(err)
		s.Equal(models.StatusApproved, app.Status)
	})

	s.Run("reject", func() {
		s.submit(2, "Петров Пётр", "+79007654321", "50:28:0000001")
		app, err := s.svc.Reject(s.ctx, 2)
		s.Require().NoError(err)
		s.Equal(models.StatusRejected, app.Status)
	})

	s.Run("second decision overwrites the first", func() {
		s.submit(3, "Сидоров Семён", "+79160000000", "12-А")
		_, err := s.svc.Reject(s.ctx, 3)
		s.Require().NoError(err)
		app, err := s.svc.Approve(s.ctx, 3)
		s.Require().NoError(err)
		s.Equal(models.StatusApproved, app.Status)
	})

	s.Run("unknown applicant", func() {
		_, err := s.svc.Approve(s.ctx, 999)
		s.Require().ErrorIs(err, sentinel.ErrNotFound)
	})
}

func (s *ServiceSuite) TestSearchAllUnion() {
	// "50" appears in applicants 1 and 2 by plot and in applicant 3 by
	// phone; applicant 4 matches nothing.
	s.submit(1, "Иванов Иван", "+79001234567", "50:28:0090247")
	s.submit(2, "Петров Пётр", "+79007654321", "50:28:0000001")
	s.submit(3, "Сидоров Семён", "+75028000000", "12-А")
	s.submit(4, "Кузнецов Кирилл", "+79990000000", "33-Б")

	got, err := s.svc.SearchAll(s.ctx, "50")
	s.Require().NoError(err)
	s.Require().Len(got, 3)

	// Plot matches come first (newest first), then the phone-only match.
	s.Equal(int64(2), got[0].ApplicantID)
	s.Equal(int64(1), got[1].ApplicantID)
	s.Equal(int64(3), got[2].ApplicantID)

	// De-duplicated by application id.
	seen := make(map[int64]int)
	for _, app := range got {
		seen[app.ID]++
	}
	for id, n := range seen {
		s.Equalf(1, n, "application %d duplicated", id)
	}
}

func (s *ServiceSuite) TestStatistics() {
	s.submit(1, "Иванов Иван", "+79001234567", "50:28")
	s.submit(2, "Петров Пётр", "+79007654321", "50:29")
	s.submit(3, "Сидоров Семён", "+79160000000", "12-А")
	_, err := s.svc.Approve(s.ctx, 1)
	s.Require().NoError(err)
	_, err = s.svc.Reject(s.ctx, 2)
	s.Require().NoError(err)

	stats, err := s.svc.Statistics(s.ctx)
	s.Require().NoError(err)
	s.Equal(models.Statistics{Total: 3, Pending: 1, Approved: 1, Rejected: 1}, stats)

	pending, err := s.svc.ListPending(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(pending, 1)
	s.Equal(int64(3), pending[0].ApplicantID)
}
