//go:build integration

package store_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"

	"village-gate/internal/application/models"
	"village-gate/internal/application/store"
	"village-gate/pkg/platform/sentinel"
	"village-gate/pkg/testutil/containers"
)

type PostgresStoreSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	store    *store.Postgres
}

func TestPostgresStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresStoreSuite))
}

func (s *PostgresStoreSuite) SetupSuite() {
	s.postgres = containers.GetManager().GetPostgres(s.T())
	s.store = store.NewPostgres(s.postgres.DB)
}

func (s *PostgresStoreSuite) SetupTest() {
	s.Require().NoError(s.postgres.TruncateTables(context.Background(), "applications"))
}

func newApplication(applicantID int64, name, phone, plot string) *models.Application {
	return &models.Application{
		ApplicantID: applicantID,
		Username:    "user",
		FullName:    name,
		Phone:       phone,
		PlotNumber:  plot,
		DocumentRef: "file-ref",
	}
}

func (s *PostgresStoreSuite) TestCreateAndFind() {
	ctx := context.Background()

	created, err := s.store.Create(ctx, newApplication(1, "Иванов Иван", "+79001234567", "50:28:0090247"))
	s.Require().NoError(err)
	s.NotZero(created.ID)
	s.Equal(models.StatusPending, created.Status)
	s.False(created.CreatedAt.IsZero())

	found, err := s.store.FindByApplicantID(ctx, 1)
	s.Require().NoError(err)
	s.Equal(created.ID, found.ID)
	s.Equal("Иванов Иван", found.FullName)

	_, err = s.store.FindByApplicantID(ctx, 999)
	s.Require().ErrorIs(err, sentinel.ErrNotFound)
}

func (s *PostgresStoreSuite) TestNullUsername() {
	ctx := context.Background()

	app := newApplication(1, "Иванов Иван", "+79001234567", "50:28")
	app.Username = ""
	created, err := s.store.Create(ctx, app)
	s.Require().NoError(err)
	s.Empty(created.Username)
}

func (s *PostgresStoreSuite) TestUpsertOnReRegistration() {
	ctx := context.Background()

	first, err := s.store.Create(ctx, newApplication(1, "Иванов Иван", "+79001234567", "50:28:0090247"))
	s.Require().NoError(err)
	s.Require().NoError(s.store.UpdateStatus(ctx, 1, models.StatusRejected))

	second, err := s.store.Create(ctx, newApplication(1, "Петров Пётр", "+79007654321", "50:28:0000001"))
	s.Require().NoError(err)

	s.Equal(first.ID, second.ID)
	s.Equal(models.StatusPending, second.Status)
	s.Equal("Петров Пётр", second.FullName)
	s.WithinDuration(first.CreatedAt, second.CreatedAt, 0)

	all, err := s.store.ListAll(ctx)
	s.Require().NoError(err)
	s.Len(all, 1)
}

func (s *PostgresStoreSuite) TestUpdateStatus() {
	ctx := context.Background()

	_, err := s.store.Create(ctx, newApplication(1, "Иванов Иван", "+79001234567", "50:28"))
	s.Require().NoError(err)

	s.Require().NoError(s.store.UpdateStatus(ctx, 1, models.StatusApproved))
	found, err := s.store.FindByApplicantID(ctx, 1)
	s.Require().NoError(err)
	s.Equal(models.StatusApproved, found.Status)

	// Last write wins: no guard against a second decision.
	s.Require().NoError(s.store.UpdateStatus(ctx, 1, models.StatusRejected))
	found, err = s.store.FindByApplicantID(ctx, 1)
	s.Require().NoError(err)
	s.Equal(models.StatusRejected, found.Status)

	s.Require().ErrorIs(s.store.UpdateStatus(ctx, 999, models.StatusApproved), sentinel.ErrNotFound)
}

func (s *PostgresStoreSuite) TestSearchIsCaseInsensitiveSubstring() {
	ctx := context.Background()

	_, err := s.store.Create(ctx, newApplication(1, "Иванов Иван", "+79001234567", "50:28:0090247"))
	s.Require().NoError(err)
	_, err = s.store.Create(ctx, newApplication(2, "Petrov Petr", "+79005550011", "ABC-12"))
	s.Require().NoError(err)

	byPlot, err := s.store.SearchByPlot(ctx, "abc")
	s.Require().NoError(err)
	s.Require().Len(byPlot, 1)
	s.Equal(int64(2), byPlot[0].ApplicantID)

	byPhone, err := s.store.SearchByPhone(ctx, "900123")
	s.Require().NoError(err)
	s.Require().Len(byPhone, 1)
	s.Equal(int64(1), byPhone[0].ApplicantID)

	byName, err := s.store.SearchByName(ctx, "petrov")
	s.Require().NoError(err)
	s.Require().Len(byName, 1)
	s.Equal(int64(2), byName[0].ApplicantID)
}

func (s *PostgresStoreSuite) TestCountByStatus() {
	ctx := context.Background()

	for applicant := int64(1); applicant <= 3; applicant++ {
		_, err := s.store.Create(ctx, newApplication(applicant, "Иванов Иван", "+79001234567", "50:28"))
		s.Require().NoError(err)
	}
	s.Require().NoError(s.store.UpdateStatus(ctx, 1, models.StatusApproved))

	stats, err := s.store.CountByStatus(ctx)
	s.Require().NoError(err)
	s.Equal(models.Statistics{Total: 3, Pending: 2, Approved: 1}, stats)

	pending, err := s.store.ListPending(ctx)
	s.Require().NoError(err)
	s.Len(pending, 2)
}
