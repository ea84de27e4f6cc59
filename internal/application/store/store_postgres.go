package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"village-gate/internal/application/models"
	"village-gate/pkg/platform/sentinel"
)

const applicationColumns = `id, applicant_id, username, full_name, phone, plot_number, document_ref, status, created_at`

// Postgres persists applications in PostgreSQL.
type Postgres struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed application store.
func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

func (s *Postgres) Create(ctx context.Context, app *models.Application) (*models.Application, error) {
	// Upsert keyed on applicant_id: a re-registration replaces the previous
	// submission and resets it to pending, but keeps id and created_at so
	// the historical record stays addressable.
	query := `
		INSERT INTO applications (applicant_id, username, full_name, phone, plot_number, document_ref, status)
		VALUES ($1, NULLIF($2, ''), $3, $4, $5, $6, 'pending')
		ON CONFLICT (applicant_id) DO UPDATE SET
			username     = EXCLUDED.username,
			full_name    = EXCLUDED.full_name,
			phone        = EXCLUDED.phone,
			plot_number  = EXCLUDED.plot_number,
			document_ref = EXCLUDED.document_ref,
			status       = 'pending'
		RETURNING ` + applicationColumns
	created, err := scanApplication(s.db.QueryRowContext(ctx, query,
		app.ApplicantID, app.Username, app.FullName, app.Phone, app.PlotNumber, app.DocumentRef,
	))
	if err != nil {
		return nil, fmt.Errorf("create application: %w", err)
	}
	return created, nil
}

func (s *Postgres) FindByApplicantID(ctx context.Context, applicantID int64) (*models.Application, error) {
	query := `SELECT ` + applicationColumns + ` FROM applications WHERE applicant_id = $1`
	app, err := scanApplication(s.db.QueryRowContext(ctx, query, applicantID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find application: %w", err)
	}
	return app, nil
}

func (s *Postgres) UpdateStatus(ctx context.Context, applicantID int64, status models.Status) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE applications SET status = $1 WHERE applicant_id = $2`,
		string(status), applicantID,
	)
	if err != nil {
		return fmt.Errorf("update status: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update status rows affected: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *Postgres) SearchByPlot(ctx context.Context, query string) ([]*models.Application, error) {
	return s.search(ctx, "plot_number", query)
}

func (s *Postgres) SearchByPhone(ctx context.Context, query string) ([]*models.Application, error) {
	return s.search(ctx, "phone", query)
}

func (s *Postgres) SearchByName(ctx context.Context, query string) ([]*models.Application, error) {
	return s.search(ctx, "full_name", query)
}

func (s *Postgres) search(ctx context.Context, column, query string) ([]*models.Application, error) {
	// column is one of three fixed identifiers above, never user input.
	stmt := `SELECT ` + applicationColumns + `
		FROM applications
		WHERE ` + column + ` ILIKE '%' || $1 || '%'
		ORDER BY created_at DESC, id DESC`
	rows, err := s.db.QueryContext(ctx, stmt, query)
	if err != nil {
		return nil, fmt.Errorf("search by %s: %w", column, err)
	}
	defer rows.Close()
	return collectApplications(rows)
}

func (s *Postgres) ListAll(ctx context.Context) ([]*models.Application, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+applicationColumns+` FROM applications ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("list applications: %w", err)
	}
	defer rows.Close()
	return collectApplications(rows)
}

func (s *Postgres) ListPending(ctx context.Context) ([]*models.Application, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+applicationColumns+` FROM applications WHERE status = 'pending' ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("list pending applications: %w", err)
	}
	defer rows.Close()
	return collectApplications(rows)
}

func (s *Postgres) CountByStatus(ctx context.Context) (models.Statistics, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT status, COUNT(*) FROM applications GROUP BY status`)
	if err != nil {
		return models.Statistics{}, fmt.Errorf("count by status: %w", err)
	}
	defer rows.Close()

	var stats models.Statistics
	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return models.Statistics{}, fmt.Errorf("scan status count: %w", err)
		}
		stats.Total += count
		switch models.Status(status) {
		case models.StatusPending:
			stats.Pending = count
		case models.StatusApproved:
			stats.Approved = count
		case models.StatusRejected:
			stats.Rejected = count
		}
	}
	if err := rows.Err(); err != nil {
		return models.Statistics{}, fmt.Errorf("iterate status counts: %w", err)
	}
	return stats, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanApplication(row rowScanner) (*models.Application, error) {
	var app models.Application
	var username sql.NullString
	var status string
	err := row.Scan(
		&app.ID, &app.ApplicantID, &username, &app.FullName,
		&app.Phone, &app.PlotNumber, &app.DocumentRef, &status, &app.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	app.Username = username.String
	app.Status = models.Status(status)
	return &app, nil
}

func collectApplications(rows *sql.Rows) ([]*models.Application, error) {
	var apps []*models.Application
	for rows.Next() {
		app, err := scanApplication(rows)
		if err != nil {
			return nil, fmt.Errorf("scan application: %w", err)
		}
		apps = append(apps, app)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate applications: %w", err)
	}
	return apps, nil
}
