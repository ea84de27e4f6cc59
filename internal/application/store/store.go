// Package store persists applications. Stores are pure I/O: sanitization
// happens before data arrives here and review policy lives in the service.
package store

import (
	"context"

	"village-gate/internal/application/models"
)

// Store is the application persistence contract. Implementations return
// sentinel.ErrNotFound for absent applicants and keep search results ordered
// newest first.
type Store interface {
	// Create inserts an application with status pending. A row already
	// holding the applicant id is replaced field-by-field and reset to
	// pending; its id and creation time survive.
	Create(ctx context.Context, app *models.Application) (*models.Application, error)

	FindByApplicantID(ctx context.Context, applicantID int64) (*models.Application, error)

	// UpdateStatus sets the review state for an applicant's row.
	UpdateStatus(ctx context.Context, applicantID int64, status models.Status) error

	// SearchByPlot, SearchByPhone and SearchByName are case-insensitive
	// substring matches against the corresponding field, newest first.
	SearchByPlot(ctx context.Context, query string) ([]*models.Application, error)
	SearchByPhone(ctx context.Context, query string) ([]*models.Application, error)
	SearchByName(ctx context.Context, query string) ([]*models.Application, error)

	ListAll(ctx context.Context) ([]*models.Application, error)
	ListPending(ctx context.Context) ([]*models.Application, error)
	CountByStatus(ctx context.Context) (models.Statistics, error)
}
