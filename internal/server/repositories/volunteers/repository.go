package volunteers

import (
	"context"

	"github.com/dmitrijs2005/volunteerhub/internal/server/models"
)

// Repository persists volunteer records. Lookups of absent rows return
// common.ErrorNotFound; email collisions return common.ErrorAlreadyExists.
type Repository interface {
	List(ctx context.Context) ([]*models.Volunteer, error)
	GetByID(ctx context.Context, id string) (*models.Volunteer, error)
	GetByEmail(ctx context.Context, email string) (*models.Volunteer, error)
	Create(ctx context.Context, v *models.Volunteer) (*models.Volunteer, error)
	Update(ctx context.Context, id string, patch models.VolunteerPatch) (*models.Volunteer, error)
	SetVerified(ctx context.Context, id string) error
	Delete(ctx context.Context, id string) error
	DeleteAll(ctx context.Context) (int64, error)
}
