package repository

import (
	"context"

	"github.com/mr1hm/go-flight-planner/internal/models"
)

// ZoneRepository persists operator-defined no-fly zones. The engine
// itself holds no persistent state; zones are loaded into it by the
// host at startup and after every change.
type ZoneRepository interface {
	Add(ctx context.Context, z *models.NoFlyZone) error
	GetByID(ctx context.Context, id string) (*models.NoFlyZone, error)
	List(ctx context.Context) ([]models.NoFlyZone, error)
	Delete(ctx context.Context, id string) error
}
