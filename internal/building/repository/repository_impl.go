package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/campuskit/utilitrack/internal/building/domain"
	"github.com/campuskit/utilitrack/pkg/db/option"
	"github.com/campuskit/utilitrack/pkg/repository"
	"gorm.io/gorm"
)

type repo struct {
	store repository.Repository[domain.Building]
}

// New returns a building metadata repository backed by the generic store.
func New(db *gorm.DB) domain.Repository {
	return &repo{store: repository.ProvideStore[domain.Building](db)}
}

func (r *repo) FindByID(ctx context.Context, id snowflake.ID) (*domain.Building, error) {
	return r.store.FindOne(ctx, &domain.Building{ID: id})
}

func (r *repo) List(ctx context.Context) ([]domain.Building, error) {
	rows, err := r.store.Find(ctx, &domain.Building{}, option.WithOrder("code ASC"))
	if err != nil {
		return nil, err
	}

	buildings := make([]domain.Building, 0, len(rows))
	for _, row := range rows {
		buildings = append(buildings, *row)
	}
	return buildings, nil
}
