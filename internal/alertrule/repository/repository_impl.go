package repository

import (
	"context"

	"github.com/campuskit/utilitrack/internal/alertrule/domain"
	readingdomain "github.com/campuskit/utilitrack/internal/reading/domain"
	"github.com/campuskit/utilitrack/pkg/db/option"
	"github.com/campuskit/utilitrack/pkg/repository"
	"gorm.io/gorm"
)

type source struct {
	store repository.Repository[domain.AlertRule]
}

// New returns an active-rule source backed by the generic store.
func New(db *gorm.DB) domain.Source {
	return &source{store: repository.ProvideStore[domain.AlertRule](db)}
}

func (s *source) ListActive(ctx context.Context, utility readingdomain.UtilityType) ([]domain.AlertRule, error) {
	rows, err := s.store.Find(ctx, &domain.AlertRule{},
		option.WithWhere("is_active = ? AND utility_type = ?", true, utility),
		option.WithOrder("created_at ASC"),
	)
	if err != nil {
		return nil, err
	}

	rules := make([]domain.AlertRule, 0, len(rows))
	for _, row := range rows {
		rules = append(rules, *row)
	}
	return rules, nil
}
