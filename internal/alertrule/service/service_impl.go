package service

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/campuskit/utilitrack/internal/alertrule/domain"
	"github.com/campuskit/utilitrack/pkg/db/option"
	"github.com/campuskit/utilitrack/pkg/repository"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type ServiceParam struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
}

type Service struct {
	db    *gorm.DB
	store repository.Repository[domain.AlertRule]
	log   *zap.Logger
	genID *snowflake.Node
}

func NewService(p ServiceParam) domain.Service {
	return &Service{
		db:    p.DB,
		store: repository.ProvideStore[domain.AlertRule](p.DB),
		log:   p.Log.Named("alertrule.service"),
		genID: p.GenID,
	}
}

func (s *Service) Create(ctx context.Context, rule domain.AlertRule) (*domain.AlertRule, error) {
	applyDefaults(&rule)
	if err := rule.Validate(); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	rule.ID = s.genID.Generate()
	rule.CreatedAt = now
	rule.UpdatedAt = now

	if err := s.store.Create(ctx, &rule); err != nil {
		return nil, err
	}

	s.log.Info("alert rule created",
		zap.String("rule_id", rule.ID.String()),
		zap.String("name", rule.Name),
		zap.String("condition", string(rule.ConditionType)),
	)
	return &rule, nil
}

func (s *Service) Update(ctx context.Context, rule domain.AlertRule) (*domain.AlertRule, error) {
	applyDefaults(&rule)
	if err := rule.Validate(); err != nil {
		return nil, err
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		store := s.store.WithTrx(tx)

		existing, err := store.FindOne(ctx, &domain.AlertRule{ID: rule.ID})
		if err != nil {
			return err
		}
		if existing == nil {
			return domain.ErrNotFound
		}

		rule.CreatedAt = existing.CreatedAt
		rule.UpdatedAt = time.Now().UTC()

		// Column map rather than a struct so cleared fields, IsActive in
		// particular, still persist.
		return store.Update(ctx, rule.ID.String(), map[string]any{
			"name":                   rule.Name,
			"scope_type":             rule.ScopeType,
			"scope_value":            rule.ScopeValue,
			"utility_type":           rule.UtilityType,
			"condition_type":         rule.ConditionType,
			"threshold_value":        rule.ThresholdValue,
			"comparison_window_days": rule.ComparisonWindowDays,
			"consecutive_count":      rule.ConsecutiveCount,
			"severity":               rule.Severity,
			"is_active":              rule.IsActive,
			"updated_at":             rule.UpdatedAt,
		})
	})
	if err != nil {
		return nil, err
	}
	return &rule, nil
}

func (s *Service) Delete(ctx context.Context, id snowflake.ID) error {
	count, err := s.store.Count(ctx, &domain.AlertRule{ID: id})
	if err != nil {
		return err
	}
	if count == 0 {
		return domain.ErrNotFound
	}
	return s.store.Delete(ctx, id.String())
}

func (s *Service) List(ctx context.Context, limit int) ([]domain.AlertRule, error) {
	rows, err := s.store.Find(ctx, &domain.AlertRule{},
		option.WithOrder("created_at DESC"),
		option.WithLimit(limit),
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

func applyDefaults(rule *domain.AlertRule) {
	if rule.ScopeType == "" {
		rule.ScopeType = domain.ScopeGlobal
	}
	if rule.ComparisonWindowDays == 0 {
		rule.ComparisonWindowDays = 7
	}
	if rule.ConsecutiveCount == 0 {
		rule.ConsecutiveCount = 1
	}
	if rule.Severity == "" {
		rule.Severity = domain.SeverityMedium
	}
}
