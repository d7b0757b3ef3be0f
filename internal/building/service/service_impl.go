package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/campuskit/utilitrack/internal/building/domain"
	"github.com/campuskit/utilitrack/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type ServiceParam struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Repo  domain.Repository
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	repo  domain.Repository
}

func NewService(p ServiceParam) domain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("building.service"),
		genID: p.GenID,
		repo:  p.Repo,
	}
}

// Create registers a building. Codes are unique campus-wide; thresholds left
// at zero fall back to the model defaults.
func (s *Service) Create(ctx context.Context, building domain.Building) (*domain.Building, error) {
	building.Name = strings.TrimSpace(building.Name)
	building.Code = strings.TrimSpace(building.Code)

	if building.Name == "" {
		return nil, domain.ErrInvalidName
	}
	if building.Code == "" {
		return nil, domain.ErrInvalidCode
	}
	if !domain.ValidZone(building.Zone) {
		return nil, domain.ErrInvalidZone
	}
	if building.WaterThreshold <= 0 {
		building.WaterThreshold = 10000
	}
	if building.ElectricityThreshold <= 0 {
		building.ElectricityThreshold = 5000
	}

	building.ID = s.genID.Generate()
	if err := s.db.WithContext(ctx).Create(&building).Error; err != nil {
		if db.IsDuplicateKeyErr(err) {
			return nil, domain.ErrDuplicateCode
		}
		return nil, err
	}

	s.log.Info("building registered",
		zap.String("building_id", building.ID.String()),
		zap.String("code", building.Code),
		zap.String("zone", string(building.Zone)),
	)
	return &building, nil
}

func (s *Service) Get(ctx context.Context, id snowflake.ID) (*domain.Building, error) {
	building, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if building == nil {
		return nil, domain.ErrNotFound
	}
	return building, nil
}

func (s *Service) List(ctx context.Context) ([]domain.Building, error) {
	return s.repo.List(ctx)
}
