package service

import (
	"context"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/campuskit/utilitrack/internal/building/domain"
	"github.com/campuskit/utilitrack/internal/building/repository"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func setupBuildings(t *testing.T) domain.Service {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&domain.Building{}))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	return NewService(ServiceParam{
		DB:    db,
		Log:   zap.NewNop(),
		GenID: node,
		Repo:  repository.New(db),
	})
}

func TestCreate_DefaultsThresholds(t *testing.T) {
	svc := setupBuildings(t)

	building, err := svc.Create(context.Background(), domain.Building{
		Name: "Library",
		Code: "LIB",
		Zone: domain.ZoneAcademic,
	})

	require.NoError(t, err)
	assert.NotZero(t, building.ID)
	assert.Equal(t, 10000.0, building.WaterThreshold)
	assert.Equal(t, 5000.0, building.ElectricityThreshold)
}

func TestCreate_Validation(t *testing.T) {
	svc := setupBuildings(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, domain.Building{Code: "LIB", Zone: domain.ZoneAcademic})
	assert.ErrorIs(t, err, domain.ErrInvalidName)

	_, err = svc.Create(ctx, domain.Building{Name: "Library", Zone: domain.ZoneAcademic})
	assert.ErrorIs(t, err, domain.ErrInvalidCode)

	_, err = svc.Create(ctx, domain.Building{Name: "Library", Code: "LIB", Zone: "downtown"})
	assert.ErrorIs(t, err, domain.ErrInvalidZone)
}

func TestCreate_DuplicateCode(t *testing.T) {
	svc := setupBuildings(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, domain.Building{Name: "Library", Code: "LIB", Zone: domain.ZoneAcademic})
	require.NoError(t, err)

	_, err = svc.Create(ctx, domain.Building{Name: "Library Annex", Code: "LIB", Zone: domain.ZoneAcademic})
	assert.ErrorIs(t, err, domain.ErrDuplicateCode)
}

func TestGetAndList(t *testing.T) {
	svc := setupBuildings(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, domain.Building{Name: "Dorm A", Code: "DORM-A", Zone: domain.ZoneResidential})
	require.NoError(t, err)

	got, err := svc.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "DORM-A", got.Code)

	_, err = svc.Get(ctx, 404)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	all, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}
