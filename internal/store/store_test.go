package store

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"geocache/internal/models"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())), &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(models.All()...))
	return New(db)
}

func strPtr(s string) *string { return &s }

func uintPtr(u uint) *uint { return &u }

func createUser(t *testing.T, s *Store, name string) *models.User {
	t.Helper()
	u, err := s.CreateUser(context.Background(), NewUser{
		Email:        name + "@example.com",
		Username:     name,
		PasswordHash: strPtr("hash"),
	})
	require.NoError(t, err)
	return u
}

func createRoute(t *testing.T, s *Store, ownerID uint, name string, waypoints ...WaypointInput) *models.Route {
	t.Helper()
	r, err := s.CreateRoute(context.Background(), ownerID, RouteInput{Name: name, Waypoints: waypoints})
	require.NoError(t, err)
	return r
}

func storedWaypoints(ctx context.Context, s *Store, routeID uint) ([]models.Waypoint, error) {
	var waypoints []models.Waypoint
	err := s.DB().WithContext(ctx).Where("route_id = ?", routeID).Scopes(orderedWaypoints).Find(&waypoints).Error
	return waypoints, err
}
