package postgres

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/marcelojr/lucky-draw/internal/domain"
	"github.com/marcelojr/lucky-draw/internal/platform/ids"
	"github.com/marcelojr/lucky-draw/internal/platform/migrations"
)

func setupDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), GormConfig())
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// Uma única conexão mantém o banco :memory: compartilhado entre goroutines.
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, migrations.Run(db))

	t.Cleanup(func() {
		sqlDB.Close()
	})

	return db
}

var baseTime = time.Date(2024, 6, 1, 20, 0, 0, 0, time.UTC)

func novaConfig(gen *ids.Generator, eventID domain.EventID) domain.DrawConfig {
	return domain.DrawConfig{
		ID:      domain.ConfigID(gen.New()),
		EventID: eventID,
		PrizeTiers: []domain.PrizeTier{
			{Tier: domain.TierFirst, Name: "TV", Count: 1},
			{Tier: domain.TierSecond, Name: "Caneca", Count: 2},
		},
		MaxEntriesPerUser:        2,
		PreventDuplicateWinners:  true,
		AnimationStyle:           domain.AnimationSlotMachine,
		AnimationDurationSeconds: 5,
		Status:                   domain.StatusScheduled,
		CreatedAt:                baseTime,
		UpdatedAt:                baseTime,
	}
}

func strPtr(s string) *string { return &s }
