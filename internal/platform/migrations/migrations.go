// Pacote migrations centraliza as versões gormigrate aplicadas na inicialização.
package migrations

import (
	"fmt"

	gormigrate "github.com/go-gormigrate/gormigrate/v2"
	"gorm.io/gorm"

	"github.com/marcelojr/lucky-draw/internal/domain"
)

func Run(db *gorm.DB) error {
	if db == nil {
		return fmt.Errorf("migrations: db nulo")
	}

	m := gormigrate.New(db, gormigrate.DefaultOptions, []*gormigrate.Migration{
		{
			ID: "202501150001_init_sorteio",
			Migrate: func(tx *gorm.DB) error {
				return tx.AutoMigrate(&domain.DrawConfig{}, &domain.Entry{}, &domain.Winner{})
			},
			Rollback: func(tx *gorm.DB) error {
				return tx.Migrator().DropTable("draw_winners", "draw_entries", "draw_configs")
			},
		},
		{
			// Índice parcial: no máximo uma config não terminal por evento, mesmo com criações concorrentes.
			ID: "202501150002_config_ativa_unica",
			Migrate: func(tx *gorm.DB) error {
				return tx.Exec(`CREATE UNIQUE INDEX IF NOT EXISTS idx_draw_configs_evento_ativo
					ON draw_configs (event_id)
					WHERE status IN ('scheduled', 'drawing')`).Error
			},
			Rollback: func(tx *gorm.DB) error {
				return tx.Exec(`DROP INDEX IF EXISTS idx_draw_configs_evento_ativo`).Error
			},
		},
	})

	if err := m.Migrate(); err != nil {
		return fmt.Errorf("migrations: falha ao aplicar: %w", err)
	}

	return nil
}
