// Pacote migrations centraliza as versões gormigrate aplicadas na inicialização.
package migrations

import (
	"fmt"

	gormigrate "github.com/go-gormigrate/gormigrate/v2"
	"gorm.io/gorm"

	"github.com/marcelojr/daily-doodle/internal/domain"
)

// All lista as migrations em ordem; exportado para os testes aplicarem o mesmo schema no SQLite.
func All() []*gormigrate.Migration {
	return []*gormigrate.Migration{
		{
			ID: "202405010001_init_schema",
			Migrate: func(tx *gorm.DB) error {
				return tx.AutoMigrate(&domain.User{}, &domain.Submission{}, &domain.VoteRecord{}, &domain.WinnerRecord{})
			},
			Rollback: func(tx *gorm.DB) error {
				return tx.Migrator().DropTable("winner_records", "vote_records", "submissions", "users")
			},
		},
		{
			ID: "202405010002_themes_and_flags",
			Migrate: func(tx *gorm.DB) error {
				return tx.AutoMigrate(&domain.Theme{}, &domain.ThemeOfDay{}, &domain.Flag{})
			},
			Rollback: func(tx *gorm.DB) error {
				return tx.Migrator().DropTable("flags", "themes_of_day", "themes")
			},
		},
	}
}

func Run(db *gorm.DB) error {
	if db == nil {
		return fmt.Errorf("migrations: db nulo")
	}

	// Usamos gormigrate para versionar as migrations sem depender de AutoMigrate direto em produção.
	m := gormigrate.New(db, gormigrate.DefaultOptions, All())

	if err := m.Migrate(); err != nil {
		return fmt.Errorf("migrations: falha ao aplicar: %w", err)
	}

	return nil
}
