package infra

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/Chucho2278/subvalle-control-caja/internal/model"
)

// NewDatabase establishes a GORM connection backed by pgx, runs AutoMigrate to
// create / update all tables, then applies the idempotent SQL patches that GORM
// cannot express (expression indexes over DATE(fecha_registro)).
func NewDatabase(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)

	if err := RunMigrations(db); err != nil {
		return nil, err
	}

	return db, nil
}

// RunMigrations applies the schema; also used by integration tests against a
// throwaway database.
func RunMigrations(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&model.Sucursal{},
		&model.Convenio{},
		&model.Usuario{},
		&model.RegistroCaja{},
		&model.RegistroConvenio{},
		&model.Auditoria{},
	); err != nil {
		return fmt.Errorf("AutoMigrate: %w", err)
	}
	return applySchemaPatches(db)
}

// applySchemaPatches runs idempotent DDL that AutoMigrate cannot express.
// Every read path filters by the calendar day of fecha_registro, so the day
// gets an expression index; the audit listing always orders by created_at.
func applySchemaPatches(db *gorm.DB) error {
	patches := []struct{ descr, sql string }{
		{"expression index on declaration day",
			`CREATE INDEX IF NOT EXISTS idx_registro_caja_dia
			    ON registro_caja ((DATE(fecha_registro)))`},
		{"index on cashier id for aggregation",
			`CREATE INDEX IF NOT EXISTS idx_registro_caja_cajero
			    ON registro_caja (cajero_cedula)`},
		{"index on audit recency",
			`CREATE INDEX IF NOT EXISTS idx_auditorias_created_at
			    ON auditorias (created_at DESC)`},
		{"index on convenio items by declaration",
			`CREATE INDEX IF NOT EXISTS idx_registro_convenios_registro
			    ON registro_convenios (registro_caja_id)`},
	}

	for _, p := range patches {
		if err := db.Exec(p.sql).Error; err != nil {
			return fmt.Errorf("patch %q: %w", p.descr, err)
		}
	}
	return nil
}
