package config

import (
	"github.com/go-gormigrate/gormigrate/v2"
	"gorm.io/gorm"

	"p9e.in/sitecore/models"
)

// assignedManpowerFK is the constraint gorm derives from
// Project.AssignedManpower when foreign keys are migrated.
const assignedManpowerFK = "fk_projects_assigned_manpower"

func Migrations(db *gorm.DB) error {
	m := gormigrate.New(db, gormigrate.DefaultOptions, []*gormigrate.Migration{
		{
			ID: "12092025_create_site_tables",
			Migrate: func(tx *gorm.DB) error {
				if err := tx.Exec(`CREATE EXTENSION IF NOT EXISTS "pgcrypto"`).Error; err != nil {
					return err
				}
				return tx.AutoMigrate(&models.Project{}, &models.Manpower{}, &models.Material{},
					&models.Progress{}, &models.Finance{})
			},
			Rollback: func(tx *gorm.DB) error {
				return tx.Migrator().DropTable("finances", "progress_reports", "materials", "manpower", "projects")
			},
		},
		{
			ID: "03102025_add_progress_project_created_index",
			Migrate: func(tx *gorm.DB) error {
				return tx.Exec("CREATE INDEX IF NOT EXISTS idx_progress_project_created ON progress_reports (project_id, created_at DESC)").Error
			},
			Rollback: func(tx *gorm.DB) error {
				return tx.Exec("DROP INDEX IF EXISTS idx_progress_project_created").Error
			},
		},
		{
			ID: "03102025_add_finance_project_created_index",
			Migrate: func(tx *gorm.DB) error {
				// lazy creation may leave more than one row per project, so no unique constraint
				return tx.Exec("CREATE INDEX IF NOT EXISTS idx_finances_project_created ON finances (project_id, created_at)").Error
			},
			Rollback: func(tx *gorm.DB) error {
				return tx.Exec("DROP INDEX IF EXISTS idx_finances_project_created").Error
			},
		},
		{
			ID: "16102026_drop_assigned_manpower_fk",
			Migrate: func(tx *gorm.DB) error {
				// databases migrated before foreign keys were disabled still carry it
				return tx.Exec("ALTER TABLE manpower DROP CONSTRAINT IF EXISTS " + assignedManpowerFK).Error
			},
			Rollback: func(tx *gorm.DB) error {
				return nil
			},
		},
		{
			ID: "16102026_add_staff_locations",
			Migrate: func(tx *gorm.DB) error {
				// adds projects.geofence and the staff_locations table
				return tx.AutoMigrate(&models.Project{}, &models.StaffLocation{})
			},
			Rollback: func(tx *gorm.DB) error {
				if err := tx.Migrator().DropTable("staff_locations"); err != nil {
					return err
				}
				return tx.Migrator().DropColumn(&models.Project{}, "Geofence")
			},
		},
	})

	return m.Migrate()
}
