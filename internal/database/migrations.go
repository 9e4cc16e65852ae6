package database

import (
	"fmt"
	"log/slog"
	"strings"

	"gorm.io/gorm"

	"github.com/yukikurage/task-tracker-api/internal/models"
)

// Models lists every table owned by the service, in dependency order.
var Models = []any{
	&models.Company{},
	&models.User{},
	&models.Task{},
}

type compositeIndex struct {
	name    string
	columns []string
}

// Indexes backing the tenant-scoped task listings.
var taskIndexes = []compositeIndex{
	{"idx_tasks_company_creator_live", []string{"company_id", "created_by_id", "is_deleted"}},
	{"idx_tasks_company_assignee_live", []string{"company_id", "assigned_to_id", "is_deleted"}},
}

// Migrate creates or updates the schema and the composite indexes.
func Migrate(db *gorm.DB, log *slog.Logger) error {
	log.Info("running database migrations")
	if err := db.AutoMigrate(Models...); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	if err := addIndexes(db, log); err != nil {
		return err
	}

	log.Info("database migrations completed")
	return nil
}

func addIndexes(db *gorm.DB, log *slog.Logger) error {
	migrator := db.Migrator()
	for _, idx := range taskIndexes {
		if migrator.HasIndex(&models.Task{}, idx.name) {
			log.Debug("index already exists, skipping", "index", idx.name)
			continue
		}

		stmt := fmt.Sprintf("CREATE INDEX %s ON tasks (%s)", idx.name, strings.Join(idx.columns, ", "))
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("failed to create index %s: %w", idx.name, err)
		}
		log.Info("created index", "index", idx.name, "columns", idx.columns)
	}
	return nil
}
