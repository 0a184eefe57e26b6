package db

import (
	"fmt"

	"github.com/zulandar/stagedocs/internal/models"
	"gorm.io/gorm"
)

// AllModels returns every table stagedocs reads or writes, for migration of
// local and test databases.
func AllModels() []interface{} {
	return []interface{}{
		&models.ProjectUser{},
		&models.Project{},
		&models.PhaseAssetDetail{},
		&models.StageGate{},
		&models.Process{},
		&models.Task{},
		&models.Activity{},
		&models.SubActivity{},
		&models.ProcessChecklist{},
		&models.TaskChecklist{},
		&models.ActivityChecklist{},
		&models.SubActivityChecklist{},
		&models.ProcessFile{},
		&models.TaskFile{},
		&models.ActivityFile{},
		&models.SubActivityFile{},
		&models.FileContent{},
		&models.FileVersion{},
		&models.RaciAssignment{},
		&models.ProcessRaci{},
		&models.TaskRaci{},
		&models.ActivityRaci{},
		&models.SubActivityRaci{},
		&models.User{},
		&models.FileComment{},
	}
}

// AutoMigrate creates or updates all tables.
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(AllModels()...); err != nil {
		return fmt.Errorf("db: auto-migrate: %w", err)
	}
	return nil
}
