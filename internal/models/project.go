// Package models defines the GORM models for the PMWEB project document tables.
package models

// Table (and collection) names shared by every store implementation.
const (
	TableProjectUsers      = "projectusers"
	TableProjects          = "sgprojects"
	TablePhaseAssetDetails = "projectphaseassetdetails"
	TableStageGates        = "projectstagegates"
	TableProcesses         = "projectprocess"
	TableTasks             = "projecttask"
	TableActivities        = "projectactivity"
	TableSubActivities     = "projectsubactivity"
)

// ProjectUser scopes a PMWEB user to a PMWEB project.
type ProjectUser struct {
	ID             uint  `gorm:"primaryKey;autoIncrement"`
	PMWBUserID     int64 `gorm:"column:pmwb_user_id;not null;index:idx_projectusers_user_project,priority:1"`
	PMWEBProjectID int64 `gorm:"column:pmweb_project_id;not null;index:idx_projectusers_user_project,priority:2"`
}

func (ProjectUser) TableName() string { return TableProjectUsers }

// Project is a stage-gated project. Community and PhaseOrProject are the
// project-level fallbacks for phase metadata.
type Project struct {
	ID             string  `gorm:"primaryKey;size:64"`
	PMWEBProjectID int64   `gorm:"column:pmweb_project_id;uniqueIndex"`
	Name           string  `gorm:"column:pmweb_project_name;size:256"`
	Community      *string `gorm:"column:project_community;size:256"`
	PhaseOrProject *string `gorm:"column:project_phase_or_project;size:256"`
}

func (Project) TableName() string { return TableProjects }

// PhaseAssetDetail carries the explicit community/phase labels for a project.
type PhaseAssetDetail struct {
	ID             uint    `gorm:"primaryKey;autoIncrement"`
	PMWEBProjectID int64   `gorm:"column:pmweb_project_id;index"`
	Community      *string `gorm:"size:256"`
	Project        *string `gorm:"size:256"`
}

func (PhaseAssetDetail) TableName() string { return TablePhaseAssetDetails }

// StageGate belongs to one project; only active gates are surfaced.
type StageGate struct {
	ID        string `gorm:"primaryKey;size:64"`
	ProjectID string `gorm:"size:64;index:idx_stagegates_project_active,priority:1"`
	Name      string `gorm:"column:project_stagegate_name;size:256"`
	IsActive  bool   `gorm:"column:project_stagegate_is_active;default:true;index:idx_stagegates_project_active,priority:2"`
}

func (StageGate) TableName() string { return TableStageGates }

// Process is the first owner level beneath a stage-gate.
type Process struct {
	ID          string `gorm:"primaryKey;size:64"`
	StageGateID string `gorm:"column:project_stagegate_id;size:64;index"`
	Name        string `gorm:"column:project_process_name;size:256"`
}

func (Process) TableName() string { return TableProcesses }

// Task belongs to a process.
type Task struct {
	ID        string `gorm:"primaryKey;size:64"`
	ProcessID string `gorm:"column:project_process_id;size:64;index"`
	Name      string `gorm:"column:project_task_name;size:256"`
}

func (Task) TableName() string { return TableTasks }

// Activity belongs to a task.
type Activity struct {
	ID     string `gorm:"primaryKey;size:64"`
	TaskID string `gorm:"column:project_task_id;size:64;index"`
	Name   string `gorm:"column:project_activity_name;size:256"`
}

func (Activity) TableName() string { return TableActivities }

// SubActivity belongs to an activity.
type SubActivity struct {
	ID         string `gorm:"primaryKey;size:64"`
	ActivityID string `gorm:"column:project_activity_id;size:64;index"`
	Name       string `gorm:"column:project_sub_activity_name;size:256"`
}

func (SubActivity) TableName() string { return TableSubActivities }
