package models

const (
	TableRaciAssignees   = "raciassigness"
	TableProcessRaci     = "projectprocessraci"
	TableTaskRaci        = "projecttaskraci"
	TableActivityRaci    = "projectactivityraci"
	TableSubActivityRaci = "projectsubactivityraci"
)

// RaciAssignment links a PMWEB user to a RACI row. RaciGroup names the owner
// level ("Process", "Task", "Activity", "SubActivity", free-form casing).
type RaciAssignment struct {
	ID         uint   `gorm:"primaryKey;autoIncrement"`
	AssigneeID int64  `gorm:"index"`
	RaciID     string `gorm:"size:64"`
	RaciGroup  string `gorm:"size:64"`
}

func (RaciAssignment) TableName() string { return TableRaciAssignees }

// ProcessRaci maps a RACI row to a process.
type ProcessRaci struct {
	ID        string `gorm:"primaryKey;size:64"`
	ProcessID string `gorm:"size:64"`
}

func (ProcessRaci) TableName() string { return TableProcessRaci }

// TaskRaci maps a RACI row to a task.
type TaskRaci struct {
	ID     string `gorm:"primaryKey;size:64"`
	TaskID string `gorm:"size:64"`
}

func (TaskRaci) TableName() string { return TableTaskRaci }

// ActivityRaci maps a RACI row to an activity.
type ActivityRaci struct {
	ID         string `gorm:"primaryKey;size:64"`
	ActivityID string `gorm:"size:64"`
}

func (ActivityRaci) TableName() string { return TableActivityRaci }

// SubActivityRaci maps a RACI row to a sub-activity.
type SubActivityRaci struct {
	ID            string `gorm:"primaryKey;size:64"`
	SubActivityID string `gorm:"size:64"`
}

func (SubActivityRaci) TableName() string { return TableSubActivityRaci }
