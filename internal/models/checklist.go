package models

const (
	TableProcessChecklists     = "projectprocesschecklist"
	TableTaskChecklists        = "projecttaskchecklist"
	TableActivityChecklists    = "projectactivitychecklist"
	TableSubActivityChecklists = "projectsubactivitychecklist"

	TableProcessFiles     = "projectprocessfiles"
	TableTaskFiles        = "projecttaskfiles"
	TableActivityFiles    = "projectactivityfiles"
	TableSubActivityFiles = "projectsubactivityfiles"
)

// ProcessChecklist is a checklist owned by a process.
type ProcessChecklist struct {
	ID        string `gorm:"primaryKey;size:64"`
	ProcessID string `gorm:"size:64;index"`
	Name      string `gorm:"size:256"`
}

func (ProcessChecklist) TableName() string { return TableProcessChecklists }

// TaskChecklist is a checklist owned by a task.
type TaskChecklist struct {
	ID     string `gorm:"primaryKey;size:64"`
	TaskID string `gorm:"size:64;index"`
	Name   string `gorm:"size:256"`
}

func (TaskChecklist) TableName() string { return TableTaskChecklists }

// ActivityChecklist is a checklist owned by an activity.
type ActivityChecklist struct {
	ID         string `gorm:"primaryKey;size:64"`
	ActivityID string `gorm:"size:64;index"`
	Name       string `gorm:"size:256"`
}

func (ActivityChecklist) TableName() string { return TableActivityChecklists }

// SubActivityChecklist is a checklist owned by a sub-activity.
type SubActivityChecklist struct {
	ID            string `gorm:"primaryKey;size:64"`
	SubActivityID string `gorm:"size:64;index"`
	Name          string `gorm:"size:256"`
}

func (SubActivityChecklist) TableName() string { return TableSubActivityChecklists }

// ChecklistFile is the shape shared by the four per-level file tables. Two
// storage shapes coexist: rows with an explicit FileID, and rows whose own ID
// doubles as the file id. FileName is primary; LegacyName is the older column.
type ChecklistFile struct {
	ID          string  `gorm:"primaryKey;size:64"`
	ChecklistID string  `gorm:"size:64;index"`
	FileID      *string `gorm:"size:64"`
	FileName    *string `gorm:"size:512"`
	LegacyName  *string `gorm:"column:name;size:512"`
}

// ProcessFile is a file attached to a process checklist.
type ProcessFile struct{ ChecklistFile }

func (ProcessFile) TableName() string { return TableProcessFiles }

// TaskFile is a file attached to a task checklist.
type TaskFile struct{ ChecklistFile }

func (TaskFile) TableName() string { return TableTaskFiles }

// ActivityFile is a file attached to an activity checklist.
type ActivityFile struct{ ChecklistFile }

func (ActivityFile) TableName() string { return TableActivityFiles }

// SubActivityFile is a file attached to a sub-activity checklist.
type SubActivityFile struct{ ChecklistFile }

func (SubActivityFile) TableName() string { return TableSubActivityFiles }
