package models

import "time"

const (
	TableUsers        = "users"
	TableFileComments = "filecomments"
)

// User is a row of the generic identity index. Code is the numeric PMWEB
// user code.
type User struct {
	ID          string `gorm:"primaryKey;size:64"`
	Code        int64  `gorm:"index"`
	Email       string `gorm:"size:256;index"`
	Username    string `gorm:"size:128;index"`
	DisplayName string `gorm:"size:256"`
}

func (User) TableName() string { return TableUsers }

// FileComment is a comment left on a file.
type FileComment struct {
	ID            string `gorm:"primaryKey;size:64"`
	FileID        string `gorm:"size:64;not null;index"`
	Text          string `gorm:"type:text;not null"`
	AuthorID      string `gorm:"size:64"`
	AuthorName    string `gorm:"size:256"`
	CreatedByID   string `gorm:"size:64"`
	CreatedByName string `gorm:"size:256"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

func (FileComment) TableName() string { return TableFileComments }
