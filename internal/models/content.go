package models

import "time"

const (
	TableFileContent  = "filecontent"
	TableFileVersions = "filecontentversions"
)

// FileContent holds a file's inline payload and metadata. Content arrives in
// either the binary column or the older text column (already base64).
type FileContent struct {
	ID            string `gorm:"primaryKey;size:64"`
	FileName      string `gorm:"size:512;index"`
	FileType      string `gorm:"size:32"`
	FileSize      int64
	Content       []byte  `gorm:"column:filecontent"`
	LegacyContent *string `gorm:"column:file_content_text;type:text"`
	StoragePath   string  `gorm:"size:1024"`
	CreatedDate   *time.Time
}

func (FileContent) TableName() string { return TableFileContent }

// FileVersion is one historical revision of a file.
type FileVersion struct {
	ID          string `gorm:"primaryKey;size:64"`
	FileID      string `gorm:"size:64;index"`
	Version     int
	FileName    string `gorm:"size:512"`
	FileSize    int64
	CreatedBy   string `gorm:"size:128"`
	CreatedDate *time.Time
}

func (FileVersion) TableName() string { return TableFileVersions }
