package models

import (
	"reflect"
	"strings"
	"testing"
)

func docGormTag(t *testing.T, typ reflect.Type, fieldName string) string {
	t.Helper()
	f, ok := typ.FieldByName(fieldName)
	if !ok {
		t.Fatalf("%s.%s: field not found", typ.Name(), fieldName)
	}
	return f.Tag.Get("gorm")
}

func assertDocTag(t *testing.T, typ reflect.Type, fieldName, expected string) {
	t.Helper()
	tag := docGormTag(t, typ, fieldName)
	if !strings.Contains(tag, expected) {
		t.Errorf("%s.%s gorm tag = %q, want to contain %q", typ.Name(), fieldName, tag, expected)
	}
}

func TestTableNames(t *testing.T) {
	tests := []struct {
		model interface{ TableName() string }
		want  string
	}{
		{ProjectUser{}, "projectusers"},
		{Project{}, "sgprojects"},
		{PhaseAssetDetail{}, "projectphaseassetdetails"},
		{StageGate{}, "projectstagegates"},
		{Process{}, "projectprocess"},
		{Task{}, "projecttask"},
		{Activity{}, "projectactivity"},
		{SubActivity{}, "projectsubactivity"},
		{ProcessChecklist{}, "projectprocesschecklist"},
		{TaskChecklist{}, "projecttaskchecklist"},
		{ActivityChecklist{}, "projectactivitychecklist"},
		{SubActivityChecklist{}, "projectsubactivitychecklist"},
		{ProcessFile{}, "projectprocessfiles"},
		{TaskFile{}, "projecttaskfiles"},
		{ActivityFile{}, "projectactivityfiles"},
		{SubActivityFile{}, "projectsubactivityfiles"},
		{FileContent{}, "filecontent"},
		{FileVersion{}, "filecontentversions"},
		{RaciAssignment{}, "raciassigness"},
		{ProcessRaci{}, "projectprocessraci"},
		{TaskRaci{}, "projecttaskraci"},
		{ActivityRaci{}, "projectactivityraci"},
		{SubActivityRaci{}, "projectsubactivityraci"},
		{User{}, "users"},
		{FileComment{}, "filecomments"},
	}
	for _, tt := range tests {
		if got := tt.model.TableName(); got != tt.want {
			t.Errorf("%T.TableName() = %q, want %q", tt.model, got, tt.want)
		}
	}
}

func TestProjectUser_CompositeIndex(t *testing.T) {
	typ := reflect.TypeOf(ProjectUser{})
	assertDocTag(t, typ, "PMWBUserID", "index:idx_projectusers_user_project,priority:1")
	assertDocTag(t, typ, "PMWEBProjectID", "index:idx_projectusers_user_project,priority:2")
}

func TestStageGate_ActiveIndex(t *testing.T) {
	typ := reflect.TypeOf(StageGate{})
	assertDocTag(t, typ, "ProjectID", "idx_stagegates_project_active")
	assertDocTag(t, typ, "IsActive", "idx_stagegates_project_active")
	assertDocTag(t, typ, "IsActive", "default:true")
}

func TestChecklistFile_LegacyColumns(t *testing.T) {
	typ := reflect.TypeOf(ChecklistFile{})
	assertDocTag(t, typ, "ChecklistID", "index")
	assertDocTag(t, typ, "LegacyName", "column:name")

	f, _ := typ.FieldByName("FileID")
	if f.Type.String() != "*string" {
		t.Errorf("ChecklistFile.FileID type = %s, want *string", f.Type)
	}
}

func TestFileContent_PayloadColumns(t *testing.T) {
	typ := reflect.TypeOf(FileContent{})
	assertDocTag(t, typ, "Content", "column:filecontent")
	assertDocTag(t, typ, "LegacyContent", "type:text")
	assertDocTag(t, typ, "FileName", "index")
}

func TestFileComment_Required(t *testing.T) {
	typ := reflect.TypeOf(FileComment{})
	assertDocTag(t, typ, "FileID", "not null")
	assertDocTag(t, typ, "Text", "not null")
}
