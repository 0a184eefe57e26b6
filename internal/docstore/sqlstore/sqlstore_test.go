package sqlstore

import (
	"context"
	"errors"
	"testing"
	"time"

	gomysql "github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zulandar/stagedocs/internal/config"
	"github.com/zulandar/stagedocs/internal/db"
	"github.com/zulandar/stagedocs/internal/docstore"
	"github.com/zulandar/stagedocs/internal/ident"
	"github.com/zulandar/stagedocs/internal/models"
	"gorm.io/gorm"
)

func openTestStore(t *testing.T) (*Store, *gorm.DB) {
	t.Helper()
	gdb, err := db.Connect(config.DatabaseConfig{Driver: config.DriverSQLite, Path: ":memory:"})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(gdb))
	t.Cleanup(func() { db.Close(gdb) })
	return New(gdb, docstore.Budget{MaxTime: 5 * time.Second}), gdb
}

func strPtr(s string) *string { return &s }

// seedHierarchy builds one user (101) on project 7 with:
//
//	sg1 (active) -> pr1 -> tk1 -> ac1 -> sa1
//	             -> pr2 (no tasks)
//	sg2 (inactive) -> pr3
//
// and project 8 for the same user with no stage-gates.
func seedHierarchy(t *testing.T, gdb *gorm.DB) {
	t.Helper()
	rows := []any{
		&models.ProjectUser{PMWBUserID: 101, PMWEBProjectID: 7},
		&models.ProjectUser{PMWBUserID: 101, PMWEBProjectID: 8},
		&models.ProjectUser{PMWBUserID: 202, PMWEBProjectID: 8},
		&models.Project{ID: "p7", PMWEBProjectID: 7, Name: "Harbor Tower", Community: strPtr("Old Town")},
		&models.Project{ID: "p8", PMWEBProjectID: 8, Name: "Depot", PhaseOrProject: strPtr("Phase 2")},
		&models.PhaseAssetDetail{PMWEBProjectID: 7, Community: strPtr("Waterfront"), Project: strPtr("Phase 1")},
		&models.StageGate{ID: "sg1", ProjectID: "p7", Name: "Gate 1", IsActive: true},
		&models.Process{ID: "pr1", StageGateID: "sg1", Name: "Design"},
		&models.Process{ID: "pr2", StageGateID: "sg1", Name: "Build"},
		&models.Task{ID: "tk1", ProcessID: "pr1", Name: "Drawings"},
		&models.Activity{ID: "ac1", TaskID: "tk1", Name: "Review"},
		&models.SubActivity{ID: "sa1", ActivityID: "ac1", Name: "Sign-off"},
		&models.Process{ID: "pr3", StageGateID: "sg2", Name: "Hidden"},
	}
	for _, r := range rows {
		require.NoError(t, gdb.Create(r).Error)
	}
	// default:true would override a zero-value false on insert.
	require.NoError(t, gdb.Create(&models.StageGate{ID: "sg2", ProjectID: "p7", Name: "Gate 0"}).Error)
	require.NoError(t, gdb.Model(&models.StageGate{}).Where("id = ?", "sg2").Update("project_stagegate_is_active", false).Error)
}

func TestHierarchyRows_OuterJoins(t *testing.T) {
	s, gdb := openTestStore(t)
	seedHierarchy(t, gdb)

	rows, err := s.HierarchyRows(context.Background(), docstore.HierarchyQuery{User: 101})
	require.NoError(t, err)
	require.Len(t, rows, 3)

	// p7 / sg1 / pr1 / full chain
	full := rows[0]
	assert.Equal(t, ident.UserID(101), full.UserID)
	assert.Equal(t, int64(7), full.PmwebProjectID)
	assert.Equal(t, "Waterfront", full.Community)
	assert.Equal(t, "Phase 1", full.PhaseName)
	assert.Equal(t, ident.Ref("pr1"), full.ProcessID)
	assert.Equal(t, ident.Ref("sa1"), full.SubactivityID)
	assert.Equal(t, "Sign-off", full.SubactivityName)

	// p7 / sg1 / pr2 with no tasks
	partial := rows[1]
	assert.Equal(t, ident.Ref("pr2"), partial.ProcessID)
	assert.True(t, partial.TaskID.IsZero())
	assert.True(t, partial.SubactivityID.IsZero())

	// p8 has no stage-gates: project row kept, community falls back to name
	bare := rows[2]
	assert.Equal(t, ident.Ref("p8"), bare.ProjectID)
	assert.Equal(t, "Depot", bare.Community)
	assert.Equal(t, "Phase 2", bare.PhaseName)
	assert.True(t, bare.StagegateID.IsZero())

	for _, r := range rows {
		assert.NotEqual(t, ident.Ref("pr3"), r.ProcessID, "inactive stage-gate leaked")
	}
}

func TestHierarchyRows_ProjectFilter(t *testing.T) {
	s, gdb := openTestStore(t)
	seedHierarchy(t, gdb)

	pid := int64(8)
	rows, err := s.HierarchyRows(context.Background(), docstore.HierarchyQuery{User: 101, ProjectID: &pid})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, ident.Ref("p8"), rows[0].ProjectID)
}

func TestHierarchyRows_UnknownUser(t *testing.T) {
	s, gdb := openTestStore(t)
	seedHierarchy(t, gdb)

	rows, err := s.HierarchyRows(context.Background(), docstore.HierarchyQuery{User: 999})
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestHierarchyRows_Timeout(t *testing.T) {
	s, gdb := openTestStore(t)
	seedHierarchy(t, gdb)
	s.budget.MaxTime = time.Nanosecond

	_, err := s.HierarchyRows(context.Background(), docstore.HierarchyQuery{User: 101})
	require.Error(t, err)
	assert.True(t, errors.Is(err, docstore.ErrTimeout), "err = %v", err)
}

func TestChecklistsByOwners(t *testing.T) {
	s, gdb := openTestStore(t)
	require.NoError(t, gdb.Create(&models.ProcessChecklist{ID: "c1", ProcessID: "pr1"}).Error)
	require.NoError(t, gdb.Create(&models.ProcessChecklist{ID: "c2", ProcessID: "pr1"}).Error)
	require.NoError(t, gdb.Create(&models.ProcessChecklist{ID: "c3", ProcessID: "pr9"}).Error)
	require.NoError(t, gdb.Create(&models.SubActivityChecklist{ID: "c4", SubActivityID: "sa1"}).Error)

	got, err := s.ChecklistsByOwners(context.Background(), docstore.LevelProcess, []ident.Ref{"pr1", "pr2"})
	require.NoError(t, err)
	assert.Equal(t, []docstore.ChecklistRef{
		{ID: "c1", OwnerID: "pr1"},
		{ID: "c2", OwnerID: "pr1"},
	}, got)

	got, err = s.ChecklistsByOwners(context.Background(), docstore.LevelSubActivity, []ident.Ref{"sa1"})
	require.NoError(t, err)
	assert.Equal(t, []docstore.ChecklistRef{{ID: "c4", OwnerID: "sa1"}}, got)
}

func TestEmptyInputsIssueNoQuery(t *testing.T) {
	s, gdb := openTestStore(t)
	require.NoError(t, db.Close(gdb))
	ctx := context.Background()

	cl, err := s.ChecklistsByOwners(ctx, docstore.LevelTask, nil)
	assert.NoError(t, err)
	assert.Empty(t, cl)

	files, err := s.FilesByChecklists(ctx, docstore.LevelTask, nil)
	assert.NoError(t, err)
	assert.Empty(t, files)

	content, err := s.ContentByIDs(ctx, nil)
	assert.NoError(t, err)
	assert.Empty(t, content)

	owners, err := s.OwnersForRaci(ctx, docstore.LevelTask, nil)
	assert.NoError(t, err)
	assert.Empty(t, owners)

	_, err = s.ChecklistsByOwners(ctx, docstore.LevelTask, []ident.Ref{"x"})
	assert.Error(t, err, "closed db should fail once a query is issued")
}

func TestFilesByChecklists_CanonicalIDAndName(t *testing.T) {
	s, gdb := openTestStore(t)
	require.NoError(t, gdb.Create(&models.TaskFile{ChecklistFile: models.ChecklistFile{
		ID: "row1", ChecklistID: "c1", FileID: strPtr("f-explicit"), FileName: strPtr("plan.pdf"),
	}}).Error)
	require.NoError(t, gdb.Create(&models.TaskFile{ChecklistFile: models.ChecklistFile{
		ID: "row2", ChecklistID: "c1", LegacyName: strPtr("legacy.docx"),
	}}).Error)
	require.NoError(t, gdb.Create(&models.TaskFile{ChecklistFile: models.ChecklistFile{
		ID: "row3", ChecklistID: "c9", FileName: strPtr("other.pdf"),
	}}).Error)

	got, err := s.FilesByChecklists(context.Background(), docstore.LevelTask, []ident.Ref{"c1"})
	require.NoError(t, err)
	assert.Equal(t, []docstore.FileRecord{
		{FileID: "f-explicit", DocID: "row1", ChecklistID: "c1", FileName: "plan.pdf"},
		{FileID: "row2", DocID: "row2", ChecklistID: "c1", FileName: "legacy.docx"},
	}, got)
}

func TestContent_PayloadVariants(t *testing.T) {
	s, gdb := openTestStore(t)
	created := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, gdb.Create(&models.FileContent{ID: "blob", FileName: "a.pdf", FileType: "pdf", FileSize: 3, Content: []byte("abc"), CreatedDate: &created}).Error)
	require.NoError(t, gdb.Create(&models.FileContent{ID: "text", FileName: "b.docx", LegacyContent: strPtr("YWJj")}).Error)
	require.NoError(t, gdb.Create(&models.FileContent{ID: "empty", FileName: "c.xlsx", StoragePath: "bucket/c.xlsx"}).Error)

	got, err := s.ContentByIDs(context.Background(), []ident.Ref{"blob", "text", "empty", "missing"})
	require.NoError(t, err)
	require.Len(t, got, 3)

	byID := map[ident.Ref]docstore.ContentRecord{}
	for _, r := range got {
		byID[r.ID] = r
	}
	assert.Equal(t, []byte("abc"), byID["blob"].Payload)
	require.NotNil(t, byID["blob"].CreatedDate)
	assert.True(t, created.Equal(*byID["blob"].CreatedDate))
	assert.Equal(t, "YWJj", byID["text"].Payload)
	assert.Nil(t, byID["empty"].Payload)
	assert.Equal(t, "bucket/c.xlsx", byID["empty"].StoragePath)

	byName, err := s.ContentByNames(context.Background(), []string{"b.docx"})
	require.NoError(t, err)
	require.Len(t, byName, 1)
	assert.Equal(t, ident.Ref("text"), byName[0].ID)
}

func TestVersionsForFile_Ordered(t *testing.T) {
	s, gdb := openTestStore(t)
	require.NoError(t, gdb.Create(&models.FileVersion{ID: "v2", FileID: "f1", Version: 2}).Error)
	require.NoError(t, gdb.Create(&models.FileVersion{ID: "v1", FileID: "f1", Version: 1}).Error)
	require.NoError(t, gdb.Create(&models.FileVersion{ID: "v9", FileID: "f2", Version: 1}).Error)

	got, err := s.VersionsForFile(context.Background(), "f1")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, 1, got[0].Version)
	assert.Equal(t, 2, got[1].Version)
}

func TestRaciLookups(t *testing.T) {
	s, gdb := openTestStore(t)
	require.NoError(t, gdb.Create(&models.RaciAssignment{AssigneeID: 101, RaciID: "r1", RaciGroup: "Process"}).Error)
	require.NoError(t, gdb.Create(&models.RaciAssignment{AssigneeID: 101, RaciID: "r2", RaciGroup: "Task"}).Error)
	require.NoError(t, gdb.Create(&models.RaciAssignment{AssigneeID: 202, RaciID: "r3", RaciGroup: "Task"}).Error)
	require.NoError(t, gdb.Create(&models.ProcessRaci{ID: "r1", ProcessID: "pr1"}).Error)
	require.NoError(t, gdb.Create(&models.TaskRaci{ID: "r2", TaskID: "tk1"}).Error)

	as, err := s.AssignmentsForUser(context.Background(), 101)
	require.NoError(t, err)
	assert.Equal(t, []docstore.Assignment{{RaciID: "r1", Group: "Process"}, {RaciID: "r2", Group: "Task"}}, as)

	owners, err := s.OwnersForRaci(context.Background(), docstore.LevelTask, []ident.Ref{"r2", "r3"})
	require.NoError(t, err)
	assert.Equal(t, []ident.Ref{"tk1"}, owners)
}

func TestFindUser(t *testing.T) {
	s, gdb := openTestStore(t)
	require.NoError(t, gdb.Create(&models.User{ID: "u1", Code: 4411, Email: "Dana@Example.com", Username: "dana", DisplayName: "Dana P"}).Error)
	ctx := context.Background()

	tests := []struct {
		name  string
		field docstore.UserField
		value string
		found bool
	}{
		{"by id", docstore.UserByID, "u1", true},
		{"by code", docstore.UserByCode, "4411", true},
		{"by code non numeric", docstore.UserByCode, "dana", false},
		{"by email any case", docstore.UserByEmail, "dana@example.com", true},
		{"by username", docstore.UserByUsername, "dana", true},
		{"miss", docstore.UserByUsername, "nobody", false},
		{"blank", docstore.UserByID, "  ", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u, err := s.FindUser(ctx, tt.field, tt.value)
			require.NoError(t, err)
			if tt.found {
				require.NotNil(t, u)
				assert.Equal(t, "Dana P", u.DisplayName)
			} else {
				assert.Nil(t, u)
			}
		})
	}
}

func TestComments_InsertReadList(t *testing.T) {
	s, _ := openTestStore(t)
	ctx := context.Background()
	t0 := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)

	id2, err := s.InsertComment(ctx, docstore.Comment{FileID: "f1", Text: "second", CreatedAt: t0.Add(time.Minute)})
	require.NoError(t, err)
	id1, err := s.InsertComment(ctx, docstore.Comment{FileID: "f1", Text: "first", AuthorID: "u1", AuthorName: "Dana", CreatedAt: t0})
	require.NoError(t, err)
	_, err = s.InsertComment(ctx, docstore.Comment{FileID: "f2", Text: "elsewhere"})
	require.NoError(t, err)

	assert.False(t, id1.IsZero())
	assert.NotEqual(t, id1, id2)

	c, err := s.GetComment(ctx, id1)
	require.NoError(t, err)
	require.NotNil(t, c)
	assert.Equal(t, "first", c.Text)
	assert.Equal(t, "Dana", c.AuthorName)
	assert.False(t, c.UpdatedAt.IsZero())

	list, err := s.CommentsForFile(ctx, "f1")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "first", list[0].Text)
	assert.Equal(t, "second", list[1].Text)

	missing, err := s.GetComment(ctx, "nope")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestUnknownLevel(t *testing.T) {
	s, _ := openTestStore(t)
	_, err := s.ChecklistsByOwners(context.Background(), docstore.Level(9), []ident.Ref{"x"})
	assert.Error(t, err)
}

func TestIsTimeout(t *testing.T) {
	assert.True(t, IsTimeout(&gomysql.MySQLError{Number: 3024}))
	assert.False(t, IsTimeout(&gomysql.MySQLError{Number: 1045}))
	assert.False(t, IsTimeout(errors.New("boom")))
}

func TestPing(t *testing.T) {
	s, _ := openTestStore(t)
	assert.NoError(t, s.Ping(context.Background()))
}
