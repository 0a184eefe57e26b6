// Package sqlstore implements docstore.Store over GORM, for MySQL in
// production and SQLite for local runs and tests.
package sqlstore

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	gomysql "github.com/go-sql-driver/mysql"
	"github.com/google/uuid"
	"github.com/zulandar/stagedocs/internal/docstore"
	"github.com/zulandar/stagedocs/internal/ident"
	"github.com/zulandar/stagedocs/internal/models"
	"gorm.io/gorm"
)

// mysqlStatementTimeout is ER_QUERY_TIMEOUT, raised when MAX_EXECUTION_TIME
// interrupts a SELECT.
const mysqlStatementTimeout = 3024

// levelTables names the per-level checklist, file and RACI tables.
type levelTables struct {
	checklists string
	owner      string
	files      string
	raci       string
}

var tables = map[docstore.Level]levelTables{
	docstore.LevelProcess:     {models.TableProcessChecklists, "process_id", models.TableProcessFiles, models.TableProcessRaci},
	docstore.LevelTask:        {models.TableTaskChecklists, "task_id", models.TableTaskFiles, models.TableTaskRaci},
	docstore.LevelActivity:    {models.TableActivityChecklists, "activity_id", models.TableActivityFiles, models.TableActivityRaci},
	docstore.LevelSubActivity: {models.TableSubActivityChecklists, "sub_activity_id", models.TableSubActivityFiles, models.TableSubActivityRaci},
}

func tablesFor(level docstore.Level) (levelTables, error) {
	t, ok := tables[level]
	if !ok {
		return levelTables{}, fmt.Errorf("sqlstore: unknown level %s", level)
	}
	return t, nil
}

// Store is a GORM-backed document store.
type Store struct {
	db     *gorm.DB
	budget docstore.Budget
}

var _ docstore.Store = (*Store)(nil)

// New wraps an open GORM handle. The budget bounds every call.
func New(db *gorm.DB, budget docstore.Budget) *Store {
	if budget.IsTimeout == nil {
		budget.IsTimeout = IsTimeout
	}
	return &Store{db: db, budget: budget}
}

// IsTimeout reports whether err is a MySQL statement-timeout error.
func IsTimeout(err error) bool {
	var me *gomysql.MySQLError
	return errors.As(err, &me) && me.Number == mysqlStatementTimeout
}

func (s *Store) isMySQL() bool { return s.db.Dialector.Name() == "mysql" }

type hierarchyScan struct {
	UserID          int64   `gorm:"column:user_id"`
	PmwebProjectID  int64   `gorm:"column:pmweb_project_id"`
	ProjectID       string  `gorm:"column:project_id"`
	ProjectName     *string `gorm:"column:project_name"`
	Community       *string `gorm:"column:community"`
	PhaseName       *string `gorm:"column:phase_name"`
	StagegateID     *string `gorm:"column:stagegate_id"`
	StagegateName   *string `gorm:"column:stagegate_name"`
	ProcessID       *string `gorm:"column:process_id"`
	ProcessName     *string `gorm:"column:process_name"`
	TaskID          *string `gorm:"column:task_id"`
	TaskName        *string `gorm:"column:task_name"`
	ActivityID      *string `gorm:"column:activity_id"`
	ActivityName    *string `gorm:"column:activity_name"`
	SubactivityID   *string `gorm:"column:subactivity_id"`
	SubactivityName *string `gorm:"column:subactivity_name"`
}

const hierarchyColumns = `pu.pmwb_user_id AS user_id,
	pu.pmweb_project_id AS pmweb_project_id,
	p.id AS project_id,
	p.pmweb_project_name AS project_name,
	COALESCE(pd.community, p.project_community, p.pmweb_project_name) AS community,
	COALESCE(pd.project, p.project_phase_or_project) AS phase_name,
	sg.id AS stagegate_id,
	sg.project_stagegate_name AS stagegate_name,
	pr.id AS process_id,
	pr.project_process_name AS process_name,
	tk.id AS task_id,
	tk.project_task_name AS task_name,
	ac.id AS activity_id,
	ac.project_activity_name AS activity_name,
	sa.id AS subactivity_id,
	sa.project_sub_activity_name AS subactivity_name`

// HierarchyRows flattens every project path visible to the user. Levels below
// the project are outer-joined so a missing child never drops its parent.
func (s *Store) HierarchyRows(ctx context.Context, q docstore.HierarchyQuery) ([]docstore.HierarchyRow, error) {
	var scanned []hierarchyScan
	err := s.budget.Run(ctx, "sqlstore: hierarchy", func(ctx context.Context) error {
		from := models.TableProjectUsers + " AS pu"
		cols := hierarchyColumns
		if s.isMySQL() {
			from = models.TableProjectUsers + " AS pu USE INDEX (idx_projectusers_user_project)"
			cols = fmt.Sprintf("/*+ MAX_EXECUTION_TIME(%d) */ %s", s.maxTimeMS(), cols)
		}
		tx := s.db.WithContext(ctx).
			Table(from).
			Select(cols).
			Joins("JOIN "+models.TableProjects+" p ON p.pmweb_project_id = pu.pmweb_project_id").
			Joins("LEFT JOIN "+models.TablePhaseAssetDetails+" pd ON pd.pmweb_project_id = pu.pmweb_project_id").
			Joins("LEFT JOIN "+models.TableStageGates+" sg ON sg.project_id = p.id AND sg.project_stagegate_is_active = ?", true).
			Joins("LEFT JOIN "+models.TableProcesses+" pr ON pr.project_stagegate_id = sg.id").
			Joins("LEFT JOIN "+models.TableTasks+" tk ON tk.project_process_id = pr.id").
			Joins("LEFT JOIN "+models.TableActivities+" ac ON ac.project_task_id = tk.id").
			Joins("LEFT JOIN "+models.TableSubActivities+" sa ON sa.project_activity_id = ac.id").
			Where("pu.pmwb_user_id = ?", q.User.Int64())
		if q.ProjectID != nil {
			tx = tx.Where("pu.pmweb_project_id = ?", *q.ProjectID)
		}
		return tx.Order("p.id, sg.id, pr.id, tk.id, ac.id, sa.id").Scan(&scanned).Error
	})
	if err != nil {
		return nil, err
	}

	rows := make([]docstore.HierarchyRow, len(scanned))
	for i, r := range scanned {
		rows[i] = docstore.HierarchyRow{
			UserID:          ident.UserID(r.UserID),
			PmwebProjectID:  r.PmwebProjectID,
			ProjectID:       ident.Ref(r.ProjectID),
			ProjectName:     deref(r.ProjectName),
			Community:       deref(r.Community),
			PhaseName:       deref(r.PhaseName),
			StagegateID:     ident.ParseRef(r.StagegateID),
			StagegateName:   deref(r.StagegateName),
			ProcessID:       ident.ParseRef(r.ProcessID),
			ProcessName:     deref(r.ProcessName),
			TaskID:          ident.ParseRef(r.TaskID),
			TaskName:        deref(r.TaskName),
			ActivityID:      ident.ParseRef(r.ActivityID),
			ActivityName:    deref(r.ActivityName),
			SubactivityID:   ident.ParseRef(r.SubactivityID),
			SubactivityName: deref(r.SubactivityName),
		}
	}
	return rows, nil
}

func (s *Store) maxTimeMS() int64 {
	limit := s.budget.MaxTime
	if limit <= 0 {
		limit = docstore.DefaultMaxTime
	}
	return limit.Milliseconds()
}

// ChecklistsByOwners returns every checklist owned by one of owners.
func (s *Store) ChecklistsByOwners(ctx context.Context, level docstore.Level, owners []ident.Ref) ([]docstore.ChecklistRef, error) {
	if len(owners) == 0 {
		return nil, nil
	}
	t, err := tablesFor(level)
	if err != nil {
		return nil, err
	}
	type row struct {
		ID      string
		OwnerID string
	}
	var rows []row
	err = s.budget.Run(ctx, "sqlstore: checklists "+level.String(), func(ctx context.Context) error {
		return s.db.WithContext(ctx).
			Table(t.checklists).
			Select("id, "+t.owner+" AS owner_id").
			Where(t.owner+" IN ?", ident.Strings(owners)).
			Order("id").
			Scan(&rows).Error
	})
	if err != nil {
		return nil, err
	}
	out := make([]docstore.ChecklistRef, len(rows))
	for i, r := range rows {
		out[i] = docstore.ChecklistRef{ID: ident.Ref(r.ID), OwnerID: ident.Ref(r.OwnerID)}
	}
	return out, nil
}

// FilesByChecklists returns the file rows attached to checklists. The
// canonical file id and display name are resolved here.
func (s *Store) FilesByChecklists(ctx context.Context, level docstore.Level, checklists []ident.Ref) ([]docstore.FileRecord, error) {
	if len(checklists) == 0 {
		return nil, nil
	}
	t, err := tablesFor(level)
	if err != nil {
		return nil, err
	}
	var rows []models.ChecklistFile
	err = s.budget.Run(ctx, "sqlstore: files "+level.String(), func(ctx context.Context) error {
		return s.db.WithContext(ctx).
			Table(t.files).
			Where("checklist_id IN ?", ident.Strings(checklists)).
			Order("id").
			Find(&rows).Error
	})
	if err != nil {
		return nil, err
	}
	out := make([]docstore.FileRecord, len(rows))
	for i, r := range rows {
		out[i] = docstore.FileRecord{
			FileID:      ident.Ref(docstore.Coalesce(deref(r.FileID), r.ID)),
			DocID:       ident.Ref(r.ID),
			ChecklistID: ident.Ref(r.ChecklistID),
			FileName:    docstore.Coalesce(deref(r.FileName), deref(r.LegacyName)),
		}
	}
	return out, nil
}

// ContentByIDs fetches content rows by id.
func (s *Store) ContentByIDs(ctx context.Context, ids []ident.Ref) ([]docstore.ContentRecord, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	return s.content(ctx, "sqlstore: content by id", "id IN ?", ident.Strings(ids))
}

// ContentByNames fetches content rows by file name, for legacy records that
// lack a resolvable id.
func (s *Store) ContentByNames(ctx context.Context, names []string) ([]docstore.ContentRecord, error) {
	if len(names) == 0 {
		return nil, nil
	}
	return s.content(ctx, "sqlstore: content by name", "file_name IN ?", names)
}

func (s *Store) content(ctx context.Context, op, where string, args []string) ([]docstore.ContentRecord, error) {
	var rows []models.FileContent
	err := s.budget.Run(ctx, op, func(ctx context.Context) error {
		return s.db.WithContext(ctx).Where(where, args).Order("id").Find(&rows).Error
	})
	if err != nil {
		return nil, err
	}
	out := make([]docstore.ContentRecord, len(rows))
	for i, r := range rows {
		out[i] = docstore.ContentRecord{
			ID:          ident.Ref(r.ID),
			FileName:    r.FileName,
			FileType:    r.FileType,
			FileSize:    r.FileSize,
			CreatedDate: r.CreatedDate,
			Payload:     payload(r),
			StoragePath: r.StoragePath,
		}
	}
	return out, nil
}

// payload prefers the binary column, then the legacy text column.
func payload(r models.FileContent) any {
	if len(r.Content) > 0 {
		return r.Content
	}
	if r.LegacyContent != nil && *r.LegacyContent != "" {
		return *r.LegacyContent
	}
	return nil
}

// VersionsForFile lists a file's revisions, oldest first.
func (s *Store) VersionsForFile(ctx context.Context, fileID ident.Ref) ([]docstore.FileVersion, error) {
	var rows []models.FileVersion
	err := s.budget.Run(ctx, "sqlstore: versions", func(ctx context.Context) error {
		return s.db.WithContext(ctx).Where("file_id = ?", fileID.String()).
			Order("version ASC, id ASC").Find(&rows).Error
	})
	if err != nil {
		return nil, err
	}
	out := make([]docstore.FileVersion, len(rows))
	for i, r := range rows {
		out[i] = docstore.FileVersion{
			ID:          ident.Ref(r.ID),
			FileID:      ident.Ref(r.FileID),
			Version:     r.Version,
			FileName:    r.FileName,
			FileSize:    r.FileSize,
			CreatedBy:   r.CreatedBy,
			CreatedDate: r.CreatedDate,
		}
	}
	return out, nil
}

// AssignmentsForUser lists the RACI rows assigned to user.
func (s *Store) AssignmentsForUser(ctx context.Context, user ident.UserID) ([]docstore.Assignment, error) {
	var rows []models.RaciAssignment
	err := s.budget.Run(ctx, "sqlstore: assignments", func(ctx context.Context) error {
		return s.db.WithContext(ctx).Where("assignee_id = ?", user.Int64()).Order("id").Find(&rows).Error
	})
	if err != nil {
		return nil, err
	}
	out := make([]docstore.Assignment, 0, len(rows))
	for _, r := range rows {
		if r.RaciID == "" {
			continue
		}
		out = append(out, docstore.Assignment{RaciID: ident.Ref(r.RaciID), Group: r.RaciGroup})
	}
	return out, nil
}

// OwnersForRaci maps RACI row ids to owner ids at one level.
func (s *Store) OwnersForRaci(ctx context.Context, level docstore.Level, raciIDs []ident.Ref) ([]ident.Ref, error) {
	if len(raciIDs) == 0 {
		return nil, nil
	}
	t, err := tablesFor(level)
	if err != nil {
		return nil, err
	}
	var owners []*string
	err = s.budget.Run(ctx, "sqlstore: raci "+level.String(), func(ctx context.Context) error {
		return s.db.WithContext(ctx).Table(t.raci).
			Where("id IN ?", ident.Strings(raciIDs)).
			Order("id").
			Pluck(t.owner, &owners).Error
	})
	if err != nil {
		return nil, err
	}
	return ident.Refs(owners), nil
}

// FindUser looks a user up by one identity form. A miss returns nil, nil.
func (s *Store) FindUser(ctx context.Context, field docstore.UserField, value string) (*docstore.UserIdentity, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}
	var (
		where string
		arg   any = value
	)
	switch field {
	case docstore.UserByID:
		where = "id = ?"
	case docstore.UserByCode:
		n, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return nil, nil
		}
		where, arg = "code = ?", n
	case docstore.UserByEmail:
		where = "LOWER(email) = ?"
		arg = strings.ToLower(value)
	case docstore.UserByUsername:
		where = "username = ?"
	default:
		return nil, fmt.Errorf("sqlstore: unknown user field %d", field)
	}

	var users []models.User
	err := s.budget.Run(ctx, "sqlstore: find user", func(ctx context.Context) error {
		return s.db.WithContext(ctx).Where(where, arg).Limit(1).Find(&users).Error
	})
	if err != nil {
		return nil, err
	}
	if len(users) == 0 {
		return nil, nil
	}
	u := users[0]
	return &docstore.UserIdentity{
		ID:          ident.Ref(u.ID),
		Code:        u.Code,
		Email:       u.Email,
		Username:    u.Username,
		DisplayName: u.DisplayName,
	}, nil
}

// InsertComment stores c and returns its id. A missing id is generated and
// missing timestamps are stamped now.
func (s *Store) InsertComment(ctx context.Context, c docstore.Comment) (ident.Ref, error) {
	if c.ID.IsZero() {
		c.ID = ident.Ref(uuid.NewString())
	}
	now := time.Now().UTC()
	if c.CreatedAt.IsZero() {
		c.CreatedAt = now
	}
	if c.UpdatedAt.IsZero() {
		c.UpdatedAt = c.CreatedAt
	}
	row := models.FileComment{
		ID:            c.ID.String(),
		FileID:        c.FileID.String(),
		Text:          c.Text,
		AuthorID:      c.AuthorID.String(),
		AuthorName:    c.AuthorName,
		CreatedByID:   c.CreatedByID.String(),
		CreatedByName: c.CreatedByName,
		CreatedAt:     c.CreatedAt,
		UpdatedAt:     c.UpdatedAt,
	}
	err := s.budget.Run(ctx, "sqlstore: insert comment", func(ctx context.Context) error {
		return s.db.WithContext(ctx).Create(&row).Error
	})
	if err != nil {
		return "", err
	}
	return c.ID, nil
}

// GetComment reads one comment. A miss returns nil, nil.
func (s *Store) GetComment(ctx context.Context, id ident.Ref) (*docstore.Comment, error) {
	var rows []models.FileComment
	err := s.budget.Run(ctx, "sqlstore: get comment", func(ctx context.Context) error {
		return s.db.WithContext(ctx).Where("id = ?", id.String()).Limit(1).Find(&rows).Error
	})
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	c := toComment(rows[0])
	return &c, nil
}

// CommentsForFile lists a file's comments, oldest first.
func (s *Store) CommentsForFile(ctx context.Context, fileID ident.Ref) ([]docstore.Comment, error) {
	var rows []models.FileComment
	err := s.budget.Run(ctx, "sqlstore: comments", func(ctx context.Context) error {
		return s.db.WithContext(ctx).Where("file_id = ?", fileID.String()).
			Order("created_at ASC, id ASC").Find(&rows).Error
	})
	if err != nil {
		return nil, err
	}
	out := make([]docstore.Comment, len(rows))
	for i, r := range rows {
		out[i] = toComment(r)
	}
	return out, nil
}

func toComment(r models.FileComment) docstore.Comment {
	return docstore.Comment{
		ID:            ident.Ref(r.ID),
		FileID:        ident.Ref(r.FileID),
		Text:          r.Text,
		AuthorID:      ident.Ref(r.AuthorID),
		AuthorName:    r.AuthorName,
		CreatedByID:   ident.Ref(r.CreatedByID),
		CreatedByName: r.CreatedByName,
		CreatedAt:     r.CreatedAt,
		UpdatedAt:     r.UpdatedAt,
	}
}

// Ping checks the connection.
func (s *Store) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("sqlstore: ping: %w", err)
	}
	return s.budget.Run(ctx, "sqlstore: ping", sqlDB.PingContext)
}

// Close releases the connection pool.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("sqlstore: close: %w", err)
	}
	return sqlDB.Close()
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
