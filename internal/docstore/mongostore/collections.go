package mongostore

import (
	"github.com/zulandar/stagedocs/internal/docstore"
	"github.com/zulandar/stagedocs/internal/models"
	"go.mongodb.org/mongo-driver/v2/bson"
)

// Collection field names. Collections share their names with the SQL tables.
const (
	fieldUserID         = "PMWBUserId"
	fieldUserProjectID  = "PMWEBProjectId"
	fieldPMWEBProjectID = "PMWEB_ProjectId"
	fieldProjectName    = "PMWEB_ProjectName"
	fieldChecklistID    = "ChecklistId"
)

// levelCollections names the per-level checklist, file and RACI collections
// and the owner field they key on.
type levelCollections struct {
	checklists string
	owner      string
	files      string
	raci       string
}

var collections = map[docstore.Level]levelCollections{
	docstore.LevelProcess:     {models.TableProcessChecklists, "ProcessId", models.TableProcessFiles, models.TableProcessRaci},
	docstore.LevelTask:        {models.TableTaskChecklists, "TaskId", models.TableTaskFiles, models.TableTaskRaci},
	docstore.LevelActivity:    {models.TableActivityChecklists, "ActivityId", models.TableActivityFiles, models.TableActivityRaci},
	docstore.LevelSubActivity: {models.TableSubActivityChecklists, "SubActivityId", models.TableSubActivityFiles, models.TableSubActivityRaci},
}

// Index hints, keyed by the shape each query filters on.
var (
	hintChecklistOwner = func(owner string) bson.D { return bson.D{{Key: owner, Value: 1}} }
	hintFilesChecklist = bson.D{{Key: fieldChecklistID, Value: 1}}
	hintContentByID    = bson.D{{Key: "_id", Value: 1}}
	hintContentByName  = bson.D{{Key: "FileName", Value: 1}}
)
