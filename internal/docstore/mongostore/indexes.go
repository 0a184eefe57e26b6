package mongostore

import (
	"context"
	"fmt"

	"github.com/zulandar/stagedocs/internal/models"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
)

// indexModels lists the indexes the read paths hint on.
func indexModels() map[string][]mongo.IndexModel {
	m := map[string][]mongo.IndexModel{
		models.TableProjectUsers: {
			{Keys: bson.D{{Key: fieldUserID, Value: 1}, {Key: fieldUserProjectID, Value: 1}}},
		},
		models.TableProjects:          {{Keys: bson.D{{Key: fieldPMWEBProjectID, Value: 1}}}},
		models.TablePhaseAssetDetails: {{Keys: bson.D{{Key: fieldPMWEBProjectID, Value: 1}}}},
		models.TableStageGates: {
			{Keys: bson.D{{Key: "ProjectId", Value: 1}, {Key: "ProjectStagegateIsActive", Value: 1}}},
		},
		models.TableProcesses:     {{Keys: bson.D{{Key: "ProjectStagegateId", Value: 1}}}},
		models.TableTasks:         {{Keys: bson.D{{Key: "ProjectProcessId", Value: 1}}}},
		models.TableActivities:    {{Keys: bson.D{{Key: "ProjectTaskId", Value: 1}}}},
		models.TableSubActivities: {{Keys: bson.D{{Key: "ProjectActivityId", Value: 1}}}},
		models.TableFileContent:   {{Keys: hintContentByName}},
		models.TableFileVersions:  {{Keys: bson.D{{Key: "fileId", Value: 1}, {Key: "version", Value: 1}}}},
		models.TableRaciAssignees: {
			{Keys: bson.D{{Key: "assigneeId", Value: 1}}},
			{Keys: bson.D{{Key: "AssigneeId", Value: 1}}},
		},
		models.TableFileComments: {{Keys: bson.D{{Key: "fileId", Value: 1}, {Key: "createdAt", Value: 1}}}},
	}
	for _, c := range collections {
		m[c.checklists] = []mongo.IndexModel{{Keys: hintChecklistOwner(c.owner)}}
		m[c.files] = []mongo.IndexModel{{Keys: hintFilesChecklist}}
	}
	return m
}

// EnsureIndexes creates every hinted index. Existing indexes are left alone.
func (s *Store) EnsureIndexes(ctx context.Context) (int, error) {
	n := 0
	for name, idx := range indexModels() {
		if _, err := s.coll(name).Indexes().CreateMany(ctx, idx); err != nil {
			return n, fmt.Errorf("mongostore: create indexes for %s: %w", name, err)
		}
		n += len(idx)
	}
	return n, nil
}
