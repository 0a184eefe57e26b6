package mongostore

import (
	"github.com/zulandar/stagedocs/internal/docstore"
	"github.com/zulandar/stagedocs/internal/models"
	"go.mongodb.org/mongo-driver/v2/bson"
)

// userMatch scopes projectusers to one user and, optionally, one project.
func userMatch(q docstore.HierarchyQuery) bson.M {
	m := bson.M{fieldUserID: q.User.Int64()}
	if q.ProjectID != nil {
		m[fieldUserProjectID] = *q.ProjectID
	}
	return m
}

// lookupStage joins from into as, matching foreign == $$local and applying
// extra filters before projecting only the named fields.
func lookupStage(from, local, foreign, as string, extra bson.M, fields ...string) bson.D {
	proj := bson.M{}
	for _, f := range fields {
		proj[f] = 1
	}
	pipe := bson.A{
		bson.M{"$match": bson.M{"$expr": bson.M{"$eq": bson.A{"$" + foreign, "$$key"}}}},
	}
	if len(extra) > 0 {
		pipe = append(pipe, bson.M{"$match": extra})
	}
	pipe = append(pipe, bson.M{"$project": proj})
	return bson.D{{Key: "$lookup", Value: bson.M{
		"from":     from,
		"let":      bson.M{"key": local},
		"pipeline": pipe,
		"as":       as,
	}}}
}

func unwind(path string, preserve bool) bson.D {
	if !preserve {
		return bson.D{{Key: "$unwind", Value: "$" + path}}
	}
	return bson.D{{Key: "$unwind", Value: bson.M{"path": "$" + path, "preserveNullAndEmptyArrays": true}}}
}

// hierarchyPipeline flattens projectusers into one row per deepest reachable
// node. The project join is inner; everything below it is outer.
func hierarchyPipeline(q docstore.HierarchyQuery) bson.A {
	return bson.A{
		bson.D{{Key: "$match", Value: userMatch(q)}},

		lookupStage(models.TableProjects, "$"+fieldUserProjectID, fieldPMWEBProjectID, "project", nil,
			fieldPMWEBProjectID, fieldProjectName, "ProjectCommunity", "ProjectPhaseOrProject"),
		unwind("project", false),

		lookupStage(models.TablePhaseAssetDetails, "$"+fieldUserProjectID, fieldPMWEBProjectID, "phaseDetails", nil,
			fieldPMWEBProjectID, "Community", "Project"),
		unwind("phaseDetails", true),

		lookupStage(models.TableStageGates, "$project._id", "ProjectId", "stagegates",
			bson.M{"ProjectStagegateIsActive": true}, "ProjectId", "ProjectStagegateName"),
		unwind("stagegates", true),

		lookupStage(models.TableProcesses, "$stagegates._id", "ProjectStagegateId", "processes", nil,
			"ProjectStagegateId", "ProjectProcessName"),
		unwind("processes", true),

		lookupStage(models.TableTasks, "$processes._id", "ProjectProcessId", "tasks", nil,
			"ProjectProcessId", "ProjectTaskName"),
		unwind("tasks", true),

		lookupStage(models.TableActivities, "$tasks._id", "ProjectTaskId", "activities", nil,
			"ProjectTaskId", "ProjectActivityName"),
		unwind("activities", true),

		lookupStage(models.TableSubActivities, "$activities._id", "ProjectActivityId", "subactivities", nil,
			"ProjectActivityId", "ProjectSubActivityName"),
		unwind("subactivities", true),

		bson.D{{Key: "$project", Value: bson.M{
			"_id":            0,
			"userId":         "$" + fieldUserID,
			"pmwebProjectId": "$project." + fieldPMWEBProjectID,
			"projectId":      "$project._id",
			"projectName":    "$project." + fieldProjectName,
			"community": bson.M{"$ifNull": bson.A{
				"$phaseDetails.Community",
				bson.M{"$ifNull": bson.A{"$project.ProjectCommunity", "$project." + fieldProjectName}},
			}},
			"phaseName":       bson.M{"$ifNull": bson.A{"$phaseDetails.Project", "$project.ProjectPhaseOrProject"}},
			"stagegateId":     "$stagegates._id",
			"stagegateName":   "$stagegates.ProjectStagegateName",
			"processId":       "$processes._id",
			"processName":     "$processes.ProjectProcessName",
			"taskId":          "$tasks._id",
			"taskName":        "$tasks.ProjectTaskName",
			"activityId":      "$activities._id",
			"activityName":    "$activities.ProjectActivityName",
			"subactivityId":   "$subactivities._id",
			"subactivityName": "$subactivities.ProjectSubActivityName",
		}}},
	}
}
