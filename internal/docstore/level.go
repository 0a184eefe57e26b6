package docstore

import "fmt"

// Level is one of the four owner levels a checklist can hang from.
type Level int

const (
	LevelProcess Level = iota + 1
	LevelTask
	LevelActivity
	LevelSubActivity
)

// Levels lists every owner level in rank order.
var Levels = []Level{LevelProcess, LevelTask, LevelActivity, LevelSubActivity}

func (l Level) String() string {
	switch l {
	case LevelProcess:
		return "process"
	case LevelTask:
		return "task"
	case LevelActivity:
		return "activity"
	case LevelSubActivity:
		return "subactivity"
	default:
		return fmt.Sprintf("level(%d)", int(l))
	}
}

// Rank orders levels for display: process < task < activity < subactivity.
// Unknown levels sort last.
func (l Level) Rank() int {
	if l < LevelProcess || l > LevelSubActivity {
		return 99
	}
	return int(l)
}

// Valid reports whether l is one of the four owner levels.
func (l Level) Valid() bool {
	return l >= LevelProcess && l <= LevelSubActivity
}
