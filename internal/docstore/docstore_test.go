package docstore

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLevel_RankAndString(t *testing.T) {
	assert.Equal(t, "process", LevelProcess.String())
	assert.Equal(t, "subactivity", LevelSubActivity.String())
	assert.Less(t, LevelProcess.Rank(), LevelTask.Rank())
	assert.Less(t, LevelTask.Rank(), LevelActivity.Rank())
	assert.Less(t, LevelActivity.Rank(), LevelSubActivity.Rank())
	assert.Equal(t, 99, Level(0).Rank())
	assert.False(t, Level(7).Valid())
}

func TestFields_Pick(t *testing.T) {
	doc := map[string]any{"FileName": "", "name": "legacy.pdf"}
	assert.Equal(t, "legacy.pdf", FieldFileName.String(doc))

	doc = map[string]any{"FileName": "primary.pdf", "name": "legacy.pdf"}
	assert.Equal(t, "primary.pdf", FieldFileName.String(doc))

	doc = map[string]any{"filecontent": nil, "FileContent": []byte("x")}
	v, ok := FieldContent.Pick(doc)
	require.True(t, ok)
	assert.Equal(t, []byte("x"), v)

	_, ok = FieldRaciID.Pick(map[string]any{})
	assert.False(t, ok)
}

func TestExtFilter(t *testing.T) {
	f := NewExtFilter(nil)
	for _, name := range []string{"report.PDF", "brief.docx", "sheet.xlsx", "Mixed.DocX"} {
		assert.True(t, f.Allows(name), name)
	}
	for _, name := range []string{"image.png", "noext", "", "pdf"} {
		assert.False(t, f.Allows(name), name)
	}

	custom := NewExtFilter([]string{"txt", " .CSV "})
	assert.True(t, custom.Allows("a.txt"))
	assert.True(t, custom.Allows("b.csv"))
	assert.False(t, custom.Allows("c.pdf"))
}

func TestFileType(t *testing.T) {
	assert.Equal(t, "pdf", FileType("Report.PDF"))
	assert.Equal(t, "", FileType("README"))
}

func TestCoalesce(t *testing.T) {
	assert.Equal(t, "b", Coalesce("", "  ", "b", "c"))
	assert.Equal(t, "", Coalesce())
}

func TestBudget_TimeoutMapsToErrTimeout(t *testing.T) {
	b := Budget{MaxTime: 10 * time.Millisecond}
	err := b.Run(context.Background(), "slow", func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrTimeout)
}

func TestBudget_DriverTimeoutClassifier(t *testing.T) {
	driverErr := errors.New("server selection timeout")
	b := Budget{MaxTime: time.Second, IsTimeout: func(err error) bool { return errors.Is(err, driverErr) }}
	err := b.Run(context.Background(), "op", func(context.Context) error { return driverErr })
	assert.ErrorIs(t, err, ErrTimeout)
}

func TestBudget_PlainErrorWrapped(t *testing.T) {
	boom := errors.New("boom")
	err := Budget{}.Run(context.Background(), "op", func(context.Context) error { return boom })
	assert.ErrorIs(t, err, boom)
	assert.NotErrorIs(t, err, ErrTimeout)
	assert.Contains(t, err.Error(), "op:")
}

func TestValidationError(t *testing.T) {
	err := Invalid("author", "unknown user %q", "x")
	assert.Equal(t, `validation: author: unknown user "x"`, err.Error())
	assert.True(t, IsValidation(errors.Join(errors.New("other"), err)))
	assert.False(t, IsValidation(errors.New("plain")))
}
