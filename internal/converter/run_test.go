package converter

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/ginjaninja78/customs-to-dce/internal/config"
	"github.com/ginjaninja78/customs-to-dce/internal/types"
)

func sourceWithRows(t *testing.T, n int) string {
	t.Helper()
	var b strings.Builder
	b.WriteString("TARIFF,DES,PERCENT\n")
	for i := 0; i < n; i++ {
		fmt.Fprintf(&b, "%08d,item %d,%d%%\n", i, i, i%50)
	}
	return writeSource(t, b.String())
}

func TestRun_SingleFile(t *testing.T) {
	src := sourceWithRows(t, 5)
	dest := filepath.Join(t.TempDir(), "out")

	res := Run(context.Background(), Request{SourcePath: src, DestinationDir: dest}, WithClock(fixedNow))
	require.True(t, res.Success, res.Message)

	assert.Equal(t, MessageDone, res.Message)
	assert.NoError(t, res.Err)
	assert.NotEmpty(t, res.RunID)
	assert.Equal(t, []string{filepath.Join(dest, "2024-06-15_TH-Tariff-HScode.csv")}, res.WrittenFiles)
	assert.Equal(t, Stats{RowsRead: 5, RowsWritten: 5, Parts: 1}, res.Stats)
}

func TestRun_MissingPaths(t *testing.T) {
	for _, req := range []Request{
		{},
		{SourcePath: "in.csv"},
		{DestinationDir: t.TempDir()},
	} {
		res := Run(context.Background(), req)
		assert.False(t, res.Success)
		assert.Equal(t, MessageMissingPaths, res.Message)
		assert.ErrorIs(t, res.Err, types.ErrInvalidRequest)
	}
}

func TestRun_InvalidChunkSize(t *testing.T) {
	res := Run(context.Background(), Request{
		SourcePath:     sourceWithRows(t, 1),
		DestinationDir: t.TempDir(),
		Split:          true,
		ChunkSize:      -1,
	})
	assert.False(t, res.Success)
	assert.ErrorIs(t, res.Err, types.ErrInvalidRequest)
	assert.Contains(t, res.Err.Error(), "got -1")
}

func TestRun_SourceNotFoundLeavesDestinationAlone(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "out")

	res := Run(context.Background(), Request{
		SourcePath:     filepath.Join(t.TempDir(), "nope.csv"),
		DestinationDir: dest,
	})
	assert.False(t, res.Success)
	assert.ErrorIs(t, res.Err, types.ErrSourceNotFound)
	assert.Contains(t, res.Message, "source file not found")
	assert.NoDirExists(t, dest)
}

func TestRun_MalformedPercentWritesNothing(t *testing.T) {
	src := writeSource(t, "TARIFF,DES,PERCENT\n1,a,5\n")
	dest := t.TempDir()

	res := Run(context.Background(), Request{SourcePath: src, DestinationDir: dest})
	assert.False(t, res.Success)
	assert.ErrorIs(t, res.Err, types.ErrMalformedPercent)

	entries, err := os.ReadDir(dest)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestRun_SplitWithConfig(t *testing.T) {
	src := sourceWithRows(t, 25)
	dest := t.TempDir()

	cfg := config.Default()
	cfg.Split.Rounding = config.RoundingHalfEven

	res := Run(context.Background(),
		Request{SourcePath: src, DestinationDir: dest, Split: true, ChunkSize: 10},
		WithConfig(cfg), WithClock(fixedNow),
	)
	require.True(t, res.Success, res.Message)

	assert.Len(t, res.WrittenFiles, 2)
	assert.Equal(t, 25, res.Stats.RowsRead)
	assert.Equal(t, 20, res.Stats.RowsWritten)
	assert.Equal(t, 5, res.Stats.RowsDropped)
}

func TestRun_ProgressMilestones(t *testing.T) {
	var seen []int
	record := func(_ Stage, percent int) { seen = append(seen, percent) }

	res := Run(context.Background(),
		Request{SourcePath: sourceWithRows(t, 3), DestinationDir: t.TempDir(), Split: true, ChunkSize: 2},
		WithProgress(record), WithClock(fixedNow),
	)
	require.True(t, res.Success, res.Message)
	assert.Equal(t, []int{50, 70, 80, 85, 100}, seen)

	seen = nil
	res = Run(context.Background(),
		Request{SourcePath: sourceWithRows(t, 3), DestinationDir: t.TempDir()},
		WithProgress(record), WithClock(fixedNow),
	)
	require.True(t, res.Success, res.Message)
	assert.Equal(t, []int{50, 70, 80, 100}, seen)
}

func TestRun_WritesSummary(t *testing.T) {
	dest := t.TempDir()
	cfg := config.Default()
	cfg.WriteSummary = true

	res := Run(context.Background(),
		Request{SourcePath: sourceWithRows(t, 2), DestinationDir: dest},
		WithConfig(cfg), WithClock(fixedNow),
	)
	require.True(t, res.Success, res.Message)

	data, err := os.ReadFile(filepath.Join(dest, "processing_summary_20240615_123000.txt"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "Run ID:         "+res.RunID)
	assert.Contains(t, string(data), "Rows Written:   2")
}

func TestRun_LogsRunID(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)

	res := Run(context.Background(),
		Request{SourcePath: sourceWithRows(t, 1), DestinationDir: t.TempDir()},
		WithLogger(zap.New(core)), WithClock(fixedNow),
	)
	require.True(t, res.Success, res.Message)

	finished := logs.FilterMessage("conversion finished").All()
	require.Len(t, finished, 1)
	assert.Equal(t, res.RunID, finished[0].ContextMap()["run_id"])
}

func TestStart(t *testing.T) {
	results := Start(context.Background(), Request{
		SourcePath:     sourceWithRows(t, 4),
		DestinationDir: t.TempDir(),
	}, WithClock(fixedNow))

	select {
	case res, ok := <-results:
		require.True(t, ok)
		assert.True(t, res.Success, res.Message)
		assert.Len(t, res.WrittenFiles, 1)
	case <-time.After(10 * time.Second):
		t.Fatal("no result from Start")
	}

	_, ok := <-results
	assert.False(t, ok, "channel is closed after the result")
}
