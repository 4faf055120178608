package chunkwriter

import (
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/ginjaninja78/customs-to-dce/internal/config"
	"github.com/ginjaninja78/customs-to-dce/internal/types"
)

var testDay = time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

func fixedToday() time.Time { return testDay }

func makeResult(n int) *types.ConversionResult {
	res := &types.ConversionResult{
		SourcePath: "in.csv",
		StartDate:  "01/01/2024",
		EndDate:    "01/01/2029",
		Records:    make([]types.OutputRecord, n),
	}
	for i := range res.Records {
		res.Records[i] = types.OutputRecord{
			HSCode:      fmt.Sprintf("%010d", i),
			Description: fmt.Sprintf("item %d", i),
			TariffValue: decimal.New(int64(i%100), -2),
			StartDate:   res.StartDate,
			EndDate:     res.EndDate,
		}
	}
	return res
}

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	return rows
}

func TestWrite_SingleFile(t *testing.T) {
	dir := t.TempDir()

	written, err := Write(makeResult(3), dir, Options{Today: fixedToday})
	require.NoError(t, err)
	require.Equal(t, []string{filepath.Join(dir, "2024-03-01_TH-Tariff-HScode.csv")}, written)

	rows := readCSV(t, written[0])
	require.Len(t, rows, 4)
	assert.Equal(t, types.Header, rows[0])
	assert.Equal(t, []string{
		"0000000001", "TARIFF", "", "", "", "item 1", "", "", "", "KGM", "", "", "0.01", "0",
		"01/01/2024", "01/01/2029",
	}, rows[2])
}

func TestWrite_SplitDisabledIgnoresChunkSize(t *testing.T) {
	dir := t.TempDir()

	written, err := Write(makeResult(250), dir, Options{ChunkSize: 100, Today: fixedToday})
	require.NoError(t, err)
	require.Len(t, written, 1)
	assert.Len(t, readCSV(t, written[0]), 251)
}

func TestWrite_SplitBelowThresholdIsUnsuffixed(t *testing.T) {
	dir := t.TempDir()

	written, err := Write(makeResult(100), dir, Options{Split: true, ChunkSize: 100, Today: fixedToday})
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "2024-03-01_TH-Tariff-HScode.csv")}, written)
}

func TestWrite_SplitParts(t *testing.T) {
	dir := t.TempDir()
	result := makeResult(250)

	written, err := Write(result, dir, Options{Split: true, ChunkSize: 100, Today: fixedToday})
	require.NoError(t, err)
	require.Len(t, written, 3)

	var concatenated [][]string
	for i, path := range written {
		assert.Equal(t, fmt.Sprintf("2024-03-01_TH-Tariff-HScode_Part_%d.csv", i+1), filepath.Base(path))

		rows := readCSV(t, path)
		assert.Equal(t, types.Header, rows[0], "every part repeats the header")
		concatenated = append(concatenated, rows[1:]...)
	}

	assert.Len(t, readCSV(t, written[0]), 101)
	assert.Len(t, readCSV(t, written[2]), 51)

	require.Len(t, concatenated, 250)
	for i, row := range concatenated {
		assert.Equal(t, result.Records[i].Values(), row)
	}
}

func TestWrite_HalfEvenDropsTail(t *testing.T) {
	dir := t.TempDir()

	written, err := Write(makeResult(250), dir, Options{
		Split: true, ChunkSize: 100, Mode: HalfEven, Today: fixedToday,
	})
	require.NoError(t, err)
	require.Len(t, written, 2)

	last := readCSV(t, written[1])
	assert.Len(t, last, 101)
	assert.Equal(t, "0000000199", last[100][0])
}

func TestWrite_CustomStem(t *testing.T) {
	dir := t.TempDir()

	written, err := Write(makeResult(1), dir, Options{FileStem: "VN-Tariff", Today: fixedToday})
	require.NoError(t, err)
	assert.Equal(t, "2024-03-01_VN-Tariff.csv", filepath.Base(written[0]))
}

func TestWrite_EmptyResultWritesHeaderOnly(t *testing.T) {
	dir := t.TempDir()

	written, err := Write(&types.ConversionResult{}, dir, Options{Split: true, ChunkSize: 10, Today: fixedToday})
	require.NoError(t, err)
	require.Len(t, written, 1)
	assert.Equal(t, [][]string{types.Header}, readCSV(t, written[0]))
}

func TestWrite_LeavesOtherFilesAlone(t *testing.T) {
	dir := t.TempDir()
	other := filepath.Join(dir, "notes.txt")
	require.NoError(t, os.WriteFile(other, []byte("keep"), 0o644))

	_, err := Write(makeResult(5), dir, Options{Today: fixedToday})
	require.NoError(t, err)

	data, err := os.ReadFile(other)
	require.NoError(t, err)
	assert.Equal(t, "keep", string(data))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}

func TestWrite_CreatesDestination(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out", "dce")

	written, err := Write(makeResult(2), dir, Options{Today: fixedToday})
	require.NoError(t, err)
	assert.FileExists(t, written[0])
}

func TestWrite_DestinationUnwritable(t *testing.T) {
	blocker := filepath.Join(t.TempDir(), "blocker")
	require.NoError(t, os.WriteFile(blocker, nil, 0o644))

	written, err := Write(makeResult(2), blocker, Options{Today: fixedToday})
	assert.Empty(t, written)
	assert.ErrorIs(t, err, types.ErrDestinationUnwritable)
}

func TestWrite_PartFailureKeepsEarlierParts(t *testing.T) {
	dir := t.TempDir()
	// A directory where part 2 should go makes its creation fail.
	require.NoError(t, os.Mkdir(filepath.Join(dir, "2024-03-01_TH-Tariff-HScode_Part_2.csv"), 0o755))

	written, err := Write(makeResult(250), dir, Options{Split: true, ChunkSize: 100, Today: fixedToday})
	require.Error(t, err)
	assert.ErrorIs(t, err, types.ErrWriteFailure)

	var typed *types.Error
	require.True(t, errors.As(err, &typed))
	assert.Equal(t, 2, typed.Part)

	require.Len(t, written, 1)
	assert.FileExists(t, written[0])
	assert.NoFileExists(t, filepath.Join(dir, "2024-03-01_TH-Tariff-HScode_Part_3.csv"))
}

func TestWrite_InvalidOptions(t *testing.T) {
	_, err := Write(makeResult(1), "", Options{})
	assert.ErrorIs(t, err, types.ErrInvalidRequest)

	written, err := Write(nil, t.TempDir(), Options{})
	assert.Empty(t, written)
	assert.ErrorIs(t, err, types.ErrInvalidRequest)

	_, err = Write(makeResult(1), t.TempDir(), Options{Format: "xml"})
	assert.ErrorIs(t, err, types.ErrInvalidRequest)

	_, err = Write(makeResult(1), t.TempDir(), Options{Split: true, ChunkSize: -5})
	assert.ErrorIs(t, err, types.ErrInvalidRequest)
}

func TestWrite_XLSX(t *testing.T) {
	dir := t.TempDir()
	result := makeResult(15)

	written, err := Write(result, dir, Options{
		Split: true, ChunkSize: 10, Mode: Ceil, Format: config.FormatXLSX, Today: fixedToday,
	})
	require.NoError(t, err)
	require.Len(t, written, 2)
	assert.Equal(t, "2024-03-01_TH-Tariff-HScode_Part_2.xlsx", filepath.Base(written[1]))

	f, err := excelize.OpenFile(written[1])
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(config.DefaultSheetName)
	require.NoError(t, err)
	require.Len(t, rows, 6)
	assert.Equal(t, types.Header, rows[0])
	assert.Equal(t, "0000000010", rows[1][0])
	assert.Equal(t, "0.1", rows[1][12])
}

func TestWrite_LargeSplit(t *testing.T) {
	if testing.Short() {
		t.Skip("writes 250000 rows")
	}
	dir := t.TempDir()

	written, err := Write(makeResult(250000), dir, Options{Split: true, Today: fixedToday})
	require.NoError(t, err)
	require.Len(t, written, 3)

	total := 0
	for _, path := range written {
		total += len(readCSV(t, path)) - 1
	}
	assert.Equal(t, 250000, total)
}
