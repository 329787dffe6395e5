package renderdb

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T) *RenderDB {
	t.Helper()
	rdb, err := Open(filepath.Join(t.TempDir(), "runs.db"))
	require.NoError(t, err)
	t.Cleanup(func() { rdb.Close() })
	return rdb
}

func TestInsertAndGetRun(t *testing.T) {
	rdb := openTestDB(t)

	params := json.RawMessage(`{"projection":"xz","width":1280,"height":720}`)
	stats := json.RawMessage(`{"points":50000,"empty_pixels":12}`)
	runID, err := rdb.InsertRun(RunRecord{
		Source:     "backyard.asc",
		Params:     params,
		Width:      1280,
		Height:     720,
		PointCount: 50000,
		Stats:      stats,
		ElapsedMS:  42.5,
	})
	require.NoError(t, err)
	require.NotEmpty(t, runID)

	rec, err := rdb.GetRun(runID)
	require.NoError(t, err)
	require.NotNil(t, rec)
	require.Equal(t, "backyard.asc", rec.Source)
	require.JSONEq(t, string(params), string(rec.Params))
	require.JSONEq(t, string(stats), string(rec.Stats))
	require.Equal(t, 50000, rec.PointCount)
	require.Equal(t, 42.5, rec.ElapsedMS)
	require.Empty(t, rec.Error)
	require.False(t, rec.CreatedAt.IsZero())
}

func TestGetRunMissing(t *testing.T) {
	rdb := openTestDB(t)

	rec, err := rdb.GetRun("no-such-run")
	require.NoError(t, err)
	require.Nil(t, rec)
}

func TestInsertFailedRun(t *testing.T) {
	rdb := openTestDB(t)

	runID, err := rdb.InsertRun(RunRecord{
		Source: "empty.asc",
		Params: json.RawMessage(`{}`),
		Error:  "empty dataset",
	})
	require.NoError(t, err)

	rec, err := rdb.GetRun(runID)
	require.NoError(t, err)
	require.NotNil(t, rec)
	require.Equal(t, "empty dataset", rec.Error)
	require.Nil(t, rec.Stats)
}

func TestListRunsNewestFirst(t *testing.T) {
	rdb := openTestDB(t)

	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	var ids []string
	for i := 0; i < 3; i++ {
		id, err := rdb.InsertRun(RunRecord{
			Source:    "scan.asc",
			Params:    json.RawMessage(`{}`),
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		})
		require.NoError(t, err)
		ids = append(ids, id)
	}

	runs, err := rdb.ListRuns(0)
	require.NoError(t, err)
	require.Len(t, runs, 3)
	require.Equal(t, ids[2], runs[0].RunID)
	require.Equal(t, ids[0], runs[2].RunID)

	runs, err = rdb.ListRuns(2)
	require.NoError(t, err)
	require.Len(t, runs, 2)
}

func TestDeleteRun(t *testing.T) {
	rdb := openTestDB(t)

	runID, err := rdb.InsertRun(RunRecord{Source: "scan.asc", Params: json.RawMessage(`{}`)})
	require.NoError(t, err)
	require.NoError(t, rdb.DeleteRun(runID))

	rec, err := rdb.GetRun(runID)
	require.NoError(t, err)
	require.Nil(t, rec)
}

func TestWriteReport(t *testing.T) {
	rdb := openTestDB(t)

	var buf bytes.Buffer
	err := rdb.WriteReport(&buf, 10)
	require.Error(t, err, "report over an empty store should fail")

	_, err = rdb.InsertRun(RunRecord{
		Source:     "scan.asc",
		Params:     json.RawMessage(`{}`),
		PointCount: 1234,
		ElapsedMS:  17.2,
	})
	require.NoError(t, err)

	buf.Reset()
	require.NoError(t, rdb.WriteReport(&buf, 10))
	html := buf.String()
	require.True(t, strings.Contains(html, "echarts"), "report should embed an echarts chart")
	require.Contains(t, html, "elapsed_ms")
}
