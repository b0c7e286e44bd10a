package storage

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"resumechat/internal/core"
)

func TestFileStorage_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stats.json")
	fs := NewFileStorage(path)

	ts := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	in := &core.RequestStats{
		TotalRequests:      3,
		SuccessfulRequests: 2,
		FailedRequests:     1,
		TotalResponseTime:  450,
		LastRequestTime:    ts,
		RequestHistory: []core.RequestRecord{
			{Timestamp: ts, Success: true, ResponseTime: 150, Protocol: core.ProtocolAssistant, Status: 200},
			{Timestamp: ts, Success: false, ResponseTime: 300, Protocol: core.ProtocolAssistant, Status: 504},
		},
	}

	if err := fs.SaveStats(in); err != nil {
		t.Fatalf("SaveStats() error = %v", err)
	}
	out, err := fs.LoadStats()
	if err != nil {
		t.Fatalf("LoadStats() error = %v", err)
	}

	if out.TotalRequests != 3 || out.FailedRequests != 1 || out.TotalResponseTime != 450 {
		t.Errorf("counters = %+v", out)
	}
	if !out.LastRequestTime.Equal(ts) {
		t.Errorf("LastRequestTime = %v, want %v", out.LastRequestTime, ts)
	}
	if len(out.RequestHistory) != 2 || out.RequestHistory[1].Status != 504 {
		t.Errorf("history = %+v", out.RequestHistory)
	}

	entries, _ := os.ReadDir(filepath.Dir(path))
	if len(entries) != 1 {
		t.Errorf("expected only the stats file, found %d entries", len(entries))
	}
}

func TestFileStorage_MissingFile(t *testing.T) {
	fs := NewFileStorage(filepath.Join(t.TempDir(), "absent.json"))

	stats, err := fs.LoadStats()
	if err != nil {
		t.Fatalf("LoadStats() error = %v", err)
	}
	if stats.TotalRequests != 0 || stats.RequestHistory == nil {
		t.Errorf("expected empty stats with non-nil history, got %+v", stats)
	}
}

func TestFileStorage_CorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stats.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o600); err != nil {
		t.Fatal(err)
	}

	if _, err := NewFileStorage(path).LoadStats(); err == nil {
		t.Error("expected parse error")
	}
}

func TestNewFileStorage_DefaultPath(t *testing.T) {
	if fs := NewFileStorage(""); fs.filePath != core.StatsFilePath {
		t.Errorf("filePath = %q", fs.filePath)
	}
}

func TestNewRedisStorage_InvalidURL(t *testing.T) {
	if _, err := NewRedisStorage(RedisStorageConfig{URL: "not-a-url"}); err == nil {
		t.Error("expected error for invalid redis url")
	}
}

func TestInitStorage_FallsBackToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stats.json")
	t.Setenv("STATS_FILE", path)
	t.Setenv("REDIS_URL", "redis://127.0.0.1:1/0")

	st := InitStorage(&core.NopLogger{})
	fs, ok := st.(*FileStorage)
	if !ok {
		t.Fatalf("InitStorage() = %T, want *FileStorage", st)
	}
	if fs.filePath != path {
		t.Errorf("filePath = %q, want %q", fs.filePath, path)
	}
}
