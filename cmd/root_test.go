package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/celestialorigin/celestial-legacy/internal/config"
	"github.com/celestialorigin/celestial-legacy/internal/record"
	"github.com/celestialorigin/celestial-legacy/internal/store"
)

func TestParseSince(t *testing.T) {
	tests := []struct {
		input string
		want  time.Duration
		err   bool
	}{
		{"7d", 7 * 24 * time.Hour, false},
		{"1d", 24 * time.Hour, false},
		{"24h", 24 * time.Hour, false},
		{"30m", 30 * time.Minute, false},
		{"2h30m", 2*time.Hour + 30*time.Minute, false},
		{"invalid", 0, true},
		{"", 0, true},
		{"d", 0, true},
	}

	for _, tt := range tests {
		got, err := parseSince(tt.input)
		if tt.err {
			if err == nil {
				t.Errorf("parseSince(%q): expected error, got %v", tt.input, got)
			}
			continue
		}
		if err != nil {
			t.Errorf("parseSince(%q): unexpected error: %v", tt.input, err)
			continue
		}
		if got != tt.want {
			t.Errorf("parseSince(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestHandleURL(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"https://www.youtube.com/@lukia_sonic", "https://www.youtube.com/@lukia_sonic"},
		{"@lukia_sonic", "https://www.youtube.com/@lukia_sonic"},
		{" lukia_sonic ", "https://www.youtube.com/@lukia_sonic"},
	}
	for _, tt := range tests {
		if got := handleURL(tt.in); got != tt.want {
			t.Errorf("handleURL(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFilterRecords(t *testing.T) {
	now := time.Now().UTC()
	records := []record.Record{
		{ID: "a", Date: now.Format(time.RFC3339)},
		{ID: "b", Date: now.Add(-48 * time.Hour).Format(record.DateLayout)},
		{ID: "c", Date: "undated"},
		{ID: "d", Date: now.Add(-1 * time.Hour).Format(time.RFC3339)},
	}

	if got := filterRecords(records, time.Time{}, 0); len(got) != 4 {
		t.Errorf("no filter: expected 4, got %d", len(got))
	}
	if got := filterRecords(records, time.Time{}, 2); len(got) != 2 || got[1].ID != "b" {
		t.Errorf("limit 2: got %+v", got)
	}
	got := filterRecords(records, now.Add(-24*time.Hour), 0)
	if len(got) != 2 || got[0].ID != "a" || got[1].ID != "d" {
		t.Errorf("since 24h: got %+v", got)
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("観測シグナル", 4); got != "観測シ…" {
		t.Errorf("truncate = %q", got)
	}
	if got := truncate("short", 10); got != "short" {
		t.Errorf("truncate = %q", got)
	}
}

func TestFormatBytes(t *testing.T) {
	tests := []struct {
		in   int64
		want string
	}{
		{512, "512 B"},
		{2048, "2.0 KB"},
		{3 << 20, "3.0 MB"},
	}
	for _, tt := range tests {
		if got := formatBytes(tt.in); got != tt.want {
			t.Errorf("formatBytes(%d) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestRenderTablePlainWhenNotTerminal(t *testing.T) {
	var buf bytes.Buffer
	out := renderTable(&buf, []string{"ID", "Title"}, [][]string{{"SONIC-xyz", "Void Pattern"}}, nil)
	if strings.Contains(out, "\x1b[") {
		t.Error("expected no escape codes for a non-terminal writer")
	}
	if !strings.Contains(out, "SONIC-xyz") || !strings.Contains(out, "Void Pattern") {
		t.Errorf("table missing row:\n%s", out)
	}
	if renderTable(&buf, nil, nil, nil) != "" {
		t.Error("expected empty output without headers")
	}
}

// writeConfig writes a config with one updates store under a temp data dir.
func writeConfig(t *testing.T, enableSync bool) (cfgPath, dataDir string) {
	t.Helper()
	dir := t.TempDir()
	dataDir = filepath.Join(dir, "data")
	cfgPath = filepath.Join(dir, "config.yaml")
	body := "data_dir: " + dataDir + "\n" +
		"ledger_path: " + filepath.Join(dir, "ledger.db") + "\n" +
		"stores:\n  - name: updates\n    path: updates.json\n    format: updates\n" +
		"sources:\n  - name: sonic\n    store: updates\n    type: youtube\n    source: youtube\n    category: SONIC\n    url: https://127.0.0.1:1/feed\n    enabled: true\n"
	if enableSync {
		body += "enable_sync: true\n"
	}
	if err := os.WriteFile(cfgPath, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return cfgPath, dataDir
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&bytes.Buffer{})
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
		flagSyncStore, flagListStore, flagListSince, flagListLimit = "", "", "", 0
		flagPruneStore, flagPruneKeep = "", 0
	})
	err := rootCmd.Execute()
	return out.String(), err
}

func TestSyncCommandDisabled(t *testing.T) {
	t.Setenv("ENABLE_SYNC", "false")
	cfgPath, dataDir := writeConfig(t, false)

	out, err := execute(t, "--config", cfgPath, "sync")
	if err != nil {
		t.Fatalf("sync: %v", err)
	}
	if !strings.Contains(out, "Sync disabled") {
		t.Errorf("unexpected output %q", out)
	}
	if _, err := os.Stat(dataDir); !os.IsNotExist(err) {
		t.Errorf("disabled sync created %s", dataDir)
	}
	if _, err := os.Stat(filepath.Join(filepath.Dir(cfgPath), "ledger.db")); !os.IsNotExist(err) {
		t.Error("disabled sync created the ledger")
	}
}

func TestListAndPruneCommands(t *testing.T) {
	cfgPath, dataDir := writeConfig(t, false)
	path := filepath.Join(dataDir, "updates.json")
	records := []record.Record{
		{ID: "SONIC-abc", Source: record.SourceYouTube, Title: "First Light", Date: "2026-01-01", URL: "https://youtube.com/watch?v=abc"},
		{ID: "SONIC-xyz", Source: record.SourceYouTube, Title: "Void Pattern", Date: "2026-01-02", URL: "https://youtube.com/watch?v=xyz"},
	}
	if err := store.Save(path, records); err != nil {
		t.Fatal(err)
	}

	out, err := execute(t, "--config", cfgPath, "list", "--store", "updates")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if !strings.Contains(out, "SONIC-xyz") || !strings.Contains(out, "First Light") {
		t.Errorf("list output missing records:\n%s", out)
	}

	out, err = execute(t, "--config", cfgPath, "prune", "--keep", "1")
	if err != nil {
		t.Fatalf("prune: %v", err)
	}
	if !strings.Contains(out, "pruned 1 record(s)") {
		t.Errorf("unexpected prune output %q", out)
	}
	got, err := store.Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].ID != "SONIC-xyz" {
		t.Errorf("expected only the newest record kept, got %+v", got)
	}
}

func TestFindRecord(t *testing.T) {
	dir := t.TempDir()
	cfg := &config.Config{
		DataDir: dir,
		Stores: []config.Store{
			{Name: "updates", Path: "updates.json", Format: config.FormatUpdates},
			{Name: "signals", Path: "signals.json", Format: config.FormatSignals},
		},
	}
	sig := record.Record{ID: "sig-youtube-20260102-001", URL: "https://youtube.com/watch?v=xyz", Date: "2026-01-02T10:00:00Z"}
	if err := store.Save(filepath.Join(dir, "signals.json"), []record.Record{sig}); err != nil {
		t.Fatal(err)
	}

	r, ok := findRecord(cfg, sig.ID)
	if !ok || r.URL != sig.URL {
		t.Errorf("findRecord = %+v, %v", r, ok)
	}
	if _, ok := findRecord(cfg, "missing"); ok {
		t.Error("expected missing record not to be found")
	}
}
