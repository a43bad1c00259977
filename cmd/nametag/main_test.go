package main

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "charm.land/bubbletea/v2"
	"github.com/xuri/excelize/v2"

	"github.com/hylla/nametag/internal/adapters/wca"
	"github.com/hylla/nametag/internal/app"
	"github.com/hylla/nametag/internal/config"
	"github.com/hylla/nametag/internal/tui"
)

// TestMain sets deterministic environment defaults for CLI tests.
func TestMain(m *testing.M) {
	_ = os.Setenv("NAMETAG_DEV_MODE", "false")
	os.Exit(m.Run())
}

const testCompetitionWCIF = `{
  "id": "ExampleOpen2026",
  "name": "Example Open 2026",
  "shortName": "Example 2026",
  "persons": [
    {"registrantId": 1, "wcaUserId": 101, "name": "Jane Doe", "wcaId": "2019DOEJ01", "countryIso2": "US",
     "roles": ["delegate"], "registration": {"status": "accepted", "isCompeting": true},
     "assignments": [{"activityId": 11, "assignmentCode": "competitor"}, {"activityId": 12, "assignmentCode": "staff-judge"}]},
    {"registrantId": 2, "wcaUserId": 102, "name": "Max Mustermann", "countryIso2": "DE",
     "registration": {"status": "accepted", "isCompeting": true},
     "assignments": [{"activityId": 12, "assignmentCode": "competitor"}, {"activityId": 99, "assignmentCode": "competitor"}]},
    {"registrantId": 3, "wcaUserId": 103, "name": "Pending Person", "countryIso2": "US",
     "registration": {"status": "pending", "isCompeting": true}, "assignments": []}
  ],
  "schedule": {
    "startDate": "2026-05-02",
    "numberOfDays": 1,
    "venues": [{"id": 1, "name": "Hall", "timezone": "Europe/Berlin", "rooms": [{"id": 1, "name": "Main", "activities": [
      {"id": 1, "activityCode": "333-r1", "startTime": "2026-05-02T08:00:00Z", "endTime": "2026-05-02T09:00:00Z",
       "childActivities": [
         {"id": 11, "activityCode": "333-r1-g1", "startTime": "2026-05-02T08:00:00Z", "endTime": "2026-05-02T08:30:00Z"},
         {"id": 12, "activityCode": "333-r1-g2", "startTime": "2026-05-02T08:30:00Z", "endTime": "2026-05-02T09:00:00Z"}
       ]}
    ]}]}]
  }
}`

const (
	testResultsTSV   = "competitionId\tpersonId\nA2019\t2019DOEJ01\nB2020\t2019DOEJ01\nB2020\t2020OTHR01\n"
	testCountriesTSV = "id\tname\tiso2\nUSA\tUnited States\tUS\nGermany\tGermany\tDE\n"
)

// isolatePaths points platform paths at a temp dir for one test.
func isolatePaths(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(root, "config"))
	t.Setenv("XDG_DATA_HOME", filepath.Join(root, "data"))
	t.Setenv("XDG_CACHE_HOME", filepath.Join(root, "cache"))
	t.Setenv("NAMETAG_CONFIG", "")
	t.Setenv("NAMETAG_DB_PATH", "")
	t.Setenv("NAMETAG_APP_NAME", "")
	return root
}

// newWCIFServer serves the competition fixture on the public WCIF path.
func newWCIFServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v0/competitions/ExampleOpen2026/wcif/public" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, testCompetitionWCIF)
	}))
	t.Cleanup(srv.Close)
	return srv
}

// writeExport writes the two export files into dir.
func writeExport(t *testing.T, dir string) {
	t.Helper()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("MkdirAll() error = %v", err)
	}
	files := map[string]string{
		wca.ResultsFile:   testResultsTSV,
		wca.CountriesFile: testCountriesTSV,
	}
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
			t.Fatalf("WriteFile(%s) error = %v", name, err)
		}
	}
}

// writeTestConfig writes a config pointing at the fake API and export dir.
func writeTestConfig(t *testing.T, path, baseURL, exportDir, extra string) {
	t.Helper()
	content := fmt.Sprintf(`
[data]
export_dir = %q
use_history = true

[api]
base_url = %q
requests_per_second = 0

[layout]
paper = "A4"
padding = "page"

[logging]
level = "warn"
%s`, exportDir, baseURL, extra)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
}

func TestRunVersion(t *testing.T) {
	isolatePaths(t)
	var out, errOut bytes.Buffer
	if err := run(context.Background(), []string{"--version"}, &out, &errOut); err != nil {
		t.Fatalf("run(--version) error = %v", err)
	}
	if !strings.Contains(out.String(), version) {
		t.Fatalf("expected version output, got %q", out.String())
	}
}

func TestRunUnknownCommand(t *testing.T) {
	isolatePaths(t)
	err := run(context.Background(), []string{"print-everything"}, io.Discard, io.Discard)
	if err == nil || !strings.Contains(err.Error(), "unknown command") {
		t.Fatalf("expected unknown command error, got %v", err)
	}
}

func TestRunPathsCommand(t *testing.T) {
	root := isolatePaths(t)
	var out bytes.Buffer
	if err := run(context.Background(), []string{"--app", "nametag-test", "paths"}, &out, io.Discard); err != nil {
		t.Fatalf("run(paths) error = %v", err)
	}
	text := out.String()
	for _, want := range []string{
		"app: nametag-test",
		"dev_mode: false",
		"config: " + filepath.Join(root, "config", "nametag-test", "config.toml"),
		"db: " + filepath.Join(root, "data", "nametag-test", "nametag-test.db"),
		"asset_dir: " + filepath.Join(root, "config", "nametag-test", "assets"),
		"export_dir: " + filepath.Join(root, "cache", "nametag-test", "export"),
	} {
		if !strings.Contains(text, want) {
			t.Fatalf("expected %q in paths output, got\n%s", want, text)
		}
	}
}

func TestRunConfigAndDBEnvOverrides(t *testing.T) {
	root := isolatePaths(t)
	cfgPath := filepath.Join(root, "custom", "nametag.toml")
	dbPath := filepath.Join(root, "custom", "nametag.db")
	t.Setenv("NAMETAG_CONFIG", cfgPath)
	t.Setenv("NAMETAG_DB_PATH", dbPath)

	var out bytes.Buffer
	if err := run(context.Background(), []string{"paths"}, &out, io.Discard); err != nil {
		t.Fatalf("run(paths) error = %v", err)
	}
	if !strings.Contains(out.String(), "config: "+cfgPath) || !strings.Contains(out.String(), "db: "+dbPath) {
		t.Fatalf("expected env overrides in output, got\n%s", out.String())
	}
}

func TestParseBoolEnv(t *testing.T) {
	t.Setenv("NAMETAG_TEST_BOOL", "true")
	if v, ok := parseBoolEnv("NAMETAG_TEST_BOOL"); !ok || !v {
		t.Fatalf("expected true/true, got %t/%t", v, ok)
	}
	t.Setenv("NAMETAG_TEST_BOOL", "definitely")
	if _, ok := parseBoolEnv("NAMETAG_TEST_BOOL"); ok {
		t.Fatal("expected invalid bool to be ignored")
	}
	t.Setenv("NAMETAG_TEST_BOOL", "")
	if _, ok := parseBoolEnv("NAMETAG_TEST_BOOL"); ok {
		t.Fatal("expected empty value to be ignored")
	}
}

func TestRunGenerateWritesOutputsAndRecordsRun(t *testing.T) {
	root := isolatePaths(t)
	srv := newWCIFServer(t)
	exportDir := filepath.Join(root, "export")
	writeExport(t, exportDir)
	cfgPath := filepath.Join(root, "config.toml")
	writeTestConfig(t, cfgPath, srv.URL, exportDir, "")
	dbPath := filepath.Join(root, "nametag.db")
	htmlPath := filepath.Join(root, "out", "tags.html")
	xlsxPath := filepath.Join(root, "out", "tags.xlsx")

	var out bytes.Buffer
	args := []string{
		"--config", cfgPath, "--db", dbPath,
		"generate", "ExampleOpen2026", htmlPath,
		"--no-progress", "--xlsx", xlsxPath, "--width", "9.5",
	}
	if err := run(context.Background(), args, &out, io.Discard); err != nil {
		t.Fatalf("run(generate) error = %v", err)
	}

	html, err := os.ReadFile(htmlPath)
	if err != nil {
		t.Fatalf("ReadFile(html) error = %v", err)
	}
	for _, want := range []string{"Jane Doe", "Max Mustermann", "9.5cm"} {
		if !strings.Contains(string(html), want) {
			t.Fatalf("expected %q in rendered html", want)
		}
	}
	if strings.Contains(string(html), "Pending Person") {
		t.Fatal("expected pending registration to be skipped")
	}

	book, err := excelize.OpenFile(xlsxPath)
	if err != nil {
		t.Fatalf("OpenFile(xlsx) error = %v", err)
	}
	defer book.Close()
	rows, err := book.GetRows("Competitors")
	if err != nil {
		t.Fatalf("GetRows() error = %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("expected header plus 2 competitors, got %d rows", len(rows))
	}

	summary := out.String()
	if !strings.Contains(summary, "ExampleOpen2026") || !strings.Contains(summary, htmlPath) {
		t.Fatalf("expected summary table, got\n%s", summary)
	}

	var runsOut bytes.Buffer
	if err := run(context.Background(), []string{"--config", cfgPath, "--db", dbPath, "runs"}, &runsOut, io.Discard); err != nil {
		t.Fatalf("run(runs) error = %v", err)
	}
	if !strings.Contains(runsOut.String(), "ExampleOpen2026") {
		t.Fatalf("expected recorded run, got\n%s", runsOut.String())
	}
}

func TestRunGenerateRequiresExport(t *testing.T) {
	root := isolatePaths(t)
	srv := newWCIFServer(t)
	cfgPath := filepath.Join(root, "config.toml")
	writeTestConfig(t, cfgPath, srv.URL, filepath.Join(root, "missing-export"), "")

	args := []string{"--config", cfgPath, "--db", filepath.Join(root, "nametag.db"), "generate", "ExampleOpen2026", "--no-progress"}
	err := run(context.Background(), args, io.Discard, io.Discard)
	if !errors.Is(err, errExportMissing) {
		t.Fatalf("expected errExportMissing, got %v", err)
	}
}

func TestRunGenerateReportsStageFailure(t *testing.T) {
	root := isolatePaths(t)
	srv := newWCIFServer(t)
	exportDir := filepath.Join(root, "export")
	writeExport(t, exportDir)
	cfgPath := filepath.Join(root, "config.toml")
	writeTestConfig(t, cfgPath, srv.URL, exportDir, "")

	args := []string{"--config", cfgPath, "--db", filepath.Join(root, "nametag.db"), "generate", "Unknown2026", "--no-progress"}
	err := run(context.Background(), args, io.Discard, io.Discard)
	var stageErr *app.StageError
	if !errors.As(err, &stageErr) || stageErr.Stage != app.StageFetch {
		t.Fatalf("expected fetch stage error, got %v", err)
	}
	if !errors.Is(err, app.ErrNotFound) {
		t.Fatalf("expected ErrNotFound cause, got %v", err)
	}
}

func TestRunGenerateRejectsInvalidFlags(t *testing.T) {
	root := isolatePaths(t)
	exportDir := filepath.Join(root, "export")
	writeExport(t, exportDir)
	cfgPath := filepath.Join(root, "config.toml")
	writeTestConfig(t, cfgPath, "http://127.0.0.1:1", exportDir, "")

	args := []string{"--config", cfgPath, "--db", filepath.Join(root, "nametag.db"), "generate", "ExampleOpen2026", "--paper", "Tabloid"}
	if err := run(context.Background(), args, io.Discard, io.Discard); err == nil || !strings.Contains(err.Error(), "invalid generate flags") {
		t.Fatalf("expected invalid flag error, got %v", err)
	}
}

// scriptedProgram feeds sent messages through the model until the run finishes.
type scriptedProgram struct {
	model tea.Model
	msgs  chan tea.Msg
}

// Run applies queued messages until a DoneMsg arrives.
func (p *scriptedProgram) Run() (tea.Model, error) {
	m := p.model
	for msg := range p.msgs {
		m, _ = m.Update(msg)
		if _, ok := msg.(tui.DoneMsg); ok {
			return m, nil
		}
	}
	return m, nil
}

// Send queues one message.
func (p *scriptedProgram) Send(msg tea.Msg) {
	p.msgs <- msg
}

func TestRunGenerateDrivesProgressProgram(t *testing.T) {
	root := isolatePaths(t)
	srv := newWCIFServer(t)
	exportDir := filepath.Join(root, "export")
	writeExport(t, exportDir)
	cfgPath := filepath.Join(root, "config.toml")
	writeTestConfig(t, cfgPath, srv.URL, exportDir, "")

	origFactory, origTerminal := programFactory, isTerminal
	t.Cleanup(func() {
		programFactory, isTerminal = origFactory, origTerminal
	})
	isTerminal = func(io.Writer) bool { return true }
	var prog *scriptedProgram
	programFactory = func(m tea.Model, _ ...tea.ProgramOption) program {
		prog = &scriptedProgram{model: m, msgs: make(chan tea.Msg, 64)}
		return prog
	}

	args := []string{
		"--config", cfgPath, "--db", filepath.Join(root, "nametag.db"),
		"generate", "ExampleOpen2026", filepath.Join(root, "tags.html"),
	}
	if err := run(context.Background(), args, io.Discard, io.Discard); err != nil {
		t.Fatalf("run(generate) error = %v", err)
	}
	if prog == nil {
		t.Fatal("expected progress program to be started")
	}
}

func TestRunUpdateDownloadsExport(t *testing.T) {
	root := isolatePaths(t)
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, content := range map[string]string{
		"WCA_export_Results.tsv":   testResultsTSV,
		"WCA_export_Countries.tsv": testCountriesTSV,
	} {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatalf("Create() error = %v", err)
		}
		_, _ = io.WriteString(w, content)
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	archive := buf.Bytes()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write(archive)
	}))
	defer srv.Close()

	exportDir := filepath.Join(root, "export")
	cfgPath := filepath.Join(root, "config.toml")
	writeTestConfig(t, cfgPath, srv.URL, exportDir, "")

	var out bytes.Buffer
	args := []string{"--config", cfgPath, "--db", filepath.Join(root, "nametag.db"), "update", "--url", srv.URL + "/export.zip"}
	if err := run(context.Background(), args, &out, io.Discard); err != nil {
		t.Fatalf("run(update) error = %v", err)
	}
	if !(wca.ExportDir{Dir: exportDir}).Exists() {
		t.Fatal("expected export files after update")
	}
	if !strings.Contains(out.String(), exportDir) {
		t.Fatalf("expected export dir in output, got %q", out.String())
	}
}

// freeAddr reserves a loopback port and releases it for the server under test.
func freeAddr(t *testing.T) string {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("Listen() error = %v", err)
	}
	addr := ln.Addr().String()
	_ = ln.Close()
	return addr
}

func TestRunServeServesPreview(t *testing.T) {
	root := isolatePaths(t)
	srv := newWCIFServer(t)
	exportDir := filepath.Join(root, "export")
	writeExport(t, exportDir)
	cfgPath := filepath.Join(root, "config.toml")
	writeTestConfig(t, cfgPath, srv.URL, exportDir, "")

	origClipboard := clipboardWriteAll
	t.Cleanup(func() { clipboardWriteAll = origClipboard })
	var copied string
	clipboardWriteAll = func(text string) error {
		copied = text
		return nil
	}

	addr := freeAddr(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	errCh := make(chan error, 1)
	go func() {
		args := []string{"--config", cfgPath, "--db", filepath.Join(root, "nametag.db"), "serve", "ExampleOpen2026", "--bind", addr, "--copy-url"}
		errCh <- run(ctx, args, io.Discard, io.Discard)
	}()

	base := "http://" + addr
	deadline := time.Now().Add(10 * time.Second)
	for {
		resp, err := http.Get(base + "/readyz")
		if err == nil {
			_ = resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				break
			}
		}
		if time.Now().After(deadline) {
			t.Fatalf("server never became ready: %v", err)
		}
		time.Sleep(50 * time.Millisecond)
	}

	resp, err := http.Get(base + "/")
	if err != nil {
		t.Fatalf("GET / error = %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusOK || !strings.Contains(string(body), "Jane Doe") {
		t.Fatalf("unexpected preview %d: %.200s", resp.StatusCode, body)
	}

	cancel()
	select {
	case err := <-errCh:
		if err != nil {
			t.Fatalf("run(serve) error = %v", err)
		}
	case <-time.After(10 * time.Second):
		t.Fatal("serve did not stop after cancel")
	}
	if copied != base+"/" {
		t.Fatalf("expected copied url %q, got %q", base+"/", copied)
	}
}

func TestRunRejectsInvalidLoggingLevelFromConfig(t *testing.T) {
	root := isolatePaths(t)
	cfgPath := filepath.Join(root, "config.toml")
	writeTestConfig(t, cfgPath, "http://127.0.0.1:1", filepath.Join(root, "export"), "")
	content, err := os.ReadFile(cfgPath)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	content = bytes.Replace(content, []byte(`level = "warn"`), []byte(`level = "loud"`), 1)
	if err := os.WriteFile(cfgPath, content, 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	err = run(context.Background(), []string{"--config", cfgPath, "runs"}, io.Discard, io.Discard)
	if err == nil || !strings.Contains(err.Error(), "logging.level") {
		t.Fatalf("expected logging level error, got %v", err)
	}
}

func TestRuntimeLoggerCanMuteConsoleSink(t *testing.T) {
	var buf bytes.Buffer
	logger, err := newRuntimeLogger(&buf, "nametag", false, config.LoggingConfig{Level: "info"}, time.Now)
	if err != nil {
		t.Fatalf("newRuntimeLogger() error = %v", err)
	}
	logger.Info("visible")
	logger.SetConsoleEnabled(false)
	logger.Info("hidden")
	logger.SetConsoleEnabled(true)
	logger.Diagnostics("ExampleOpen2026", []app.WarningSummary{{
		Kind: app.WarningUnknownActivity, Count: 4, Samples: []string{"activity 99"},
	}})

	out := buf.String()
	if !strings.Contains(out, "visible") || strings.Contains(out, "hidden") {
		t.Fatalf("unexpected console output %q", out)
	}
	if !strings.Contains(out, "unknown_activity") || !strings.Contains(out, "activity 99") {
		t.Fatalf("expected diagnostics warning, got %q", out)
	}
}

func TestRunDevModeCreatesWorkspaceLogFile(t *testing.T) {
	root := isolatePaths(t)
	logDir := filepath.Join(root, "logs")
	logger, err := newRuntimeLogger(io.Discard, "nametag/dev", true, config.LoggingConfig{
		Level:   "debug",
		DevFile: config.DevFileConfig{Enabled: true, Dir: logDir},
	}, func() time.Time { return time.Date(2026, 5, 2, 9, 0, 0, 0, time.UTC) })
	if err != nil {
		t.Fatalf("newRuntimeLogger() error = %v", err)
	}
	logger.Debug("stage started", "stage", "fetch")
	if err := logger.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	want := filepath.Join(logDir, "nametag-dev-20260502.log")
	if logger.DevLogPath() != want {
		t.Fatalf("expected dev log %q, got %q", want, logger.DevLogPath())
	}
	content, err := os.ReadFile(want)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if !strings.Contains(string(content), "stage=fetch") {
		t.Fatalf("expected logfmt line, got %q", content)
	}
}

func TestWorkspaceRootFromUsesNearestMarker(t *testing.T) {
	root := t.TempDir()
	nested := filepath.Join(root, "a", "b")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatalf("MkdirAll() error = %v", err)
	}
	if err := os.WriteFile(filepath.Join(root, "go.mod"), []byte("module x\n"), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	if got := workspaceRootFrom(nested); got != root {
		t.Fatalf("expected %q, got %q", root, got)
	}
}

func TestPaperChoicesListsPresets(t *testing.T) {
	if got, want := paperChoices(), "A4, Letter or custom"; got != want {
		t.Fatalf("paperChoices() = %q, want %q", got, want)
	}
}

func TestSanitizeLogFileStem(t *testing.T) {
	cases := map[string]string{
		"nametag":     "nametag",
		" my app ":    "my-app",
		"a/b:c":       "a-b-c",
		"  //  ":      "nametag",
		"nametag-dev": "nametag-dev",
	}
	for in, want := range cases {
		if got := sanitizeLogFileStem(in); got != want {
			t.Fatalf("sanitizeLogFileStem(%q) = %q, want %q", in, got, want)
		}
	}
}
