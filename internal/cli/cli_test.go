package cli

import (
	"bytes"
	"context"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/abhibongale/presto/internal/config"
	"github.com/abhibongale/presto/internal/logging"
	"github.com/abhibongale/presto/internal/server"
	"github.com/abhibongale/presto/internal/store"
	"github.com/abhibongale/presto/internal/tracker"
	"github.com/abhibongale/presto/pkg/model"
)

// startTestServer starts a server with an in-memory SQLite store and returns
// the URL together with the tracker for direct state seeding.
func startTestServer(t *testing.T) (string, *tracker.Tracker) {
	t.Helper()

	st, err := store.NewSQLiteStore(":memory:", logging.Nop())
	if err != nil {
		t.Fatalf("open test store: %v", err)
	}
	if err := st.Migrate(context.Background()); err != nil {
		t.Fatalf("migrate test store: %v", err)
	}
	t.Cleanup(func() { st.Close() })

	tr := tracker.New(logging.Nop())
	srv := server.New(config.DefaultServerConfig(), tr, st, logging.Nop())
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts.URL, tr
}

func seedStage(t *testing.T, tr *tracker.Tracker, stageID int) *tracker.StageExecution {
	t.Helper()
	se, err := tr.Register(model.StageExecutionID{StageID: stageID, ID: 0})
	if err != nil {
		t.Fatalf("register stage: %v", err)
	}
	return se
}

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := NewRootCmd()

	var buf bytes.Buffer
	root.SetOut(&buf)
	root.SetErr(&buf)
	root.SetArgs(args)

	err := root.Execute()
	return buf.String(), err
}

// captureStdout runs fn and returns what it printed to os.Stdout.
func captureStdout(t *testing.T, fn func()) string {
	t.Helper()

	old := os.Stdout
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatal(err)
	}
	os.Stdout = w

	fn()

	w.Close()
	os.Stdout = old

	var buf bytes.Buffer
	buf.ReadFrom(r)
	return buf.String()
}

func TestRegisterCommand(t *testing.T) {
	url, _ := startTestServer(t)

	var err error
	output := captureStdout(t, func() {
		_, err = runCLI(t, "--server", url, "register", "3.0")
	})
	if err != nil {
		t.Fatalf("register error: %v\noutput: %s", err, output)
	}
	if !strings.Contains(output, "Stage execution registered: 3.0") {
		t.Errorf("expected registration confirmation in output, got: %s", output)
	}
	if !strings.Contains(output, "PLANNED") {
		t.Errorf("expected PLANNED state in output, got: %s", output)
	}
}

func TestRegisterCommand_BadID(t *testing.T) {
	url, _ := startTestServer(t)
	if _, err := runCLI(t, "--server", url, "register", "not-an-id"); err == nil {
		t.Fatal("expected error for malformed stage execution id")
	}
}

func TestStatusCommand(t *testing.T) {
	url, tr := startTestServer(t)
	se := seedStage(t, tr, 3)
	se.RecordTaskReport(model.TaskReport{
		TaskID: "t0",
		Status: model.TaskStatus{State: model.TaskStateRunning},
		Stats:  model.TaskStats{TotalDrivers: 4, TotalCPUTimeNanos: 1500},
	})

	var err error
	output := captureStdout(t, func() {
		_, err = runCLI(t, "--server", url, "status", "3.0")
	})
	if err != nil {
		t.Fatalf("status error: %v", err)
	}
	if !strings.Contains(output, "Stage execution: 3.0") {
		t.Errorf("expected stage id in output, got: %s", output)
	}
	if !strings.Contains(output, "PLANNED") {
		t.Errorf("expected state in output, got: %s", output)
	}
	if !strings.Contains(output, "1 total, 1 running") {
		t.Errorf("expected task counts in output, got: %s", output)
	}
}

func TestStatusCommand_Unscheduled(t *testing.T) {
	url, _ := startTestServer(t)

	var err error
	output := captureStdout(t, func() {
		_, err = runCLI(t, "--server", url, "status", "9.0", "--unscheduled", "--query-done")
	})
	if err != nil {
		t.Fatalf("status --unscheduled error: %v", err)
	}
	if !strings.Contains(output, "ABORTED") {
		t.Errorf("expected ABORTED state in output, got: %s", output)
	}
}

func TestStatusCommand_NotFound(t *testing.T) {
	url, _ := startTestServer(t)
	if _, err := runCLI(t, "--server", url, "status", "9.0"); err == nil {
		t.Fatal("expected error for unknown stage execution")
	}
}

func TestListCommand(t *testing.T) {
	url, tr := startTestServer(t)
	seedStage(t, tr, 0)
	seedStage(t, tr, 1)

	var err error
	output := captureStdout(t, func() {
		_, err = runCLI(t, "--server", url, "list")
	})
	if err != nil {
		t.Fatalf("list error: %v", err)
	}
	if !strings.Contains(output, "ID") || !strings.Contains(output, "STATE") {
		t.Errorf("expected table header in output, got: %s", output)
	}
	if !strings.Contains(output, "0.0") || !strings.Contains(output, "1.0") {
		t.Errorf("expected both stage executions in output, got: %s", output)
	}
}

func TestListCommand_Where(t *testing.T) {
	url, tr := startTestServer(t)
	seedStage(t, tr, 0)
	se := seedStage(t, tr, 1)
	se.RecordTaskReport(model.TaskReport{
		TaskID: "t0",
		Status: model.TaskStatus{State: model.TaskStateRunning},
	})

	var err error
	output := captureStdout(t, func() {
		_, err = runCLI(t, "--server", url, "list", "--where", "stats.totalTasks > 0")
	})
	if err != nil {
		t.Fatalf("list --where error: %v", err)
	}
	if strings.Contains(output, "0.0") {
		t.Errorf("stage 0.0 should have been filtered out, got: %s", output)
	}
	if !strings.Contains(output, "1.0") {
		t.Errorf("expected stage 1.0 in output, got: %s", output)
	}
}

func TestTasksCommand(t *testing.T) {
	url, tr := startTestServer(t)
	se := seedStage(t, tr, 2)
	se.RecordTaskReport(model.TaskReport{
		TaskID: "worker-7.task-0",
		Status: model.TaskStatus{State: model.TaskStateFinished},
		Stats:  model.TaskStats{TotalDrivers: 2},
	})

	var err error
	output := captureStdout(t, func() {
		_, err = runCLI(t, "--server", url, "tasks", "2.0")
	})
	if err != nil {
		t.Fatalf("tasks error: %v", err)
	}
	if !strings.Contains(output, "worker-7.task-0") {
		t.Errorf("expected task id in output, got: %s", output)
	}
	if !strings.Contains(output, "FINISHED") {
		t.Errorf("expected task state in output, got: %s", output)
	}
}

func TestSummariesCommand_Empty(t *testing.T) {
	url, _ := startTestServer(t)

	var err error
	output := captureStdout(t, func() {
		_, err = runCLI(t, "--server", url, "summaries")
	})
	if err != nil {
		t.Fatalf("summaries error: %v", err)
	}
	if !strings.Contains(output, "No finalized summaries found.") {
		t.Errorf("expected empty message, got: %s", output)
	}
}
