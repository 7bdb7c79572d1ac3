package commands

import (
	"bytes"
	"context"
	"flag"
	"strings"
	"testing"

	"tasksync/internal/config"
	"tasksync/internal/exitcode"
	"tasksync/internal/service"
	"tasksync/internal/testutil"
)

// runCmd parses args through the command's flags and runs it against
// svc, returning exit code and captured output.
func runCmd(t *testing.T, cmd Command, svc service.Service, args ...string) (int, string, string) {
	t.Helper()
	fs := flag.NewFlagSet(cmd.Name(), flag.ContinueOnError)
	cmd.RegisterFlags(fs)
	if err := fs.Parse(args); err != nil {
		t.Fatalf("parse flags: %v", err)
	}
	var out, errOut bytes.Buffer
	code := cmd.Run(context.Background(), &config.Config{}, svc, fs.Args(), &out, &errOut)
	return code, out.String(), errOut.String()
}

func TestRegistryFindsAliases(t *testing.T) {
	for _, name := range []string{"list", "ls", "add", "create", "done", "complete", "rm", "delete", "subtasks", "tree", "help", "version"} {
		if _, ok := DefaultRegistry.Find(name); !ok {
			t.Errorf("command %q not registered", name)
		}
	}
	if _, ok := DefaultRegistry.Find("nonsense"); ok {
		t.Error("found a command that should not exist")
	}
}

func TestAddThenGet(t *testing.T) {
	fake := testutil.NewFakeService()

	code, out, errOut := runCmd(t, &AddCmd{}, fake, "--assignee", "ou_a", "--due", "2026-09-01", "Fix", "the", "login")
	if code != exitcode.Success {
		t.Fatalf("add: code %d, stderr %q", code, errOut)
	}
	if !strings.Contains(out, "assigned to ou_a") {
		t.Errorf("add output %q missing assignment", out)
	}

	task, err := fake.GetTask(context.Background(), "task_0001")
	if err != nil {
		t.Fatalf("get created task: %v", err)
	}
	if task.Summary != "Fix the login" {
		t.Errorf("summary = %q, want %q", task.Summary, "Fix the login")
	}
	if task.Due == nil || task.Due.Hour() != 23 {
		t.Errorf("bare due date should mean end of day, got %v", task.Due)
	}
}

func TestAddRequiresTitle(t *testing.T) {
	fake := testutil.NewFakeService()
	code, _, errOut := runCmd(t, &AddCmd{}, fake)
	if code != exitcode.UserError {
		t.Fatalf("code = %d, want %d", code, exitcode.UserError)
	}
	if !strings.Contains(errOut, "title required") {
		t.Errorf("stderr %q missing title error", errOut)
	}
}

func TestAddRejectsAssigneeWithBalance(t *testing.T) {
	fake := testutil.NewFakeService()
	code, _, _ := runCmd(t, &AddCmd{}, fake, "--assignee", "ou_a", "--balance", "ou_a,ou_b", "X")
	if code != exitcode.UserError {
		t.Fatalf("code = %d, want %d", code, exitcode.UserError)
	}
}

func TestAddBalancesAcrossCandidates(t *testing.T) {
	fake := testutil.NewFakeService()
	// ou_a carries two open tasks, ou_b one.
	fake.AddTask(service.Task{Summary: "x", Assignee: "ou_a"})
	fake.AddTask(service.Task{Summary: "y", Assignee: "ou_a"})
	fake.AddTask(service.Task{Summary: "z", Assignee: "ou_b"})

	code, out, errOut := runCmd(t, &AddCmd{}, fake, "--balance", "ou_a,ou_b", "New", "work")
	if code != exitcode.Success {
		t.Fatalf("code %d, stderr %q", code, errOut)
	}
	if !strings.Contains(out, "assigned to ou_b") {
		t.Errorf("output %q, want assignment to the less loaded ou_b", out)
	}
}

func TestAddResolvesEmail(t *testing.T) {
	fake := testutil.NewFakeService()
	fake.AddUser("dev@example.com", "ou_dev")

	code, out, _ := runCmd(t, &AddCmd{}, fake, "--assignee", "dev@example.com", "Email", "task")
	if code != exitcode.Success {
		t.Fatalf("code = %d", code)
	}
	if !strings.Contains(out, "assigned to ou_dev") {
		t.Errorf("output %q, want the resolved user id", out)
	}
}

func TestListOutputsTasks(t *testing.T) {
	fake := testutil.NewFakeService()
	fake.AddTask(service.Task{Summary: "First"})
	fake.AddTask(service.Task{Summary: "Second", Assignee: "ou_a"})

	code, out, _ := runCmd(t, &ListCmd{}, fake)
	if code != exitcode.Success {
		t.Fatalf("code = %d", code)
	}
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 2 {
		t.Fatalf("got %d lines, want 2:\n%s", len(lines), out)
	}
	if !strings.Contains(lines[0], "First") || !strings.Contains(lines[1], "@ou_a") {
		t.Errorf("unexpected listing:\n%s", out)
	}
}

func TestListEmpty(t *testing.T) {
	fake := testutil.NewFakeService()
	code, out, _ := runCmd(t, &ListCmd{}, fake)
	if code != exitcode.Success {
		t.Fatalf("code = %d", code)
	}
	if !strings.Contains(out, "no tasks") {
		t.Errorf("output %q, want the empty notice", out)
	}
}

func TestListLimit(t *testing.T) {
	fake := testutil.NewFakeService()
	for range 5 {
		fake.AddTask(service.Task{Summary: "t"})
	}
	_, out, _ := runCmd(t, &ListCmd{}, fake, "--limit", "2")
	if n := strings.Count(out, "(task_"); n != 2 {
		t.Errorf("listed %d tasks, want 2", n)
	}
}

func TestListStatusFilter(t *testing.T) {
	fake := testutil.NewFakeService()
	fake.AddTask(service.Task{Summary: "open", Status: service.StatusTodo})
	fake.AddTask(service.Task{Summary: "closed", Status: service.StatusCompleted})

	_, out, _ := runCmd(t, &ListCmd{}, fake, "--status", "completed")
	if strings.Contains(out, "open") || !strings.Contains(out, "closed") {
		t.Errorf("status filter not applied:\n%s", out)
	}

	code, _, _ := runCmd(t, &ListCmd{}, fake, "--status", "bogus")
	if code != exitcode.UserError {
		t.Errorf("bad status: code = %d, want %d", code, exitcode.UserError)
	}
}

func TestDoneCompletesAndPreservesFields(t *testing.T) {
	fake := testutil.NewFakeService()
	a := fake.AddTask(service.Task{Summary: "a", Assignee: "ou_keep"})

	code, out, _ := runCmd(t, &DoneCmd{}, fake, a.ID)
	if code != exitcode.Success {
		t.Fatalf("code = %d", code)
	}
	if !strings.Contains(out, "ok "+a.ID) {
		t.Errorf("output %q missing ok line", out)
	}

	got, err := fake.GetTask(context.Background(), a.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Status != service.StatusCompleted {
		t.Errorf("status = %q, want completed", got.Status)
	}
	if got.Assignee != "ou_keep" {
		t.Errorf("assignee = %q; completing a task must not touch other fields", got.Assignee)
	}
}

func TestDonePartialFailure(t *testing.T) {
	fake := testutil.NewFakeService()
	a := fake.AddTask(service.Task{Summary: "a"})

	code, out, errOut := runCmd(t, &DoneCmd{}, fake, a.ID, "task_missing")
	if code != exitcode.BackendError {
		t.Fatalf("code = %d, want %d", code, exitcode.BackendError)
	}
	if !strings.Contains(out, "ok "+a.ID) {
		t.Errorf("the good task should still complete:\n%s", out)
	}
	if !strings.Contains(errOut, "task_missing") {
		t.Errorf("stderr %q missing the failed id", errOut)
	}
}

func TestRmToleratesMissing(t *testing.T) {
	fake := testutil.NewFakeService()
	a := fake.AddTask(service.Task{Summary: "a"})

	code, _, _ := runCmd(t, &RmCmd{}, fake, a.ID, "task_gone")
	if code != exitcode.Success {
		t.Fatalf("code = %d; deleting an already-gone task is success", code)
	}
	if _, err := fake.GetTask(context.Background(), a.ID); err == nil {
		t.Error("task still present after rm")
	}
}

func TestAssign(t *testing.T) {
	fake := testutil.NewFakeService()
	a := fake.AddTask(service.Task{Summary: "a"})

	code, out, _ := runCmd(t, &AssignCmd{}, fake, a.ID, "ou_x")
	if code != exitcode.Success {
		t.Fatalf("code = %d", code)
	}
	if !strings.Contains(out, "assigned "+a.ID+" to ou_x") {
		t.Errorf("output %q", out)
	}

	code, _, errOut := runCmd(t, &AssignCmd{}, fake, a.ID, "ou_x", "ou_y")
	if code != exitcode.UserError {
		t.Errorf("multiple users without --balance: code = %d, stderr %q", code, errOut)
	}
}

func TestAssignBalance(t *testing.T) {
	fake := testutil.NewFakeService()
	fake.AddTask(service.Task{Summary: "load", Assignee: "ou_x"})
	a := fake.AddTask(service.Task{Summary: "a"})

	code, out, _ := runCmd(t, &AssignCmd{}, fake, "--balance", a.ID, "ou_x", "ou_y")
	if code != exitcode.Success {
		t.Fatalf("code = %d", code)
	}
	if !strings.Contains(out, "to ou_y") {
		t.Errorf("output %q, want the unloaded candidate", out)
	}
}

func TestSubtasksTree(t *testing.T) {
	fake := testutil.NewFakeService()
	root := fake.AddTask(service.Task{Summary: "Root"})
	fake.AddTask(service.Task{Summary: "Child", ParentID: root.ID})

	code, out, _ := runCmd(t, &SubtasksCmd{}, fake, root.ID)
	if code != exitcode.Success {
		t.Fatalf("code = %d", code)
	}
	if !strings.Contains(out, "- Root") || !strings.Contains(out, "    - Child") {
		t.Errorf("tree output:\n%s", out)
	}
}

func TestSubtasksUnknownTask(t *testing.T) {
	fake := testutil.NewFakeService()
	code, _, errOut := runCmd(t, &SubtasksCmd{}, fake, "task_nope")
	if code != exitcode.UserError {
		t.Fatalf("code = %d, stderr %q", code, errOut)
	}
}

func TestHelpListsCommands(t *testing.T) {
	code, out, _ := runCmd(t, &HelpCmd{}, nil)
	if code != exitcode.Success {
		t.Fatalf("code = %d", code)
	}
	for _, want := range []string{"tasksync list", "tasksync add", "tasksync bulk", "tasksync report"} {
		if !strings.Contains(out, want) {
			t.Errorf("help output missing %q", want)
		}
	}
}

func TestVersion(t *testing.T) {
	code, out, _ := runCmd(t, &VersionCmd{}, nil)
	if code != exitcode.Success {
		t.Fatalf("code = %d", code)
	}
	if !strings.Contains(out, Version) {
		t.Errorf("output %q missing version", out)
	}
}

func TestParseDue(t *testing.T) {
	if _, err := parseDue("2026-09-01T10:00:00Z"); err != nil {
		t.Errorf("RFC 3339 rejected: %v", err)
	}
	d, err := parseDue("2026-09-01")
	if err != nil {
		t.Fatalf("bare date rejected: %v", err)
	}
	if d.Hour() != 23 || d.Minute() != 59 || d.Second() != 59 {
		t.Errorf("bare date = %v, want end of day", d)
	}
	if _, err := parseDue("tomorrow"); err == nil {
		t.Error("garbage due time accepted")
	}
}

func TestSplitIDs(t *testing.T) {
	got := splitIDs("a, b,,c ")
	want := []string{"a", "b", "c"}
	if len(got) != len(want) {
		t.Fatalf("got %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("got %v, want %v", got, want)
		}
	}
}
