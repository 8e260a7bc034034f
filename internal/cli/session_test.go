package cli

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"tasktracker/internal/userdata"
)

type sessionFixture struct {
	sess  *Session
	store *userdata.Store
	path  string
	out   *bytes.Buffer
}

// newFixture builds a session over a temp data file. initial == "" leaves the
// file absent.
func newFixture(t *testing.T, initial, input string) sessionFixture {
	t.Helper()
	path := filepath.Join(t.TempDir(), "data", "user_data.json")
	if initial != "" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatalf("mkdir: %v", err)
		}
		if err := os.WriteFile(path, []byte(initial), 0o644); err != nil {
			t.Fatalf("write initial: %v", err)
		}
	}
	store, err := userdata.NewStore(path)
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	out := &bytes.Buffer{}
	sess := NewSession(store, IOStreams{In: strings.NewReader(input), Out: out, Err: &bytes.Buffer{}}, nil)
	return sessionFixture{sess: sess, store: store, path: path, out: out}
}

func (f sessionFixture) profile(t *testing.T) userdata.Profile {
	t.Helper()
	p, err := f.store.Read()
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	return p
}

func TestSessionStart_NewUserPromptsAndPersistsName(t *testing.T) {
	f := newFixture(t, "", "Ada\n")

	if err := f.sess.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	out := f.out.String()
	if !strings.Contains(out, "Welcome to Task Tracker Extreme!") {
		t.Fatalf("expected new-user message, got %q", out)
	}
	if !strings.Contains(out, NamePrompt) {
		t.Fatalf("expected name prompt, got %q", out)
	}
	if !strings.HasSuffix(out, "Glad you're here, Ada!\n") {
		t.Fatalf("expected personalized greeting, got %q", out)
	}
	p := f.profile(t)
	if p.DisplayName() != "Ada" || p.Age != nil {
		t.Fatalf("unexpected stored profile %+v", p)
	}
}

func TestSessionStart_BlankNameIsAskedAgain(t *testing.T) {
	f := newFixture(t, `{"name": null, "age": null}`, "\n   \n Grace \n")

	if err := f.sess.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if n := strings.Count(f.out.String(), NamePrompt); n != 3 {
		t.Fatalf("expected 3 name prompts, got %d", n)
	}
	if got := f.profile(t).DisplayName(); got != "Grace" {
		t.Fatalf("expected trimmed name Grace, got %q", got)
	}
}

func TestSessionStart_ReturningUser(t *testing.T) {
	f := newFixture(t, `{"name": "Grace", "age": null}`, "")

	if err := f.sess.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if got := f.out.String(); got != "Welcome back, Grace!\n" {
		t.Fatalf("unexpected output %q", got)
	}
}

func TestSessionStart_EndOfInputBeforeName(t *testing.T) {
	f := newFixture(t, "", "")

	err := f.sess.Start(context.Background())
	if !errors.Is(err, ErrNoInput) {
		t.Fatalf("expected ErrNoInput, got %v", err)
	}
	if ExitCode(err) != ExitSessionFailure {
		t.Fatalf("expected exit code %d, got %d", ExitSessionFailure, ExitCode(err))
	}
}

func TestSessionStart_CorruptFileIsFatal(t *testing.T) {
	f := newFixture(t, `{"nickname": "x"}`, "Ada\n")

	err := f.sess.Start(context.Background())
	var re *userdata.ReadError
	if !errors.As(err, &re) {
		t.Fatalf("expected *ReadError, got %v", err)
	}
	if strings.Contains(f.out.String(), NamePrompt) {
		t.Fatalf("no prompt expected before a fatal read error")
	}
}

func TestSessionLoop_HelpThenMoreInput(t *testing.T) {
	f := newFixture(t, `{"name": "Grace"}`, "help\n\nhelp\n")

	if err := f.sess.Loop(context.Background()); err != nil {
		t.Fatalf("Loop: %v", err)
	}
	out := f.out.String()
	if n := strings.Count(out, HelpMessage); n != 2 {
		t.Fatalf("expected help printed twice, got %d in %q", n, out)
	}
	if !strings.Contains(out, "    COMMAND: help\n    ARGS: []\n") {
		t.Fatalf("expected command echo, got %q", out)
	}
	// one prompt per line read plus the final read that hits end of input
	if n := strings.Count(out, LoopPrompt); n != 4 {
		t.Fatalf("expected 4 prompts, got %d", n)
	}
}

func TestSessionLoop_ExitStopsBeforeLaterInput(t *testing.T) {
	f := newFixture(t, `{"name": "Grace", "age": null}`, "exit\ndevwrite name Ada\n")
	before, _ := os.ReadFile(f.path)

	if err := f.sess.Loop(context.Background()); err != nil {
		t.Fatalf("Loop: %v", err)
	}
	after, _ := os.ReadFile(f.path)
	if !bytes.Equal(before, after) {
		t.Fatalf("exit must not touch the data file")
	}
	if strings.Contains(f.out.String(), "COMMAND: devwrite") {
		t.Fatalf("input after exit must not be processed")
	}
}

func TestSessionLoop_DevwriteDispatchesOnFirstToken(t *testing.T) {
	f := newFixture(t, `{"name": "Grace", "age": null}`, "devwrite name Ada Lovelace\ndevwrite age 36\n")

	if err := f.sess.Loop(context.Background()); err != nil {
		t.Fatalf("Loop: %v", err)
	}
	p := f.profile(t)
	if p.DisplayName() != "Ada Lovelace" {
		t.Fatalf("expected name from joined tokens, got %q", p.DisplayName())
	}
	if p.Age == nil || *p.Age != "36" {
		t.Fatalf("expected age \"36\", got %v", p.Age)
	}
	if !strings.Contains(f.out.String(), `    ARGS: ["name" "Ada" "Lovelace"]`) {
		t.Fatalf("expected args echo, got %q", f.out.String())
	}
}

func TestSessionLoop_DevwriteRejectsUnknownKeyAndContinues(t *testing.T) {
	f := newFixture(t, `{"name": "Grace", "age": null}`, "devwrite nickname x\nhelp\n")
	before, _ := os.ReadFile(f.path)

	if err := f.sess.Loop(context.Background()); err != nil {
		t.Fatalf("Loop: %v", err)
	}
	out := f.out.String()
	if !strings.Contains(out, "invalid update: nickname: unknown field") {
		t.Fatalf("expected validation message, got %q", out)
	}
	if !strings.Contains(out, HelpMessage) {
		t.Fatalf("loop should continue after a rejected update")
	}
	after, _ := os.ReadFile(f.path)
	if !bytes.Equal(before, after) {
		t.Fatalf("rejected update must not change the file")
	}
}

func TestSessionLoop_DevwriteUsage(t *testing.T) {
	f := newFixture(t, `{"name": "Grace"}`, "devwrite name\n")

	if err := f.sess.Loop(context.Background()); err != nil {
		t.Fatalf("Loop: %v", err)
	}
	if !strings.Contains(f.out.String(), "usage: devwrite <key> <value>") {
		t.Fatalf("expected usage, got %q", f.out.String())
	}
}

func TestSessionLoop_DevwriteStoreFailureIsFatal(t *testing.T) {
	f := newFixture(t, `{"name": "Grace"}`, "devwrite age 36\nhelp\n")
	if err := os.Remove(f.path); err != nil {
		t.Fatalf("remove: %v", err)
	}

	err := f.sess.Loop(context.Background())
	var re *userdata.ReadError
	if !errors.As(err, &re) {
		t.Fatalf("expected *ReadError, got %v", err)
	}
	if strings.Contains(f.out.String(), HelpMessage) {
		t.Fatalf("loop must stop on a fatal store error")
	}
}

func TestSessionLoop_UnknownCommandIsReported(t *testing.T) {
	f := newFixture(t, `{"name": "Grace"}`, "dance now\n")

	if err := f.sess.Loop(context.Background()); err != nil {
		t.Fatalf("Loop: %v", err)
	}
	if !strings.Contains(f.out.String(), `unknown command "dance"`) {
		t.Fatalf("expected unknown command message, got %q", f.out.String())
	}
}

func TestSessionLoop_CancelledContext(t *testing.T) {
	f := newFixture(t, `{"name": "Grace"}`, "help\n")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := f.sess.Loop(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestSessionStart_AcceptsVeryLongName(t *testing.T) {
	long := strings.Repeat("a", 70*1024)
	f := newFixture(t, "", long+"\n")

	if err := f.sess.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if got := f.profile(t).DisplayName(); got != long {
		t.Fatalf("expected %d-byte name, got %d bytes", len(long), len(got))
	}
}

func TestSessionLoop_AcceptsLongLinesAndContinues(t *testing.T) {
	age := strings.Repeat("9", 70*1024)
	f := newFixture(t, `{"name": "Grace"}`, "devwrite age "+age+"\nhelp")

	if err := f.sess.Loop(context.Background()); err != nil {
		t.Fatalf("Loop: %v", err)
	}
	p := f.profile(t)
	if p.Age == nil || *p.Age != age {
		t.Fatalf("expected long age to be stored")
	}
	if !strings.Contains(f.out.String(), HelpMessage) {
		t.Fatalf("expected final unterminated line to be dispatched")
	}
}
