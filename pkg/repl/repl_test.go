package repl

import (
	"bytes"
	"context"
	"io"
	"path/filepath"
	"strings"
	"testing"

	"github.com/peterh/liner"

	"github.com/zurustar/ruscal/pkg/vm"
)

// scriptedReader replays lines and then reports end of input.
type scriptedReader struct {
	lines   []string
	errs    map[int]error
	prompts []string
	history []string
}

func (s *scriptedReader) Prompt(prompt string) (string, error) {
	n := len(s.prompts)
	s.prompts = append(s.prompts, prompt)
	if err, ok := s.errs[n]; ok {
		return "", err
	}
	if len(s.lines) == 0 {
		return "", io.EOF
	}
	line := s.lines[0]
	s.lines = s.lines[1:]
	return line, nil
}

func (s *scriptedReader) AppendHistory(item string) {
	s.history = append(s.history, item)
}

func newTestREPL(reader LineReader) (*REPL, *bytes.Buffer, *bytes.Buffer) {
	var out, errOut bytes.Buffer
	ip := vm.New(vm.WithOutput(&out))
	return New(reader, ip, &out, &errOut), &out, &errOut
}

func TestRun_PersistentState(t *testing.T) {
	reader := &scriptedReader{lines: []string{
		"let x = i64(20)",
		"func double(n) { n * i64(2) }",
		"double(x) + i64(2)",
	}}
	r, out, errOut := newTestREPL(reader)

	if err := r.Run(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if errOut.Len() != 0 {
		t.Fatalf("unexpected diagnostics: %q", errOut.String())
	}
	lines := strings.Split(strings.TrimRight(out.String(), "\n"), "\n")
	if len(lines) < 3 || lines[2] != "42" {
		t.Errorf("output = %q, want third value 42", out.String())
	}
	if len(reader.history) != 3 {
		t.Errorf("history = %v, want 3 entries", reader.history)
	}
}

func TestRun_ContinuesAfterFaults(t *testing.T) {
	reader := &scriptedReader{lines: []string{
		"y",
		"let = 1",
		"print(\"still here\")",
	}}
	r, out, errOut := newTestREPL(reader)

	if err := r.Run(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(errOut.String(), "UNDEFINED_VARIABLE") {
		t.Errorf("missing runtime diagnostic: %q", errOut.String())
	}
	if !strings.Contains(errOut.String(), "parser error") {
		t.Errorf("missing syntax diagnostic: %q", errOut.String())
	}
	if !strings.Contains(out.String(), "print: still here\n") {
		t.Errorf("evaluation should continue after faults, got %q", out.String())
	}
}

func TestRun_ContinuationLines(t *testing.T) {
	reader := &scriptedReader{lines: []string{
		"func add(a, b) {",
		"  a + b",
		"}",
		"add(1, 2)",
	}}
	r, out, errOut := newTestREPL(reader)

	if err := r.Run(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if errOut.Len() != 0 {
		t.Fatalf("unexpected diagnostics: %q", errOut.String())
	}

	wantPrompts := []string{PromptMain, PromptCont, PromptCont, PromptMain, PromptMain}
	if strings.Join(reader.prompts, "|") != strings.Join(wantPrompts, "|") {
		t.Errorf("prompts = %q, want %q", reader.prompts, wantPrompts)
	}
	if !strings.HasSuffix(out.String(), "3\n\n") {
		t.Errorf("output = %q, want value 3", out.String())
	}
	if reader.history[0] != "func add(a, b) {   a + b }" {
		t.Errorf("multi-line history entry = %q", reader.history[0])
	}
}

func TestRun_AbortDropsPendingInput(t *testing.T) {
	reader := &scriptedReader{
		lines: []string{"func f() {", "1 + 1"},
		errs:  map[int]error{1: liner.ErrPromptAborted},
	}
	r, out, errOut := newTestREPL(reader)

	if err := r.Run(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if errOut.Len() != 0 {
		t.Errorf("unexpected diagnostics: %q", errOut.String())
	}
	if !strings.HasPrefix(out.String(), "2\n") {
		t.Errorf("output = %q, want 2", out.String())
	}
	if reader.prompts[2] != PromptMain {
		t.Errorf("prompt after abort = %q, want main prompt", reader.prompts[2])
	}
}

func TestRun_Commands(t *testing.T) {
	reader := &scriptedReader{lines: []string{":help", ":funcs", ":bogus", ":quit", "print(1)"}}
	r, out, errOut := newTestREPL(reader)

	if err := r.Run(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out.String(), "Commands:") {
		t.Errorf("help not shown: %q", out.String())
	}
	if !strings.Contains(out.String(), "sqrt") {
		t.Errorf("function list not shown: %q", out.String())
	}
	if !strings.Contains(errOut.String(), "unknown command :bogus") {
		t.Errorf("unknown command not reported: %q", errOut.String())
	}
	if strings.Contains(out.String(), "print: 1") {
		t.Error(":quit should stop before the next input")
	}
}

func TestRun_VarsCommand(t *testing.T) {
	reader := &scriptedReader{lines: []string{":vars", "let y = \"a\"", "let x = i64(20)", ":vars"}}
	r, out, errOut := newTestREPL(reader)

	if err := r.Run(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if errOut.Len() != 0 {
		t.Fatalf("unexpected diagnostics: %q", errOut.String())
	}
	want := "0\n0\nx = I64(20)\ny = Str(\"a\")\n\n"
	if out.String() != want {
		t.Errorf("output = %q, want %q", out.String(), want)
	}
}

func TestRun_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	r, _, _ := newTestREPL(&scriptedReader{lines: []string{"1"}})
	if err := r.Run(ctx); err != context.Canceled {
		t.Errorf("Run = %v, want context.Canceled", err)
	}
}

func TestHistoryPath(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	if got := HistoryPath(); got != filepath.Join(home, HistoryFile) {
		t.Errorf("HistoryPath() = %q, want %q", got, filepath.Join(home, HistoryFile))
	}
}
