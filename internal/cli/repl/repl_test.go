package repl

import (
	"bytes"
	"context"
	"errors"
	"io"
	"reflect"
	"strings"
	"testing"
	"time"
)

type recorder struct {
	calls [][]string
	err   error
}

func (r *recorder) exec(ctx context.Context, args []string) error {
	r.calls = append(r.calls, args)
	return r.err
}

func newTestREPL(input string, rec *recorder) (*REPL, *bytes.Buffer) {
	out := &bytes.Buffer{}
	r := New(Config{
		In:        strings.NewReader(input),
		Out:       out,
		Exec:      rec.exec,
		Completer: NewCompleter([]string{"union", "union list", "union create", "login", "logout"}),
	})
	return r, out
}

func TestREPL_Run_Exit(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"exit command", "exit\n"},
		{"quit command", "quit\n"},
		{"EOF", ""},
		{"exit without newline", "exit"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := &recorder{}
			r, _ := newTestREPL(tt.input, rec)
			if err := r.Run(context.Background()); err != nil {
				t.Errorf("Run() error = %v", err)
			}
			if len(rec.calls) != 0 {
				t.Errorf("executor called %d times", len(rec.calls))
			}
		})
	}
}

func TestREPL_Run_Executes(t *testing.T) {
	rec := &recorder{}
	r, out := newTestREPL("\n  \nunion list\nunion create \"Team Alpha\"\nexit\nunion list\n", rec)

	if err := r.Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	want := [][]string{{"union", "list"}, {"union", "create", "Team Alpha"}}
	if !reflect.DeepEqual(rec.calls, want) {
		t.Errorf("calls = %q, want %q", rec.calls, want)
	}
	if got := strings.Count(out.String(), "unionhub> "); got != 5 {
		t.Errorf("prompt printed %d times, want 5", got)
	}
}

func TestREPL_Run_CommandErrorContinues(t *testing.T) {
	rec := &recorder{err: errors.New("boom")}
	r, _ := newTestREPL("union list\nunion list\n", rec)

	if err := r.Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if len(rec.calls) != 2 {
		t.Errorf("calls = %d, want 2", len(rec.calls))
	}
}

func TestREPL_Run_ContextCancel(t *testing.T) {
	pr, pw := io.Pipe()
	defer pw.Close()

	ctx, cancel := context.WithCancel(context.Background())
	r := New(Config{In: pr, Out: io.Discard})

	done := make(chan error, 1)
	go func() { done <- r.Run(ctx) }()

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Run() error = %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestREPL_Run_ReadError(t *testing.T) {
	pr, pw := io.Pipe()
	pw.CloseWithError(errors.New("terminal gone"))

	err := New(Config{In: pr, Out: io.Discard}).Run(context.Background())
	if err == nil || err.Error() != "terminal gone" {
		t.Errorf("Run() error = %v, want terminal gone", err)
	}
}

func TestREPL_Builtins(t *testing.T) {
	rec := &recorder{}
	r, out := newTestREPL("union list\n? uni\nhistory\nunion cr\t\nexit\n", rec)

	if err := r.Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	s := out.String()
	for _, want := range []string{"union create\n", "union list\n", "    1  union list\n", "    2  ? uni\n"} {
		if !strings.Contains(s, want) {
			t.Errorf("output missing %q:\n%s", want, s)
		}
	}
	if len(rec.calls) != 1 {
		t.Errorf("builtins reached the executor: %q", rec.calls)
	}
	if r.History().Len() != 4 {
		t.Errorf("history = %q", r.History().Entries())
	}
}

func TestREPL_UnterminatedQuote(t *testing.T) {
	rec := &recorder{}
	r, out := newTestREPL("union create \"Alpha\nexit\n", rec)

	if err := r.Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if len(rec.calls) != 0 {
		t.Errorf("executor called with %q", rec.calls)
	}
	if !strings.Contains(out.String(), "unterminated quote") {
		t.Errorf("output = %q", out.String())
	}
}

func TestREPL_CustomPrompt(t *testing.T) {
	out := &bytes.Buffer{}
	r := New(Config{
		In:     strings.NewReader("exit\n"),
		Out:    out,
		Prompt: func() string { return "unionhub(alice)> " },
	})
	if err := r.Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if !strings.HasPrefix(out.String(), "unionhub(alice)> ") {
		t.Errorf("output = %q", out.String())
	}
}

func TestSplitArgs(t *testing.T) {
	tests := []struct {
		line    string
		want    []string
		wantErr bool
	}{
		{"union list", []string{"union", "list"}, false},
		{"  union   list  ", []string{"union", "list"}, false},
		{`union create "Team Alpha"`, []string{"union", "create", "Team Alpha"}, false},
		{`union create 'It''s'`, []string{"union", "create", "Its"}, false},
		{`player delete Red\ Hood`, []string{"player", "delete", "Red Hood"}, false},
		{`union create ""`, []string{"union", "create", ""}, false},
		{`login -u "a\"b"`, []string{"login", "-u", `a"b`}, false},
		{`union create "Alpha`, nil, true},
		{`trailing\`, nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			got, err := SplitArgs(tt.line)
			if (err != nil) != tt.wantErr {
				t.Fatalf("SplitArgs() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && !reflect.DeepEqual(got, tt.want) {
				t.Errorf("SplitArgs() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestREPL_ReadLineDuringCommand(t *testing.T) {
	var r *REPL
	var got string
	r = New(Config{
		In:  strings.NewReader("login -u alice\nhunter2\nexit\n"),
		Out: io.Discard,
		Exec: func(ctx context.Context, args []string) error {
			line, err := r.ReadLine(ctx)
			got = line
			return err
		},
	})

	if err := r.Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if got != "hunter2" {
		t.Errorf("ReadLine() = %q, want hunter2", got)
	}
	for _, e := range r.History().Entries() {
		if e == "hunter2" {
			t.Error("line read by the command was recorded in history")
		}
	}
}

func TestREPL_ReadLineNotRunning(t *testing.T) {
	r := New(Config{In: strings.NewReader(""), Out: io.Discard})
	if _, err := r.ReadLine(context.Background()); !errors.Is(err, ErrNotRunning) {
		t.Errorf("ReadLine() error = %v, want ErrNotRunning", err)
	}
}
