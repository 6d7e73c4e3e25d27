package repl

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/yndnr/unionhub-go/internal/telemetry/logger"
)

// Executor runs one command line, already split into arguments.
type Executor func(ctx context.Context, args []string) error

// ErrUnterminatedQuote is returned by SplitArgs for a line with an open quote.
var ErrUnterminatedQuote = errors.New("unterminated quote")

// Config configures a REPL.
type Config struct {
	In        io.Reader
	Out       io.Writer
	Prompt    func() string
	Exec      Executor
	History   *History
	Completer *Completer
	Logger    logger.Logger
}

// REPL represents the Read-Eval-Print Loop.
type REPL struct {
	input     io.Reader
	output    io.Writer
	prompt    func() string
	exec      Executor
	completer *Completer
	history   *History
	logger    logger.Logger

	lines   chan string
	readErr chan error
}

// ErrNotRunning is returned by ReadLine outside Run.
var ErrNotRunning = errors.New("repl is not running")

// New creates a REPL. Nil History and Completer are replaced by empty ones.
func New(cfg Config) *REPL {
	r := &REPL{
		input:     cfg.In,
		output:    cfg.Out,
		prompt:    cfg.Prompt,
		exec:      cfg.Exec,
		completer: cfg.Completer,
		history:   cfg.History,
		logger:    cfg.Logger,
	}
	if r.prompt == nil {
		r.prompt = func() string { return "unionhub> " }
	}
	if r.completer == nil {
		r.completer = NewCompleter(nil)
	}
	if r.history == nil {
		r.history = NewHistory("", 0)
	}
	if r.logger == nil {
		r.logger = logger.Default()
	}
	return r
}

// History returns the REPL's history.
func (r *REPL) History() *History {
	return r.history
}

// Run reads lines until exit, end of input or ctx is done. Command errors
// are printed and the loop continues.
func (r *REPL) Run(ctx context.Context) error {
	lines := make(chan string)
	readErr := make(chan error, 1)
	r.lines, r.readErr = lines, readErr
	go func() {
		reader := bufio.NewReader(r.input)
		for {
			line, err := reader.ReadString('\n')
			if line != "" || err == nil {
				select {
				case lines <- line:
				case <-ctx.Done():
					return
				}
			}
			if err != nil {
				readErr <- err
				return
			}
		}
	}()

	for {
		fmt.Fprint(r.output, r.prompt())

		var line string
		select {
		case <-ctx.Done():
			fmt.Fprintln(r.output)
			return nil
		case err := <-readErr:
			fmt.Fprintln(r.output)
			if err == io.EOF {
				return nil
			}
			return err
		case line = <-lines:
		}

		if done := r.handle(ctx, line); done {
			return nil
		}
	}
}

// ReadLine reads one raw line from the REPL input while a command runs,
// for prompts such as a password. The line is not recorded in history.
func (r *REPL) ReadLine(ctx context.Context) (string, error) {
	if r.lines == nil {
		return "", ErrNotRunning
	}
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case err := <-r.readErr:
		r.readErr <- err
		return "", err
	case line := <-r.lines:
		return strings.TrimRight(line, "\r\n"), nil
	}
}

// handle processes one input line and reports whether the loop should end.
func (r *REPL) handle(ctx context.Context, raw string) bool {
	if strings.HasSuffix(strings.TrimRight(raw, "\r\n"), "\t") {
		r.printCompletions(strings.TrimSpace(raw))
		return false
	}

	line := strings.TrimSpace(raw)
	if line == "" {
		return false
	}

	args, err := SplitArgs(line)
	if err != nil {
		fmt.Fprintf(r.output, "error: %v\n", err)
		return false
	}
	r.history.Add(line)

	switch args[0] {
	case "exit", "quit":
		return true
	case "history":
		for i, entry := range r.history.Entries() {
			fmt.Fprintf(r.output, "%5d  %s\n", i+1, entry)
		}
		return false
	case "?":
		r.printCompletions(strings.Join(args[1:], " "))
		return false
	}

	if r.exec == nil {
		return false
	}
	if err := r.exec(ctx, args); err != nil {
		r.logger.Debug("repl command failed", "command", args[0], "error", err)
	}
	return false
}

func (r *REPL) printCompletions(prefix string) {
	matches := r.completer.Complete(prefix)
	if len(matches) == 0 {
		fmt.Fprintf(r.output, "no command matches %q\n", prefix)
		return
	}
	for _, m := range matches {
		fmt.Fprintln(r.output, m)
	}
}

// SplitArgs splits a line into arguments. Single and double quotes group
// words and a backslash escapes the next character outside single quotes.
func SplitArgs(line string) ([]string, error) {
	var (
		args    []string
		cur     strings.Builder
		inArg   bool
		quote   rune
		escaped bool
	)
	for _, c := range line {
		switch {
		case escaped:
			cur.WriteRune(c)
			escaped = false
		case c == '\\' && quote != '\'':
			escaped = true
			inArg = true
		case quote != 0:
			if c == quote {
				quote = 0
			} else {
				cur.WriteRune(c)
			}
		case c == '"' || c == '\'':
			quote = c
			inArg = true
		case c == ' ' || c == '\t':
			if inArg {
				args = append(args, cur.String())
				cur.Reset()
				inArg = false
			}
		default:
			cur.WriteRune(c)
			inArg = true
		}
	}
	if quote != 0 || escaped {
		return nil, ErrUnterminatedQuote
	}
	if inArg {
		args = append(args, cur.String())
	}
	return args, nil
}
