package command

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/unionhub-go/internal/cli/config"
	"github.com/yndnr/unionhub-go/internal/cli/output"
	"github.com/yndnr/unionhub-go/internal/infra/buildinfo"
)

const appName = buildinfo.ProductName

// state is shared by the commands of one app. The REPL runs a nested app
// per line that reuses the outer runtime.
type state struct {
	rt        *Runtime
	res       *config.Result
	overrides map[string]any
	wide      bool

	in     io.Reader
	out    io.Writer
	errOut io.Writer

	nested     bool
	prevFormat output.Format

	readLine  func(ctx context.Context) (string, error)
	stdinOnce sync.Once
	stdin     *bufio.Reader
}

// Run executes the CLI with os.Args-style arguments and returns the exit
// code.
func Run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	st := &state{in: stdin, out: stdout, errOut: stderr}
	st.readLine = st.readStdin

	if err := st.newApp().RunContext(ctx, args); err != nil {
		st.printError(err)
		return 1
	}
	return 0
}

func (st *state) newApp() *cli.App {
	app := &cli.App{
		Name:           appName,
		Usage:          "Union management command-line client",
		Version:        buildinfo.String(),
		Reader:         st.in,
		Writer:         st.out,
		ErrWriter:      st.errOut,
		Commands:       st.commands(),
		Action:         st.rootAction,
		ExitErrHandler: func(*cli.Context, error) {},
	}

	if st.nested {
		app.HideVersion = true
		app.Flags = formatFlags()
		app.Before = st.applyFormatFlags
		app.After = st.restoreFormat
		return app
	}

	app.Flags = globalFlags()
	app.Before = st.before
	app.After = st.after
	return app
}

func (st *state) commands() []*cli.Command {
	cmds := []*cli.Command{
		st.loginCommand(),
		st.registerCommand(),
		st.logoutCommand(),
		st.whoamiCommand(),
		st.unionCommand(),
		st.playerCommand(),
		st.characterCommand(),
		st.localeCommand(),
		st.configCommand(),
		st.versionCommand(),
	}
	if !st.nested {
		cmds = append(cmds, st.replCommand())
	}
	return cmds
}

// globalFlags returns the global CLI flags. Flags left unset do not
// override the config file or environment.
func globalFlags() []cli.Flag {
	return append([]cli.Flag{
		&cli.StringFlag{
			Name:    "server",
			Aliases: []string{"s"},
			Usage:   "API base URL (default " + config.DefaultBaseURL + ")",
		},
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Usage:   "Config file (default " + config.DefaultConfigPath() + ")",
		},
		&cli.BoolFlag{
			Name:    "verbose",
			Aliases: []string{"V"},
			Usage:   "Enable debug logging",
		},
		&cli.StringFlag{
			Name:  "metrics-textfile",
			Usage: "Write request metrics to this file on exit",
		},
	}, formatFlags()...)
}

func formatFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "Output format: table, json, yaml",
		},
		&cli.BoolFlag{
			Name:    "wide",
			Aliases: []string{"w"},
			Usage:   "Show wide output (more columns)",
		},
	}
}

// flagOverrides maps the explicitly set global flags to config keys.
func flagOverrides(c *cli.Context) map[string]any {
	o := make(map[string]any)
	if c.IsSet("server") {
		o["api.base_url"] = c.String("server")
	}
	if c.IsSet("output") {
		o["output"] = c.String("output")
	}
	if c.IsSet("metrics-textfile") {
		o["metrics.textfile"] = c.String("metrics-textfile")
	}
	if c.Bool("verbose") {
		o["log.level"] = "debug"
	}
	return o
}

// needsRuntime reports whether the command named by the first argument
// talks to the API or storage.
func needsRuntime(name string) bool {
	switch name {
	case "config", "version", "help", "h":
		return false
	}
	return true
}

func (st *state) before(c *cli.Context) error {
	st.overrides = flagOverrides(c)
	st.wide = c.Bool("wide")

	res, err := config.Load(config.LoadOptions{
		Path:      c.String("config"),
		Overrides: st.overrides,
	})
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	st.res = res

	if !needsRuntime(c.Args().First()) {
		return nil
	}
	if err := config.Verify(res.Config); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	rt, err := NewRuntime(c.Context, res, st.out, st.errOut, st.wide)
	if err != nil {
		return err
	}
	st.rt = rt
	return nil
}

func (st *state) after(c *cli.Context) error {
	return st.rt.Close()
}

func (st *state) applyFormatFlags(c *cli.Context) error {
	if !c.IsSet("output") && !c.IsSet("wide") {
		return nil
	}
	format := st.rt.Printer.Format()
	if c.IsSet("output") {
		f, err := output.ParseFormat(c.String("output"))
		if err != nil {
			return err
		}
		format = f
	}
	st.prevFormat = st.rt.Printer.Format()
	st.rt.Printer.SetFormat(format, st.wide || c.Bool("wide"))
	return nil
}

func (st *state) restoreFormat(c *cli.Context) error {
	if st.prevFormat != "" {
		st.rt.Printer.SetFormat(st.prevFormat, st.wide)
		st.prevFormat = ""
	}
	return nil
}

func (st *state) rootAction(c *cli.Context) error {
	if c.NArg() > 0 {
		return fmt.Errorf("unknown command %q, run 'help' for a list", c.Args().First())
	}
	if st.nested {
		return nil
	}
	return st.runREPL(c)
}

func (st *state) printError(err error) {
	if st.rt != nil {
		st.rt.PrintError(err)
		return
	}
	fmt.Fprintf(st.errOut, "error: %v\n", err)
}

// readStdin reads one line from stdin for prompts in single-command mode.
func (st *state) readStdin(ctx context.Context) (string, error) {
	st.stdinOnce.Do(func() { st.stdin = bufio.NewReader(st.in) })
	line, err := st.stdin.ReadString('\n')
	if err != nil && !(err == io.EOF && line != "") {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// formatter returns the active formatter for the commands that may run
// without a runtime.
func (st *state) formatter() output.Formatter {
	if st.rt != nil {
		return output.NewFormatter(st.rt.Printer.Format(), st.wide)
	}
	format, err := output.ParseFormat(st.res.Config.Output)
	if err != nil {
		format = output.FormatTable
	}
	return output.NewFormatter(format, st.wide)
}

// positional returns exactly n positional arguments or a usage error.
func positional(c *cli.Context, n int) ([]string, error) {
	if c.NArg() != n {
		return nil, fmt.Errorf("usage: %s %s", c.Command.HelpName, c.Command.ArgsUsage)
	}
	return c.Args().Slice(), nil
}
