package command

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/unionhub-go/internal/cli/config"
	"github.com/yndnr/unionhub-go/internal/cli/output"
	"github.com/yndnr/unionhub-go/internal/cli/repl"
	"github.com/yndnr/unionhub-go/internal/infra/buildinfo"
	"github.com/yndnr/unionhub-go/internal/infra/confloader"
	"github.com/yndnr/unionhub-go/internal/telemetry/logger"
)

func (st *state) replCommand() *cli.Command {
	return &cli.Command{
		Name:   "repl",
		Usage:  "Start interactive mode",
		Action: st.runREPL,
	}
}

func (st *state) runREPL(c *cli.Context) error {
	rt := st.rt
	ctx, stop := rt.Shutdown.NotifyContext(c.Context)
	defer stop()

	history := repl.NewHistory(config.DefaultHistoryPath(), repl.DefaultHistorySize)
	if err := history.Load(); err != nil {
		rt.Logger.Warn("history not loaded", "error", err)
	}
	rt.Shutdown.OnShutdown("history", func(context.Context) error {
		return history.Save()
	})

	if w := st.watchConfig(); w != nil {
		defer w.Stop()
	}

	inner := &state{
		rt:        rt,
		res:       st.res,
		overrides: st.overrides,
		wide:      st.wide,
		in:        st.in,
		out:       st.out,
		errOut:    st.errOut,
		nested:    true,
	}

	r := repl.New(repl.Config{
		In:        st.in,
		Out:       st.out,
		Prompt:    rt.prompt,
		History:   history,
		Completer: repl.NewCompleter(commandPaths(inner.commands())),
		Logger:    rt.Logger,
		Exec: func(ctx context.Context, args []string) error {
			err := inner.newApp().RunContext(ctx, append([]string{appName}, args...))
			if err != nil {
				rt.PrintError(err)
			}
			return err
		},
	})
	inner.readLine = r.ReadLine

	fmt.Fprintf(st.out, "%s %s. Type 'help' for commands, 'exit' to quit.\n", appName, buildinfo.Get().Version)
	return r.Run(ctx)
}

func (rt *Runtime) prompt() string {
	if u := rt.Session.User(); u != nil && u.Username != "" {
		return u.Username + "@unionhub> "
	}
	return "unionhub> "
}

// watchConfig reloads the log level and output format when the config file
// changes. It returns nil when the file cannot be watched.
func (st *state) watchConfig() *confloader.Watcher {
	rt := st.rt
	w, err := confloader.NewWatcher(confloader.WithWatcherLogger(logger.ToSlog(rt.Logger)))
	if err != nil {
		rt.Logger.Warn("config watcher unavailable", "error", err)
		return nil
	}
	if err := w.Watch(rt.WatchPath); err != nil {
		rt.Logger.Debug("config file not watched", "path", rt.WatchPath, "error", err)
		_ = w.Stop()
		return nil
	}
	w.OnChange(st.reloadConfig)
	w.StartAsync()
	return w
}

func (st *state) reloadConfig(path string) {
	rt := st.rt
	res, err := config.Load(config.LoadOptions{Path: path, Overrides: st.overrides})
	if err != nil {
		rt.Logger.Warn("config reload failed", "path", path, "error", err)
		return
	}
	if err := config.Verify(res.Config); err != nil {
		rt.Logger.Warn("reloaded config is invalid, keeping the current one", "path", path, "error", err)
		return
	}

	logger.SetLevel(res.Config.Log.Level)
	if f, err := output.ParseFormat(res.Config.Output); err == nil {
		rt.Printer.SetFormat(f, st.wide)
	}
	rt.Logger.Info("configuration reloaded", "path", path,
		"log_level", res.Config.Log.Level, "output", res.Config.Output)
}

// commandPaths lists every command and subcommand as a space-separated
// path, for completion.
func commandPaths(cmds []*cli.Command) []string {
	paths := []string{"help"}
	var walk func(prefix string, cmds []*cli.Command)
	walk = func(prefix string, cmds []*cli.Command) {
		for _, cmd := range cmds {
			p := prefix + cmd.Name
			paths = append(paths, p)
			walk(p+" ", cmd.Subcommands)
		}
	}
	walk("", cmds)
	return paths
}
