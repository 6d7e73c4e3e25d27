package command

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/yndnr/unionhub-go/internal/cli/config"
	"github.com/yndnr/unionhub-go/internal/cli/connection"
	"github.com/yndnr/unionhub-go/internal/cli/locale"
	"github.com/yndnr/unionhub-go/internal/cli/output"
	"github.com/yndnr/unionhub-go/internal/cli/router"
	"github.com/yndnr/unionhub-go/internal/cli/session"
	"github.com/yndnr/unionhub-go/internal/cli/store"
	"github.com/yndnr/unionhub-go/internal/infra/shutdown"
	"github.com/yndnr/unionhub-go/internal/storage"
	"github.com/yndnr/unionhub-go/internal/telemetry/logger"
	"github.com/yndnr/unionhub-go/internal/telemetry/metric"
)

// shutdownTimeout bounds the exit hooks (storage close, metrics export).
const shutdownTimeout = 5 * time.Second

// Runtime holds the components shared by every command of one process.
type Runtime struct {
	Config     *config.CLIConfig
	ConfigFile string
	WatchPath  string

	Logger   logger.Logger
	Metrics  *metric.ClientMetrics
	Shutdown *shutdown.Handler

	KV         storage.KV
	Client     *connection.Client
	Session    *session.Store
	Router     *router.Router
	Unions     *store.UnionStore
	Players    *store.PlayerStore
	Characters *store.CharacterStore
	Locale     *locale.Store
	Printer    *output.Printer
}

// NewRuntime builds the components from a loaded configuration. Output goes
// to out, logs and diagnostics to errOut.
func NewRuntime(ctx context.Context, res *config.Result, out, errOut io.Writer, wide bool) (*Runtime, error) {
	cfg := res.Config
	format, err := output.ParseFormat(cfg.Output)
	if err != nil {
		return nil, err
	}

	log := logger.New(logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: errOut,
	})
	logger.SetDefault(log)

	rt := &Runtime{
		Config:     cfg,
		ConfigFile: res.File,
		WatchPath:  res.WatchPath,
		Logger:     log,
		Metrics:    metric.NewClientMetrics(),
		Shutdown:   shutdown.NewHandler(shutdownTimeout),
		Printer:    output.NewPrinter(out, errOut, format, wide),
	}

	kv, err := storage.Open(ctx, cfg.StorageConfig(), logger.ToSlog(log))
	if err != nil {
		return nil, fmt.Errorf("open storage: %w", err)
	}
	rt.KV = kv
	rt.Shutdown.OnShutdown("storage", func(context.Context) error {
		return kv.Close()
	})
	if path := cfg.Metrics.Textfile; path != "" {
		rt.Shutdown.OnShutdown("metrics", func(context.Context) error {
			return rt.Metrics.WriteTextfile(path)
		})
	}

	rt.Client, err = connection.NewClient(connection.Options{
		BaseURL:   cfg.API.BaseURL,
		Timeout:   cfg.API.Timeout,
		RateLimit: cfg.API.RateLimit,
		Burst:     cfg.API.Burst,
		CAFile:    cfg.API.CAFile,
		Logger:    log,
		Metrics:   rt.Metrics,
	})
	if err != nil {
		return nil, errors.Join(err, rt.Close())
	}

	rt.Session = session.New(ctx, kv, rt.Client, nil, log)
	rt.Client.UseTokenSource(rt.Session)
	rt.Router = router.New(rt.Session)
	rt.Session.SetNavigator(rt.Router)

	rt.Unions = store.NewUnionStore(rt.Client, log)
	rt.Players = store.NewPlayerStore(rt.Client, log)
	rt.Characters = store.NewCharacterStore(rt.Client, log)
	rt.Locale = locale.New(ctx, kv, locale.EnvLanguage(), log)

	rt.registerViews()

	log.Debug("runtime ready",
		"base_url", rt.Client.BaseURL(),
		"storage", cfg.Storage.Backend,
		"locale", rt.Locale.Current(),
		"state", rt.Session.State().String())
	return rt, nil
}

// Close runs the shutdown hooks. It is safe on a nil Runtime and runs the
// hooks only once.
func (rt *Runtime) Close() error {
	if rt == nil {
		return nil
	}
	return rt.Shutdown.Shutdown()
}

// T localizes a status line for the active locale.
func (rt *Runtime) T(key string, args ...any) string {
	return rt.Locale.Printer().Sprintf(key, args...)
}

// Say prints a localized status line.
func (rt *Runtime) Say(key string, args ...any) {
	rt.Printer.Message(rt.T(key, args...))
}

// Result prints data in machine-readable formats and msg as a status line.
// Table output shows only the status line.
func (rt *Runtime) Result(data any, msg string) error {
	if rt.Printer.Format() != output.FormatTable {
		if err := rt.Printer.Print(data); err != nil {
			return err
		}
	}
	rt.Printer.Message(msg)
	return nil
}

// PrintError reports a failed command. A login redirect is shown with the
// command that continues to the requested route, and a 401 on a signed-in
// session is followed by a hint to log in again.
func (rt *Runtime) PrintError(err error) {
	var lr *router.LoginRequiredError
	if errors.As(err, &lr) {
		fmt.Fprintln(rt.Printer.Err, rt.T(locale.MsgLoginRequired, lr.Target.FullPath()))
		return
	}
	rt.Printer.Error(err)

	var ce *credentialsError
	if connection.IsUnauthorized(err) && !errors.As(err, &ce) && rt.Session.IsAuthenticated() {
		fmt.Fprintln(rt.Printer.Err, rt.T(locale.MsgTokenExpired))
	}
}

// spin shows a spinner on the error stream while msg is in progress. It
// only draws for table output on a terminal; the returned stop is always
// safe to call.
func (rt *Runtime) spin(msg string) (stop func()) {
	if rt.Printer.Format() != output.FormatTable || !output.Interactive(rt.Printer.Err) {
		return func() {}
	}
	s := output.NewSpinner(rt.Printer.Err, msg)
	s.Start()
	return s.Stop
}
