// Package shutdown runs cleanup hooks when the process is interrupted or
// exits normally.
//
// Typical use in an interactive session:
//
//	h := shutdown.NewHandler(5 * time.Second)
//	ctx, stop := h.NotifyContext(context.Background())
//	defer stop()
//	h.OnShutdown("history", saveHistory)
//	defer h.Shutdown()
package shutdown
