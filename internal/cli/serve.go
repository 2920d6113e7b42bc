package cli

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/MRamiBalles/DevLearnAcademy/internal/network"
	"github.com/MRamiBalles/DevLearnAcademy/internal/save"
)

// ServeOptions holds flags for the serve command.
type ServeOptions struct {
	*RootOptions
	Addr string
}

// NewServeCommand creates the serve command.
func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ServeOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the game loop with the HTTP and websocket API",
		Long: `Load the save slot, catch up on time spent offline, then run the simulation
in real time. Clients connect over HTTP (/api/...) and websocket (/ws).
The game autosaves periodically and once more on shutdown.

Examples:
  academy serve
  academy serve --addr :9090 --db ./saves/academy.db --slot alice`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return runServe(ctx, opts)
		},
	}

	cmd.Flags().StringVar(&opts.Addr, "addr", "", "listen address (default $DEVLEARN_HTTP_ADDR or :8080)")

	return cmd
}

func runServe(ctx context.Context, opts *ServeOptions) error {
	cfg := opts.Config
	if opts.Addr != "" {
		cfg.HTTPAddr = opts.Addr
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	app, err := OpenApp(cfg, nil)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to start", err)
	}
	defer app.Close()
	log := app.Logger

	recap, found := app.Engine.Load(ctx)
	if !found {
		log.Info("no save found, starting a new game", "slot", cfg.SaveSlot)
	}
	for _, line := range recap.Lines {
		log.Info(line.Summary, "impact", line.Impact)
	}

	hub := network.NewHub(app.Engine, log, app.Metrics, network.WithSendBuffer(cfg.ClientSendBuffer))
	hub.AttachBus(app.Bus)
	defer hub.DetachBus()
	go hub.Run(ctx)

	api := network.NewAPI(app.Engine, hub, app.Metrics, app.Recorder, log)
	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           api.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	autosaver := save.NewAutosaver(app.Engine, cfg.AutosaveInterval, log, nil)
	saved := make(chan struct{})
	go func() {
		autosaver.Run(ctx)
		close(saved)
	}()

	app.Engine.Start(ctx)

	serveErr := make(chan error, 1)
	go func() {
		log.Info("http server listening", "addr", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	var failed error
	select {
	case <-ctx.Done():
	case failed = <-serveErr:
	}

	log.Info("shutting down")
	cancel()
	app.Engine.Stop()
	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Warn("http shutdown incomplete", "error", err)
	}
	<-saved

	if failed != nil {
		return WrapExitError(ExitCommandError, "http server failed", failed)
	}
	return nil
}
