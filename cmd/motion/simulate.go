package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/phanxgames/motion"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
)

type simulateOptions struct {
	dt          float64
	maxFrames   int
	format      string
	every       bool
	realtime    bool
	debug       bool
	metricsAddr string
}

var simOpts simulateOptions

var simulateCmd = &cobra.Command{
	Use:   "simulate <definitions> <script>",
	Short: "Run a script headlessly and print node state",
	Long: `Runs a script against a fresh scene until the script has finished and every
animation has settled, then prints the snapshots the script took. With
--every, the state of the tree is printed after every frame as well.

Frames advance by --dt seconds. With --realtime, frames are paced on the wall
clock and dt is measured instead.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		p, err := newPrinter(cmd.OutOrStdout(), simOpts.format)
		if err != nil {
			return err
		}
		return runSimulate(ctx, newLogger(cmd), p, args[0], args[1], simOpts)
	},
}

func init() {
	f := simulateCmd.Flags()
	f.Float64Var(&simOpts.dt, "dt", 1.0/60, "Seconds per frame")
	f.IntVar(&simOpts.maxFrames, "max-frames", 36000, "Give up after this many frames")
	f.StringVar(&simOpts.format, "format", "json", "Output format: json or text")
	f.BoolVar(&simOpts.every, "every", false, "Print the tree after every frame")
	f.BoolVar(&simOpts.realtime, "realtime", false, "Pace frames on the wall clock")
	f.BoolVar(&simOpts.debug, "debug", false, "Enable scene debug checks and per-frame stats")
	f.StringVar(&simOpts.metricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address while running")
	rootCmd.AddCommand(simulateCmd)
}

func runSimulate(ctx context.Context, logger *slog.Logger, p printer, defsPath, scriptPath string, opts simulateOptions) error {
	if opts.dt <= 0 {
		return fmt.Errorf("--dt must be positive, got %v", opts.dt)
	}
	defs, err := motion.LoadDefinitionsFile(defsPath)
	if err != nil {
		return err
	}
	runner, err := motion.LoadScriptFile(scriptPath, defs)
	if err != nil {
		return err
	}

	s := motion.NewScene()
	s.SetLogger(logger)
	s.SetDebugMode(opts.debug)
	if err := defs.Apply(s); err != nil {
		return err
	}
	s.SetScriptRunner(runner)

	if opts.metricsAddr != "" {
		reg := prometheus.NewRegistry()
		m, err := motion.NewMetrics(reg)
		if err != nil {
			return err
		}
		s.SetMetrics(m)
		srv := serveMetrics(logger, opts.metricsAddr, reg)
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				logger.Warn("metrics server shutdown", "error", err)
			}
		}()
	}

	var printErr error
	if opts.every {
		s.OnFrame = func(uint64, float64) {
			if printErr == nil {
				printErr = p.print(s.Snapshot(""))
			}
		}
	}

	if err := drive(ctx, s, opts); err != nil {
		return err
	}
	if printErr != nil {
		return printErr
	}
	if err := runner.Err(); err != nil {
		return err
	}
	for _, snap := range runner.Snapshots() {
		if err := p.print(snap); err != nil {
			return err
		}
	}
	return p.flush()
}

// drive runs frames until the scene is idle.
func drive(ctx context.Context, s *motion.Scene, opts simulateOptions) error {
	if !opts.realtime {
		for range opts.maxFrames {
			if s.Idle() {
				return nil
			}
			if err := ctx.Err(); err != nil {
				return err
			}
			s.Update(opts.dt)
		}
		return notSettled(s, opts.maxFrames)
	}

	ticker := time.NewTicker(time.Duration(opts.dt * float64(time.Second)))
	defer ticker.Stop()
	timer := motion.NewFrameTimer(nil)
	for range opts.maxFrames {
		if s.Idle() {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			s.Update(timer.Next())
		}
	}
	return notSettled(s, opts.maxFrames)
}

func notSettled(s *motion.Scene, frames int) error {
	if s.Idle() {
		return nil
	}
	return fmt.Errorf("scene did not settle within %d frames (%d animators still running)", frames, s.ActiveAnimators())
}

func serveMetrics(logger *slog.Logger, addr string, reg *prometheus.Registry) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		logger.Info("serving metrics", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server", "error", err)
		}
	}()
	return srv
}
