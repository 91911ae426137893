// Command demo runs a traffic light on the realtime runtime.
//
// SIGINT presses the pedestrian button, SIGTERM stops the light. The final
// configuration is printed as Graphviz DOT on exit.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/comalice/hsmx"
	"github.com/comalice/hsmx/internal/config"
	"github.com/comalice/hsmx/internal/extensibility"
	"github.com/comalice/hsmx/internal/logger"
	"github.com/comalice/hsmx/internal/production"
	"github.com/comalice/hsmx/realtime"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "demo:", err)
		os.Exit(1)
	}
}

func run() error {
	var cfg Config
	if err := config.Load(&cfg); err != nil {
		return err
	}

	base := logger.Init(cfg.LogLevel, logger.Format(cfg.LogFormat))
	defer func() { _ = base.Sync() }()
	log := logger.For("demo")

	var rt *realtime.Runtime
	h, err := NewLight(cfg, func(evt hsmx.Event) error { return rt.Send(evt) })
	if err != nil {
		return fmt.Errorf("build light: %w", err)
	}

	reg := prometheus.NewRegistry()
	transitions := make(chan production.PublishedTransition, 16)
	publisher := production.NewChannelPublisher(transitions)

	m, err := hsmx.New(h,
		hsmx.WithName("traffic-light"),
		hsmx.WithLogger(logger.For("machine")),
		hsmx.WithObserver(production.NewMetricsObserver(reg), publisher),
	)
	if err != nil {
		return err
	}
	rt = realtime.NewRuntime(m, realtime.Config{
		TickRate:  cfg.Tick,
		TickEvent: EvTick,
		Logger:    logger.For("runtime"),
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		defer func() { _ = publisher.Close() }()
		return rt.Run(ctx)
	})

	g.Go(func() error {
		for tr := range transitions {
			log.Infow("transition",
				"id", tr.MachineID,
				"event", tr.Event,
				"from", tr.From,
				"to", tr.To,
				"lca", tr.LCA,
			)
		}
		return nil
	})

	buttons := make(chan hsmx.Event, hsmx.EventPoolSize)
	g.Go(func() error {
		defer close(buttons)
		return handleSignals(ctx, cancel, buttons, log)
	})
	g.Go(func() error {
		dropped, err := extensibility.Pump(ctx, extensibility.NewChannelEventSource(buttons), rt)
		if dropped > 0 {
			log.Warnw("button presses dropped", "count", dropped)
		}
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	})

	if cfg.MetricsAddr != "" {
		srv := &http.Server{
			Addr:              cfg.MetricsAddr,
			Handler:           promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
			ReadHeaderTimeout: 5 * time.Second,
		}
		g.Go(func() error {
			log.Infow("serving metrics", "addr", cfg.MetricsAddr)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		})
		g.Go(func() error {
			<-ctx.Done()
			shutdownCtx, done := context.WithTimeout(context.Background(), 5*time.Second)
			defer done()
			return srv.Shutdown(shutdownCtx)
		})
	}

	err = g.Wait()

	viz := &production.DefaultVisualizer{}
	fmt.Println(viz.ExportHierarchyDOT(h, m.Active()))
	log.Infow("stopped", "ticks", rt.Ticks(), "dispatched", rt.Dispatched(), "dropped", publisher.Dropped())
	return err
}

// handleSignals turns SIGINT into pedestrian button presses on buttons and
// stops the demo on SIGTERM.
func handleSignals(ctx context.Context, stop context.CancelFunc, buttons chan<- hsmx.Event, log *zap.SugaredLogger) error {
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sig)

	for {
		select {
		case <-ctx.Done():
			return nil
		case s := <-sig:
			if s == syscall.SIGTERM {
				log.Infow("stopping")
				stop()
				return nil
			}
			select {
			case buttons <- hsmx.NewEvent(EvPedestrianButton, nil):
			default:
				log.Warnw("button press dropped")
			}
		}
	}
}
