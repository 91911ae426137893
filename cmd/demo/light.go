package main

import (
	"time"

	"github.com/comalice/hsmx"
)

// Events understood by the traffic light.
const (
	EvTick             hsmx.EventID = "Tick"
	EvTimeout          hsmx.EventID = "Timeout"
	EvPedestrianButton hsmx.EventID = "PedestrianButton"
)

// Store keys on Root.
const (
	keyTimer       = "timer"
	keyPedCrossing = "pedCrossing"
)

// Config holds phase lengths in ticks.
type Config struct {
	Tick      time.Duration `env:"HSMX_TICK" envDefault:"1s"`
	Green     int           `env:"HSMX_GREEN" envDefault:"15"`
	Yellow    int           `env:"HSMX_YELLOW" envDefault:"2"`
	Red       int           `env:"HSMX_RED" envDefault:"10"`
	RedPed    int           `env:"HSMX_RED_PED" envDefault:"20"`
	PedGreen  int           `env:"HSMX_PED_GREEN" envDefault:"2"`
	LogLevel  string        `env:"HSMX_LOG_LEVEL" envDefault:"info"`
	LogFormat string        `env:"HSMX_LOG_FORMAT" envDefault:"console"`
	// MetricsAddr serves /metrics when set, e.g. ":9090".
	MetricsAddr string `env:"HSMX_METRICS_ADDR"`
}

// Queue accepts events for dispatch after the current one completes.
type Queue func(hsmx.Event) error

// NewLight declares Root{Red, Yellow, Green}. Root counts ticks down and
// queues Timeout through queue when the count reaches zero.
func NewLight(cfg Config, queue Queue) (*hsmx.Hierarchy, error) {
	startTimeout := func(ctx *hsmx.Context, ticks int) {
		ctx.Store.Set(keyTimer, ticks)
	}

	b := hsmx.NewMachineBuilder("Root")

	b.State("Root").
		Initial("Red").
		Entry(func(ctx *hsmx.Context) {
			ctx.Store.Set(keyTimer, -1)
			ctx.Store.Set(keyPedCrossing, false)
		}).
		On(EvTick, func(ctx *hsmx.Context, _ hsmx.Event) hsmx.Outcome {
			switch timer := ctx.Store.Int(keyTimer, -1); {
			case timer > 0:
				ctx.Store.Set(keyTimer, timer-1)
			case timer == 0:
				ctx.Store.Set(keyTimer, -1)
				if err := queue(hsmx.NewEvent(EvTimeout, nil)); err != nil {
					ctx.Logger.Warnw("timeout dropped", "error", err)
				}
			}
			return hsmx.Handled
		})

	b.State("Root.Green").
		Entry(func(ctx *hsmx.Context) {
			ctx.Logger.Infow("light", "color", "green")
			startTimeout(ctx, cfg.Green)
		}).
		On(EvPedestrianButton, func(ctx *hsmx.Context, _ hsmx.Event) hsmx.Outcome {
			// Cut the green phase short and hold the next red longer.
			startTimeout(ctx, cfg.PedGreen)
			ctx.Store.Set(keyPedCrossing, true)
			return hsmx.Handled
		}).
		Transition(EvTimeout, "Yellow")

	b.State("Root.Yellow").
		Entry(func(ctx *hsmx.Context) {
			ctx.Logger.Infow("light", "color", "yellow")
			startTimeout(ctx, cfg.Yellow)
		}).
		Transition(EvTimeout, "Red")

	b.State("Root.Red").
		Entry(func(ctx *hsmx.Context) {
			ctx.Logger.Infow("light", "color", "red", "pedestrians", ctx.Store.Bool(keyPedCrossing))
			if ctx.Store.Bool(keyPedCrossing) {
				startTimeout(ctx, cfg.RedPed)
				return
			}
			startTimeout(ctx, cfg.Red)
		}).
		Exit(func(ctx *hsmx.Context) {
			ctx.Store.Set(keyPedCrossing, false)
		}).
		Transition(EvTimeout, "Green")

	return b.Build()
}
