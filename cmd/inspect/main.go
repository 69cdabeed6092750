// inspect runs the element inspector against a chrome tab.
package inspect

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alexflint/go-arg"
	"github.com/charmbracelet/log"

	"github.com/nathants/inspector/lib"
	"github.com/nathants/inspector/lib/cdppage"
	"github.com/nathants/inspector/lib/control"
	"github.com/nathants/inspector/lib/page"
	"github.com/nathants/inspector/lib/session"
)

func init() {
	lib.Commands["inspect"] = inspect
	lib.Args["inspect"] = inspectArgs{}
}

type inspectArgs struct {
	lib.TargetArgs
	Config   string        `arg:"-c,--config" help:"config file (default: ~/.config/inspector/config.yaml)"`
	Addr     string        `arg:"-a,--addr" help:"control api address (default: 127.0.0.1:9333)"`
	Interval time.Duration `arg:"-i,--interval" help:"sync loop interval (default: 16ms)"`
	Active   bool          `arg:"--active" help:"start with the picker on"`
	Verbose  bool          `arg:"-v,--verbose" help:"debug logging"`
}

func (inspectArgs) Description() string {
	return `inspect - Run the element inspector in a tab

Attaches to a tab and injects the inspector layer. Hover shows a live tooltip
with key computed styles and declared styles. Click pins a panel that stays in
sync with the element; panels can be dragged and closed. Right click clears
all panels. Escape toggles the picker, the shortcut (ctrl+shift+c) toggles the
inspector. The process serves a control api that 'signal', 'panels' and 'watch'
talk to. Ctrl+C detaches and removes the layer.

Example:
  inspector inspect
  inspector -t localhost:8000 inspect --active
  inspector inspect --addr 127.0.0.1:9400 -v`
}

func sessionConfig(cfg *lib.Config) session.Config {
	return session.Config{
		FrameInterval:   cfg.FrameInterval,
		Flash:           cfg.Flash,
		Gap:             cfg.Gap,
		TooltipHeight:   cfg.TooltipHeight,
		PanelWidth:      cfg.PanelWidth,
		PanelHeight:     cfg.PanelHeight,
		OverlapAttempts: cfg.OverlapAttempts,
		OverlapSpacing:  cfg.OverlapSpacing,
		TextLimit:       cfg.TextLimit,
		HighlightColor:  cfg.HighlightColor,
		Shortcut:        cfg.Shortcut,
	}
}

func fail(err error) {
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
	os.Exit(1)
}

func inspect() {
	var args inspectArgs
	arg.MustParse(&args)

	if err := lib.LoadEnv(); err != nil {
		fail(err)
	}
	cfg, err := lib.LoadConfig(args.Config)
	if err != nil {
		fail(err)
	}
	if args.Interval > 0 {
		cfg.FrameInterval = args.Interval
	}
	addr := cfg.Control.Addr
	if args.Addr != "" || os.Getenv("INSPECTOR_ADDR") != "" {
		addr = lib.ControlAddr(args.Addr)
	}
	level := cfg.Level()
	if args.Verbose {
		level = log.DebugLevel
	}
	logger := lib.NewLogger(os.Stderr, level)

	if !lib.IsChromeRunning() {
		fail(fmt.Errorf("Chrome not running on port %d, start it with: inspector launch", lib.DefaultDebugPort))
	}

	ctx, cancel := lib.SetupContextWithTimeout(0)
	defer cancel()

	targetCtx, targetCancel, err := lib.EnsureTargetContext(ctx, args.TargetArgs.Selector())
	if err != nil {
		fail(err)
	}
	defer targetCancel()
	targetCtx = lib.WithLogger(targetCtx, logger)

	runCtx, stop := signal.NotifyContext(targetCtx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	p, err := cdppage.Attach(runCtx)
	if err != nil {
		fail(err)
	}
	sess := session.New(p, sessionConfig(cfg))

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- control.Serve(runCtx, addr, sess, logger)
	}()
	if args.Active {
		go func() {
			err := sess.Do(runCtx, func(ctx context.Context, s *session.Session) error {
				return s.Activate(ctx)
			})
			if err != nil && !errors.Is(err, context.Canceled) {
				logger.Warn("activate", "error", err)
			}
		}()
	}

	logger.Info("inspector attached", "shortcut", cfg.Shortcut, "addr", addr)
	runErr := make(chan error, 1)
	go func() {
		runErr <- sess.Run(runCtx)
	}()

	select {
	case err = <-runErr:
	case err = <-serveErr:
		stop()
		<-runErr
	}

	// the tab outlives us, take the layer and listeners down with us
	detach(targetCtx, p)
	if err != nil && !errors.Is(err, context.Canceled) {
		fail(err)
	}
	logger.Info("inspector detached")
}

func detach(ctx context.Context, p *cdppage.Page) {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	logger := lib.LoggerFrom(ctx)
	if err := p.Apply(ctx, &page.Frame{}); err != nil {
		logger.Debug("remove layer", "error", err)
	}
	if err := p.Listen(ctx, 0, page.Chord{}); err != nil {
		logger.Debug("remove listeners", "error", err)
	}
}
