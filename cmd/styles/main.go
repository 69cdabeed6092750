// styles prints the inspector snapshot of one element
package styles

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/alexflint/go-arg"

	"github.com/nathants/inspector/lib"
	"github.com/nathants/inspector/lib/cdppage"
	"github.com/nathants/inspector/lib/style"
	"github.com/nathants/inspector/lib/tooltip"
)

func init() {
	lib.Commands["styles"] = styles
	lib.Args["styles"] = stylesArgs{}
}

type stylesArgs struct {
	lib.TargetArgs
	Selector string `arg:"positional,required" help:"CSS selector, first match is used"`
	Config   string `arg:"-c,--config" help:"config file (default: ~/.config/inspector/config.yaml)"`
	Markup   bool   `arg:"--markup" help:"print the panel markup instead of json"`
}

func (stylesArgs) Description() string {
	return `styles - Print key and declared styles of an element

Computes the same content a pinned panel shows: selector label, direct text,
key computed styles and the declared styles that differ from the element's
defaults. Output is indented JSON, or the panel markup with --markup.

Example:
  inspector styles "#hero"
  inspector -t localhost:8000 styles "nav a.active" --markup`
}

func styles() {
	var args stylesArgs
	arg.MustParse(&args)

	cfg, err := lib.LoadConfig(args.Config)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	if !lib.IsChromeRunning() {
		fmt.Fprintf(os.Stderr, "error: Chrome not running on port %d, start it with: inspector launch\n", lib.DefaultDebugPort)
		os.Exit(1)
	}

	ctx, cancel := lib.SetupContext()
	defer cancel()

	ctx, targetCancel, err := lib.EnsureTargetContext(ctx, args.TargetArgs.Selector())
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	defer targetCancel()
	ctx = lib.WithLogger(ctx, lib.NewLogger(os.Stderr, cfg.Level()))

	p, err := cdppage.Attach(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	h, err := p.Query(ctx, args.Selector)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	if h == "" {
		fmt.Fprintf(os.Stderr, "error: no element matches %q\n", args.Selector)
		os.Exit(1)
	}

	sheets, err := p.StyleSheets(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	snap, err := style.NewExtractor(p, cfg.TextLimit).Snapshot(ctx, sheets, h)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	if args.Markup {
		markup, err := tooltip.Render(tooltip.FromSnapshot(snap, true))
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
		fmt.Println(markup)
		return
	}
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(string(data))
}
