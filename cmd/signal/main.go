// signal sends an activation signal to a running inspector
package signal

import (
	"fmt"
	"os"
	"slices"

	"github.com/alexflint/go-arg"
	"github.com/nathants/inspector/lib"
)

var actions = []string{"activate", "toggle", "picker", "clear", "deactivate"}

func init() {
	lib.Commands["signal"] = signal
	lib.Args["signal"] = signalArgs{}
}

type signalArgs struct {
	Action string `arg:"positional,required" help:"activate | toggle | picker | clear | deactivate"`
	Addr   string `arg:"-a,--addr" help:"control api address (default: $INSPECTOR_ADDR or 127.0.0.1:9333)"`
}

func (signalArgs) Description() string {
	return `signal - Send a signal to a running inspector

activate    start picking (no-op when already picking)
toggle      same as the keyboard shortcut: on when off, off when on
picker      switch the picker on or off, keeping pinned panels
clear       remove every pinned panel
deactivate  remove the inspector layer and all panels

Example:
  inspector signal activate
  inspector signal clear --addr 127.0.0.1:9400`
}

func signal() {
	var args signalArgs
	arg.MustParse(&args)

	if !slices.Contains(actions, args.Action) {
		fmt.Fprintf(os.Stderr, "error: unknown action %q, want one of %v\n", args.Action, actions)
		os.Exit(1)
	}
	if err := lib.LoadEnv(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	if err := lib.Signal(lib.ControlAddr(args.Addr), args.Action); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	lib.PrintJSONLine(map[string]bool{"success": true})
}
