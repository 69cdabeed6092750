// panels lists, closes and inspects the pinned panels of a running inspector
package panels

import (
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strings"

	"github.com/alexflint/go-arg"
	"github.com/nathants/inspector/lib"
	"github.com/nathants/inspector/lib/session"
)

func init() {
	lib.Commands["panels"] = panels
	lib.Args["panels"] = panelsArgs{}
}

type panelsArgs struct {
	Addr    string `arg:"-a,--addr" help:"control api address (default: $INSPECTOR_ADDR or 127.0.0.1:9333)"`
	Close   string `arg:"--close" help:"close the panel with this id"`
	Inspect string `arg:"--inspect" help:"reveal the target of the panel with this id in devtools"`
}

func (panelsArgs) Description() string {
	return `panels - List pinned panels

Prints one JSON object per pinned panel: id, selector, position and whether its
element is still in the document. Use --close or --inspect with a panel id to
act on one panel.

Example:
  inspector panels
  inspector panels --close 0190f6a2-...`
}

func panels() {
	var args panelsArgs
	arg.MustParse(&args)

	if err := lib.LoadEnv(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	addr := lib.ControlAddr(args.Addr)

	var err error
	switch {
	case strings.TrimSpace(args.Close) != "":
		err = lib.ControlRequest(addr, http.MethodDelete, "/panels/"+url.PathEscape(args.Close), nil)
	case strings.TrimSpace(args.Inspect) != "":
		err = lib.ControlRequest(addr, http.MethodPost, "/panels/"+url.PathEscape(args.Inspect)+"/inspect", nil)
	default:
		var list []session.PanelInfo
		if err = lib.ControlRequest(addr, http.MethodGet, "/panels", &list); err == nil {
			for _, p := range list {
				lib.PrintJSONLine(p)
			}
			return
		}
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	lib.PrintJSONLine(map[string]bool{"success": true})
}
