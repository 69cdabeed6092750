// watch follows panel content updates from a running inspector
package watch

import (
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/alexflint/go-arg"
	"github.com/gorilla/websocket"
	"github.com/nathants/inspector/lib"
)

func init() {
	lib.Commands["watch"] = watch
	lib.Args["watch"] = watchArgs{}
}

type watchArgs struct {
	Addr string `arg:"-a,--addr" help:"control api address (default: $INSPECTOR_ADDR or 127.0.0.1:9333)"`
}

func (watchArgs) Description() string {
	return `watch - Follow panel updates

Streams a JSON line every time a pinned panel's content changes: when it is
pinned and whenever the element's styles change afterwards. Ctrl+C to stop.

Example:
  inspector watch
  inspector watch | jq .declared`
}

func watch() {
	var args watchArgs
	arg.MustParse(&args)

	if err := lib.LoadEnv(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	addr := lib.ControlAddr(args.Addr)

	conn, _, err := websocket.DefaultDialer.Dial(lib.FeedURL(addr), nil)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: inspector not reachable on %s: %v\n", addr, err)
		os.Exit(1)
	}
	defer conn.Close()

	interrupted := make(chan struct{})
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigs
		close(interrupted)
		_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		conn.Close()
	}()

	for {
		var msg json.RawMessage
		if err := conn.ReadJSON(&msg); err != nil {
			select {
			case <-interrupted:
				return
			default:
			}
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return
			}
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
		lib.PrintJSONLine(msg)
	}
}
