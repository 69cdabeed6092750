// list shows the tabs the inspector can attach to
package list

import (
	"fmt"
	"os"

	"github.com/alexflint/go-arg"
	"github.com/nathants/inspector/lib"
)

func init() {
	lib.Commands["list"] = list
	lib.Args["list"] = listArgs{}
}

type listArgs struct {
}

func (listArgs) Description() string {
	return `list - List Chrome tabs

Lists all open tabs in Chrome. The tab marked * is the one inspect and styles
attach to when no -t is given.

Example:
  inspector list
  inspector -t localhost:8000 inspect`
}

func list() {
	var args listArgs
	arg.MustParse(&args)

	err := lib.ListTabs()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}