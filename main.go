// main provides CLI entry point for inspector with subcommand routing
package main

import (
	"bytes"
	"fmt"
	"os"
	"reflect"
	"sort"
	"strings"

	"github.com/alexflint/go-arg"
	_ "github.com/nathants/inspector/cmd/inspect"
	_ "github.com/nathants/inspector/cmd/launch"
	_ "github.com/nathants/inspector/cmd/list"
	_ "github.com/nathants/inspector/cmd/panels"
	_ "github.com/nathants/inspector/cmd/signal"
	_ "github.com/nathants/inspector/cmd/styles"
	_ "github.com/nathants/inspector/cmd/watch"
	"github.com/nathants/inspector/lib"
)

func usage() {
	fmt.Fprintln(os.Stderr, "Inspector CLI - Visual element inspector for Chrome tabs")
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintln(os.Stderr, "Quick Start:")
	fmt.Fprintln(os.Stderr, "  inspector launch                         # Start Chrome with remote debugging")
	fmt.Fprintln(os.Stderr, "  inspector list                           # See open tabs")
	fmt.Fprintln(os.Stderr, "  inspector -t localhost:8000 inspect      # Inspect a tab by URL prefix")
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintln(os.Stderr, "Global Options (must appear before command):")
	fmt.Fprintln(os.Stderr, "  -t, --target URL_PREFIX                  # Select tab by URL prefix")
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintln(os.Stderr, "In The Page:")
	fmt.Fprintln(os.Stderr, "  ctrl+shift+c   toggle the inspector")
	fmt.Fprintln(os.Stderr, "  escape         toggle the picker, pinned panels stay")
	fmt.Fprintln(os.Stderr, "  click          pin a panel for the hovered element")
	fmt.Fprintln(os.Stderr, "  right click    clear all panels and reveal the element in devtools")
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintln(os.Stderr, "Control:")
	fmt.Fprintln(os.Stderr, "  A running 'inspect' serves a local control api (default 127.0.0.1:9333).")
	fmt.Fprintln(os.Stderr, "  'signal', 'panels' and 'watch' talk to it, --addr or INSPECTOR_ADDR to change.")
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintln(os.Stderr, "Commands:")

	var fns []string
	maxLen := 0
	for fn := range lib.Commands {
		fns = append(fns, fn)
		if len(fn) > maxLen {
			maxLen = len(fn)
		}
	}
	sort.Strings(fns)
	fmtStr := "  %-" + fmt.Sprint(maxLen) + "s %s\n"
	for _, fn := range fns {
		args := lib.Args[fn]
		val := reflect.ValueOf(args)
		newVal := reflect.New(val.Type())
		newVal.Elem().Set(val)
		p, err := arg.NewParser(arg.Config{}, newVal.Interface())
		if err != nil {
			fmt.Fprintln(os.Stderr, "Error creating parser:", err)
			return
		}
		var buffer bytes.Buffer
		p.WriteHelp(&buffer)
		descr := buffer.String()
		lines := strings.Split(descr, "\n")
		var line string
		for _, l := range lines {
			l = strings.TrimSpace(l)
			if strings.HasPrefix(l, "Usage:") {
				line = l
			}
		}
		line = strings.ReplaceAll(line, "Usage: inspector", "")
		fmt.Fprintf(os.Stderr, fmtStr, fn, line)
	}
}

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	args := append([]string{}, os.Args[1:]...)
	target := ""
	for len(args) > 0 {
		arg := args[0]
		if arg == "-h" || arg == "--help" {
			usage()
			os.Exit(0)
		}
		if arg == "-t" || arg == "--target" {
			if len(args) < 2 {
				fmt.Fprintln(os.Stderr, "error: --target requires a value")
				os.Exit(1)
			}
			target = args[1]
			args = args[2:]
			continue
		}
		if strings.HasPrefix(arg, "--target=") {
			target = strings.TrimPrefix(arg, "--target=")
			args = args[1:]
			continue
		}
		if strings.HasPrefix(arg, "-t=") {
			target = strings.TrimPrefix(arg, "-t=")
			args = args[1:]
			continue
		}
		break
	}
	if len(args) == 0 {
		usage()
		os.Exit(1)
	}
	if strings.TrimSpace(target) != "" {
		err := os.Setenv("CHROME_TARGET", target)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
	}

	cmd := args[0]
	fn, ok := lib.Commands[cmd]
	if !ok {
		usage()
		fmt.Fprintln(os.Stderr, "\nunknown command:", cmd)
		os.Exit(1)
	}
	os.Args = args
	fn()
}
