package main

import (
	"flag"
	"fmt"
	"os"
)

// cliOptions mirrors original_source/src/wm/startup.rs's accepted flags: a
// replace switch for taking over from a running WM, and a log-filter
// override so FENESTRA_LOG needn't be exported for a one-off debug run.
type cliOptions struct {
	replace    bool
	logFilter  string
	benchmark  bool
	printUsage bool
}

func parseFlags(args []string) (cliOptions, error) {
	fs := flag.NewFlagSet("fenestra", flag.ContinueOnError)
	var opt cliOptions
	fs.BoolVar(&opt.replace, "replace", false, "take over from a running window manager")
	fs.BoolVar(&opt.replace, "r", false, "shorthand for -replace")
	fs.StringVar(&opt.logFilter, "log", "", "log filter, e.g. \"wm=debug,compositor=trace\"")
	fs.BoolVar(&opt.benchmark, "benchmark", false, "disable VSync for throughput testing")
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "usage: %s [-replace] [-log filter] [-benchmark]\n", os.Args[0])
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return opt, err
	}
	return opt, nil
}
