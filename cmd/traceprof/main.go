// Command traceprof drives the profiler outside of a full build-system
// process: it can run a synthetic workload through it to produce a sample
// trace, or validate/summarize an existing trace file. Command layout
// follows the cobra root/subcommand structure common to larger CLI
// trees, scaled down to this package's much smaller surface.
/*
 * Copyright (c) 2025, Corebuild Authors.
 */
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/corebuild/buildtrace/internal/nlog"
)

func main() {
	root := newRootCmd()
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "traceprof:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var verbosity int
	cmd := &cobra.Command{
		Use:   "traceprof",
		Short: "Drive and inspect build-system profiler traces",
		PersistentPreRun: func(*cobra.Command, []string) {
			nlog.SetVerbosity(verbosity)
		},
	}
	cmd.PersistentFlags().IntVarP(&verbosity, "v", "v", 0, "log verbosity level")
	cmd.AddCommand(newRunCmd())
	cmd.AddCommand(newValidateCmd())
	return cmd
}
