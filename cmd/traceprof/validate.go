/*
 * Copyright (c) 2025, Corebuild Authors.
 */
package main

import (
	"bufio"
	"compress/gzip"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

func newValidateCmd() *cobra.Command {
	var verbose bool
	cmd := &cobra.Command{
		Use:   "validate <trace-file>",
		Short: "Parse a trace file and print a summary",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return validateTrace(args[0], verbose)
		},
	}
	addVerboseFlag(cmd.Flags(), &verbose)
	return cmd
}

// addVerboseFlag is shared flag-registration plumbing, taking the concrete
// *pflag.FlagSet cobra.Command.Flags() returns rather than re-deriving it,
// the same direct pflag usage cmd/cli's flag helpers rely on.
func addVerboseFlag(fs *pflag.FlagSet, dst *bool) {
	fs.BoolVarP(dst, "verbose", "V", false, "print every event instead of just the summary")
}

func validateTrace(path string, verbose bool) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	var r io.Reader = bufio.NewReader(f)
	if strings.HasSuffix(path, ".gz") {
		gz, err := gzip.NewReader(r)
		if err != nil {
			return fmt.Errorf("not a valid gzip stream: %w", err)
		}
		defer gz.Close()
		r = gz
	}

	var events []json.RawMessage
	if err := json.NewDecoder(r).Decode(&events); err != nil {
		return fmt.Errorf("not a valid JSON array: %w", err)
	}

	counts := map[string]int{}
	for _, raw := range events {
		var ev struct {
			Ph  string `json:"ph"`
			Cat string `json:"cat"`
		}
		if err := json.Unmarshal(raw, &ev); err != nil {
			continue
		}
		counts[ev.Ph]++
		if verbose {
			fmt.Println(string(raw))
		}
	}

	fmt.Printf("%s: %d events\n", path, len(events))
	for ph, n := range counts {
		fmt.Printf("  ph=%s: %d\n", ph, n)
	}
	return nil
}
