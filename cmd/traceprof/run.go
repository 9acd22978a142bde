/*
 * Copyright (c) 2025, Corebuild Authors.
 */
package main

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/corebuild/buildtrace/profiler"
	"github.com/corebuild/buildtrace/profiler/sink"
	"github.com/corebuild/buildtrace/profiler/sink/s3sink"
)

func newRunCmd() *cobra.Command {
	var (
		out         string
		compress    bool
		actions     int
		workers     int
		slim        bool
		buildID     string
		s3Bucket    string
		s3Key       string
		s3AccessKey string
		s3SecretKey string
	)
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run a synthetic workload through the profiler and write a trace",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWorkload(out, compress, actions, workers, slim, buildID, s3Bucket, s3Key, s3AccessKey, s3SecretKey)
		},
	}
	flags := cmd.Flags()
	flags.StringVar(&out, "out", "trace.json", "output trace file path")
	flags.BoolVar(&compress, "gzip", false, "gzip-compress the output (ignored when --s3-bucket is set)")
	flags.IntVar(&actions, "actions", 2000, "number of synthetic ACTION events")
	flags.IntVar(&workers, "workers", 8, "number of concurrent producer goroutines")
	flags.BoolVar(&slim, "slim", false, "enable slim-profile merging pass")
	flags.StringVar(&buildID, "build-id", "", "build id to stamp on the run (default: generated)")
	flags.StringVar(&s3Bucket, "s3-bucket", "", "archive the finished trace to this S3 bucket")
	flags.StringVar(&s3Key, "s3-key", "", "object key to archive under (default: the output filename)")
	flags.StringVar(&s3AccessKey, "s3-access-key", "", "static AWS access key (default: standard credential chain)")
	flags.StringVar(&s3SecretKey, "s3-secret-key", "", "static AWS secret key, paired with --s3-access-key")
	return cmd
}

func runWorkload(out string, compress bool, actions, workers int, slim bool, buildID, s3Bucket, s3Key, s3AccessKey, s3SecretKey string) error {
	var s sink.Sink
	var err error
	switch {
	case s3Bucket != "":
		if s3Key == "" {
			s3Key = out
		}
		s, err = s3sink.New(context.Background(), out, s3Bucket, s3Key, s3AccessKey, s3SecretKey)
	case compress:
		s, err = sink.NewGzipFile(out)
	default:
		s, err = sink.NewFile(out)
	}
	if err != nil {
		return fmt.Errorf("opening sink: %w", err)
	}

	if buildID == "" {
		buildID, _ = profiler.NewBuildID()
	}

	p := profiler.Instance()
	if err := p.Start(profiler.Config{
		Sink:                  s,
		OutputBase:            out,
		BuildID:               buildID,
		SlimProfile:           slim,
		CollectTaskHistograms: true,
		CollectLoadAverage:    true,
	}); err != nil {
		return err
	}

	var g errgroup.Group
	perWorker := actions / workers
	if perWorker == 0 {
		perWorker = 1
	}
	for w := 0; w < workers; w++ {
		id := w
		g.Go(func() error {
			rng := rand.New(rand.NewSource(int64(id) + 1))
			for i := 0; i < perWorker; i++ {
				h := p.ProfileAction(profiler.ACTION, "Compile", fmt.Sprintf("//pkg/%d:target_%d", id, i), "", "")
				time.Sleep(time.Duration(rng.Intn(5)) * time.Millisecond)
				h.Release()
			}
			return nil
		})
	}
	_ = g.Wait()

	p.Stop()
	fmt.Println("wrote", out)
	return nil
}
