// Package s3sink adapts a local trace file sink into one that archives the
// finished trace to S3 once writing completes. This mirrors a backend
// wrapping style seen across cloud backend drivers, applied here to a
// single upload-on-close operation rather than a full object-storage API
// surface.
/*
 * Copyright (c) 2025, Corebuild Authors.
 */
package s3sink

import (
	"context"
	"os"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awscfg "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/pkg/errors"

	"github.com/corebuild/buildtrace/internal/cos"
	"github.com/corebuild/buildtrace/internal/nlog"
	"github.com/corebuild/buildtrace/profiler/sink"
)

// minRetryBackoff and maxRetryBackoff clamp the delay between upload
// attempts after a connection reset, to keep Close from hanging
// indefinitely on a stuck network path.
var (
	minRetryBackoff = 100 * time.Millisecond
	maxRetryBackoff = 2 * time.Second
)

const maxUploadAttempts = 3

// putter is the slice of *s3.Client's surface this sink needs, narrowed so
// tests can exercise the retry loop against a fake.
type putter interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, opts ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// Sink wraps a local sink.Sink and, on Close, uploads the file at localPath
// to the configured S3 bucket/key. Upload failures are logged but do not
// fail Close -- the local trace is still valid and complete; remote
// archival is a best-effort convenience.
type Sink struct {
	sink.Sink
	localPath string
	bucket    string
	key       string
	client    putter

	// maxAttempts overrides maxUploadAttempts; zero means "use the
	// default." Exposed only for tests exercising the retry loop.
	maxAttempts int
}

// New wraps a plain file sink for localPath, uploading to bucket/key on
// Close. It resolves AWS credentials the standard way (environment,
// shared config, IMDS) via awscfg.LoadDefaultConfig, unless accessKey is
// non-empty, in which case it pins a static credentials provider instead
// -- useful for short-lived CI runners handed a scoped key pair rather
// than a full shared config.
func New(ctx context.Context, localPath, bucket, key, accessKey, secretKey string) (*Sink, error) {
	inner, err := sink.NewFile(localPath)
	if err != nil {
		return nil, err
	}
	opts := []func(*awscfg.LoadOptions) error{}
	if accessKey != "" {
		opts = append(opts, awscfg.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(accessKey, secretKey, "")))
	}
	awsCfg, err := awscfg.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, errors.Wrap(err, "s3sink: loading aws config")
	}
	return &Sink{
		Sink:      inner,
		localPath: localPath,
		bucket:    bucket,
		key:       key,
		client:    s3.NewFromConfig(awsCfg),
	}, nil
}

func (s *Sink) Close() error {
	if err := s.Sink.Close(); err != nil {
		return err
	}
	f, err := os.Open(s.localPath)
	if err != nil {
		nlog.Warningln("s3sink: reopen for upload:", err)
		return nil
	}
	defer f.Close()

	attempts := cos.NonZero(s.maxAttempts, maxUploadAttempts)
	for attempt := 1; attempt <= attempts; attempt++ {
		if attempt > 1 {
			if _, serr := f.Seek(0, 0); serr != nil {
				nlog.Warningln("s3sink: rewind for retry:", serr)
				return nil
			}
			backoff := cos.ClampDuration(time.Duration(attempt)*minRetryBackoff, minRetryBackoff, maxRetryBackoff)
			time.Sleep(backoff)
		}
		_, err = s.client.PutObject(context.Background(), &s3.PutObjectInput{
			Bucket: aws.String(s.bucket),
			Key:    aws.String(s.key),
			Body:   f,
		})
		if err == nil {
			return nil
		}
		if !cos.IsErrConnectionReset(err) {
			break
		}
		nlog.Warningln("s3sink: upload", s.bucket, s.key, "attempt", attempt, "reset, retrying:", err)
	}
	if err != nil {
		nlog.Warningln("s3sink: upload", s.bucket, s.key, "failed:", err)
	}
	return nil
}
