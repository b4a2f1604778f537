// Package publish exports rendered donation assets (QR images, payload text
// and a manifest) to a local directory or an S3 bucket.
package publish

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// Sink stores named objects.
type Sink interface {
	Put(ctx context.Context, name, contentType string, data []byte) error
}

// DirSink writes objects as files under Dir.
type DirSink struct {
	Dir string
}

// Put writes data to Dir/name through a temporary file so readers never see
// a partial file.
func (s DirSink) Put(ctx context.Context, name, _ string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if name != filepath.Base(name) {
		return fmt.Errorf("publish: object name %q must not contain a path", name)
	}
	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return fmt.Errorf("publish: create %s: %w", s.Dir, err)
	}
	tmp, err := os.CreateTemp(s.Dir, "."+name+".*")
	if err != nil {
		return fmt.Errorf("publish: %w", err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("publish: write %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("publish: write %s: %w", name, err)
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return fmt.Errorf("publish: %w", err)
	}
	if err := os.Rename(tmp.Name(), filepath.Join(s.Dir, name)); err != nil {
		return fmt.Errorf("publish: %w", err)
	}
	return nil
}

// PutObjectAPI is the subset of the S3 client used by S3Sink.
type PutObjectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Sink uploads objects to Bucket under Prefix.
type S3Sink struct {
	Client       PutObjectAPI
	Bucket       string
	Prefix       string
	CacheControl string
}

// NewS3Sink creates an S3Sink from an AWS config.
func NewS3Sink(cfg aws.Config, bucket, prefix string) *S3Sink {
	return &S3Sink{
		Client:       s3.NewFromConfig(cfg),
		Bucket:       bucket,
		Prefix:       prefix,
		CacheControl: "public, max-age=300",
	}
}

func (s *S3Sink) key(name string) string {
	if s.Prefix == "" {
		return name
	}
	return path.Join(s.Prefix, name)
}

func (s *S3Sink) Put(ctx context.Context, name, contentType string, data []byte) error {
	in := &s3.PutObjectInput{
		Bucket:        aws.String(s.Bucket),
		Key:           aws.String(s.key(name)),
		Body:          bytes.NewReader(data),
		ContentLength: aws.Int64(int64(len(data))),
		ContentType:   aws.String(contentType),
	}
	if s.CacheControl != "" {
		in.CacheControl = aws.String(s.CacheControl)
	}
	if _, err := s.Client.PutObject(ctx, in); err != nil {
		return fmt.Errorf("publish: put s3://%s/%s: %w", s.Bucket, s.key(name), err)
	}
	return nil
}
