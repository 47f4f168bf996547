// Package s3store is the S3 document store backend.
package s3store

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/innerfold/parts-service/internal/config"
	"github.com/innerfold/parts-service/internal/registry/docstore"
)

const contentType = "text/markdown; charset=utf-8"

func init() {
	docstore.Register(docstore.Plugin{
		Name:   "s3",
		Loader: load,
	})
}

func load(ctx context.Context) (docstore.DocumentStore, error) {
	cfg := config.FromContext(ctx)
	if cfg == nil || cfg.S3Bucket == "" {
		return nil, fmt.Errorf("s3store: S3_BUCKET is required")
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(
		ctx,
		awsconfig.WithRequestChecksumCalculation(aws.RequestChecksumCalculationWhenRequired),
	)
	if err != nil {
		return nil, fmt.Errorf("s3store: load AWS config: %w", err)
	}
	usePathStyle := cfg.S3UsePathStyle
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = usePathStyle
	})
	return &Store{
		client: client,
		bucket: cfg.S3Bucket,
		prefix: strings.Trim(strings.TrimSpace(cfg.S3Prefix), "/"),
	}, nil
}

// Store is a DocumentStore backed by an S3 bucket.
type Store struct {
	client *s3.Client
	bucket string
	prefix string
}

// key maps a document path to the S3 object key. The prefix is applied at
// access time and never appears in stored paths.
func (s *Store) key(path string) string {
	if s.prefix != "" {
		return s.prefix + "/" + path
	}
	return path
}

func (s *Store) Put(ctx context.Context, path, text string) error {
	key := s.key(path)
	ct := contentType
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      &s.bucket,
		Key:         &key,
		Body:        bytes.NewReader([]byte(text)),
		ContentType: &ct,
	})
	if err != nil {
		return &docstore.StorageError{Op: "put", Path: path, Err: err}
	}
	return nil
}

func (s *Store) Get(ctx context.Context, path string) (string, bool, error) {
	key := s.key(path)
	resp, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: &s.bucket,
		Key:    &key,
	})
	if err != nil {
		var noKey *types.NoSuchKey
		if errors.As(err, &noKey) {
			return "", false, nil
		}
		return "", false, &docstore.StorageError{Op: "get", Path: path, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", false, &docstore.StorageError{Op: "get", Path: path, Err: err}
	}
	return string(data), true, nil
}

func (s *Store) Exists(ctx context.Context, path string) (bool, error) {
	key := s.key(path)
	_, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: &s.bucket,
		Key:    &key,
	})
	if err != nil {
		var notFound *types.NotFound
		if errors.As(err, &notFound) {
			return false, nil
		}
		return false, &docstore.StorageError{Op: "exists", Path: path, Err: err}
	}
	return true, nil
}

func (s *Store) List(ctx context.Context, prefix string) ([]string, error) {
	keyPrefix := s.key(prefix)
	paginator := s3.NewListObjectsV2Paginator(s.client, &s3.ListObjectsV2Input{
		Bucket: &s.bucket,
		Prefix: &keyPrefix,
	})
	var out []string
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, &docstore.StorageError{Op: "list", Path: prefix, Err: err}
		}
		for _, obj := range page.Contents {
			if obj.Key == nil {
				continue
			}
			path := *obj.Key
			if s.prefix != "" {
				path = strings.TrimPrefix(path, s.prefix+"/")
			}
			out = append(out, path)
		}
	}
	return out, nil
}

func (s *Store) Delete(ctx context.Context, path string) error {
	// S3 deletes are idempotent: removing a missing key succeeds.
	key := s.key(path)
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: &s.bucket,
		Key:    &key,
	})
	if err != nil {
		return &docstore.StorageError{Op: "delete", Path: path, Err: err}
	}
	return nil
}
