// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package s3

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/poiesic/lexcorpus/core"
	"github.com/poiesic/lexcorpus/source"
)

// Config holds the connection settings of an S3 compatible bucket.
type Config struct {
	Endpoint  string
	Region    string
	AccessKey string
	SecretKey string
	Bucket    string
	Prefix    string // Optional key prefix, e.g. "laws"
	UseSSL    bool
}

// ErrInvalidConfig indicates missing connection settings.
var ErrInvalidConfig = errors.New("invalid s3 config")

// Store is a source.Store backed by an S3 compatible bucket.
type Store struct {
	client     *minio.Client
	bucketName string
	region     string
	prefix     string
	initOnce   sync.Once
	initErr    error
}

var _ source.Store = (*Store)(nil)

// NewStore connects to the bucket described by cfg.
// The bucket is created on first use if it does not exist.
func NewStore(cfg Config) (*Store, error) {
	endpoint := strings.TrimSpace(cfg.Endpoint)
	if endpoint == "" {
		return nil, fmt.Errorf("%w: endpoint is required", ErrInvalidConfig)
	}
	access := strings.TrimSpace(cfg.AccessKey)
	secret := strings.TrimSpace(cfg.SecretKey)
	if access == "" || secret == "" {
		return nil, fmt.Errorf("%w: access key and secret key are required", ErrInvalidConfig)
	}
	bucket := strings.TrimSpace(cfg.Bucket)
	if bucket == "" {
		return nil, fmt.Errorf("%w: bucket is required", ErrInvalidConfig)
	}
	region := strings.TrimSpace(cfg.Region)
	if region == "" {
		region = "us-east-1"
	}

	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(access, secret, ""),
		Secure: cfg.UseSSL,
		Region: region,
	})
	if err != nil {
		return nil, fmt.Errorf("init s3 client: %w", err)
	}

	return &Store{
		client:     client,
		bucketName: bucket,
		region:     region,
		prefix:     strings.Trim(strings.TrimSpace(cfg.Prefix), "/"),
	}, nil
}

func (s *Store) ensureBucket(ctx context.Context) error {
	s.initOnce.Do(func() {
		exists, err := s.client.BucketExists(ctx, s.bucketName)
		if err != nil {
			s.initErr = err
			return
		}
		if exists {
			return
		}
		s.initErr = s.client.MakeBucket(ctx, s.bucketName, minio.MakeBucketOptions{Region: s.region})
	})
	return s.initErr
}

// Exists reports whether an object is present at path.
func (s *Store) Exists(ctx context.Context, path string) (bool, error) {
	if err := s.ensureBucket(ctx); err != nil {
		return false, fmt.Errorf("ensure bucket: %w", err)
	}
	_, err := s.client.StatObject(ctx, s.bucketName, s.objectKey(path), minio.StatObjectOptions{})
	if err != nil {
		if isNotFound(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// Open returns a reader over the object at path.
func (s *Store) Open(ctx context.Context, path string) (io.ReadCloser, error) {
	if err := s.ensureBucket(ctx); err != nil {
		return nil, fmt.Errorf("ensure bucket: %w", err)
	}
	obj, err := s.client.GetObject(ctx, s.bucketName, s.objectKey(path), minio.GetObjectOptions{})
	if err != nil {
		return nil, err
	}
	// GetObject is lazy; Stat surfaces a missing key before the caller reads
	if _, err := obj.Stat(); err != nil {
		obj.Close()
		if isNotFound(err) {
			return nil, fmt.Errorf("%w: %s", core.ErrSourceNotFound, path)
		}
		return nil, err
	}
	return obj, nil
}

// Put uploads data to path.
func (s *Store) Put(ctx context.Context, path string, data []byte) error {
	if err := s.ensureBucket(ctx); err != nil {
		return fmt.Errorf("ensure bucket: %w", err)
	}
	_, err := s.client.PutObject(ctx, s.bucketName, s.objectKey(path), bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: "application/xml",
	})
	return err
}

func (s *Store) objectKey(path string) string {
	normalized := strings.TrimLeft(strings.TrimSpace(path), "/")
	if s.prefix == "" {
		return normalized
	}
	return s.prefix + "/" + normalized
}

func isNotFound(err error) bool {
	code := minio.ToErrorResponse(err).Code
	return code == "NoSuchKey" || code == "NoSuchBucket"
}
