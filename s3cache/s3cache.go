/* Copyright (c) 2013 The s3cache AUTHORS. All rights reserved.
 * Copyright (c) 2025 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file in the current directory for license terms
 *
 * Package s3cache provides an implementation of httpcache.Cache that stores and
 * retrieves data using Amazon S3. It is based on the original
 * github.com/sourcegraph/s3cache but updated to use the more modern
 * aws-sdk-go-v2 and golang standard library functions. It backs both the
 * tournament store and the roster web cache.
 */
package s3cache

import (
	"bytes"
	"compress/gzip"
	"context"
	"crypto/md5"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"path"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go"
	"github.com/sirupsen/logrus"
)

// ObjectAPI is the subset of the S3 client the cache uses.
type ObjectAPI interface {
	GetObject(ctx context.Context, in *s3.GetObjectInput,
		optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	PutObject(ctx context.Context, in *s3.PutObjectInput,
		optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, in *s3.DeleteObjectInput,
		optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// Cache objects store and retrieve data using Amazon S3.
type Cache struct {
	// Config is the Amazon S3 configuration.
	Config aws.Config

	// Client is the s3 client the cache uses when interacting with S3.
	// By default this is initialized in Init() with the default Config, but
	// callers can optionally override this with their own client if desired.
	Client ObjectAPI

	// bucketName is the name of the S3 bucket. Example: "mybucket".
	bucketName string

	// prefix namespaces object keys so several caches can share a bucket.
	prefix string

	// gzip indicates whether cache entries should be gzipped in Set and
	// gunzipped in Get. If true, cache entry keys will have the suffix ".gz"
	// appended.
	gzip bool

	// log receives errors the cache interface cannot return; nil drops them
	log logrus.FieldLogger

	// The context to specify when initiating s3 requests
	ctx context.Context
}

func (c *Cache) Get(key string) ([]byte, bool) {
	data, found, err := c.Load(key)
	if err != nil {
		c.logf("s3cache.get: %v", err)
	}

	return data, found
}

// Load fetches the object stored under key. A missing object is reported
// as found=false with a nil error; any other failure is returned.
func (c *Cache) Load(key string) ([]byte, bool, error) {
	input := &s3.GetObjectInput{
		Bucket: aws.String(c.bucketName),
		Key:    aws.String(c.cacheKeyToObjectKey(key)),
	}

	resp, err := c.Client.GetObject(c.ctx, input)
	if err != nil {
		var apiErr smithy.APIError
		// no such key just indicates a cache miss
		if errors.As(err, &apiErr) && apiErr.ErrorCode() == "NoSuchKey" {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to get object %v%v: %w",
			*input.Bucket, *input.Key, err)
	}
	defer resp.Body.Close()

	rdr := resp.Body
	if c.gzip {
		rdr, err = gzip.NewReader(rdr)
		if err != nil {
			return nil, false, fmt.Errorf("failed to open compressed object %v%v: %w",
				*input.Bucket, *input.Key, err)
		}

		defer rdr.Close()
	}
	data, err := io.ReadAll(rdr)
	if err != nil {
		return nil, false, fmt.Errorf("failed to read object %v%v: %w",
			*input.Bucket, *input.Key, err)
	}

	return data, true, nil
}

// Set stores the provided data in the cache under the given key.
func (c *Cache) Set(key string, data []byte) {
	if err := c.Save(key, data); err != nil {
		c.logf("s3cache.set: %v", err)
	}
}

// Save is Set with the failure returned instead of logged.
func (c *Cache) Save(key string, data []byte) error {
	input := &s3.PutObjectInput{
		Bucket: aws.String(c.bucketName),
		Key:    aws.String(c.cacheKeyToObjectKey(key)),
		Body:   bytes.NewReader(data),
	}

	if c.gzip {
		var buf bytes.Buffer
		gw := gzip.NewWriter(&buf)
		if _, err := gw.Write(data); err != nil {
			return fmt.Errorf("failed to gzip data for %v%v: %w",
				*input.Bucket, *input.Key, err)
		}
		if err := gw.Close(); err != nil {
			return fmt.Errorf("failed to close gzip writer for %v%v: %w",
				*input.Bucket, *input.Key, err)
		}
		input.Body = &buf
		input.ContentEncoding = aws.String("gzip")
	}

	if _, err := c.Client.PutObject(c.ctx, input); err != nil {
		return fmt.Errorf("put failed for %v%v: %w", *input.Bucket,
			*input.Key, err)
	}

	return nil
}

func (c *Cache) Delete(key string) {
	if err := c.Remove(key); err != nil {
		c.logf("s3cache.delete: %v", err)
	}
}

// Remove is Delete with the failure returned instead of logged.
func (c *Cache) Remove(key string) error {
	input := &s3.DeleteObjectInput{
		Bucket: aws.String(c.bucketName),
		Key:    aws.String(c.cacheKeyToObjectKey(key)),
	}

	if _, err := c.Client.DeleteObject(c.ctx, input); err != nil {
		return fmt.Errorf("delete failed for %v%v: %w", *input.Bucket,
			*input.Key, err)
	}

	return nil
}

func (c *Cache) logf(format string, args ...any) {
	if c.log != nil {
		c.log.Warnf(format, args...)
	}
}

func (c *Cache) cacheKeyToObjectKey(key string) string {
	h := md5.New()
	io.WriteString(h, key)
	objKey := "/" + path.Join(c.prefix, hex.EncodeToString(h.Sum(nil)))
	if c.gzip {
		objKey += ".gz"
	}

	return objKey
}

// New returns a new Cache with underlying storage in the specified Amazon S3
// bucket under prefix. Additionally, specify whether objects persisted in the
// cache should be compressed with gzip or not. Errors the cache interface
// cannot return are logged to log when it is non-nil. Callers should take
// care to invoke Init() on the returned Cache object before use
func New(ctxIn context.Context, bucketNameIn string, prefixIn string,
	gzipIn bool, log logrus.FieldLogger) *Cache {

	if prefixIn == "" {
		prefixIn = "s3cache"
	}

	return &Cache{
		ctx:        ctxIn,
		bucketName: bucketNameIn,
		prefix:     prefixIn,
		gzip:       gzipIn,
		log:        log,
	}
}

// The default configuration sources are:
// * Environment Variables (e.g. AWS_ACCESS_KEY_ID and AWS_SECRET_KEY)
// * Shared Configuration and Shared Credentials files.
// To use different credentials, modify the returned Cache object's
// Config and Client fields.
func (c *Cache) Init() error {
	var err error
	c.Config, err = config.LoadDefaultConfig(c.ctx)
	if err != nil {
		return fmt.Errorf("s3cache.init: failed to load AWS config: %w", err)
	}
	client := s3.NewFromConfig(c.Config)
	c.Client = client

	// Permission check: verify bucket exists and is accessible
	if _, err = client.HeadBucket(c.ctx, &s3.HeadBucketInput{
		Bucket: aws.String(c.bucketName),
	}); err != nil {
		return fmt.Errorf("s3cache.init: head bucket failed for %s: %w", c.bucketName, err)
	}

	// Permission check: verify ability to list objects (read/list permissions)
	if _, err = client.ListObjectsV2(c.ctx, &s3.ListObjectsV2Input{
		Bucket:  aws.String(c.bucketName),
		MaxKeys: aws.Int32(1),
	}); err != nil {
		return fmt.Errorf("s3cache.init: list objects failed for %s: %w", c.bucketName, err)
	}

	return nil
}
