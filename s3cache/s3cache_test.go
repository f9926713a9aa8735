/* Copyright (c) 2025 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file in the current directory for license terms
 */
package s3cache

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"strings"
	"sync"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/gregjones/httpcache/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeS3 is an in-memory ObjectAPI.
type fakeS3 struct {
	mu      sync.Mutex
	objects map[string][]byte
}

func newFakeS3() *fakeS3 {
	return &fakeS3{objects: make(map[string][]byte)}
}

func (f *fakeS3) GetObject(_ context.Context, in *s3.GetObjectInput,
	_ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {

	f.mu.Lock()
	defer f.mu.Unlock()
	data, ok := f.objects[*in.Bucket+*in.Key]
	if !ok {
		return nil, &types.NoSuchKey{}
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader(data))}, nil
}

func (f *fakeS3) PutObject(_ context.Context, in *s3.PutObjectInput,
	_ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {

	data, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.objects[*in.Bucket+*in.Key] = data
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) DeleteObject(_ context.Context, in *s3.DeleteObjectInput,
	_ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {

	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.objects, *in.Bucket+*in.Key)
	return &s3.DeleteObjectOutput{}, nil
}

func TestS3CacheFake(t *testing.T) {
	for _, gz := range []bool{false, true} {
		cache := New(context.Background(), "td-test", "baduk-td", gz, nil)
		fake := newFakeS3()
		cache.Client = fake

		test.Cache(t, cache)

		cache.Set("tournament/abc", []byte(`{"id":"abc"}`))
		require.Len(t, fake.objects, 1)
		for k, v := range fake.objects {
			assert.True(t, strings.HasPrefix(k, "td-test/baduk-td/"), k)
			assert.Equal(t, gz, strings.HasSuffix(k, ".gz"))
			if !gz {
				assert.Equal(t, `{"id":"abc"}`, string(v))
			}
		}
		data, ok := cache.Get("tournament/abc")
		require.True(t, ok)
		assert.Equal(t, `{"id":"abc"}`, string(data))
	}
}

func TestS3CachePrefixesSeparate(t *testing.T) {
	fake := newFakeS3()
	a := New(context.Background(), "td-test", "store", false, nil)
	a.Client = fake
	b := New(context.Background(), "td-test", "webcache", false, nil)
	b.Client = fake

	a.Set("k", []byte("store"))
	_, ok := b.Get("k")
	assert.False(t, ok)
}

// brokenS3 fails every request that is not a lookup of a missing key.
type brokenS3 struct {
	*fakeS3
	err error
}

func (b *brokenS3) GetObject(_ context.Context, _ *s3.GetObjectInput,
	_ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {

	return nil, b.err
}

func (b *brokenS3) PutObject(_ context.Context, _ *s3.PutObjectInput,
	_ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {

	return nil, b.err
}

func (b *brokenS3) DeleteObject(_ context.Context, _ *s3.DeleteObjectInput,
	_ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {

	return nil, b.err
}

func TestS3CacheErrorsReturned(t *testing.T) {
	cache := New(context.Background(), "td-test", "store", true, nil)
	cache.Client = newFakeS3()

	_, found, err := cache.Load("absent")
	require.NoError(t, err)
	assert.False(t, found)
	require.NoError(t, cache.Save("k", []byte("v")))
	data, found, err := cache.Load("k")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "v", string(data))
	require.NoError(t, cache.Remove("k"))

	broken := &brokenS3{fakeS3: newFakeS3(), err: errors.New("throttled")}
	cache.Client = broken
	_, found, err = cache.Load("k")
	assert.ErrorIs(t, err, broken.err)
	assert.False(t, found)
	assert.ErrorIs(t, cache.Save("k", []byte("v")), broken.err)
	assert.ErrorIs(t, cache.Remove("k"), broken.err)

	// the httpcache methods still degrade to misses
	_, ok := cache.Get("k")
	assert.False(t, ok)
	cache.Set("k", []byte("v"))
}

func TestS3Cache(t *testing.T) {
	bucket := os.Getenv("TD_BUCKET")
	if bucket == "" {
		t.Skip("Skipping test because TD_BUCKET is not set")
	}
	for _, gz := range []bool{false, true} {
		cache := New(context.Background(), bucket, "s3cache-test", gz, nil)
		err := cache.Init()
		if err != nil {
			t.Skipf("Skipping test due to lack of access to %v: %v", bucket, err)
		}

		test.Cache(t, cache)
	}
}
