/* Copyright © 2025 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */
package store

import (
	"bytes"
	"crypto/md5"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"io/fs"

	"github.com/gregjones/httpcache"
	"github.com/peterbourgon/diskv"
)

// Backend holds the store's documents. Load reports found=false with a nil
// error only when key is absent; a failed read is an error.
type Backend interface {
	Load(key string) (data []byte, found bool, err error)
	Save(key string, data []byte) error
	Remove(key string) error
}

// CacheBackend adapts an httpcache.Cache. The cache interface cannot report
// failed writes, so Save and Remove read the key back to confirm them.
func CacheBackend(cache httpcache.Cache) Backend {
	return cacheBackend{cache: cache}
}

type cacheBackend struct {
	cache httpcache.Cache
}

func (b cacheBackend) Load(key string) ([]byte, bool, error) {
	data, ok := b.cache.Get(key)
	if !ok {
		return nil, false, nil
	}

	return data, true, nil
}

func (b cacheBackend) Save(key string, data []byte) error {
	b.cache.Set(key, data)
	got, ok := b.cache.Get(key)
	if !ok || !bytes.Equal(got, data) {
		return fmt.Errorf("store: write of %v was not persisted", key)
	}

	return nil
}

func (b cacheBackend) Remove(key string) error {
	b.cache.Delete(key)
	if _, ok := b.cache.Get(key); ok {
		return fmt.Errorf("store: delete of %v was not persisted", key)
	}

	return nil
}

// diskBackend keeps one file per document, named like diskcache names its
// entries so directories written by either remain readable.
type diskBackend struct {
	d *diskv.Diskv
}

func newDiskBackend(dir string) *diskBackend {
	return &diskBackend{d: diskv.New(diskv.Options{
		BasePath:     dir,
		CacheSizeMax: 16 * 1024 * 1024,
	})}
}

func diskKey(key string) string {
	h := md5.New()
	io.WriteString(h, key)
	return hex.EncodeToString(h.Sum(nil))
}

func (b *diskBackend) Load(key string) ([]byte, bool, error) {
	data, err := b.d.Read(diskKey(key))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("store: cannot read %v: %w", key, err)
	}

	return data, true, nil
}

func (b *diskBackend) Save(key string, data []byte) error {
	err := b.d.WriteStream(diskKey(key), bytes.NewReader(data), true)
	if err != nil {
		return fmt.Errorf("store: cannot write %v: %w", key, err)
	}

	return nil
}

func (b *diskBackend) Remove(key string) error {
	err := b.d.Erase(diskKey(key))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("store: cannot delete %v: %w", key, err)
	}

	return nil
}
