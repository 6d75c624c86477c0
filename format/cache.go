package format

import (
	"bytes"
	"strconv"
	"sync"

	"github.com/zeebo/xxh3"
)

// Cache memoizes parse results by format and content hash. Concurrent
// requests for the same key parse once and share the result.
//
// Each entry keeps its source, so two inputs whose keys collide never share
// a result: the input that does not match the stored source is parsed
// without caching.
type Cache struct {
	entries sync.Map // key -> *entry

	hash func([]byte) uint64
}

type entry struct {
	once  sync.Once
	src   []byte
	value any
	err   error
}

// Key returns the cache key of src parsed as f.
func Key(f Format, src []byte) string { return key(f, src, xxh3.Hash) }

func key(f Format, src []byte, hash func([]byte) uint64) string {
	return f.Name + ":" + strconv.Itoa(len(src)) + ":" + strconv.FormatUint(hash(src), 36)
}

// Parse returns the result of f.Parse(src), computing it at most once per
// key. hit reports whether the result was already present.
func (c *Cache) Parse(f Format, src []byte) (value any, hit bool, err error) {
	hash := c.hash
	if hash == nil {
		hash = xxh3.Hash
	}

	k := key(f, src, hash)

	v, loaded := c.entries.Load(k)
	if !loaded {
		v, loaded = c.entries.LoadOrStore(k, &entry{src: bytes.Clone(src)})
	}

	e, _ := v.(*entry)
	if !bytes.Equal(e.src, src) {
		value, err = f.Parse(src)

		return value, false, err
	}

	e.once.Do(func() { e.value, e.err = f.Parse(e.src) })

	return e.value, loaded, e.err
}

// Len returns the number of cached keys.
func (c *Cache) Len() int {
	n := 0

	c.entries.Range(func(any, any) bool {
		n++

		return true
	})

	return n
}
