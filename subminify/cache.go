package subminify

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strconv"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/singleflight"
)

const defaultCacheSize = 2000

// Caches holds the process-wide LRU caches the facade consults before
// invoking a Func, one per Kind, plus a singleflight group so concurrent
// calls with an identical key coalesce into a single underlying
// invocation. Caches is safe for concurrent use; a single instance is
// meant to be shared across every Minify call in a process, exactly like
// the sub-minifier caches it's modelled on.
type Caches struct {
	css *lru.Cache[string, string]
	js  *lru.Cache[string, string]
	url *lru.Cache[string, string]
	svg *lru.Cache[string, string]

	group singleflight.Group
}

// NewCaches builds a Caches with size entries per Kind. size <= 0 falls
// back to defaultCacheSize.
func NewCaches(size int) *Caches {
	if size <= 0 {
		size = defaultCacheSize
	}
	mustNew := func() *lru.Cache[string, string] {
		c, err := lru.New[string, string](size)
		if err != nil {
			// Only non-nil when size <= 0, already guarded above.
			panic(err)
		}
		return c
	}
	return &Caches{css: mustNew(), js: mustNew(), url: mustNew(), svg: mustNew()}
}

func (c *Caches) bucket(k Kind) *lru.Cache[string, string] {
	switch k {
	case CSS:
		return c.css
	case JS:
		return c.js
	case URL:
		return c.url
	case SVG:
		return c.svg
	default:
		return c.js
	}
}

// fingerprint mirrors the "length plus first/last 50 bytes" content key
// for long payloads, falling back to the full text for short ones, joined
// with a stable options signature so distinct configurations never share
// an entry.
func fingerprint(text string, optionsSignature string) string {
	h := sha256.New()
	if len(text) > 100 {
		h.Write([]byte(strconv.Itoa(len(text))))
		h.Write([]byte{0})
		h.Write([]byte(text[:50]))
		h.Write([]byte(text[len(text)-50:]))
	} else {
		h.Write([]byte(text))
	}
	h.Write([]byte{0})
	h.Write([]byte(optionsSignature))
	return hex.EncodeToString(h.Sum(nil))
}

// Call runs fn(ctx, text, hint), serving a cached result when the
// (kind, text, optionsSignature) key has been seen before, and coalescing
// concurrent identical calls via singleflight so only one actually
// invokes fn.
func (c *Caches) Call(ctx context.Context, kind Kind, text, optionsSignature string, hint Hint, fn Func) (string, error) {
	bucket := c.bucket(kind)
	key := fingerprint(text, optionsSignature)

	if v, ok := bucket.Get(key); ok {
		return v, nil
	}

	v, err, _ := c.group.Do(string(kind)+"\x00"+key, func() (interface{}, error) {
		out, err := fn(ctx, text, hint)
		if err != nil {
			return "", err
		}
		bucket.Add(key, out)
		return out, nil
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

var defaultCaches = NewCaches(defaultCacheSize)

// Default returns the package-level shared Caches instance used when
// Options.Caches is left nil.
func Default() *Caches { return defaultCaches }
