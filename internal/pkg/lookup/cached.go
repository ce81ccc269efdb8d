package lookup

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"time"

	"github.com/VictoriaMetrics/fastcache"

	"github.com/hashicorp-forge/pipeline-steps/internal/pkg/form"
)

// Cached keeps successful lookups for ttl. Failures are never cached, so a
// retry always reaches the wrapped lookup.
type Cached struct {
	next  Lookup
	cache *fastcache.Cache
	ttl   time.Duration
	now   func() time.Time
}

func NewCached(next Lookup, maxBytes int, ttl time.Duration) *Cached {
	return &Cached{
		next:  next,
		cache: fastcache.New(maxBytes),
		ttl:   ttl,
		now:   time.Now,
	}
}

func (c *Cached) Options(ctx context.Context, req *Request) ([]form.Option, error) {
	key := []byte(req.Key())

	if buf, ok := c.cache.HasGet(nil, key); ok && len(buf) >= 8 {
		expiry := int64(binary.BigEndian.Uint64(buf[:8]))
		if c.now().UnixNano() < expiry {
			var opts []form.Option
			if err := json.Unmarshal(buf[8:], &opts); err == nil {
				return opts, nil
			}
		}
		c.cache.Del(key)
	}

	opts, err := c.next.Options(ctx, req)
	if err != nil {
		return nil, err
	}

	data, err := json.Marshal(opts)
	if err != nil {
		return opts, nil
	}

	buf := make([]byte, 8, 8+len(data))
	binary.BigEndian.PutUint64(buf, uint64(c.now().Add(c.ttl).UnixNano()))
	c.cache.Set(key, append(buf, data...))

	return opts, nil
}

// Reset drops every cached entry.
func (c *Cached) Reset() { c.cache.Reset() }
