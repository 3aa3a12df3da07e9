package cache

import (
	"net/url"
	"strings"
	"time"
)

// Option tunes how long responses stay fresh
type Option func(*options)

type pathTTL struct {
	path string
	ttl  time.Duration
}

type options struct {
	ttl   time.Duration
	paths []pathTTL
	now   func() time.Time
}

// WithPathTTL gives responses whose URL path ends in path their own
// lifetime. The longest matching path wins; other URLs use the default TTL.
func WithPathTTL(path string, ttl time.Duration) Option {
	return func(o *options) {
		if path != "" {
			o.paths = append(o.paths, pathTTL{path: strings.TrimRight(path, "/"), ttl: ttl})
		}
	}
}

// WithClock replaces time.Now
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		if now != nil {
			o.now = now
		}
	}
}

func newOptions(ttl time.Duration, opts []Option) options {
	o := options{ttl: ttl, now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// ttlFor returns the lifetime of the response cached under key (a URL)
func (o options) ttlFor(key string) time.Duration {
	u, err := url.Parse(key)
	if err != nil {
		return o.ttl
	}
	p := strings.TrimRight(u.Path, "/")

	ttl, best := o.ttl, -1
	for _, rule := range o.paths {
		if strings.HasSuffix(p, rule.path) && len(rule.path) > best {
			ttl, best = rule.ttl, len(rule.path)
		}
	}
	return ttl
}
