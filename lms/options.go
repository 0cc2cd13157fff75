package lms

import (
	"time"

	"github.com/google/uuid"

	"github.com/s0up4200/lmsctl/dispatch"
)

// Option configures a Client.
type Option func(*options)

type options struct {
	dispatchOpts []dispatch.Option
	pingUploader bool
	caching      bool
	invalidate   bool
	concurrency  int
	now          func() time.Time
	newUID       func() uuid.UUID
}

func defaultOptions() options {
	return options{
		caching:     true,
		concurrency: 4,
		now:         time.Now,
		newUID:      uuid.New,
	}
}

// WithDispatchOptions passes options through to the underlying dispatcher.
func WithDispatchOptions(opts ...dispatch.Option) Option {
	return func(o *options) {
		o.dispatchOpts = append(o.dispatchOpts, opts...)
	}
}

// WithPingUploader makes NewClient check the content uploader before
// returning.
func WithPingUploader(enabled bool) Option {
	return func(o *options) {
		o.pingUploader = enabled
	}
}

// WithCache turns lookup memoization on or off. It is on by default.
func WithCache(enabled bool) Option {
	return func(o *options) {
		o.caching = enabled
	}
}

// WithInvalidateOnWrite makes updates drop the cached lookups they change.
// It is off by default: a cached entry is served as first resolved until
// the caller invalidates it or calls ResetCache.
func WithInvalidateOnWrite(enabled bool) Option {
	return func(o *options) {
		o.invalidate = enabled
	}
}

// WithConcurrency limits the lookups LoadRequirements and LoadQualifications
// run at once.
func WithConcurrency(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.concurrency = n
		}
	}
}

// WithClock replaces the clock used for created and updated dates.
func WithClock(fn func() time.Time) Option {
	return func(o *options) {
		o.now = fn
	}
}

// WithUIDSource replaces the generator for new link UIDs.
func WithUIDSource(fn func() uuid.UUID) Option {
	return func(o *options) {
		o.newUID = fn
	}
}
