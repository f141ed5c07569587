package swr

import (
	"time"

	"github.com/cockroachdb/errors"

	"github.com/bjarneo/swrcache/cache"
	"github.com/bjarneo/swrcache/logger"
)

// MaxTagLength is the longest tag accepted by the default tag validator.
const MaxTagLength = 256

// TagValidator checks a tag supplied to WithTags at wrap time.
type TagValidator func(tag string) error

func defaultTagValidator(tag string) error {
	if tag == "" {
		return errors.New("tag must not be empty")
	}
	if len(tag) > MaxTagLength {
		return errors.Newf("tag %q exceeds the maximum length of %d", tag, MaxTagLength)
	}
	return nil
}

type config struct {
	revalidate  cache.Revalidate
	tags        []string
	log         logger.Logger
	validateTag TagValidator
}

// Option configures a wrapped function.
type Option func(*config)

func applyOptions(opts []Option) config {
	cfg := config{
		log:         logger.NewConsoleLogger(),
		validateTag: defaultTagValidator,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

// WithRevalidate sets the freshness window for the wrapped function's cached
// results. Zero and negative durations are rejected by Wrap; use
// WithNoRevalidate for "never stale".
func WithRevalidate(d time.Duration) Option {
	return func(c *config) { c.revalidate = cache.RevalidateAfter(d) }
}

// WithNoRevalidate marks cached results as never stale.
func WithNoRevalidate() Option {
	return func(c *config) { c.revalidate = cache.RevalidateNever() }
}

// WithTags sets the invalidation tags attached to the wrapped function's
// cache entries. Tags must pass the tag validator.
func WithTags(tags ...string) Option {
	return func(c *config) { c.tags = append(c.tags, tags...) }
}

// WithLogger sets the logger used for diagnostics. Defaults to the console
// logger.
func WithLogger(l logger.Logger) Option {
	return func(c *config) { c.log = l }
}

// WithTagValidator replaces the default tag validator.
func WithTagValidator(f TagValidator) Option {
	return func(c *config) { c.validateTag = f }
}
