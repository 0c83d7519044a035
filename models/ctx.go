package models

import (
	"context"

	"go.uber.org/zap"
)

// OptionLookup resolves a configuration key for one extractor,
// most specific level first.
type OptionLookup interface {
	Lookup(key string) (any, bool)
}

// ExtractorContext is what a producer is constructed with.
type ExtractorContext struct {
	Context        context.Context
	MatchedURL     string
	MatchedGroups  map[string]string
	Extractor      *Extractor
	Session        Requester
	Options        OptionLookup
	ParentMetadata Metadata
	Shared         *SharedState
	Log            *zap.SugaredLogger
}

func (ctx *ExtractorContext) Request(url string, opts *RequestOptions) (*Response, error) {
	return ctx.Session.Request(ctx.Context, url, opts)
}

func (ctx *ExtractorContext) Group(name string) string {
	return ctx.MatchedGroups[name]
}

func (ctx *ExtractorContext) Config(key string, def any) any {
	if ctx.Options == nil {
		return def
	}
	if value, ok := ctx.Options.Lookup(key); ok && value != nil {
		return value
	}
	return def
}

func (ctx *ExtractorContext) ConfigString(key string, def string) string {
	value := ctx.Config(key, nil)
	if value == nil {
		return def
	}
	return AsString(value)
}

func (ctx *ExtractorContext) ConfigBool(key string, def bool) bool {
	value := ctx.Config(key, nil)
	if value == nil {
		return def
	}
	if b, ok := AsBool(value); ok {
		return b
	}
	return def
}

func (ctx *ExtractorContext) ConfigInt(key string, def int) int {
	if n, ok := AsInt(ctx.Config(key, nil)); ok {
		return n
	}
	return def
}

func (ctx *ExtractorContext) ConfigStrings(key string) []string {
	return AsStrings(ctx.Config(key, nil))
}

// Credentials returns the configured username and password.
func (ctx *ExtractorContext) Credentials() (string, string) {
	return ctx.ConfigString("username", ""), ctx.ConfigString("password", "")
}

func (ctx *ExtractorContext) Err() error {
	if ctx.Context == nil {
		return nil
	}
	return ctx.Context.Err()
}

// Logger returns the instance logger, the global one when unset.
func (ctx *ExtractorContext) Logger() *zap.SugaredLogger {
	if ctx.Log == nil {
		return zap.S()
	}
	return ctx.Log
}
