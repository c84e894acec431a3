package cli

import (
	"context"
	"time"

	"github.com/charmbracelet/log"

	"github.com/fontsnap/fontsnap/pkg/observability"
)

// registerDebugHooks routes engine, cache, and fetch events to the logger
// at debug level. Called once when verbose logging is enabled.
func registerDebugHooks(logger *log.Logger) {
	observability.SetEmbedHooks(&logEmbedHooks{logger: logger})
	observability.SetCacheHooks(&logCacheHooks{logger: logger})
	observability.SetHTTPHooks(&logHTTPHooks{logger: logger})
}

type logEmbedHooks struct {
	logger *log.Logger
}

func (h *logEmbedHooks) OnEmbedStart(_ context.Context, docURL string) {
	h.logger.Debug("embed start", "url", docURL)
}

func (h *logEmbedHooks) OnSourceComplete(_ context.Context, source string, blocks int, duration time.Duration) {
	h.logger.Debug("source complete", "source", source, "blocks", blocks, "duration", duration.Round(time.Millisecond))
}

func (h *logEmbedHooks) OnEmbedComplete(_ context.Context, docURL string, cssSize int, duration time.Duration, cached bool) {
	h.logger.Debug("embed complete", "url", docURL, "bytes", cssSize, "duration", duration.Round(time.Millisecond), "cached", cached)
}

type logCacheHooks struct {
	logger *log.Logger
}

func (h *logCacheHooks) OnCacheHit(_ context.Context, keyType string) {
	h.logger.Debug("cache hit", "type", keyType)
}

func (h *logCacheHooks) OnCacheMiss(_ context.Context, keyType string) {
	h.logger.Debug("cache miss", "type", keyType)
}

func (h *logCacheHooks) OnCacheSet(_ context.Context, keyType string, size int) {
	h.logger.Debug("cache set", "type", keyType, "bytes", size)
}

type logHTTPHooks struct {
	logger *log.Logger
}

func (h *logHTTPHooks) OnRequest(_ context.Context, method, host, path string) {
	h.logger.Debug("http request", "method", method, "host", host, "path", path)
}

func (h *logHTTPHooks) OnResponse(_ context.Context, method, host, path string, statusCode int, duration time.Duration) {
	h.logger.Debug("http response", "method", method, "host", host, "path", path, "status", statusCode, "duration", duration.Round(time.Millisecond))
}

func (h *logHTTPHooks) OnError(_ context.Context, method, host, path string, err error) {
	h.logger.Debug("http error", "method", method, "host", host, "path", path, "error", err)
}
