package scrape

import (
	"log/slog"
	"net/http"
	"sync"
)

// httpVersionWarned is the process-wide, set-once latch guarding the
// one-shot HTTP-version warning: many of the reference target sites
// misbehave under HTTP/2, so the client warns exactly once per process
// if it ever negotiates anything other than HTTP/1.x.
var httpVersionWarned sync.Once

// warnAboutHTTPVersion is a build-time / config switch consulted by
// warnOnLegacyHTTPVersion; it is set once at startup by NewHTTPClient
// and never mutated afterwards.
var warnAboutHTTPVersion = true

func warnOnLegacyHTTPVersion(resp *http.Response) {
	if !warnAboutHTTPVersion || resp.ProtoMajor == 1 {
		return
	}
	httpVersionWarned.Do(func() {
		slog.Warn("scraper negotiated a non-HTTP/1 connection; some target sites misbehave under HTTP/2",
			"proto", resp.Proto, "host", resp.Request.Host)
	})
}

// NewHTTPClient builds the process-global HTTP client shared by every
// scraper plugin. warnVersion controls whether the one-shot
// HTTP-version warning is armed.
func NewHTTPClient(warnVersion bool) *http.Client {
	warnAboutHTTPVersion = warnVersion
	return &http.Client{
		Transport: &http.Transport{
			ForceAttemptHTTP2: false,
		},
	}
}
