package metrics

import (
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

// New registers its collectors with the global Prometheus registry, so
// every test in this file shares one instance rather than risking a
// panic on duplicate registration. Each test uses its own label value
// to stay independent despite sharing the underlying collectors.
var (
	testInstanceOnce sync.Once
	testInstance     *Metrics
)

func testMetrics() *Metrics {
	testInstanceOnce.Do(func() { testInstance = New() })
	return testInstance
}

func TestObserveCacheHitIncrementsLabelledCounter(t *testing.T) {
	m := testMetrics()
	m.ObserveCacheHit("cache-hit-test", true)
	m.ObserveCacheHit("cache-hit-test", false)

	if got := testutil.ToFloat64(m.CacheHitsTotal.WithLabelValues("cache-hit-test", "true")); got != 1 {
		t.Errorf("CacheHitsTotal{hit=true} = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.CacheHitsTotal.WithLabelValues("cache-hit-test", "false")); got != 1 {
		t.Errorf("CacheHitsTotal{hit=false} = %v, want 1", got)
	}
}

func TestObserveScrapeOutcomeIncrementsByOutcome(t *testing.T) {
	m := testMetrics()
	m.ObserveScrapeOutcome("scrape-outcome-test", "scraped")
	m.ObserveScrapeOutcome("scrape-outcome-test", "scraped")
	m.ObserveScrapeOutcome("scrape-outcome-test", "error")

	if got := testutil.ToFloat64(m.ScrapesTotal.WithLabelValues("scrape-outcome-test", "scraped")); got != 2 {
		t.Errorf("ScrapesTotal{outcome=scraped} = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.ScrapesTotal.WithLabelValues("scrape-outcome-test", "error")); got != 1 {
		t.Errorf("ScrapesTotal{outcome=error} = %v, want 1", got)
	}
}

func TestSetCorpusSizeOverwritesGauge(t *testing.T) {
	m := testMetrics()
	m.SetCorpusSize("corpus-size-test", 120)
	m.SetCorpusSize("corpus-size-test", 130)

	if got := testutil.ToFloat64(m.CorpusSize.WithLabelValues("corpus-size-test")); got != 130 {
		t.Errorf("CorpusSize = %v, want 130 (last write wins)", got)
	}
}

func TestObserveInitFailureIncrementsPerKey(t *testing.T) {
	m := testMetrics()
	m.ObserveInitFailure("init-failure-test")
	m.ObserveInitFailure("init-failure-test")

	if got := testutil.ToFloat64(m.InitFailuresTotal.WithLabelValues("init-failure-test")); got != 2 {
		t.Errorf("InitFailuresTotal = %v, want 2", got)
	}
}
