package ingest

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	documentsIngested = promauto.NewCounter(prometheus.CounterOpts{
		Name: "newschat_documents_ingested_total",
		Help: "Documents written to the vector index",
	})
	ingestionRuns = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "newschat_ingestion_runs_total",
		Help: "Ingestion runs by source and outcome",
	}, []string{"source", "outcome"})
	enrichmentFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "newschat_enrichment_failures_total",
		Help: "Feed articles whose full-text fetch failed and kept their summary",
	})
)
