package chat

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	chatTurns = promauto.NewCounter(prometheus.CounterOpts{
		Name: "newschat_chat_turns_total",
		Help: "Completed conversational turns",
	})
	upstreamErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "newschat_upstream_errors_total",
		Help: "Failed upstream calls by service",
	}, []string{"service"})
)
