package telegram

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	telegramCalls = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "telegram_api_calls_total",
			Help: "Total number of Bot API calls by method and result",
		},
		[]string{"method", "result"}, // result: ok, error
	)

	webhookUpdates = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "telegram_webhook_updates_total",
			Help: "Total number of webhook updates by outcome",
		},
		[]string{"outcome"},
	)

	confirmationFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "telegram_confirmation_failures_total",
			Help: "Total number of chat replies that could not be delivered",
		},
	)
)
