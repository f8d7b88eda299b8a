package expense

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var expensesCreated = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "expenses_created_total",
		Help: "Total number of expenses stored by source",
	},
	[]string{"source"}, // telegram, manual
)
