package core

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// invoicesProcessed counts processing outcomes per result class.
var invoicesProcessed = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "invoices_processed_total",
		Help: "Total number of processed invoice documents",
	},
	[]string{"result"},
)
