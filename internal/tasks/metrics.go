package tasks

import "github.com/prometheus/client_golang/prometheus"

var taskMutationsTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "task_mutations_total",
		Help: "Total number of successful task mutations",
	},
	[]string{"op"},
)

// RegisterMetrics exposes the store size and mutation counters on reg.
func RegisterMetrics(reg prometheus.Registerer, repo *InMemoryRepo) error {
	stored := prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: "tasks_stored",
			Help: "Number of tasks currently held in memory",
		},
		func() float64 { return float64(repo.Len()) },
	)
	if err := reg.Register(stored); err != nil {
		return err
	}
	return reg.Register(taskMutationsTotal)
}
