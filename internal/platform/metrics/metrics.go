package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	submissionRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "doodle_submission_requests_total",
		Help: "Total de submissoes de desenho recebidas",
	}, []string{"status"})

	voteRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "doodle_vote_requests_total",
		Help: "Total de requisicoes de voto recebidas",
	}, []string{"status"})

	jobRunsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "doodle_job_runs_total",
		Help: "Execucoes dos jobs diarios por resultado",
	}, []string{"job", "status"})

	jobDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "doodle_job_duration_seconds",
		Help:    "Tempo de execucao dos jobs diarios",
		Buckets: prometheus.DefBuckets,
	}, []string{"job"})

	submissionsAssignedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "doodle_submissions_assigned_total",
		Help: "Submissoes colocadas em salas",
	})

	winnersAwardedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "doodle_winners_awarded_total",
		Help: "Registros de vencedor criados",
	})

	flagsProcessedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "doodle_flags_processed_total",
		Help: "Denuncias persistidas pelo worker",
	})
)

func ObserveSubmissionRequest(status string) {
	submissionRequestsTotal.WithLabelValues(status).Inc()
}

func ObserveVoteRequest(status string) {
	voteRequestsTotal.WithLabelValues(status).Inc()
}

func ObserveJobRun(job, status string, seconds float64) {
	jobRunsTotal.WithLabelValues(job, status).Inc()
	jobDuration.WithLabelValues(job).Observe(seconds)
}

func AddSubmissionsAssigned(n int) {
	submissionsAssignedTotal.Add(float64(n))
}

func IncWinnersAwarded() {
	winnersAwardedTotal.Inc()
}

func IncFlagProcessed() {
	flagsProcessedTotal.Inc()
}
