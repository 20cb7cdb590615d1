package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus metrics for the roster services

var (
	RosterSyncRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "arena_roster_sync_runs_total",
			Help: "Total number of roster sync runs",
		},
		[]string{"status"},
	)

	RosterSyncDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "arena_roster_sync_duration_seconds",
			Help:    "Duration of roster sync runs in seconds",
			Buckets: []float64{.1, .5, 1, 5, 10, 30, 60, 120, 300},
		},
	)

	RosterSyncRecordsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "arena_roster_sync_records_total",
			Help: "Records touched by roster sync, by kind",
		},
		[]string{"kind"},
	)

	TeamMutationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "arena_team_mutations_total",
			Help: "Total number of team mutations",
		},
		[]string{"op", "status"},
	)

	RatingRecalculationsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "arena_rating_recalculations_total",
			Help: "Game profiles whose OVR was recomputed by bulk recalculation",
		},
	)

	SettingsCacheTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "arena_settings_cache_total",
			Help: "Role bonus cache lookups, by result",
		},
		[]string{"result"},
	)
)

// RecordSync records a finished sync run and its counters
func RecordSync(status string, duration float64, teams, skipped, created, updated, linked int) {
	RosterSyncRunsTotal.WithLabelValues(status).Inc()
	RosterSyncDuration.Observe(duration)
	RosterSyncRecordsTotal.WithLabelValues("teams_processed").Add(float64(teams))
	RosterSyncRecordsTotal.WithLabelValues("teams_skipped").Add(float64(skipped))
	RosterSyncRecordsTotal.WithLabelValues("players_created").Add(float64(created))
	RosterSyncRecordsTotal.WithLabelValues("players_updated").Add(float64(updated))
	RosterSyncRecordsTotal.WithLabelValues("users_linked").Add(float64(linked))
}

// RecordTeamMutation records one team mutation outcome
func RecordTeamMutation(op string, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	TeamMutationsTotal.WithLabelValues(op, status).Inc()
}

// RecordCacheHit records a settings cache hit
func RecordCacheHit() {
	SettingsCacheTotal.WithLabelValues("hit").Inc()
}

// RecordCacheMiss records a settings cache miss
func RecordCacheMiss() {
	SettingsCacheTotal.WithLabelValues("miss").Inc()
}
