// Package metrics holds the prometheus collectors shared across components.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// LoginAttempts counts authentication attempts by outcome.
	LoginAttempts = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "deskhive_login_attempts_total",
		Help: "Login attempts by outcome",
	}, []string{"outcome"})

	// MailMessagesProcessed counts ingestion outcomes per message.
	MailMessagesProcessed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "deskhive_mail_messages_total",
		Help: "Mail messages handled by the ingestion poller, by outcome",
	}, []string{"outcome"}) // created, updated, skipped, failed

	// MailPollErrors counts whole-poll failures (connection, auth).
	MailPollErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "deskhive_mail_poll_errors_total",
		Help: "Mail polls aborted by a connection or authentication failure",
	})

	// MailPollDuration observes how long an ingestion poll takes.
	MailPollDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "deskhive_mail_poll_duration_seconds",
		Help:    "Duration of ingestion polls",
		Buckets: prometheus.DefBuckets,
	})
)
