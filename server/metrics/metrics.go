// Package metrics holds the prometheus collectors the server exports on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	LeadsCaptured = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "zantag",
		Name:      "leads_captured_total",
		Help:      "Leads stored, by capture source.",
	}, []string{"source"})

	CardScans = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "zantag",
		Name:      "card_scans_total",
		Help:      "Business card scans, by outcome.",
	}, []string{"outcome"})

	ProfileViews = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "zantag",
		Name:      "profile_views_total",
		Help:      "Public profile views.",
	})

	UsersRegistered = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "zantag",
		Name:      "users_registered_total",
		Help:      "Successful signups.",
	})

	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "zantag",
		Name:      "http_requests_total",
		Help:      "HTTP requests served, by method & status code.",
	}, []string{"method", "code"})
)

const (
	ScanSucceeded = "success"
	ScanEmpty     = "empty"
	ScanFailed    = "failure"
)
