package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	SignUps = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "auth_signups_total",
		Help: "Signup attempts by outcome.",
	}, []string{"outcome"})

	SignIns = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "auth_signins_total",
		Help: "Signin attempts by outcome.",
	}, []string{"outcome"})

	TokenRefreshes = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "auth_token_refreshes_total",
		Help: "Refresh-token exchanges by outcome.",
	}, []string{"outcome"})

	EmailVerifications = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "auth_email_verifications_total",
		Help: "Email verification attempts by outcome.",
	}, []string{"outcome"})
)

// Handler returns an http.Handler for Prometheus scraping.
func Handler() http.Handler {
	return promhttp.Handler()
}
