package api

import (
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/urfave/negroni"
	"golang.org/x/time/rate"
)

// HTTPLogger is a http middleware that logs requests
func HTTPLogger(w http.ResponseWriter, r *http.Request, next http.HandlerFunc) {
	start := time.Now()

	next(w, r)

	status := 0
	if rw, ok := w.(negroni.ResponseWriter); ok {
		status = rw.Status()
	}
	log.WithFields(logrus.Fields{
		"method":  r.Method,
		"path":    r.URL.Path,
		"status":  status,
		"latency": time.Since(start),
	}).Debug("request completed")
}

// RateLimiter rejects requests beyond the limiter's budget with 429.
func RateLimiter(limiter *rate.Limiter) negroni.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request, next http.HandlerFunc) {
		if !limiter.Allow() {
			rend.JSON(w, http.StatusTooManyRequests, httperr{Error: "too many requests"})
			return
		}
		next(w, r)
	}
}
