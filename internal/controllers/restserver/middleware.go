package restserver

import (
	"net/http"

	"github.com/chrissnell/powerstats/internal/log"
	"github.com/felixge/httpsnoop"
	"go.uber.org/zap"
)

// httpLogMiddleware records every served request in the HTTP log buffer
func httpLogMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		m := httpsnoop.CaptureMetrics(next, w, r)

		log.LogHTTPRequest(log.HTTPRequest{
			Method:     r.Method,
			Path:       r.URL.RequestURI(),
			Status:     m.Code,
			Duration:   m.Duration,
			Size:       int(m.Written),
			RemoteAddr: r.RemoteAddr,
			UserAgent:  r.UserAgent(),
		})
	})
}

// recoveryLogger sends panics caught by the recovery handler to zap
type recoveryLogger struct {
	logger *zap.SugaredLogger
}

func (l recoveryLogger) Println(v ...interface{}) {
	l.logger.Error(v...)
}
