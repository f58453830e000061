package metrics

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Handler returns the status routes: /health, /reading and /metrics.
func (r *Recorder) Handler() http.Handler {
	gin.SetMode(gin.ReleaseMode)
	g := gin.New()
	g.Use(gin.Recovery())

	g.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "service": "irtemp"})
	})

	g.GET("/reading", func(c *gin.Context) {
		rd, connected := r.Latest()
		if rd.Time.IsZero() {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "no reading yet"})
			return
		}
		body := gin.H{
			"time":        rd.Time.Format(time.RFC3339Nano),
			"ambient_c":   rd.AmbientC,
			"object_c":    rd.ObjectC,
			"corrected_c": rd.CorrectedC,
			"connected":   connected,
		}
		if rd.HasDust {
			body["dust_ugm3"] = rd.DustDensity
			body["dust_raw"] = rd.DustRaw
		}
		c.JSON(http.StatusOK, body)
	})

	g.GET("/metrics", gin.WrapH(promhttp.HandlerFor(r.Registry, promhttp.HandlerOpts{})))

	return g
}

// Serve runs the status server on addr until ctx is done.
func (r *Recorder) Serve(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           r.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return errors.Wrap(err, "status server")
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return errors.Wrap(err, "shutdown status server")
	}
	return nil
}
