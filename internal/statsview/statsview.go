// Package statsview serves live runtime charts (heap, goroutines, GC) and
// the standard pprof endpoints while the daemon runs.
//
// After launch the charts are at http://<addr>/debug/statsview and pprof at
// http://<addr>/debug/pprof/.
package statsview

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-echarts/statsview"
	"github.com/go-echarts/statsview/viewer"
)

const path = "/debug/statsview"

// Viewer is a running stats server.
type Viewer struct {
	mgr *statsview.ViewManager
}

// Launch starts the stats server on addr in a new goroutine.
func Launch(addr string, logger *slog.Logger) *Viewer {
	log := logger.With("component", "statsview")
	viewer.SetConfiguration(viewer.WithAddr(addr))
	v := &Viewer{mgr: statsview.New()}
	go func() {
		if err := v.mgr.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("stats server stopped", "err", err)
		}
	}()
	log.Info("stats server available", "url", "http://"+addr+path)
	return v
}

// Stop shuts the server down.
func (v *Viewer) Stop() {
	v.mgr.Stop()
}
