package server

import (
	"encoding/json"
	"fmt"
	"github.com/ValentinKolb/cntd/lib/counter"
	"github.com/julienschmidt/httprouter"
	"github.com/urfave/negroni"
	"net/http"
)

// debugPaths are the routes of the debug endpoint. Requests to other paths are
// counted under the label "other".
var debugPaths = map[string]bool{
	"/metrics":  true,
	"/snapshot": true,
	"/info":     true,
	"/health":   true,
}

// newDebugHandler creates the handler of the debug HTTP endpoint:
//
//	GET /metrics   Prometheus text format
//	GET /snapshot  JSON object of all counters
//	GET /info      JSON store info
//	GET /health    "ok"
func newDebugHandler(store counter.ICounterStore, reader counter.ISnapshotReader, m *serverMetrics) http.Handler {
	router := httprouter.New()

	router.GET("/metrics", func(w http.ResponseWriter, _ *http.Request, _ httprouter.Params) {
		w.Header().Set("Content-Type", "text/plain; version=0.0.4")
		m.writePrometheus(w)
	})
	router.GET("/snapshot", func(w http.ResponseWriter, _ *http.Request, _ httprouter.Params) {
		writeJSON(w, reader.Snapshot())
	})
	router.GET("/info", func(w http.ResponseWriter, _ *http.Request, _ httprouter.Params) {
		writeJSON(w, store.GetInfo())
	})
	router.GET("/health", func(w http.ResponseWriter, _ *http.Request, _ httprouter.Params) {
		w.Header().Set("Content-Type", "text/plain")
		_, _ = w.Write([]byte("ok\n"))
	})

	recovery := negroni.NewRecovery()
	recovery.PrintStack = false
	recovery.Logger = recoveryLogger{}

	n := negroni.New(recovery, negroni.HandlerFunc(func(w http.ResponseWriter, r *http.Request, next http.HandlerFunc) {
		next(w, r)

		path := r.URL.Path
		if !debugPaths[path] {
			path = "other"
		}
		status := w.(negroni.ResponseWriter).Status()
		if status == 0 {
			status = http.StatusOK
		}
		m.httpRequest(path, status)
	}))
	n.UseHandler(router)
	return n
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		Logger.Warningf("Failed to write debug response: %v", err)
	}
}

// recoveryLogger routes panics caught by negroni to the server logger
type recoveryLogger struct{}

func (recoveryLogger) Println(v ...interface{}) {
	Logger.Errorf("%s", fmt.Sprint(v...))
}

func (recoveryLogger) Printf(format string, v ...interface{}) {
	Logger.Errorf(format, v...)
}
