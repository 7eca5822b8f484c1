package sim

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"
	"go.uber.org/zap"
)

// StatusSource is what the inspector reads.  Machine is one.
type StatusSource interface {
	Status() Status
	RecentTraps() []TrapRecord
}

type ErrResponse struct {
	HttpStatusCode int
	Message        string
}

// Inspector serves the published machine state over HTTP.  It never looks
// at the kernel, only at what the stepping goroutine published.
type Inspector struct {
	Source StatusSource
	Log    *zap.Logger
	Router *chi.Mux
}

func NewInspector(src StatusSource, log *zap.Logger) *Inspector {
	if log == nil {
		log = zap.NewNop()
	}
	i := &Inspector{Source: src, Log: log}
	i.initRouter()
	return i
}

func (i *Inspector) initRouter() {
	i.Router = chi.NewRouter()
	i.Router.Get("/status", i.GetStatusHandler)
	i.Router.Get("/trace", i.GetTraceHandler)
	i.Router.Route("/tasks", func(r chi.Router) {
		r.Get("/", i.GetTasksHandler)
		r.Get("/{taskID}", i.GetTaskHandler)
	})
}

func (i *Inspector) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	i.Router.ServeHTTP(w, r)
}

func (i *Inspector) GetStatusHandler(w http.ResponseWriter, r *http.Request) {
	i.reply(w, http.StatusOK, i.Source.Status())
}

func (i *Inspector) GetTasksHandler(w http.ResponseWriter, r *http.Request) {
	tasks := i.Source.Status().Tasks
	if tasks == nil {
		tasks = []TaskStatus{}
	}
	i.reply(w, http.StatusOK, tasks)
}

func (i *Inspector) GetTaskHandler(w http.ResponseWriter, r *http.Request) {
	param := chi.URLParam(r, "taskID")
	id, err := strconv.Atoi(param)
	if err != nil {
		i.replyError(w, http.StatusBadRequest, "bad task id "+strconv.Quote(param))
		return
	}
	for _, t := range i.Source.Status().Tasks {
		if t.ID == id {
			i.reply(w, http.StatusOK, t)
			return
		}
	}
	i.replyError(w, http.StatusNotFound, "no task "+param)
}

func (i *Inspector) GetTraceHandler(w http.ResponseWriter, r *http.Request) {
	records := i.Source.RecentTraps()
	if s := r.URL.Query().Get("switches"); s == "1" || s == "true" {
		only := records[:0]
		for _, rec := range records {
			if rec.Switched() {
				only = append(only, rec)
			}
		}
		records = only
	}
	if records == nil {
		records = []TrapRecord{}
	}
	i.reply(w, http.StatusOK, records)
}

func (i *Inspector) reply(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		i.Log.Warn("writing response", zap.Error(err))
	}
}

func (i *Inspector) replyError(w http.ResponseWriter, code int, msg string) {
	i.Log.Debug("inspector request refused", zap.Int("status", code), zap.String("reason", msg))
	i.reply(w, code, ErrResponse{HttpStatusCode: code, Message: msg})
}
