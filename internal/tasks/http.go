package tasks

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const (
	msgTaskNotFound         = "Task not found"
	msgTaskDeleted          = "Task deleted"
	msgInvalidPriorityLevel = "Invalid priority level"
)

type errResponse struct {
	Error string `json:"error"`
}

func RegisterRoutes(r chi.Router, repo Repository) {
	r.Get("/tasks", listTasks(repo))
	r.Post("/tasks", createTask(repo))
	r.Get("/tasks/priority/{level}", listTasksByPriority(repo))
	r.Get("/tasks/{id}", getTask(repo))
	r.Put("/tasks/{id}", updateTask(repo))
	r.Delete("/tasks/{id}", deleteTask(repo))
}

func listTasks(repo Repository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, repo.List(ParseQuery(r.URL.Query())))
	}
}

func getTask(repo Repository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r)
		if err != nil {
			writeError(w, r, err)
			return
		}
		t, err := repo.Get(id)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, t)
	}
}

func listTasksByPriority(repo Repository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, err := ParsePriority(chi.URLParam(r, "level"))
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, repo.ByPriority(p))
	}
}

func createTask(repo Repository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		payload, ok := decodePayload(w, r)
		if !ok {
			return
		}
		nt, err := ValidateNew(payload)
		if err != nil {
			writeError(w, r, err)
			return
		}
		t, err := repo.Create(nt)
		if err != nil {
			writeError(w, r, err)
			return
		}
		annotate(r, t.ID)
		writeJSON(w, http.StatusCreated, t)
	}
}

func updateTask(repo Repository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		// malformed bodies are rejected before any lookup
		payload, ok := decodePayload(w, r)
		if !ok {
			return
		}
		id, err := pathID(r)
		if err != nil {
			writeError(w, r, err)
			return
		}
		// unknown ids answer 404 before field rules are checked
		if _, err := repo.Get(id); err != nil {
			writeError(w, r, err)
			return
		}
		patch, err := ValidatePatch(payload)
		if err != nil {
			writeError(w, r, err)
			return
		}
		t, err := repo.Update(id, patch)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, t)
	}
}

func deleteTask(repo Repository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r)
		if err != nil {
			writeError(w, r, err)
			return
		}
		if err := repo.Delete(id); err != nil {
			writeError(w, r, err)
			return
		}
		writeText(w, http.StatusOK, msgTaskDeleted)
	}
}

// pathID parses the {id} segment. A segment that is not a base-10 integer
// can never match a task, so it is reported as ErrNotFound.
func pathID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		return 0, ErrNotFound
	}
	annotate(r, id)
	return id, nil
}

func annotate(r *http.Request, id int64) {
	trace.SpanFromContext(r.Context()).SetAttributes(attribute.Int64("task.id", id))
}

// decodePayload accepts exactly one JSON value; anything after it other than
// whitespace makes the body invalid.
func decodePayload(w http.ResponseWriter, r *http.Request) (Payload, bool) {
	var p Payload
	dec := json.NewDecoder(r.Body)
	err := dec.Decode(&p)
	if err == nil {
		if extra := dec.Decode(&struct{}{}); !errors.Is(extra, io.EOF) {
			err = errTrailingData
		}
	}
	if err != nil {
		slog.DebugContext(r.Context(), "invalid_json",
			slog.String("req_id", chimw.GetReqID(r.Context())),
			slog.String("error", err.Error()),
		)
		writeJSON(w, http.StatusBadRequest, errResponse{Error: "invalid_json"})
		return nil, false
	}
	return p, true
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var vErr *ValidationError
	switch {
	case errors.As(err, &vErr):
		writeText(w, http.StatusBadRequest, vErr.Reason)
	case errors.Is(err, ErrNotFound):
		writeText(w, http.StatusNotFound, msgTaskNotFound)
	case errors.Is(err, ErrInvalidPriority):
		writeText(w, http.StatusBadRequest, msgInvalidPriorityLevel)
	default:
		slog.ErrorContext(r.Context(), "task_handler_error",
			slog.String("req_id", chimw.GetReqID(r.Context())),
			slog.String("error", err.Error()),
		)
		writeJSON(w, http.StatusInternalServerError, errResponse{Error: "unexpected_error"})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeText(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	_, _ = io.WriteString(w, msg)
}
