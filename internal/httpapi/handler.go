// Package httpapi exposes the single GET /api/calculate endpoint (spec
// §6.2, SPEC_FULL.md §4.11) over gorilla/mux, translating internal/errs
// kinds into the HTTP status codes and bodies tabulated in spec §7.
package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/arithflow/arithflow/internal/compiler"
	"github.com/arithflow/arithflow/internal/coordinator"
	"github.com/arithflow/arithflow/internal/errs"
	"github.com/arithflow/arithflow/internal/parser"
)

// Server wires the compiler/coordinator pipeline behind the HTTP surface.
type Server struct {
	Coordinator *coordinator.Coordinator
	Deadline    time.Duration
}

// NewRouter builds the mux.Router serving the calculate endpoint.
func (s *Server) NewRouter() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/api/calculate", s.handleCalculate).Methods(http.MethodGet)
	return r
}

type successResponse struct {
	Result   float64 `json:"result"`
	Workflow string  `json:"workflow"`
}

type errorResponse struct {
	Detail string `json:"detail"`
}

func (s *Server) handleCalculate(w http.ResponseWriter, r *http.Request) {
	expression, ok := r.URL.Query()["expression"]
	if !ok || len(expression) == 0 {
		writeError(w, http.StatusUnprocessableEntity, "Missing required query parameter: expression")
		return
	}

	tree, err := parser.Parse(expression[0])
	if err != nil {
		s.writeErr(w, err)
		return
	}

	ir, err := compiler.Compile(tree)
	if err != nil {
		s.writeErr(w, err)
		return
	}

	ctx := r.Context()
	if s.Deadline > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.Deadline)
		defer cancel()
	}

	result, err := s.Coordinator.Execute(ctx, ir)
	if err != nil {
		s.writeErr(w, err)
		return
	}

	writeJSON(w, http.StatusOK, successResponse{Result: result, Workflow: ir.String()})
}

func (s *Server) writeErr(w http.ResponseWriter, err error) {
	ae, ok := err.(*errs.Error)
	if !ok {
		logrus.WithError(err).Error("unclassified failure")
		writeError(w, http.StatusInternalServerError, "An unexpected error occurred")
		return
	}

	switch ae.Kind().Name() {
	case errs.BrokerUnavailable.Name(), errs.Internal.Name():
		logrus.WithError(err).Error("internal failure")
		writeError(w, http.StatusInternalServerError, "An unexpected error occurred")
	default:
		writeError(w, http.StatusBadRequest, ae.Error())
	}
}

func writeError(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, errorResponse{Detail: detail})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
