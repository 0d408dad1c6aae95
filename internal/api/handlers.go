package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"example.com/battlegrid/internal/match"
	"example.com/battlegrid/internal/ws"
)

type Handler struct {
	registry *match.Registry
	log      *zap.Logger
}

func New(registry *match.Registry, log *zap.Logger) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{registry: registry, log: log}
}

func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/match", h.handleCreate)
	mux.HandleFunc("GET /api/match/{id}", h.handleGet)
	mux.HandleFunc("GET /api/schema", h.handleSchema)
}

type createResp struct {
	MatchID string `json:"matchId"`
}

type errorResp struct {
	Error string `json:"error"`
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	m, err := h.registry.Create()
	if err != nil {
		h.log.Error("create match", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, errorResp{Error: "could not create match"})
		return
	}
	writeJSON(w, http.StatusCreated, createResp{MatchID: m.ID()})
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	m, err := h.registry.Get(r.PathValue("id"))
	if errors.Is(err, match.ErrMatchNotFound) {
		writeJSON(w, http.StatusNotFound, errorResp{Error: err.Error()})
		return
	}
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResp{Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, m.Summary())
}

func (h *Handler) handleSchema(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, ws.Schema())
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
