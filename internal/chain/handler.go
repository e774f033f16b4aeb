package chain

import (
	"errors"
	"net/http"
	"strings"

	"optiondesk/internal/httputil"
	"optiondesk/internal/maxpain"

	"github.com/go-chi/chi/v5"
	log "github.com/sirupsen/logrus"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// Greeks prices the posted chain; ?save=true also records a snapshot.
func (h *Handler) Greeks(w http.ResponseWriter, r *http.Request) {
	var c Chain
	if err := httputil.ReadJSON(r, &c); err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{Error: err.Error()})
		return
	}
	save := r.URL.Query().Get("save") == "true"
	if save && strings.TrimSpace(c.Symbol) == "" {
		writeError(w, ErrSymbolMissing)
		return
	}
	priced, err := h.svc.Price(r.Context(), c)
	if err != nil {
		writeError(w, err)
		return
	}
	if save {
		if _, err := h.svc.Snapshot(r.Context(), c); err != nil {
			log.WithError(err).WithField("symbol", c.Symbol).Warn("chain snapshot not saved")
			priced.SnapshotError = err.Error()
		}
	}
	httputil.WriteJSON(w, http.StatusOK, priced)
}

func (h *Handler) MaxPain(w http.ResponseWriter, r *http.Request) {
	var c Chain
	if err := httputil.ReadJSON(r, &c); err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{Error: err.Error()})
		return
	}
	res, err := h.svc.MaxPain(c)
	if err != nil {
		writeError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, res)
}

func (h *Handler) LatestSnapshot(w http.ResponseWriter, r *http.Request) {
	snap, err := h.svc.LatestSnapshot(r.Context(), chi.URLParam(r, "symbol"))
	if err != nil {
		writeError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, snap)
}

func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrNoSnapshot):
		httputil.WriteJSON(w, http.StatusNotFound, httputil.ErrorResponse{Error: err.Error()})
	case errors.Is(err, ErrEmptyChain), errors.Is(err, ErrSymbolMissing),
		errors.Is(err, maxpain.ErrEmptyChain), errors.Is(err, maxpain.ErrInvalidRow):
		httputil.WriteJSON(w, http.StatusUnprocessableEntity, httputil.ErrorResponse{Error: err.Error()})
	default:
		httputil.WriteJSON(w, http.StatusInternalServerError, httputil.ErrorResponse{Error: err.Error()})
	}
}
