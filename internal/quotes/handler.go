package quotes

import (
	"errors"
	"net/http"
	"time"

	"optiondesk/internal/httputil"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

type changeRequest struct {
	Symbol    string   `json:"symbol"`
	Last      float64  `json:"last"`
	PrevClose *float64 `json:"prev_close,omitempty"`
}

func (h *Handler) Change(w http.ResponseWriter, r *http.Request) {
	var req changeRequest
	if err := httputil.ReadJSON(r, &req); err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{Error: err.Error()})
		return
	}
	m, err := h.svc.Move(r.Context(), req.Symbol, req.Last, req.PrevClose)
	if err != nil {
		writeError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, m)
}

type closeRequest struct {
	Symbol    string  `json:"symbol"`
	TradeDate string  `json:"trade_date"`
	Close     float64 `json:"close"`
}

// RecordClose stores an operator-supplied daily close. trade_date is YYYY-MM-DD, default today.
func (h *Handler) RecordClose(w http.ResponseWriter, r *http.Request) {
	var req closeRequest
	if err := httputil.ReadJSON(r, &req); err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{Error: err.Error()})
		return
	}
	c := Close{Symbol: req.Symbol, Close: req.Close}
	if req.TradeDate != "" {
		d, err := time.Parse("2006-01-02", req.TradeDate)
		if err != nil {
			httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{Error: "trade_date must be YYYY-MM-DD", Param: "trade_date"})
			return
		}
		c.TradeDate = d
	}
	if err := h.svc.RecordClose(r.Context(), c); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrNoPreviousClose):
		httputil.WriteJSON(w, http.StatusNotFound, httputil.ErrorResponse{Error: err.Error()})
	case errors.Is(err, ErrInvalidQuote):
		httputil.WriteJSON(w, http.StatusUnprocessableEntity, httputil.ErrorResponse{Error: err.Error(), Param: "last"})
	case errors.Is(err, ErrInvalidClose):
		httputil.WriteJSON(w, http.StatusUnprocessableEntity, httputil.ErrorResponse{Error: err.Error(), Param: "close"})
	case errors.Is(err, ErrSymbolRequired):
		httputil.WriteJSON(w, http.StatusUnprocessableEntity, httputil.ErrorResponse{Error: err.Error(), Param: "symbol"})
	default:
		httputil.WriteJSON(w, http.StatusInternalServerError, httputil.ErrorResponse{Error: err.Error()})
	}
}
