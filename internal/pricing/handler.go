// Package pricing exposes the greeks engine over HTTP and WebSocket.
package pricing

import (
	"errors"
	"net/http"

	"optiondesk/internal/greeks"
	"optiondesk/internal/httputil"
)

type Handler struct {
	defaultRate float64
	WS          *CalculatorWS
}

func NewHandler(defaultRate float64, ws *CalculatorWS) *Handler {
	return &Handler{defaultRate: defaultRate, WS: ws}
}

func (h *Handler) withRate(req greeks.Request) greeks.Request {
	if req.RiskFreeRate == nil {
		rate := h.defaultRate
		req.RiskFreeRate = &rate
	}
	return req
}

func (h *Handler) Greeks(w http.ResponseWriter, r *http.Request) {
	var req greeks.Request
	if err := httputil.ReadJSON(r, &req); err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{Error: err.Error()})
		return
	}
	res, err := greeks.Compute(h.withRate(req))
	if err != nil {
		writeEngineError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, res)
}

type ivRequest struct {
	Type         string   `json:"type"`
	Premium      float64  `json:"premium"`
	Spot         float64  `json:"spot"`
	Strike       float64  `json:"strike"`
	DaysToExpiry float64  `json:"days_to_expiry"`
	RiskFreeRate *float64 `json:"risk_free_rate,omitempty"`
}

type ivResponse struct {
	Volatility float64 `json:"volatility"`
}

func (h *Handler) ImpliedVolatility(w http.ResponseWriter, r *http.Request) {
	var req ivRequest
	if err := httputil.ReadJSON(r, &req); err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{Error: err.Error()})
		return
	}
	typ, ok := greeks.ParseOptionType(req.Type)
	if !ok {
		httputil.WriteJSON(w, http.StatusUnprocessableEntity, httputil.ErrorResponse{Error: "type must be call or put", Param: "type"})
		return
	}
	rate := h.defaultRate
	if req.RiskFreeRate != nil {
		rate = *req.RiskFreeRate
	}
	iv, err := greeks.ImpliedVolatility(greeks.IVRequest{
		Type:         typ,
		Premium:      req.Premium,
		Spot:         req.Spot,
		Strike:       req.Strike,
		DaysToExpiry: req.DaysToExpiry,
		RiskFreeRate: &rate,
	})
	if err != nil {
		writeEngineError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, ivResponse{Volatility: iv})
}

func engineError(err error) (int, httputil.ErrorResponse) {
	var ipe *greeks.InvalidParametersError
	if errors.As(err, &ipe) {
		return http.StatusUnprocessableEntity, httputil.ErrorResponse{Error: err.Error(), Param: ipe.Param}
	}
	if errors.Is(err, greeks.ErrNoConvergence) {
		return http.StatusUnprocessableEntity, httputil.ErrorResponse{Error: err.Error()}
	}
	return http.StatusInternalServerError, httputil.ErrorResponse{Error: err.Error()}
}

func writeEngineError(w http.ResponseWriter, err error) {
	status, body := engineError(err)
	httputil.WriteJSON(w, status, body)
}
