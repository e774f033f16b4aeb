package pricing

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"optiondesk/internal/greeks"

	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"
)

const (
	wsReadLimit   = 16 << 10
	wsIdleTimeout = 2 * time.Minute
)

// TokenParser is satisfied by *auth.Service.
type TokenParser interface {
	ParseToken(token string) (string, error)
}

// CalculatorWS answers each Request message with a Result or an error on the same connection.
type CalculatorWS struct {
	tokens      TokenParser
	defaultRate float64
	upgrader    websocket.Upgrader
}

func NewCalculatorWS(tokens TokenParser, origin string, defaultRate float64) *CalculatorWS {
	return &CalculatorWS{
		tokens:      tokens,
		defaultRate: defaultRate,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return allowOrigin(r, origin) },
		},
	}
}

func allowOrigin(r *http.Request, origin string) bool {
	if origin == "*" {
		return true
	}
	reqOrigin := r.Header.Get("Origin")
	if reqOrigin == "" {
		return true
	}
	// Allow both localhost and 127.0.0.1 variants for development
	if strings.Contains(origin, "localhost") || strings.Contains(origin, "127.0.0.1") {
		if strings.Contains(reqOrigin, "localhost") || strings.Contains(reqOrigin, "127.0.0.1") {
			return true
		}
	}
	return strings.EqualFold(reqOrigin, origin)
}

type wsReply struct {
	ID     string         `json:"id,omitempty"`
	Result *greeks.Result `json:"result,omitempty"`
	Error  string         `json:"error,omitempty"`
	Param  string         `json:"param,omitempty"`
}

type wsRequest struct {
	ID string `json:"id,omitempty"`
	greeks.Request
}

func (h *CalculatorWS) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		http.Error(w, "missing token", http.StatusUnauthorized)
		return
	}
	subject, err := h.tokens.ParseToken(token)
	if err != nil {
		http.Error(w, "invalid token", http.StatusUnauthorized)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()
	conn.SetReadLimit(wsReadLimit)
	log.WithField("subject", subject).Debug("greeks ws connected")

	for {
		_ = conn.SetReadDeadline(time.Now().Add(wsIdleTimeout))
		_, payload, err := conn.ReadMessage()
		if err != nil {
			return
		}
		if err := conn.WriteJSON(h.answer(payload)); err != nil {
			return
		}
	}
}

func (h *CalculatorWS) answer(payload []byte) wsReply {
	var req wsRequest
	if err := json.Unmarshal(payload, &req); err != nil {
		return wsReply{Error: "invalid json: " + err.Error()}
	}
	if req.RiskFreeRate == nil {
		rate := h.defaultRate
		req.RiskFreeRate = &rate
	}
	res, err := greeks.Compute(req.Request)
	if err != nil {
		_, body := engineError(err)
		return wsReply{ID: req.ID, Error: body.Error, Param: body.Param}
	}
	return wsReply{ID: req.ID, Result: &res}
}
