// Package transport exposes the read API over HTTP.
package transport

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/goodnatureofminers/blockinsight7000-feetracker/internal/model"
	"github.com/google/uuid"
	gwruntime "github.com/grpc-ecosystem/grpc-gateway/v2/runtime"
	"go.uber.org/zap"
)

const (
	defaultLimit = 50
	maxLimit     = 1000
)

// HTTPHandler serves the spot price and transaction routes.
type HTTPHandler struct {
	service   QueryService
	logger    *zap.Logger
	marshaler gwruntime.Marshaler
}

// NewHTTPHandler builds an HTTPHandler.
func NewHTTPHandler(service QueryService, logger *zap.Logger) *HTTPHandler {
	return &HTTPHandler{
		service:   service,
		logger:    logger,
		marshaler: &gwruntime.JSONBuiltin{},
	}
}

// Register mounts the read routes on the gateway mux.
func (h *HTTPHandler) Register(mux *gwruntime.ServeMux) error {
	if err := mux.HandlePath(http.MethodGet, "/api/v1/prices/{symbol}", h.getPrice); err != nil {
		return fmt.Errorf("register prices route: %w", err)
	}
	if err := mux.HandlePath(http.MethodGet, "/api/v1/transactions", h.listTransactions); err != nil {
		return fmt.Errorf("register transactions route: %w", err)
	}
	return nil
}

// TrimTrailingSlash lets "/api/v1/transactions/" reach the same route as "/api/v1/transactions".
func TrimTrailingSlash(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if p := r.URL.Path; len(p) > 1 && strings.HasSuffix(p, "/") {
			r.URL.Path = strings.TrimRight(p, "/")
			if r.URL.RawPath != "" {
				r.URL.RawPath = strings.TrimRight(r.URL.RawPath, "/")
			}
		}
		next.ServeHTTP(w, r)
	})
}

type spotPriceResponse struct {
	ID        uuid.UUID `json:"id"`
	Symbol    string    `json:"symbol"`
	Timestamp time.Time `json:"timestamp"`
	Price     float64   `json:"price"`
}

type transactionResponse struct {
	ID           uuid.UUID `json:"id"`
	TxHash       string    `json:"tx_hash"`
	Timestamp    time.Time `json:"timestamp"`
	GasUsed      uint64    `json:"gas_used"`
	GasPriceWei  uint64    `json:"gas_price_wei"`
	TxnFeeETH    float64   `json:"txn_fee_eth"`
	ETHUSDTPrice float64   `json:"eth_usdt_price"`
	TxnFeeUSDT   float64   `json:"txn_fee_usdt"`
}

type transactionsResponse struct {
	Data  []transactionResponse `json:"data"`
	Count uint64                `json:"count"`
}

type errorResponse struct {
	Detail string `json:"detail"`
}

func (h *HTTPHandler) getPrice(w http.ResponseWriter, r *http.Request, params map[string]string) {
	var at *time.Time
	if raw := r.URL.Query().Get("timestamp"); raw != "" {
		ts, err := parseMillis("timestamp", raw)
		if err != nil {
			h.writeError(w, r, err, "")
			return
		}
		at = &ts
	}

	price, err := h.service.Price(r.Context(), params["symbol"], at)
	if err != nil {
		h.writeError(w, r, err, "Price not found")
		return
	}

	h.write(w, http.StatusOK, spotPriceResponse{
		ID:        price.ID,
		Symbol:    price.Symbol,
		Timestamp: price.Timestamp.UTC(),
		Price:     price.Price,
	})
}

func (h *HTTPHandler) listTransactions(w http.ResponseWriter, r *http.Request, _ map[string]string) {
	filter, skip, limit, err := parseTransactionQuery(r)
	if err != nil {
		h.writeError(w, r, err, "")
		return
	}

	page, err := h.service.ListTransactions(r.Context(), filter, skip, limit)
	if err != nil {
		h.writeError(w, r, err, "Transaction(s) not found.")
		return
	}

	resp := transactionsResponse{
		Data:  make([]transactionResponse, 0, len(page.Data)),
		Count: page.Count,
	}
	for _, tx := range page.Data {
		resp.Data = append(resp.Data, transactionResponse{
			ID:           tx.ID,
			TxHash:       tx.TxHash,
			Timestamp:    tx.Timestamp.UTC(),
			GasUsed:      tx.GasUsed,
			GasPriceWei:  tx.GasPriceWei,
			TxnFeeETH:    tx.TxnFeeETH,
			ETHUSDTPrice: tx.ETHUSDTPrice,
			TxnFeeUSDT:   tx.TxnFeeUSDT,
		})
	}
	h.write(w, http.StatusOK, resp)
}

func parseTransactionQuery(r *http.Request) (filter model.TransactionFilter, skip, limit int, err error) {
	q := r.URL.Query()

	for _, raw := range q["tx_hashes"] {
		for _, h := range strings.Split(raw, ",") {
			if h = strings.TrimSpace(h); h != "" {
				filter.TxHashes = append(filter.TxHashes, h)
			}
		}
	}

	if raw := q.Get("start_time"); raw != "" {
		ts, perr := parseMillis("start_time", raw)
		if perr != nil {
			return filter, 0, 0, perr
		}
		filter.Start = &ts
	}
	if raw := q.Get("end_time"); raw != "" {
		ts, perr := parseMillis("end_time", raw)
		if perr != nil {
			return filter, 0, 0, perr
		}
		filter.End = &ts
	}

	if skip, err = parseInt(q.Get("skip"), "skip", 0, 0, -1); err != nil {
		return filter, 0, 0, err
	}
	if limit, err = parseInt(q.Get("limit"), "limit", defaultLimit, 0, maxLimit); err != nil {
		return filter, 0, 0, err
	}
	return filter, skip, limit, nil
}

func parseMillis(name, raw string) (time.Time, error) {
	ms, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || ms < 0 {
		return time.Time{}, fmt.Errorf("%w: %s must be unix milliseconds", model.ErrInvalidArgument, name)
	}
	return time.UnixMilli(ms).UTC(), nil
}

// parseInt reads an optional integer in [lo, hi]; hi < 0 means unbounded.
func parseInt(raw, name string, def, lo, hi int) (int, error) {
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < lo || (hi >= 0 && v > hi) {
		if hi >= 0 {
			return 0, fmt.Errorf("%w: %s must be an integer in [%d, %d]", model.ErrInvalidArgument, name, lo, hi)
		}
		return 0, fmt.Errorf("%w: %s must be an integer >= %d", model.ErrInvalidArgument, name, lo)
	}
	return v, nil
}

func (h *HTTPHandler) writeError(w http.ResponseWriter, r *http.Request, err error, notFound string) {
	switch {
	case errors.Is(err, model.ErrInvalidArgument):
		h.write(w, http.StatusBadRequest, errorResponse{Detail: err.Error()})
	case errors.Is(err, model.ErrNotFound):
		h.write(w, http.StatusNotFound, errorResponse{Detail: notFound})
	default:
		h.logger.Error("request failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
		h.write(w, http.StatusInternalServerError, errorResponse{Detail: err.Error()})
	}
}

func (h *HTTPHandler) write(w http.ResponseWriter, status int, body any) {
	payload, err := h.marshaler.Marshal(body)
	if err != nil {
		h.logger.Error("marshal response", zap.Error(err))
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", h.marshaler.ContentType(body))
	w.WriteHeader(status)
	if _, err = w.Write(payload); err != nil {
		h.logger.Debug("write response", zap.Error(err))
	}
}
