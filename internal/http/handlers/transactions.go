package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"ngoledger/internal/domain"
	"ngoledger/internal/gateway/razorpay"
)

type createOrderRequest struct {
	Amount amount `json:"amount"`
}

func (a *App) CreateOrder(w http.ResponseWriter, r *http.Request) {
	userID := a.currentUserID(r)
	if userID == "" {
		a.error(w, http.StatusUnauthorized, "unauthorized", "Authentication credentials were not provided")
		return
	}
	ngoID, ok := pathID(r, "ngoId")
	if !ok {
		a.error(w, http.StatusNotFound, "not_found", "NGO not found")
		return
	}
	var req createOrderRequest
	if err := decode(w, r, &req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "Invalid amount")
		return
	}
	minor := domain.ToMinor(float64(req.Amount))
	if !domain.ValidAmount(float64(req.Amount)) || minor <= 0 {
		a.error(w, http.StatusBadRequest, "bad_request", "Invalid amount")
		return
	}
	if _, err := a.NGOs.GetByID(r.Context(), ngoID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			a.error(w, http.StatusNotFound, "not_found", "NGO not found")
			return
		}
		a.logger().Error().Err(err).Int64("ngo_id", ngoID).Msg("load ngo failed")
		a.error(w, http.StatusInternalServerError, "internal", "Failed to create order")
		return
	}
	gwOrder, err := a.Gateway.CreateOrder(r.Context(), razorpay.OrderRequest{
		Amount:   minor,
		Currency: a.currency(),
		Receipt:  fmt.Sprintf("ngo_%d_%s", ngoID, uuid.NewString()[:8]),
		Notes:    map[string]string{"ngo_id": strconv.FormatInt(ngoID, 10), "user_id": userID},
	})
	if err != nil {
		a.logger().Error().Err(err).Int64("ngo_id", ngoID).Msg("gateway order failed")
		a.error(w, http.StatusBadGateway, "gateway", "Failed to create order")
		return
	}
	order := &domain.Order{
		OrderID:  gwOrder.ID,
		Key:      a.Gateway.Key(),
		Amount:   gwOrder.Amount,
		Currency: gwOrder.Currency,
		NGOID:    ngoID,
		UserID:   userID,
		Status:   domain.OrderCreated,
	}
	if order.Currency == "" {
		order.Currency = a.currency()
	}
	if err := a.Orders.Create(r.Context(), order); err != nil {
		a.logger().Error().Err(err).Str("order_id", order.OrderID).Msg("persist order failed")
		a.error(w, http.StatusInternalServerError, "internal", "Failed to create order")
		return
	}
	a.logger().Info().Str("order_id", order.OrderID).Int64("ngo_id", ngoID).Int64("amount", order.Amount).Msg("order created")
	a.json(w, http.StatusOK, map[string]any{
		"key":      order.Key,
		"amount":   order.Amount,
		"currency": order.Currency,
		"order_id": order.OrderID,
	})
}

func (a *App) VerifyPayment(w http.ResponseWriter, r *http.Request) {
	userID := a.currentUserID(r)
	if userID == "" {
		a.error(w, http.StatusUnauthorized, "unauthorized", "Authentication credentials were not provided")
		return
	}
	var conf domain.PaymentConfirmation
	if err := decode(w, r, &conf); err != nil || !conf.Complete() {
		a.error(w, http.StatusBadRequest, "bad_request", "Missing payment details")
		return
	}
	order, err := a.Orders.GetByID(r.Context(), conf.OrderID)
	if err != nil || order.UserID != userID {
		if err != nil && !errors.Is(err, domain.ErrNotFound) {
			a.logger().Error().Err(err).Str("order_id", conf.OrderID).Msg("load order failed")
			a.error(w, http.StatusInternalServerError, "internal", "Failed to verify payment")
			return
		}
		a.error(w, http.StatusNotFound, "not_found", "Order not found")
		return
	}

	switch order.Status {
	case domain.OrderPaid:
		existing, err := a.Transactions.GetByPaymentID(r.Context(), conf.PaymentID)
		if err == nil && existing.RazorpayOrderID == order.OrderID {
			a.json(w, http.StatusOK, domain.VerificationResult{Success: true, Transaction: ptr(present(*existing))})
			return
		}
		a.error(w, http.StatusBadRequest, "bad_request", "Order already paid")
		return
	case domain.OrderFailed:
		a.error(w, http.StatusBadRequest, "bad_request", "Order is no longer payable")
		return
	}

	if !a.Gateway.VerifySignature(conf.OrderID, conf.PaymentID, conf.Signature) {
		if err := a.Orders.UpdateStatus(r.Context(), order.OrderID, domain.OrderFailed); err != nil {
			a.logger().Error().Err(err).Str("order_id", order.OrderID).Msg("mark order failed")
		}
		a.logger().Warn().Str("order_id", order.OrderID).Str("payment_id", conf.PaymentID).Msg("payment signature mismatch")
		a.error(w, http.StatusBadRequest, "bad_request", "Invalid payment signature")
		return
	}

	uid := userID
	tx := &domain.Transaction{
		NGOID:             order.NGOID,
		Type:              domain.TransactionDonation,
		AmountMinor:       order.Amount,
		UserID:            &uid,
		RazorpayOrderID:   order.OrderID,
		RazorpayPaymentID: conf.PaymentID,
		RazorpaySignature: strings.ToLower(conf.Signature),
	}
	if err := a.record(r.Context(), tx, order.OrderID); err != nil {
		if errors.Is(err, domain.ErrDuplicate) {
			if existing, lookupErr := a.Transactions.GetByPaymentID(r.Context(), conf.PaymentID); lookupErr == nil {
				a.json(w, http.StatusOK, domain.VerificationResult{Success: true, Transaction: ptr(present(*existing))})
				return
			}
		}
		a.logger().Error().Err(err).Str("order_id", order.OrderID).Msg("record donation failed")
		a.error(w, http.StatusInternalServerError, "ledger", "Failed to record transaction on blockchain")
		return
	}
	if err := a.Orders.UpdateStatus(r.Context(), order.OrderID, domain.OrderPaid); err != nil {
		a.logger().Error().Err(err).Str("order_id", order.OrderID).Msg("mark order paid failed")
	}
	recorded, err := a.Transactions.GetByID(r.Context(), tx.ID)
	if err != nil {
		recorded = tx
	}
	a.logger().Info().Str("order_id", order.OrderID).Int64("tx_id", tx.ID).Str("hash", tx.BlockchainHash).Msg("donation verified")
	a.json(w, http.StatusOK, domain.VerificationResult{Success: true, Transaction: ptr(present(*recorded))})
}

func (a *App) ListTransactions(w http.ResponseWriter, r *http.Request) {
	filter, err := parseFilter(r)
	if err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", err.Error())
		return
	}
	items, err := a.Transactions.Search(r.Context(), filter)
	if err != nil {
		a.logger().Error().Err(err).Msg("search transactions failed")
		a.error(w, http.StatusInternalServerError, "internal", "Failed to fetch transactions")
		return
	}
	a.json(w, http.StatusOK, presentAll(items))
}

func (a *App) TransactionDetail(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		a.error(w, http.StatusNotFound, "not_found", "Transaction not found")
		return
	}
	tx, err := a.Transactions.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			a.error(w, http.StatusNotFound, "not_found", "Transaction not found")
			return
		}
		a.logger().Error().Err(err).Int64("tx_id", id).Msg("load transaction failed")
		a.error(w, http.StatusInternalServerError, "internal", "Failed to fetch transaction details")
		return
	}
	a.json(w, http.StatusOK, present(*tx))
}

func parseFilter(r *http.Request) (domain.TransactionFilter, error) {
	q := r.URL.Query()
	f := domain.TransactionFilter{UserID: strings.TrimSpace(q.Get("user_id"))}
	if raw := strings.TrimSpace(q.Get("ngo_id")); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id <= 0 {
			return f, errors.New("Invalid ngo_id")
		}
		f.NGOID = id
	}
	if raw := strings.TrimSpace(q.Get("transaction_type")); raw != "" {
		f.Type = domain.TransactionType(raw)
		if !f.Type.Valid() {
			return f, errors.New("Invalid transaction_type")
		}
	}
	for _, bound := range []struct {
		name string
		dst  *int64
	}{{"min_amount", &f.MinAmount}, {"max_amount", &f.MaxAmount}} {
		raw := strings.TrimSpace(q.Get(bound.name))
		if raw == "" {
			continue
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil || v < 0 {
			return f, fmt.Errorf("Invalid %s", bound.name)
		}
		*bound.dst = domain.ToMinor(v)
	}
	switch strings.ToLower(strings.TrimSpace(q.Get("sort_order"))) {
	case "", "desc":
	case "asc":
		f.Ascending = true
	default:
		return f, errors.New("Invalid sort_order")
	}
	return f, nil
}

func ptr[T any](v T) *T {
	return &v
}
