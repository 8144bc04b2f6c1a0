package handlers

import (
	"errors"
	"net/http"
	"net/url"
	"strings"

	"ngoledger/internal/domain"
)

type ngoSummary struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	LogoURL     string `json:"logo_url"`
}

type expenseRequest struct {
	Amount      amount `json:"amount"`
	ProofURL    string `json:"proof_url"`
	Description string `json:"description"`
}

func (a *App) ListNGOs(w http.ResponseWriter, r *http.Request) {
	ngos, err := a.NGOs.List(r.Context())
	if err != nil {
		a.logger().Error().Err(err).Msg("list ngos failed")
		a.error(w, http.StatusInternalServerError, "internal", "Failed to fetch NGOs")
		return
	}
	items := make([]ngoSummary, 0, len(ngos))
	for _, n := range ngos {
		items = append(items, ngoSummary{ID: n.ID, Name: n.Name, Description: n.Description, LogoURL: n.LogoURL})
	}
	a.json(w, http.StatusOK, items)
}

func (a *App) NGODetail(w http.ResponseWriter, r *http.Request) {
	ngo, ok := a.loadNGO(w, r)
	if !ok {
		return
	}
	incoming, err := a.Transactions.ListByNGO(r.Context(), ngo.ID, domain.TransactionDonation)
	if err != nil {
		a.logger().Error().Err(err).Int64("ngo_id", ngo.ID).Msg("list donations failed")
		a.error(w, http.StatusInternalServerError, "internal", "Failed to fetch NGO details")
		return
	}
	outgoing, err := a.Transactions.ListByNGO(r.Context(), ngo.ID, domain.TransactionExpense)
	if err != nil {
		a.logger().Error().Err(err).Int64("ngo_id", ngo.ID).Msg("list expenses failed")
		a.error(w, http.StatusInternalServerError, "internal", "Failed to fetch NGO details")
		return
	}
	a.json(w, http.StatusOK, domain.NGODetail{NGO: *ngo, Incoming: presentAll(incoming), Outgoing: presentAll(outgoing)})
}

func (a *App) Incoming(w http.ResponseWriter, r *http.Request) {
	a.listDirection(w, r, domain.TransactionDonation, "Failed to fetch incoming transactions")
}

func (a *App) Outgoing(w http.ResponseWriter, r *http.Request) {
	a.listDirection(w, r, domain.TransactionExpense, "Failed to fetch outgoing transactions")
}

func (a *App) listDirection(w http.ResponseWriter, r *http.Request, typ domain.TransactionType, failure string) {
	ngo, ok := a.loadNGO(w, r)
	if !ok {
		return
	}
	items, err := a.Transactions.ListByNGO(r.Context(), ngo.ID, typ)
	if err != nil {
		a.logger().Error().Err(err).Int64("ngo_id", ngo.ID).Str("type", string(typ)).Msg("list transactions failed")
		a.error(w, http.StatusInternalServerError, "internal", failure)
		return
	}
	a.json(w, http.StatusOK, presentAll(items))
}

func (a *App) AddOutgoing(w http.ResponseWriter, r *http.Request) {
	userID := a.currentUserID(r)
	if userID == "" {
		a.error(w, http.StatusUnauthorized, "unauthorized", "Authentication credentials were not provided")
		return
	}
	ngo, ok := a.loadNGO(w, r)
	if !ok {
		return
	}
	if ngo.AdminID != userID {
		a.error(w, http.StatusForbidden, "forbidden", "You are not the admin of this NGO")
		return
	}
	var req expenseRequest
	if err := decode(w, r, &req); err != nil {
		if errors.Is(err, domain.ErrInvalidAmount) {
			a.error(w, http.StatusBadRequest, "bad_request", "Invalid amount")
			return
		}
		a.error(w, http.StatusBadRequest, "bad_request", "Invalid request body")
		return
	}
	minor := domain.ToMinor(float64(req.Amount))
	if !domain.ValidAmount(float64(req.Amount)) || minor <= 0 {
		a.error(w, http.StatusBadRequest, "bad_request", "Invalid amount")
		return
	}
	proof := strings.TrimSpace(req.ProofURL)
	if !validURL(proof) {
		a.error(w, http.StatusBadRequest, "bad_request", "A valid proof_url is required")
		return
	}
	tx := &domain.Transaction{
		NGOID:       ngo.ID,
		NGOName:     ngo.Name,
		Type:        domain.TransactionExpense,
		AmountMinor: minor,
		ProofURL:    proof,
		Description: strings.TrimSpace(req.Description),
		UserID:      &userID,
	}
	if err := a.record(r.Context(), tx, proof); err != nil {
		a.logger().Error().Err(err).Int64("ngo_id", ngo.ID).Msg("record expense failed")
		a.error(w, http.StatusInternalServerError, "ledger", "Failed to record transaction on blockchain")
		return
	}
	a.logger().Info().Int64("ngo_id", ngo.ID).Int64("tx_id", tx.ID).Str("hash", tx.BlockchainHash).Msg("expense recorded")
	a.json(w, http.StatusCreated, present(*tx))
}

func (a *App) AdminNGO(w http.ResponseWriter, r *http.Request) {
	userID := a.currentUserID(r)
	if userID == "" {
		a.error(w, http.StatusUnauthorized, "unauthorized", "Authentication credentials were not provided")
		return
	}
	ngo, err := a.NGOs.FirstByAdmin(r.Context(), userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			a.error(w, http.StatusNotFound, "not_found", "No NGO found for this admin")
			return
		}
		a.logger().Error().Err(err).Str("user_id", userID).Msg("load admin ngo failed")
		a.error(w, http.StatusInternalServerError, "internal", "Failed to fetch NGO")
		return
	}
	a.json(w, http.StatusOK, ngo)
}

func (a *App) UpdateNGO(w http.ResponseWriter, r *http.Request) {
	userID := a.currentUserID(r)
	if userID == "" {
		a.error(w, http.StatusUnauthorized, "unauthorized", "Authentication credentials were not provided")
		return
	}
	ngo, ok := a.loadNGO(w, r)
	if !ok {
		return
	}
	if ngo.AdminID != userID {
		a.error(w, http.StatusForbidden, "forbidden", "You are not the admin of this NGO")
		return
	}
	var req domain.NGOUpdate
	if err := decode(w, r, &req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "Invalid request body")
		return
	}
	images := make([]string, 0, len(req.WorkImages))
	for _, img := range req.WorkImages {
		if img = strings.TrimSpace(img); img != "" {
			images = append(images, img)
		}
	}
	req.WorkImages = images
	req.Name = strings.TrimSpace(req.Name)
	req.Apply(ngo)
	if err := a.NGOs.Update(r.Context(), ngo); err != nil {
		a.logger().Error().Err(err).Int64("ngo_id", ngo.ID).Msg("update ngo failed")
		a.error(w, http.StatusInternalServerError, "internal", "Failed to update NGO")
		return
	}
	a.json(w, http.StatusOK, ngo)
}

// loadNGO resolves the {id} path parameter, answering 404 when absent.
func (a *App) loadNGO(w http.ResponseWriter, r *http.Request) (*domain.NGO, bool) {
	id, ok := pathID(r, "id")
	if !ok {
		a.error(w, http.StatusNotFound, "not_found", "NGO not found")
		return nil, false
	}
	ngo, err := a.NGOs.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			a.error(w, http.StatusNotFound, "not_found", "NGO not found")
			return nil, false
		}
		a.logger().Error().Err(err).Int64("ngo_id", id).Msg("load ngo failed")
		a.error(w, http.StatusInternalServerError, "internal", "Failed to fetch NGO details")
		return nil, false
	}
	return ngo, true
}

func validURL(raw string) bool {
	u, err := url.Parse(raw)
	return err == nil && (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
