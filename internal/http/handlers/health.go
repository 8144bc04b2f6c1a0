package handlers

import (
	"net/http"
)

// Health reports whether the ledger store answers. The head hash lets
// operators compare replicas.
func (a *App) Health(w http.ResponseWriter, r *http.Request) {
	if a.Transactions == nil {
		a.json(w, http.StatusOK, map[string]string{"status": "ok"})
		return
	}
	head, err := a.Transactions.LatestHash(r.Context())
	if err != nil {
		a.logger().Warn().Err(err).Msg("health: ledger store unavailable")
		a.json(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		return
	}
	a.json(w, http.StatusOK, map[string]string{"status": "ok", "ledger_head": head})
}
