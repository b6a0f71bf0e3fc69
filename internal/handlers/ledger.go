package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/md-rashed-zaman/clinicore/internal/ledger"
	"github.com/md-rashed-zaman/clinicore/internal/model"
)

type LedgerHandler struct {
	engine *ledger.Engine
	logger *slog.Logger

	stripeWebhookSecret    string
	stripeWebhookTolerance int64 // seconds
}

func NewLedgerHandler(engine *ledger.Engine, logger *slog.Logger, stripeWebhookSecret string, stripeWebhookToleranceSeconds int64) *LedgerHandler {
	return &LedgerHandler{
		engine:                 engine,
		logger:                 logger,
		stripeWebhookSecret:    stripeWebhookSecret,
		stripeWebhookTolerance: stripeWebhookToleranceSeconds,
	}
}

func (h *LedgerHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("/v1/bills", h.bills)
	mux.HandleFunc("/v1/bills/delete", h.deleteBill)
	mux.HandleFunc("/v1/bills/items", h.items)
	mux.HandleFunc("/v1/medicines", h.medicines)
	mux.HandleFunc("/v1/tests", h.tests)
	mux.HandleFunc("/v1/webhooks/stripe", h.StripeWebhook)
}

func (h *LedgerHandler) bills(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		var b model.Bill
		if err := json.NewDecoder(r.Body).Decode(&b); err != nil {
			http.Error(w, "invalid json body", http.StatusBadRequest)
			return
		}
		created, err := h.engine.CreateBill(r.Context(), b)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, created)
	case http.MethodPut:
		var b model.Bill
		if err := json.NewDecoder(r.Body).Decode(&b); err != nil {
			http.Error(w, "invalid json body", http.StatusBadRequest)
			return
		}
		if err := h.engine.UpdateBill(r.Context(), b); err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, b)
	case http.MethodGet:
		h.listBills(w, r)
	default:
		methodNotAllowed(w)
	}
}

func (h *LedgerHandler) listBills(w http.ResponseWriter, r *http.Request) {
	if id, ok := idParam(r); ok {
		view, err := h.engine.GetBill(r.Context(), id)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, view)
		return
	}

	if raw := strings.TrimSpace(r.URL.Query().Get("appointment_id")); raw != "" {
		apptID, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || apptID <= 0 {
			http.Error(w, "invalid appointment_id", http.StatusBadRequest)
			return
		}
		out, err := h.engine.ListBillsByAppointment(r.Context(), apptID)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, out)
		return
	}

	limit := 0
	if raw := strings.TrimSpace(r.URL.Query().Get("limit")); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 && n <= 500 {
			limit = n
		}
	}
	out, err := h.engine.ListBills(r.Context(), limit)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *LedgerHandler) deleteBill(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	var req idRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.ID <= 0 {
		http.Error(w, "id is required", http.StatusBadRequest)
		return
	}
	if err := h.engine.DeleteBill(r.Context(), req.ID); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"id": req.ID, "deleted": true})
}

func (h *LedgerHandler) items(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		var it model.BillItem
		if err := json.NewDecoder(r.Body).Decode(&it); err != nil {
			http.Error(w, "invalid json body", http.StatusBadRequest)
			return
		}
		created, err := h.engine.AddItem(r.Context(), it)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, created)
	case http.MethodGet:
		raw := strings.TrimSpace(r.URL.Query().Get("bill_id"))
		billID, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || billID <= 0 {
			http.Error(w, "bill_id is required", http.StatusBadRequest)
			return
		}
		out, err := h.engine.ListItems(r.Context(), billID)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, out)
	default:
		methodNotAllowed(w)
	}
}

func (h *LedgerHandler) medicines(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		var m model.Medicine
		if err := json.NewDecoder(r.Body).Decode(&m); err != nil {
			http.Error(w, "invalid json body", http.StatusBadRequest)
			return
		}
		created, err := h.engine.CreateMedicine(r.Context(), m)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, created)
	case http.MethodGet:
		out, err := h.engine.ListMedicines(r.Context())
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, out)
	default:
		methodNotAllowed(w)
	}
}

func (h *LedgerHandler) tests(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		var t model.MedicalTest
		if err := json.NewDecoder(r.Body).Decode(&t); err != nil {
			http.Error(w, "invalid json body", http.StatusBadRequest)
			return
		}
		created, err := h.engine.CreateMedicalTest(r.Context(), t)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, created)
	case http.MethodGet:
		out, err := h.engine.ListMedicalTests(r.Context())
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, out)
	default:
		methodNotAllowed(w)
	}
}
