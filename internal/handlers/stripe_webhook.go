package handlers

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/md-rashed-zaman/clinicore/internal/money"
	"github.com/md-rashed-zaman/clinicore/internal/storage"
	"github.com/stripe/stripe-go/v79"
	"github.com/stripe/stripe-go/v79/webhook"
)

// StripeWebhook applies card payments to bills. There is no other auth on
// this path; the signature verification is the auth, so the route can be
// exposed publicly.
func (h *LedgerHandler) StripeWebhook(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	if strings.TrimSpace(h.stripeWebhookSecret) == "" {
		http.Error(w, "stripe webhook not configured", http.StatusServiceUnavailable)
		return
	}

	sigHeader := r.Header.Get("Stripe-Signature")
	if strings.TrimSpace(sigHeader) == "" {
		http.Error(w, "missing Stripe-Signature header", http.StatusBadRequest)
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, 1<<20)) // 1 MiB hard cap
	if err != nil {
		http.Error(w, "failed to read request body", http.StatusBadRequest)
		return
	}

	tolerance := time.Duration(h.stripeWebhookTolerance) * time.Second
	if tolerance <= 0 {
		tolerance = webhook.DefaultTolerance
	}
	evt, err := webhook.ConstructEventWithTolerance(body, sigHeader, h.stripeWebhookSecret, tolerance)
	if err != nil {
		http.Error(w, "invalid signature", http.StatusBadRequest)
		return
	}

	evtType := string(evt.Type)
	h.logger.Info("payment provider event received",
		"provider", "stripe",
		"provider_event_id", evt.ID,
		"event_type", evtType,
	)

	if evtType != "payment_intent.succeeded" {
		// Acknowledge everything else so Stripe stops retrying.
		writeJSON(w, http.StatusOK, map[string]any{"status": "ignored"})
		return
	}

	var intent stripe.PaymentIntent
	if err := json.Unmarshal(evt.Data.Raw, &intent); err != nil {
		h.logger.Error("stripe: invalid payment intent payload", "err", err)
		http.Error(w, "invalid payload", http.StatusBadRequest)
		return
	}

	billID, err := strconv.ParseInt(strings.TrimSpace(intent.Metadata["bill_id"]), 10, 64)
	if err != nil || billID <= 0 {
		h.logger.Warn("stripe: payment intent missing bill_id metadata", "provider_event_id", evt.ID)
		writeJSON(w, http.StatusOK, map[string]any{"status": "ignored"})
		return
	}

	// Only money Stripe actually captured goes on the books. AmountReceived
	// can be zero on a succeeded intent (e.g. fully discounted); never fall
	// back to the requested Amount.
	amount := intent.AmountReceived
	if amount <= 0 {
		h.logger.Warn("stripe: payment intent captured nothing, ignoring",
			"provider_event_id", evt.ID, "bill_id", billID)
		writeJSON(w, http.StatusOK, map[string]any{"status": "ignored"})
		return
	}

	err = h.engine.RecordCardPayment(r.Context(), billID, money.FromCents(amount), storage.ProviderEvent{
		Provider:        "stripe",
		ProviderEventID: evt.ID,
		EventType:       evtType,
		Payload:         body,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok"})
}
