package handlers

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/stripe/stripe-go/v79"
	"github.com/stripe/stripe-go/v79/webhook"
)

const testWebhookSecret = "whsec_test_secret"

func webhookHandler(t *testing.T) *LedgerHandler {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
	// A nil engine makes any attempt to record a payment fail loudly, which
	// is exactly what the ignore paths must never reach.
	return NewLedgerHandler(nil, logger, testWebhookSecret, 300)
}

func signedIntentEvent(t *testing.T, eventType string, intent map[string]any) (body []byte, sig string) {
	t.Helper()
	payload, err := json.Marshal(map[string]any{
		"id":          "evt_test_1",
		"object":      "event",
		"api_version": stripe.APIVersion,
		"created":     time.Now().Unix(),
		"type":        eventType,
		"data":        map[string]any{"object": intent},
	})
	if err != nil {
		t.Fatalf("marshal event: %v", err)
	}
	signed := webhook.GenerateTestSignedPayload(&webhook.UnsignedPayload{
		Payload:   payload,
		Secret:    testWebhookSecret,
		Timestamp: time.Now(),
		Scheme:    "v1",
	})
	return payload, signed.Header
}

func postWebhook(t *testing.T, h *LedgerHandler, body []byte, sig string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/v1/webhooks/stripe", bytes.NewReader(body))
	req.Header.Set("Stripe-Signature", sig)
	rec := httptest.NewRecorder()
	h.StripeWebhook(rec, req)
	return rec
}

func TestStripeWebhookRejectsBadSignature(t *testing.T) {
	h := webhookHandler(t)
	body, _ := signedIntentEvent(t, "payment_intent.succeeded", map[string]any{})
	rec := postWebhook(t, h, body, "t=1,v1=deadbeef")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("got %d, want 400", rec.Code)
	}
}

func TestStripeWebhookIgnoresZeroCapture(t *testing.T) {
	h := webhookHandler(t)
	body, sig := signedIntentEvent(t, "payment_intent.succeeded", map[string]any{
		"id":              "pi_test_1",
		"object":          "payment_intent",
		"amount":          5000,
		"amount_received": 0,
		"metadata":        map[string]any{"bill_id": "1"},
	})
	rec := postWebhook(t, h, body, sig)
	if rec.Code != http.StatusOK {
		t.Fatalf("got %d, want 200", rec.Code)
	}
	if !bytes.Contains(rec.Body.Bytes(), []byte("ignored")) {
		t.Fatalf("uncaptured intent must be ignored, got %s", rec.Body.String())
	}
}

func TestStripeWebhookIgnoresMissingBillID(t *testing.T) {
	h := webhookHandler(t)
	body, sig := signedIntentEvent(t, "payment_intent.succeeded", map[string]any{
		"id":              "pi_test_2",
		"object":          "payment_intent",
		"amount":          5000,
		"amount_received": 5000,
	})
	rec := postWebhook(t, h, body, sig)
	if rec.Code != http.StatusOK {
		t.Fatalf("got %d, want 200", rec.Code)
	}
	if !bytes.Contains(rec.Body.Bytes(), []byte("ignored")) {
		t.Fatalf("intent without bill_id must be ignored, got %s", rec.Body.String())
	}
}

func TestStripeWebhookIgnoresOtherEventTypes(t *testing.T) {
	h := webhookHandler(t)
	body, sig := signedIntentEvent(t, "payment_intent.created", map[string]any{
		"id":     "pi_test_3",
		"object": "payment_intent",
	})
	rec := postWebhook(t, h, body, sig)
	if rec.Code != http.StatusOK {
		t.Fatalf("got %d, want 200", rec.Code)
	}
}
