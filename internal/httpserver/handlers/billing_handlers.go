package handlers

import (
	"encoding/json"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/stripe/stripe-go/v76"
	checkoutsession "github.com/stripe/stripe-go/v76/checkout/session"
	"github.com/stripe/stripe-go/v76/webhook"
	"go.uber.org/zap"

	"accredia/internal/auth"
	"accredia/internal/tier"
)

// priceWhitelist parses STRIPE_PRICE_IDS, a CSV of "price_id" or
// "price_id:tier" entries. Unknown price ids are rejected outright.
func priceWhitelist() map[string]string {
	out := map[string]string{}
	for _, entry := range strings.Split(os.Getenv("STRIPE_PRICE_IDS"), ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		if id, t, ok := strings.Cut(entry, ":"); ok {
			out[id] = t
		} else {
			out[entry] = entry
		}
	}
	return out
}

// Checkout creates a payment-processor checkout session for a whitelisted
// price and returns its redirect URL.
func Checkout(lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			PriceID string `json:"priceId"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		tierName, ok := priceWhitelist()[req.PriceID]
		if !ok {
			respondError(w, http.StatusBadRequest, "unknown price id")
			return
		}
		stripe.Key = os.Getenv("STRIPE_SECRET_KEY")
		base := os.Getenv("APP_BASE_URL")
		if base == "" {
			base = "http://localhost:8080"
		}
		email := auth.Email(r.Context())
		params := &stripe.CheckoutSessionParams{
			Mode:          stripe.String(string(stripe.CheckoutSessionModeSubscription)),
			CustomerEmail: stripe.String(email),
			LineItems: []*stripe.CheckoutSessionLineItemParams{
				{Price: stripe.String(req.PriceID), Quantity: stripe.Int64(1)},
			},
			SuccessURL: stripe.String(base + "/billing/success"),
			CancelURL:  stripe.String(base + "/billing/cancel"),
		}
		params.AddMetadata("tier", tierName)
		sess, err := checkoutsession.New(params)
		if err != nil {
			lg.Errorw("checkout session create failed", "error", err)
			respondError(w, http.StatusInternalServerError, "internal error")
			return
		}
		respondData(w, map[string]any{"url": sess.URL})
	}
}

// Webhook verifies the payment processor's signature and records the
// purchased tier on checkout completion. Unauthenticated by design: the
// signature is the authentication.
func Webhook(tiers tier.Store, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		payload, err := io.ReadAll(http.MaxBytesReader(w, r.Body, 1<<20))
		if err != nil {
			respondError(w, http.StatusBadRequest, "unreadable payload")
			return
		}
		event, err := webhook.ConstructEvent(payload, r.Header.Get("Stripe-Signature"),
			os.Getenv("STRIPE_WEBHOOK_SECRET"))
		if err != nil {
			respondError(w, http.StatusBadRequest, "signature verification failed")
			return
		}
		if event.Type == "checkout.session.completed" {
			var sess stripe.CheckoutSession
			if err := json.Unmarshal(event.Data.Raw, &sess); err != nil {
				respondError(w, http.StatusBadRequest, "malformed event payload")
				return
			}
			email := sess.CustomerEmail
			if email == "" && sess.CustomerDetails != nil {
				email = sess.CustomerDetails.Email
			}
			tierName := sess.Metadata["tier"]
			if email != "" && tierName != "" {
				if err := tiers.Upsert(email, tierName); err != nil {
					lg.Errorw("tier upsert failed", "email", email, "error", err)
					respondError(w, http.StatusInternalServerError, "internal error")
					return
				}
				lg.Infow("tier recorded", "email", email, "tier", tierName)
			}
		}
		respondData(w, map[string]any{"received": true})
	}
}

// MyTier reports the caller's recorded billing tier.
func MyTier(tiers tier.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		t, ok := tiers.Get(auth.Email(r.Context()))
		if !ok {
			t = "free"
		}
		respondData(w, map[string]any{"tier": t})
	}
}
