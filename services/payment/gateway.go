package payment

import (
	"fmt"
	"math"
	"strings"

	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/paymentintent"

	"stayhub/models"
)

// TransferGateway issues references for bank-transfer style payments. The
// payer scans a QR code or keys in the reference at their bank; the provider
// later calls the webhook with the same reference and the amount received.
type TransferGateway struct {
	// QRBaseURL is the template endpoint that renders a scannable code for
	// a reference, e.g. "https://pay.example.com/qr".
	QRBaseURL string
}

// IssueReference builds a reference unique per session from the booking code
// plus a random suffix. Retried opens get fresh references, so a confirmation
// always pins down exactly one session.
func (g *TransferGateway) IssueReference(bookingID, bookingCode string, amount float64) (*models.PaymentReference, error) {
	suffix := strings.ToUpper(uuid.New().String()[:8])
	ref := fmt.Sprintf("%s-%s", bookingCode, suffix)

	qr := ""
	if g.QRBaseURL != "" {
		qr = fmt.Sprintf("%s?ref=%s&amount=%.2f", g.QRBaseURL, ref, amount)
	}
	return &models.PaymentReference{Reference: ref, QRCodeURL: qr}, nil
}

// StripeGateway issues references backed by Stripe PaymentIntents. The intent
// ID doubles as the session reference reported back by the webhook.
type StripeGateway struct {
	Currency string
}

func (g *StripeGateway) IssueReference(bookingID, bookingCode string, amount float64) (*models.PaymentReference, error) {
	currency := g.Currency
	if currency == "" {
		currency = string(stripe.CurrencyUSD)
	}

	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(int64(math.Round(amount * 100))),
		Currency: stripe.String(currency),
	}
	params.AddMetadata("booking_id", bookingID)
	params.AddMetadata("booking_code", bookingCode)

	pi, err := paymentintent.New(params)
	if err != nil {
		return nil, fmt.Errorf("failed to create payment intent for booking %s: %w", bookingID, err)
	}
	return &models.PaymentReference{Reference: pi.ID}, nil
}

// NewGateway selects the gateway for the configured provider. Unknown
// providers fall back to bank transfer so a misconfigured deployment still
// issues payable references.
func NewGateway(provider string) Gateway {
	switch provider {
	case "stripe":
		return &StripeGateway{}
	default:
		return &TransferGateway{}
	}
}
