package payment

import (
	"context"

	"github.com/shopspring/decimal"
)

// Result is the gateway's answer to a sale attempt
type Result struct {
	TransactionID string
	Success       bool
	Message       string
}

// Gateway abstracts the payment provider so checkout can be exercised
// without the network
type Gateway interface {
	// ClientToken returns a token the browser SDK uses to collect a
	// payment method nonce.
	ClientToken(ctx context.Context) (string, error)
	// Sale charges the given amount against a payment method nonce.
	Sale(ctx context.Context, amount decimal.Decimal, nonce string) (*Result, error)
}
