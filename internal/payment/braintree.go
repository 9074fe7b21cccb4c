package payment

import (
	"context"
	"fmt"

	"storefront/internal/config"

	"github.com/braintree-go/braintree-go"
	"github.com/shopspring/decimal"
)

type braintreeGateway struct {
	bt *braintree.Braintree
}

// NewBraintree creates a Gateway backed by the Braintree SDK
func NewBraintree(cfg config.BraintreeConfig) Gateway {
	env := braintree.Sandbox
	if cfg.Environment == "production" {
		env = braintree.Production
	}

	return &braintreeGateway{
		bt: braintree.New(env, cfg.MerchantID, cfg.PublicKey, cfg.PrivateKey),
	}
}

func (g *braintreeGateway) ClientToken(ctx context.Context) (string, error) {
	token, err := g.bt.ClientToken().Generate(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to generate client token: %w", err)
	}
	return token, nil
}

func (g *braintreeGateway) Sale(ctx context.Context, amount decimal.Decimal, nonce string) (*Result, error) {
	// Braintree decimals carry an unscaled value and a scale; amounts are
	// already truncated to 2 places upstream.
	btAmount := braintree.NewDecimal(amount.Shift(2).IntPart(), 2)

	tx, err := g.bt.Transaction().Create(ctx, &braintree.TransactionRequest{
		Type:               "sale",
		Amount:             btAmount,
		PaymentMethodNonce: nonce,
		Options: &braintree.TransactionOptions{
			SubmitForSettlement: true,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("payment failed: %w", err)
	}

	return &Result{
		TransactionID: tx.Id,
		Success:       true,
		Message:       string(tx.Status),
	}, nil
}
