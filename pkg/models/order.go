package models

import (
	"fmt"

	"github.com/pkg/errors"
)

type CheckoutTopology string

const (
	// TopologyPlatformCollects routes the full gross amount to the
	// platform's own account; the seller is paid out of band later.
	TopologyPlatformCollects CheckoutTopology = "platform_collects"
	// TopologySellerCollectsWithFee lands funds directly in the
	// seller's provider account and captures the platform fee as an
	// application fee at the payment layer.
	TopologySellerCollectsWithFee CheckoutTopology = "seller_collects_with_fee"
)

func (CheckoutTopology) ParseCheckoutTopology(topology string) (CheckoutTopology, error) {
	switch topology {
	case "platform_collects":
		return TopologyPlatformCollects, nil
	case "seller_collects_with_fee":
		return TopologySellerCollectsWithFee, nil
	}

	return TopologyPlatformCollects, fmt.Errorf("invalid checkout topology from request: %v", topology)
}

// SplitConfig holds the fee parameters applied to every order.
type SplitConfig struct {
	// FeeBps is the platform percentage fee in basis points (800 = 8%).
	FeeBps int64
	// FixedFee is the flat platform fee added on top of the percentage.
	FixedFee Money
	// FlatShippingFee is used when the caller does not supply one.
	FlatShippingFee Money
	// ShippingReducesPayout deducts shipping from the seller payout
	// instead of adding it to the buyer total. Off by default.
	ShippingReducesPayout bool
	Currency              string
}

// OrderSplit is the computed division of an order total between the
// platform and the seller. It is a per-request value, never persisted.
type OrderSplit struct {
	GrossAmount  Money `json:"grossAmount"`
	PlatformFee  Money `json:"platformFee"`
	ShippingFee  Money `json:"shippingFee"`
	SellerPayout Money `json:"sellerPayout"`
	BuyerTotal   Money `json:"buyerTotal"`
}

// ComputeOrderSplit derives the platform fee, shipping fee and seller
// payout from an order total. Pure integer arithmetic; the percentage
// fee rounds toward the platform so it is never under-collected.
func ComputeOrderSplit(gross Money, shipping Money, cfg SplitConfig) (OrderSplit, error) {
	if !gross.IsPositive() {
		return OrderSplit{}, errors.Wrapf(ErrInvalidAmount, "gross amount must be positive, got %s", gross)
	}
	if shipping.IsNegative() {
		return OrderSplit{}, errors.Wrapf(ErrInvalidAmount, "shipping fee cannot be negative, got %s", shipping)
	}
	if shipping == 0 {
		shipping = cfg.FlatShippingFee
	}

	platformFee := gross.PercentCeil(cfg.FeeBps).Add(cfg.FixedFee)
	payout := gross.Sub(platformFee)
	if payout.IsNegative() {
		return OrderSplit{}, errors.Wrapf(ErrInvalidAmount, "platform fee %s exceeds gross amount %s", platformFee, gross)
	}

	buyerTotal := gross.Add(shipping)
	if cfg.ShippingReducesPayout {
		buyerTotal = gross
		payout = payout.Sub(shipping)
		if payout.IsNegative() {
			return OrderSplit{}, errors.Wrapf(ErrInvalidAmount, "fees and shipping %s exceed gross amount %s", platformFee.Add(shipping), gross)
		}
	}

	return OrderSplit{
		GrossAmount:  gross,
		PlatformFee:  platformFee,
		ShippingFee:  shipping,
		SellerPayout: payout,
		BuyerTotal:   buyerTotal,
	}, nil
}

// CheckoutRequest is the caller-facing input to the checkout
// orchestrator.
type CheckoutRequest struct {
	SellerID       string `json:"sellerId"`
	OrderReference string `json:"orderReference"`
	ProductName    string `json:"productName"`
	Amount         Money  `json:"amount"`
	ShippingFee    Money  `json:"shippingFee"`
	Currency       string `json:"currency"`
	SuccessURL     string `json:"successUrl"`
	CancelURL      string `json:"cancelUrl"`
}

// CheckoutSession is the provider-hosted payment session created for an
// order. Immutable once submitted; identified afterwards only by the
// provider's opaque session id.
type CheckoutSession struct {
	SessionID      string           `json:"sessionId"`
	RedirectURL    string           `json:"redirectUrl"`
	OrderReference string           `json:"orderReference"`
	Topology       CheckoutTopology `json:"topology"`
	Split          OrderSplit       `json:"split"`
}
