package services

import (
	"context"
	"log"

	"shay-b-io/api/internal/common"
	"shay-b-io/api/pkg/models"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type checkoutService struct {
	provider   PaymentProvider
	onboarding OnboardingService
	splitCfg   models.SplitConfig
	successURL string
	cancelURL  string
}

func NewCheckoutService(provider PaymentProvider, onboarding OnboardingService, splitCfg models.SplitConfig, successURL, cancelURL string) CheckoutService {
	return &checkoutService{
		provider:   provider,
		onboarding: onboarding,
		splitCfg:   splitCfg,
		successURL: successURL,
		cancelURL:  cancelURL,
	}
}

// CreateCheckoutSession computes the order split, picks the funds
// topology and submits the provider session request. When a seller is
// referenced their verification is re-checked against the provider at
// this moment; a cached verified flag from an earlier page load is
// never sufficient, and an unverified seller is a hard conflict rather
// than a silent fallback to platform collection.
func (s *checkoutService) CreateCheckoutSession(ctx context.Context, req models.CheckoutRequest) (*models.CheckoutSession, error) {
	split, err := models.ComputeOrderSplit(req.Amount, req.ShippingFee, s.splitCfg)
	if err != nil {
		return nil, err
	}

	topology := models.TopologyPlatformCollects
	destination := ""
	if req.SellerID != "" {
		sellerID, err := primitive.ObjectIDFromHex(req.SellerID)
		if err != nil {
			return nil, &models.InputValidationError{
				Message: "seller id appeared to be invalid",
				Field:   "sellerId",
				Tag:     "bad_id",
			}
		}

		acct, err := s.onboarding.RefreshStatus(ctx, sellerID)
		if err != nil {
			return nil, err
		}
		if acct.State != models.AccountStateVerified {
			return nil, models.NewStateConflict("checkout", acct.State, "")
		}

		topology = models.TopologySellerCollectsWithFee
		destination = acct.ProviderAccountID
	}

	currency := req.Currency
	if currency == "" {
		currency = s.splitCfg.Currency
	}
	productName := req.ProductName
	if productName == "" {
		productName = "Order"
	}
	reference := req.OrderReference
	if reference == "" {
		reference = uuid.NewString()
	}
	successURL := req.SuccessURL
	if successURL == "" {
		successURL = s.successURL
	}
	cancelURL := req.CancelURL
	if cancelURL == "" {
		cancelURL = s.cancelURL
	}

	providerReq := ProviderCheckoutRequest{
		ProductName:          productName,
		Currency:             currency,
		ClientReferenceID:    reference,
		SuccessURL:           successURL,
		CancelURL:            cancelURL,
		UnitAmount:           split.GrossAmount,
		ShippingFee:          split.ShippingFee,
		ApplicationFee:       split.PlatformFee,
		DestinationAccountID: destination,
		Topology:             topology,
	}

	// Session creation mints a fresh artifact each attempt, so a
	// transient failure is safe to retry, unlike account creation.
	var result ProviderCheckoutResult
	operation := func() error {
		var opErr error
		result, opErr = s.provider.CreateCheckoutSession(ctx, providerReq)
		if opErr != nil && !models.IsTransientError(opErr) {
			return backoff.Permanent(opErr)
		}
		return opErr
	}

	policy := backoff.WithMaxRetries(backoff.NewExponentialBackOff(), common.STATUS_RETRY_MAX)
	if err := backoff.Retry(operation, backoff.WithContext(policy, ctx)); err != nil {
		return nil, err
	}

	log.Printf("created checkout session %s for order %s (%s, payout %s)",
		result.SessionID, reference, topology, split.SellerPayout)

	// The session is not persisted locally; from here on it exists
	// only under the provider's session id.
	return &models.CheckoutSession{
		SessionID:      result.SessionID,
		RedirectURL:    result.RedirectURL,
		OrderReference: reference,
		Topology:       topology,
		Split:          split,
	}, nil
}
