package services

import (
	"bytes"
	"context"
	"log"
	"strings"
	"time"

	"shay-b-io/api/pkg/models"

	"github.com/pkg/errors"
	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/account"
	"github.com/stripe/stripe-go/v76/checkout/session"
	"github.com/stripe/stripe-go/v76/file"
	"golang.org/x/sync/semaphore"
)

// StripeConfig carries the provider credentials and platform defaults.
// It is built from the environment by the container so the adapter
// itself never reads globals.
type StripeConfig struct {
	SecretKey           string
	Country             string
	Currency            string
	StatementDescriptor string
	PlatformURL         string
	CallTimeout         time.Duration
	MaxConcurrency      int64
}

// stripeProvider implements PaymentProvider on Stripe Connect custom
// accounts. Every call runs under a per-call timeout and a weighted
// semaphore bounding in-flight provider calls.
type stripeProvider struct {
	accounts    account.Client
	files       file.Client
	sessions    session.Client
	sem         *semaphore.Weighted
	callTimeout time.Duration
	cfg         StripeConfig
}

func NewStripeProvider(cfg StripeConfig) PaymentProvider {
	if !strings.HasPrefix(cfg.SecretKey, "sk_") {
		log.Println("WARNING: stripe secret key looks invalid or missing")
	}
	if cfg.CallTimeout <= 0 {
		cfg.CallTimeout = 30 * time.Second
	}
	if cfg.MaxConcurrency <= 0 {
		cfg.MaxConcurrency = 8
	}

	apiBackend := stripe.GetBackend(stripe.APIBackend)
	uploadsBackend := stripe.GetBackend(stripe.UploadsBackend)

	return &stripeProvider{
		accounts:    account.Client{B: apiBackend, Key: cfg.SecretKey},
		files:       file.Client{B: uploadsBackend, Key: cfg.SecretKey},
		sessions:    session.Client{B: apiBackend, Key: cfg.SecretKey},
		sem:         semaphore.NewWeighted(cfg.MaxConcurrency),
		callTimeout: cfg.CallTimeout,
		cfg:         cfg,
	}
}

func (p *stripeProvider) CreateAccount(ctx context.Context, req models.OnboardingRequest) (string, models.AccountStatus, error) {
	ctx, cancel, err := p.acquire(ctx, "create-account")
	if err != nil {
		return "", models.AccountStatus{}, err
	}
	defer cancel()

	businessType := req.BusinessType
	if businessType == "" {
		businessType = "individual"
	}
	website := req.Website
	if website == "" {
		website = p.cfg.PlatformURL
	}

	params := &stripe.AccountParams{
		Type:         stripe.String(string(stripe.AccountTypeCustom)),
		Country:      stripe.String(p.cfg.Country),
		Email:        stripe.String(req.Email),
		BusinessType: stripe.String(businessType),
		Capabilities: &stripe.AccountCapabilitiesParams{
			CardPayments: &stripe.AccountCapabilitiesCardPaymentsParams{Requested: stripe.Bool(true)},
			Transfers:    &stripe.AccountCapabilitiesTransfersParams{Requested: stripe.Bool(true)},
		},
		BusinessProfile: &stripe.AccountBusinessProfileParams{
			Name: stripe.String(req.FirstName + " " + req.LastName),
			URL:  stripe.String(website),
		},
		Individual: &stripe.PersonParams{
			FirstName: stripe.String(req.FirstName),
			LastName:  stripe.String(req.LastName),
			Email:     stripe.String(req.Email),
			Phone:     stripe.String(req.Phone),
			DOB: &stripe.PersonDOBParams{
				Day:   stripe.Int64(int64(req.DobDay)),
				Month: stripe.Int64(int64(req.DobMonth)),
				Year:  stripe.Int64(int64(req.DobYear)),
			},
			Address: &stripe.AddressParams{
				Line1:      stripe.String(req.AddressLine1),
				City:       stripe.String(req.AddressCity),
				PostalCode: stripe.String(req.AddressPostalCode),
				Country:    stripe.String(p.cfg.Country),
			},
		},
		ExternalAccount: &stripe.AccountExternalAccountParams{
			Country:       stripe.String(p.cfg.Country),
			Currency:      stripe.String(p.cfg.Currency),
			AccountNumber: stripe.String(req.NormalizedIBAN()),
		},
		Settings: &stripe.AccountSettingsParams{
			Payouts: &stripe.AccountSettingsPayoutsParams{
				Schedule: &stripe.AccountSettingsPayoutsScheduleParams{
					Interval: stripe.String("manual"),
				},
			},
			Payments: &stripe.AccountSettingsPaymentsParams{
				StatementDescriptor: stripe.String(p.cfg.StatementDescriptor),
			},
		},
	}
	if req.TOSAcceptanceIP != "" {
		params.TOSAcceptance = &stripe.AccountTOSAcceptanceParams{
			Date:             stripe.Int64(time.Now().Unix()),
			IP:               stripe.String(req.TOSAcceptanceIP),
			ServiceAgreement: stripe.String("full"),
		}
	}
	params.Context = ctx

	acct, err := p.accounts.New(params)
	if err != nil {
		return "", models.AccountStatus{}, classifyStripeError("create-account", err)
	}

	return acct.ID, statusFromAccount(acct), nil
}

func (p *stripeProvider) GetAccountStatus(ctx context.Context, accountID string) (models.AccountStatus, error) {
	ctx, cancel, err := p.acquire(ctx, "get-account-status")
	if err != nil {
		return models.AccountStatus{}, err
	}
	defer cancel()

	params := &stripe.AccountParams{}
	params.Context = ctx

	acct, err := p.accounts.GetByID(accountID, params)
	if err != nil {
		return models.AccountStatus{}, classifyStripeError("get-account-status", err)
	}

	return statusFromAccount(acct), nil
}

func (p *stripeProvider) UploadFile(ctx context.Context, accountID string, doc models.DocumentUpload) (string, error) {
	ctx, cancel, err := p.acquire(ctx, "upload-file")
	if err != nil {
		return "", err
	}
	defer cancel()

	params := &stripe.FileParams{
		FileReader: bytes.NewReader(doc.Data),
		Filename:   stripe.String(doc.FileName),
		Purpose:    stripe.String(stripeFilePurpose(doc.Purpose)),
	}
	params.Context = ctx
	params.SetStripeAccount(accountID)

	f, err := p.files.New(params)
	if err != nil {
		return "", classifyStripeError("upload-file", err)
	}

	return f.ID, nil
}

func (p *stripeProvider) CreateCheckoutSession(ctx context.Context, req ProviderCheckoutRequest) (ProviderCheckoutResult, error) {
	ctx, cancel, err := p.acquire(ctx, "create-checkout-session")
	if err != nil {
		return ProviderCheckoutResult{}, err
	}
	defer cancel()

	lineItems := []*stripe.CheckoutSessionLineItemParams{
		{
			Quantity: stripe.Int64(1),
			PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
				Currency:   stripe.String(req.Currency),
				UnitAmount: stripe.Int64(int64(req.UnitAmount)),
				ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
					Name: stripe.String(req.ProductName),
				},
			},
		},
	}
	if req.ShippingFee.IsPositive() {
		lineItems = append(lineItems, &stripe.CheckoutSessionLineItemParams{
			Quantity: stripe.Int64(1),
			PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
				Currency:   stripe.String(req.Currency),
				UnitAmount: stripe.Int64(int64(req.ShippingFee)),
				ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
					Name: stripe.String("Shipping"),
				},
			},
		})
	}

	params := &stripe.CheckoutSessionParams{
		Mode:               stripe.String(string(stripe.CheckoutSessionModePayment)),
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
		ClientReferenceID:  stripe.String(req.ClientReferenceID),
		SuccessURL:         stripe.String(req.SuccessURL),
		CancelURL:          stripe.String(req.CancelURL),
		LineItems:          lineItems,
	}

	// Destination charge: funds land in the seller's account, the
	// platform fee is captured as an application fee.
	if req.Topology == models.TopologySellerCollectsWithFee {
		params.PaymentIntentData = &stripe.CheckoutSessionPaymentIntentDataParams{
			ApplicationFeeAmount: stripe.Int64(int64(req.ApplicationFee)),
			TransferData: &stripe.CheckoutSessionPaymentIntentDataTransferDataParams{
				Destination: stripe.String(req.DestinationAccountID),
			},
		}
	}
	params.Context = ctx

	sess, err := p.sessions.New(params)
	if err != nil {
		return ProviderCheckoutResult{}, classifyStripeError("create-checkout-session", err)
	}

	return ProviderCheckoutResult{SessionID: sess.ID, RedirectURL: sess.URL}, nil
}

// acquire bounds provider-call concurrency and applies the per-call
// timeout. The returned cancel also releases the semaphore slot.
func (p *stripeProvider) acquire(ctx context.Context, op string) (context.Context, context.CancelFunc, error) {
	if err := p.sem.Acquire(ctx, 1); err != nil {
		return nil, nil, &models.TransientError{Op: op, Err: err}
	}

	ctx, cancel := context.WithTimeout(ctx, p.callTimeout)
	return ctx, func() {
		cancel()
		p.sem.Release(1)
	}, nil
}

func statusFromAccount(acct *stripe.Account) models.AccountStatus {
	status := models.AccountStatus{
		ChargesEnabled: acct.ChargesEnabled,
		PayoutsEnabled: acct.PayoutsEnabled,
	}

	if acct.Requirements != nil {
		status.PendingRequirements = acct.Requirements.CurrentlyDue
		status.DisabledReason = string(acct.Requirements.DisabledReason)
		if acct.Requirements.CurrentDeadline > 0 {
			deadline := time.Unix(acct.Requirements.CurrentDeadline, 0).UTC()
			status.ReviewDeadline = &deadline
		}
	}

	return status
}

func stripeFilePurpose(purpose models.DocumentPurpose) string {
	if purpose == models.PurposeAdditional {
		return string(stripe.FilePurposeAdditionalVerification)
	}
	return string(stripe.FilePurposeIdentityDocument)
}

// classifyStripeError splits failures into provider rejections, which
// are surfaced with the provider's own detail and never auto-retried,
// and transient transport failures, which idempotent reads may retry.
func classifyStripeError(op string, err error) error {
	var stripeErr *stripe.Error
	if errors.As(err, &stripeErr) {
		return &models.ProviderError{Op: op, Detail: stripeErr.Msg, Err: err}
	}

	return &models.TransientError{Op: op, Err: err}
}
