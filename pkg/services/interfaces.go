package services

import (
	"context"

	"shay-b-io/api/pkg/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ProviderCheckoutRequest is the provider-facing input for a hosted
// checkout session, already carrying the computed split.
type ProviderCheckoutRequest struct {
	ProductName          string
	Currency             string
	ClientReferenceID    string
	SuccessURL           string
	CancelURL            string
	UnitAmount           models.Money
	ShippingFee          models.Money
	ApplicationFee       models.Money
	DestinationAccountID string
	Topology             models.CheckoutTopology
}

// ProviderCheckoutResult is the provider's opaque handle on a created
// session plus the hosted-payment redirect URL.
type ProviderCheckoutResult struct {
	SessionID   string
	RedirectURL string
}

// PaymentProvider is the capability interface over the external payment
// processor. The core only ever sees opaque account, file and session
// ids through it; implementations classify failures into
// models.ProviderError vs models.TransientError.
type PaymentProvider interface {
	CreateAccount(ctx context.Context, req models.OnboardingRequest) (accountID string, status models.AccountStatus, err error)
	GetAccountStatus(ctx context.Context, accountID string) (models.AccountStatus, error)
	UploadFile(ctx context.Context, accountID string, doc models.DocumentUpload) (fileID string, err error)
	CreateCheckoutSession(ctx context.Context, req ProviderCheckoutRequest) (ProviderCheckoutResult, error)
}

// IdentityRegistry is the read-only seller lookup owned by the external
// user-identity system.
type IdentityRegistry interface {
	GetSellerIdentity(ctx context.Context, sellerID primitive.ObjectID) (*models.SellerIdentity, error)
}

// SellerAccountRepository owns SellerAccount records. Writes fully
// replace the cached provider status fields so concurrent refreshes
// stay last-write-wins. Records are never deleted; a restricted account
// remains a historical record.
type SellerAccountRepository interface {
	FindBySellerID(ctx context.Context, sellerID primitive.ObjectID) (*models.SellerAccount, error)
	Upsert(ctx context.Context, account *models.SellerAccount) error
}

// OnboardingService drives a seller account through the verification
// lifecycle against the payment provider.
type OnboardingService interface {
	CreateAccount(ctx context.Context, sellerID primitive.ObjectID, req models.OnboardingRequest) (*models.SellerAccount, error)
	RefreshStatus(ctx context.Context, sellerID primitive.ObjectID) (*models.SellerAccount, error)
	GetAccount(ctx context.Context, sellerID primitive.ObjectID) (*models.SellerAccount, error)
	BindDocument(ctx context.Context, sellerID primitive.ObjectID, fileID, requirementCode string) (*models.SellerAccount, error)
}

// DocumentService binds uploaded identity documents to the pending
// onboarding requirement they satisfy.
type DocumentService interface {
	UploadDocument(ctx context.Context, sellerID primitive.ObjectID, doc models.DocumentUpload) (fileID string, err error)
}

// CheckoutService orchestrates split computation and provider checkout
// session creation.
type CheckoutService interface {
	CreateCheckoutSession(ctx context.Context, req models.CheckoutRequest) (*models.CheckoutSession, error)
}
