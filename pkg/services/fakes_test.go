package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"shay-b-io/api/pkg/models"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// fakeProvider is the test double substituted for the payment provider
// capability.
type fakeProvider struct {
	mu sync.Mutex

	createCalls  int
	statusCalls  int
	uploadCalls  int
	sessionCalls int

	createDelay      time.Duration
	createErr        error
	statusErr        error
	failStatusTimes  int
	uploadErr        error
	sessionErr       error
	failSessionTimes int

	createStatus models.AccountStatus
	status       models.AccountStatus

	lastUploadAccount string
	lastUpload        models.DocumentUpload
	lastSession       ProviderCheckoutRequest
}

func (f *fakeProvider) CreateAccount(_ context.Context, _ models.OnboardingRequest) (string, models.AccountStatus, error) {
	f.mu.Lock()
	f.createCalls++
	n := f.createCalls
	delay := f.createDelay
	f.mu.Unlock()

	if delay > 0 {
		time.Sleep(delay)
	}
	if f.createErr != nil {
		return "", models.AccountStatus{}, f.createErr
	}

	return fmt.Sprintf("acct_fake_%d", n), f.createStatus, nil
}

func (f *fakeProvider) GetAccountStatus(_ context.Context, _ string) (models.AccountStatus, error) {
	f.mu.Lock()
	f.statusCalls++
	calls := f.statusCalls
	f.mu.Unlock()

	if f.statusErr != nil && (f.failStatusTimes == 0 || calls <= f.failStatusTimes) {
		return models.AccountStatus{}, f.statusErr
	}

	return f.status, nil
}

func (f *fakeProvider) UploadFile(_ context.Context, accountID string, doc models.DocumentUpload) (string, error) {
	f.mu.Lock()
	f.uploadCalls++
	f.lastUploadAccount = accountID
	f.lastUpload = doc
	n := f.uploadCalls
	f.mu.Unlock()

	if f.uploadErr != nil {
		return "", f.uploadErr
	}

	return fmt.Sprintf("file_fake_%d", n), nil
}

func (f *fakeProvider) CreateCheckoutSession(_ context.Context, req ProviderCheckoutRequest) (ProviderCheckoutResult, error) {
	f.mu.Lock()
	f.sessionCalls++
	f.lastSession = req
	n := f.sessionCalls
	f.mu.Unlock()

	if f.sessionErr != nil && (f.failSessionTimes == 0 || n <= f.failSessionTimes) {
		return ProviderCheckoutResult{}, f.sessionErr
	}

	return ProviderCheckoutResult{
		SessionID:   fmt.Sprintf("cs_fake_%d", n),
		RedirectURL: "https://pay.example.com/session",
	}, nil
}

// wrappingSellerRepository decorates a repository and wraps lookup
// failures with context, as a persistence layer adding call-site
// detail would.
type wrappingSellerRepository struct {
	inner SellerAccountRepository
}

func (r *wrappingSellerRepository) FindBySellerID(ctx context.Context, sellerID primitive.ObjectID) (*models.SellerAccount, error) {
	acct, err := r.inner.FindBySellerID(ctx, sellerID)
	if err != nil {
		return nil, errors.Wrap(err, "seller account lookup")
	}
	return acct, nil
}

func (r *wrappingSellerRepository) Upsert(ctx context.Context, account *models.SellerAccount) error {
	return r.inner.Upsert(ctx, account)
}

// fakeIdentityRegistry knows a fixed set of sellers.
type fakeIdentityRegistry struct {
	sellers map[primitive.ObjectID]*models.SellerIdentity
}

func newFakeIdentityRegistry(ids ...primitive.ObjectID) *fakeIdentityRegistry {
	sellers := make(map[primitive.ObjectID]*models.SellerIdentity)
	for _, id := range ids {
		sellers[id] = &models.SellerIdentity{ID: id, Email: "seller@example.com", IsSeller: true}
	}
	return &fakeIdentityRegistry{sellers: sellers}
}

func (f *fakeIdentityRegistry) GetSellerIdentity(_ context.Context, sellerID primitive.ObjectID) (*models.SellerIdentity, error) {
	identity, ok := f.sellers[sellerID]
	if !ok {
		return nil, models.ErrSellerNotFound
	}
	return identity, nil
}
