package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"shay-b-io/api/pkg/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func validOnboardingRequest() models.OnboardingRequest {
	return models.OnboardingRequest{
		FirstName:         "Amina",
		LastName:          "Diallo",
		Email:             "amina@example.com",
		Phone:             "+33612345678",
		DobDay:            14,
		DobMonth:          7,
		DobYear:           1992,
		AddressLine1:      "12 rue de la Paix",
		AddressCity:       "Paris",
		AddressPostalCode: "75002",
		IBAN:              "FR76 3000 6000 0112 3456 7890 189",
	}
}

func newTestOnboarding(provider *fakeProvider) (OnboardingService, SellerAccountRepository, primitive.ObjectID) {
	sellerID := primitive.NewObjectID()
	registry := NewMemorySellerRepository()
	service := NewOnboardingService(provider, registry, newFakeIdentityRegistry(sellerID))
	return service, registry, sellerID
}

func TestCreateAccountMovesToPendingDocument(t *testing.T) {
	provider := &fakeProvider{
		createStatus: models.AccountStatus{
			PendingRequirements: []string{"individual.verification.document"},
		},
	}
	service, registry, sellerID := newTestOnboarding(provider)

	acct, err := service.CreateAccount(context.Background(), sellerID, validOnboardingRequest())
	require.NoError(t, err)

	assert.Equal(t, models.AccountStatePendingDocument, acct.State)
	assert.Equal(t, "acct_fake_1", acct.ProviderAccountID)

	stored, err := registry.FindBySellerID(context.Background(), sellerID)
	require.NoError(t, err)
	assert.Equal(t, acct.ProviderAccountID, stored.ProviderAccountID)
}

func TestCreateAccountMovesToPendingReview(t *testing.T) {
	provider := &fakeProvider{createStatus: models.AccountStatus{}}
	service, _, sellerID := newTestOnboarding(provider)

	acct, err := service.CreateAccount(context.Background(), sellerID, validOnboardingRequest())
	require.NoError(t, err)

	assert.Equal(t, models.AccountStatePendingReview, acct.State)
}

func TestCreateAccountNeverReturnsVerified(t *testing.T) {
	// Even a provider claiming full capabilities at creation time does
	// not short-circuit review.
	provider := &fakeProvider{
		createStatus: models.AccountStatus{ChargesEnabled: true, PayoutsEnabled: true},
	}
	service, _, sellerID := newTestOnboarding(provider)

	acct, err := service.CreateAccount(context.Background(), sellerID, validOnboardingRequest())
	require.NoError(t, err)

	assert.Equal(t, models.AccountStatePendingReview, acct.State)
}

func TestCreateAccountSeesThroughWrappedLookupErrors(t *testing.T) {
	// A repository that wraps its not-registered sentinel must not
	// break the registration pre-check in either direction: a wrapped
	// miss still reads as unregistered, and a wrapped hit still blocks
	// a second registration.
	provider := &fakeProvider{createStatus: models.AccountStatus{}}
	sellerID := primitive.NewObjectID()
	registry := &wrappingSellerRepository{inner: NewMemorySellerRepository()}
	service := NewOnboardingService(provider, registry, newFakeIdentityRegistry(sellerID))

	acct, err := service.CreateAccount(context.Background(), sellerID, validOnboardingRequest())
	require.NoError(t, err)
	assert.Equal(t, models.AccountStatePendingReview, acct.State)
	assert.Equal(t, 1, provider.createCalls)

	_, err = service.CreateAccount(context.Background(), sellerID, validOnboardingRequest())
	require.Error(t, err)
	assert.True(t, models.IsStateConflict(err))
	assert.Equal(t, 1, provider.createCalls)
}

func TestCreateAccountNonDocumentRequirementsMeanReview(t *testing.T) {
	// Creation terminates in document collection or review only.
	// Outstanding profile fields at creation time do not send a brand
	// new account back to info collection; that state is reachable
	// through refresh alone.
	provider := &fakeProvider{
		createStatus: models.AccountStatus{
			PendingRequirements: []string{"individual.dob.day", "individual.address.line1"},
		},
	}
	service, _, sellerID := newTestOnboarding(provider)

	acct, err := service.CreateAccount(context.Background(), sellerID, validOnboardingRequest())
	require.NoError(t, err)

	assert.Equal(t, models.AccountStatePendingReview, acct.State)
	assert.Equal(t, []string{"individual.dob.day", "individual.address.line1"}, acct.PendingRequirements)
}

func TestCreateAccountRejectsBadPostalCodeBeforeProviderCall(t *testing.T) {
	provider := &fakeProvider{}
	service, registry, sellerID := newTestOnboarding(provider)

	req := validOnboardingRequest()
	req.AddressPostalCode = "ABCDE"

	_, err := service.CreateAccount(context.Background(), sellerID, req)
	require.Error(t, err)
	assert.True(t, models.IsValidationError(err))
	assert.Equal(t, 0, provider.createCalls, "provider must not be called for invalid input")

	_, err = registry.FindBySellerID(context.Background(), sellerID)
	assert.ErrorIs(t, err, models.ErrAccountNotRegistered)
}

func TestCreateAccountUnknownSeller(t *testing.T) {
	provider := &fakeProvider{}
	registry := NewMemorySellerRepository()
	service := NewOnboardingService(provider, registry, newFakeIdentityRegistry())

	_, err := service.CreateAccount(context.Background(), primitive.NewObjectID(), validOnboardingRequest())
	assert.ErrorIs(t, err, models.ErrSellerNotFound)
	assert.Equal(t, 0, provider.createCalls)
}

func TestCreateAccountProviderRejectionPersistsNothing(t *testing.T) {
	provider := &fakeProvider{
		createErr: &models.ProviderError{Op: "create-account", Detail: "invalid bank account"},
	}
	service, registry, sellerID := newTestOnboarding(provider)

	_, err := service.CreateAccount(context.Background(), sellerID, validOnboardingRequest())
	require.Error(t, err)
	assert.True(t, models.IsProviderError(err))

	_, err = registry.FindBySellerID(context.Background(), sellerID)
	assert.ErrorIs(t, err, models.ErrAccountNotRegistered)
}

func TestCreateAccountTimeoutNotRetried(t *testing.T) {
	provider := &fakeProvider{
		createErr: &models.TransientError{Op: "create-account", Err: context.DeadlineExceeded},
	}
	service, _, sellerID := newTestOnboarding(provider)

	_, err := service.CreateAccount(context.Background(), sellerID, validOnboardingRequest())
	require.Error(t, err)
	assert.True(t, models.IsTransientError(err))
	assert.Equal(t, 1, provider.createCalls, "a timed-out account creation must not be retried")
}

func TestCreateAccountDuplicateIsStateConflict(t *testing.T) {
	provider := &fakeProvider{}
	service, _, sellerID := newTestOnboarding(provider)

	_, err := service.CreateAccount(context.Background(), sellerID, validOnboardingRequest())
	require.NoError(t, err)

	_, err = service.CreateAccount(context.Background(), sellerID, validOnboardingRequest())
	require.Error(t, err)
	assert.True(t, models.IsStateConflict(err))
	assert.Equal(t, 1, provider.createCalls)
}

func TestConcurrentCreateAccountCreatesExactlyOneProviderAccount(t *testing.T) {
	provider := &fakeProvider{createDelay: 50 * time.Millisecond}
	service, _, sellerID := newTestOnboarding(provider)

	const callers = 8
	accounts := make([]*models.SellerAccount, callers)
	errs := make([]error, callers)

	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			accounts[i], errs[i] = service.CreateAccount(context.Background(), sellerID, validOnboardingRequest())
		}(i)
	}
	wg.Wait()

	seen := map[string]bool{}
	for i := 0; i < callers; i++ {
		if errs[i] != nil {
			// Latecomers that missed the shared flight get a conflict,
			// never a second distinct provider account.
			assert.True(t, models.IsStateConflict(errs[i]), "unexpected error: %v", errs[i])
			continue
		}
		seen[accounts[i].ProviderAccountID] = true
	}

	assert.Equal(t, 1, provider.createCalls, "exactly one provider account must be created")
	assert.Len(t, seen, 1)
}

func TestRefreshStatusOverwritesCachedState(t *testing.T) {
	provider := &fakeProvider{createStatus: models.AccountStatus{}}
	service, _, sellerID := newTestOnboarding(provider)

	_, err := service.CreateAccount(context.Background(), sellerID, validOnboardingRequest())
	require.NoError(t, err)

	provider.status = models.AccountStatus{ChargesEnabled: true, PayoutsEnabled: true}
	acct, err := service.RefreshStatus(context.Background(), sellerID)
	require.NoError(t, err)
	assert.Equal(t, models.AccountStateVerified, acct.State)

	// The provider later restricts the account; the stale verified flag
	// must be gone after the next refresh.
	provider.status = models.AccountStatus{
		ChargesEnabled: true,
		PayoutsEnabled: true,
		DisabledReason: "requirements.past_due",
	}
	acct, err = service.RefreshStatus(context.Background(), sellerID)
	require.NoError(t, err)
	assert.Equal(t, models.AccountStateRestricted, acct.State)

	// And a cleared restriction re-enters the verified path.
	provider.status = models.AccountStatus{ChargesEnabled: true, PayoutsEnabled: true}
	acct, err = service.RefreshStatus(context.Background(), sellerID)
	require.NoError(t, err)
	assert.Equal(t, models.AccountStateVerified, acct.State)
}

func TestRefreshStatusIdempotent(t *testing.T) {
	provider := &fakeProvider{createStatus: models.AccountStatus{}}
	service, _, sellerID := newTestOnboarding(provider)

	_, err := service.CreateAccount(context.Background(), sellerID, validOnboardingRequest())
	require.NoError(t, err)

	deadline := time.Date(2026, 9, 30, 0, 0, 0, 0, time.UTC)
	provider.status = models.AccountStatus{
		PendingRequirements: []string{"individual.verification.document"},
		ReviewDeadline:      &deadline,
	}

	first, err := service.RefreshStatus(context.Background(), sellerID)
	require.NoError(t, err)
	second, err := service.RefreshStatus(context.Background(), sellerID)
	require.NoError(t, err)

	assert.Equal(t, first.State, second.State)
	assert.Equal(t, first.PendingRequirements, second.PendingRequirements)
	assert.Equal(t, first.ReviewDeadline, second.ReviewDeadline)
}

func TestRefreshStatusRetriesTransientFailures(t *testing.T) {
	provider := &fakeProvider{
		createStatus:    models.AccountStatus{},
		statusErr:       &models.TransientError{Op: "get-account-status", Err: context.DeadlineExceeded},
		failStatusTimes: 2,
		status:          models.AccountStatus{ChargesEnabled: true, PayoutsEnabled: true},
	}
	service, _, sellerID := newTestOnboarding(provider)

	_, err := service.CreateAccount(context.Background(), sellerID, validOnboardingRequest())
	require.NoError(t, err)

	acct, err := service.RefreshStatus(context.Background(), sellerID)
	require.NoError(t, err)
	assert.Equal(t, models.AccountStateVerified, acct.State)
	assert.Equal(t, 3, provider.statusCalls)
}

func TestRefreshStatusDoesNotRetryProviderRejection(t *testing.T) {
	provider := &fakeProvider{
		createStatus: models.AccountStatus{},
		statusErr:    &models.ProviderError{Op: "get-account-status", Detail: "no such account"},
	}
	service, _, sellerID := newTestOnboarding(provider)

	_, err := service.CreateAccount(context.Background(), sellerID, validOnboardingRequest())
	require.NoError(t, err)

	_, err = service.RefreshStatus(context.Background(), sellerID)
	require.Error(t, err)
	assert.True(t, models.IsProviderError(err))
	assert.Equal(t, 1, provider.statusCalls)
}

func TestRefreshStatusUnregisteredSeller(t *testing.T) {
	provider := &fakeProvider{}
	service, _, _ := newTestOnboarding(provider)

	_, err := service.RefreshStatus(context.Background(), primitive.NewObjectID())
	assert.ErrorIs(t, err, models.ErrAccountNotRegistered)
}

func TestBindDocumentAdvancesToPendingReview(t *testing.T) {
	provider := &fakeProvider{
		createStatus: models.AccountStatus{
			PendingRequirements: []string{"individual.verification.document", "individual.dob.day"},
		},
	}
	service, _, sellerID := newTestOnboarding(provider)

	_, err := service.CreateAccount(context.Background(), sellerID, validOnboardingRequest())
	require.NoError(t, err)

	acct, err := service.BindDocument(context.Background(), sellerID, "file_1", "individual.verification.document")
	require.NoError(t, err)

	assert.Equal(t, models.AccountStatePendingReview, acct.State)
	assert.Equal(t, []string{"individual.dob.day"}, acct.PendingRequirements)
}

func TestBindDocumentUnregisteredSeller(t *testing.T) {
	provider := &fakeProvider{}
	service, _, _ := newTestOnboarding(provider)

	_, err := service.BindDocument(context.Background(), primitive.NewObjectID(), "file_1", "individual.verification.document")
	assert.ErrorIs(t, err, models.ErrAccountNotRegistered)
}
