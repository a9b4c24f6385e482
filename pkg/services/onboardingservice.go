package services

import (
	"context"
	"log"
	"time"

	"shay-b-io/api/internal/common"
	"shay-b-io/api/pkg/models"

	"github.com/cenkalti/backoff/v4"
	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/sync/singleflight"
)

type onboardingService struct {
	provider    PaymentProvider
	registry    SellerAccountRepository
	identity    IdentityRegistry
	createGroup singleflight.Group
}

func NewOnboardingService(provider PaymentProvider, registry SellerAccountRepository, identity IdentityRegistry) OnboardingService {
	return &onboardingService{
		provider: provider,
		registry: registry,
		identity: identity,
	}
}

// CreateAccount validates the request, creates the provider account and
// records the registry entry. Creation is serialized per seller through
// singleflight so concurrent calls for the same seller share one
// provider call and one result; a timed-out creation is never retried
// here since retrying risks a duplicate provider account.
func (s *onboardingService) CreateAccount(ctx context.Context, sellerID primitive.ObjectID, req models.OnboardingRequest) (*models.SellerAccount, error) {
	if err := common.Validate.Struct(&req); err != nil {
		return nil, &models.InputValidationError{Message: err.Error(), Tag: "required"}
	}
	if err := models.ValidateOnboardingRequest(&req); err != nil {
		return nil, err
	}

	if _, err := s.identity.GetSellerIdentity(ctx, sellerID); err != nil {
		return nil, err
	}

	existing, err := s.registry.FindBySellerID(ctx, sellerID)
	if err != nil && !errors.Is(err, models.ErrAccountNotRegistered) {
		return nil, errors.Wrap(err, "failed to look up seller account")
	}
	if existing != nil && existing.IsRegistered() {
		return nil, models.NewStateConflict("create-account", existing.State,
			"seller already has a payment account")
	}

	result, err, shared := s.createGroup.Do(sellerID.Hex(), func() (any, error) {
		return s.createAccountOnce(ctx, sellerID, req)
	})
	if err != nil {
		return nil, err
	}
	if shared {
		log.Printf("seller %s joined an in-flight account creation", sellerID.Hex())
	}

	return result.(*models.SellerAccount), nil
}

func (s *onboardingService) createAccountOnce(ctx context.Context, sellerID primitive.ObjectID, req models.OnboardingRequest) (*models.SellerAccount, error) {
	// Re-check under the flight lock: a previous flight may have
	// registered the account between the caller's check and ours.
	existing, err := s.registry.FindBySellerID(ctx, sellerID)
	if err != nil && !errors.Is(err, models.ErrAccountNotRegistered) {
		return nil, errors.Wrap(err, "failed to look up seller account")
	}
	if existing != nil && existing.IsRegistered() {
		return existing, nil
	}

	accountID, status, err := s.provider.CreateAccount(ctx, req)
	if err != nil {
		// Nothing is persisted on provider failure.
		return nil, err
	}

	now := time.Now()
	acct := &models.SellerAccount{
		ID:                  primitive.NewObjectID(),
		SellerID:            sellerID,
		ProviderAccountID:   accountID,
		State:               initialState(status),
		PendingRequirements: status.PendingRequirements,
		ReviewDeadline:      status.ReviewDeadline,
		CreatedAt:           now,
		ModifiedAt:          now,
	}

	if err := s.registry.Upsert(ctx, acct); err != nil {
		return nil, errors.Wrapf(err, "provider account %s created but registry write failed", accountID)
	}

	log.Printf("created payment account %s for seller %s (state %s)", accountID, sellerID.Hex(), acct.State)
	return acct, nil
}

// initialState maps the creation response onto the state machine.
// Creation terminates in document collection or review, nothing else:
// a freshly created account is never trusted as verified, and
// non-document requirements at creation time mean the submission is
// under review, not that the seller owes more profile info.
func initialState(status models.AccountStatus) models.AccountState {
	for _, code := range status.PendingRequirements {
		if models.IsDocumentRequirement(code) {
			return models.AccountStatePendingDocument
		}
	}
	return models.AccountStatePendingReview
}

// RefreshStatus retrieves the authoritative provider status and
// overwrites every cached field from it. Idempotent and safe to call
// repeatedly; transient transport failures are retried with bounded
// exponential backoff since the read is idempotent.
func (s *onboardingService) RefreshStatus(ctx context.Context, sellerID primitive.ObjectID) (*models.SellerAccount, error) {
	acct, err := s.registry.FindBySellerID(ctx, sellerID)
	if err != nil {
		return nil, err
	}
	if !acct.IsRegistered() {
		return nil, models.ErrAccountNotRegistered
	}

	var status models.AccountStatus
	operation := func() error {
		var opErr error
		status, opErr = s.provider.GetAccountStatus(ctx, acct.ProviderAccountID)
		if opErr != nil && !models.IsTransientError(opErr) {
			return backoff.Permanent(opErr)
		}
		return opErr
	}

	policy := backoff.WithMaxRetries(backoff.NewExponentialBackOff(), common.STATUS_RETRY_MAX)
	if err := backoff.Retry(operation, backoff.WithContext(policy, ctx)); err != nil {
		return nil, err
	}

	acct.State = models.DeriveAccountState(status)
	acct.PendingRequirements = status.PendingRequirements
	acct.ReviewDeadline = status.ReviewDeadline
	acct.ModifiedAt = time.Now()

	if err := s.registry.Upsert(ctx, acct); err != nil {
		return nil, errors.Wrap(err, "failed to store refreshed account status")
	}

	return acct, nil
}

// GetAccount returns the registry record without contacting the
// provider. Callers that gate money movement must use RefreshStatus
// instead of trusting this cached state.
func (s *onboardingService) GetAccount(ctx context.Context, sellerID primitive.ObjectID) (*models.SellerAccount, error) {
	return s.registry.FindBySellerID(ctx, sellerID)
}

// BindDocument marks a provider file handle as satisfying a pending
// requirement and advances document collection to review once no
// document requirement remains outstanding.
func (s *onboardingService) BindDocument(ctx context.Context, sellerID primitive.ObjectID, fileID, requirementCode string) (*models.SellerAccount, error) {
	acct, err := s.registry.FindBySellerID(ctx, sellerID)
	if err != nil {
		return nil, err
	}
	if !acct.IsRegistered() {
		return nil, models.ErrAccountNotRegistered
	}

	remaining := make([]string, 0, len(acct.PendingRequirements))
	for _, code := range acct.PendingRequirements {
		if code != requirementCode {
			remaining = append(remaining, code)
		}
	}
	acct.PendingRequirements = remaining

	if acct.State == models.AccountStatePendingDocument {
		stillWaiting := false
		for _, code := range remaining {
			if models.IsDocumentRequirement(code) {
				stillWaiting = true
				break
			}
		}
		if !stillWaiting {
			acct.State = models.AccountStatePendingReview
		}
	}
	acct.ModifiedAt = time.Now()

	if err := s.registry.Upsert(ctx, acct); err != nil {
		return nil, errors.Wrap(err, "failed to store document binding")
	}

	log.Printf("bound file %s to requirement %q for seller %s", fileID, requirementCode, sellerID.Hex())
	return acct, nil
}
