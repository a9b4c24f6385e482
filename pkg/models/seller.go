package models

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type AccountState string

const (
	AccountStateUnregistered    AccountState = "unregistered"
	AccountStatePendingInfo     AccountState = "pending_info"
	AccountStatePendingDocument AccountState = "pending_document"
	AccountStatePendingReview   AccountState = "pending_review"
	AccountStateVerified        AccountState = "verified"
	AccountStateRestricted      AccountState = "restricted"
)

func (AccountState) ParseAccountState(state string) (AccountState, error) {
	switch state {
	case "unregistered":
		return AccountStateUnregistered, nil
	case "pending_info":
		return AccountStatePendingInfo, nil
	case "pending_document":
		return AccountStatePendingDocument, nil
	case "pending_review":
		return AccountStatePendingReview, nil
	case "verified":
		return AccountStateVerified, nil
	case "restricted":
		return AccountStateRestricted, nil
	}

	err := fmt.Sprintf("Invalid account state from request: %v", state)

	return AccountStateUnregistered, errors.New(err)
}

// SellerAccount is the registry record binding a marketplace seller to
// their payment-provider account and the last authoritative
// verification status retrieved from the provider.
type SellerAccount struct {
	CreatedAt           time.Time          `bson:"created_at" json:"createdAt"`
	ModifiedAt          time.Time          `bson:"modified_at" json:"modifiedAt"`
	ProviderAccountID   string             `bson:"provider_account_id" json:"providerAccountId"`
	State               AccountState       `bson:"state" json:"state"`
	PendingRequirements []string           `bson:"pending_requirements" json:"pendingRequirements"`
	ReviewDeadline      *time.Time         `bson:"review_deadline,omitempty" json:"reviewDeadline,omitempty"`
	SellerID            primitive.ObjectID `bson:"seller_id" json:"sellerId"`
	ID                  primitive.ObjectID `bson:"_id" json:"_id"`
}

// IsRegistered reports whether a provider account exists for the seller.
// The provider account id is set iff the state is past unregistered.
func (a *SellerAccount) IsRegistered() bool {
	return a.ProviderAccountID != "" && a.State != AccountStateUnregistered
}

// AccountStatus is the authoritative verification status retrieved from
// the payment provider. Cached copies of it are always overwritten
// wholesale; a stale verified flag must never drive authorization.
type AccountStatus struct {
	ChargesEnabled      bool
	PayoutsEnabled      bool
	PendingRequirements []string
	DisabledReason      string
	ReviewDeadline      *time.Time
}

// DeriveAccountState maps a provider status onto the onboarding state
// machine. A disabling reason always wins; an account with both
// capabilities active and nothing due is verified; otherwise the kind
// of outstanding requirement decides between document collection and
// plain info collection.
func DeriveAccountState(status AccountStatus) AccountState {
	if status.DisabledReason != "" {
		return AccountStateRestricted
	}

	if status.ChargesEnabled && status.PayoutsEnabled && len(status.PendingRequirements) == 0 {
		return AccountStateVerified
	}

	if len(status.PendingRequirements) == 0 {
		return AccountStatePendingReview
	}

	for _, code := range status.PendingRequirements {
		if IsDocumentRequirement(code) {
			return AccountStatePendingDocument
		}
	}

	return AccountStatePendingInfo
}

// IsDocumentRequirement reports whether a provider requirement code
// asks for an identity document rather than plain profile info.
func IsDocumentRequirement(code string) bool {
	return strings.HasSuffix(code, "verification.document") ||
		strings.HasSuffix(code, "verification.additional_document")
}

// OnboardingRequest carries the seller's identity and bank details for
// provider account creation. It is transient and never persisted.
type OnboardingRequest struct {
	FirstName         string `json:"firstName" validate:"required"`
	LastName          string `json:"lastName" validate:"required"`
	Email             string `json:"email" validate:"required"`
	Phone             string `json:"phone" validate:"required"`
	DobDay            int    `json:"dobDay" validate:"required"`
	DobMonth          int    `json:"dobMonth" validate:"required"`
	DobYear           int    `json:"dobYear" validate:"required"`
	AddressLine1      string `json:"addressLine1" validate:"required"`
	AddressCity       string `json:"addressCity" validate:"required"`
	AddressPostalCode string `json:"addressPostalCode" validate:"required"`
	IBAN              string `json:"iban" validate:"required"`
	Website           string `json:"website"`
	BusinessType      string `json:"businessType"`

	// TOSAcceptanceIP is filled from the request's client address, not
	// from the JSON body.
	TOSAcceptanceIP string `json:"-"`
}

// NormalizedIBAN strips whitespace from the bank identifier before it
// is sent to the provider.
func (r *OnboardingRequest) NormalizedIBAN() string {
	return strings.ReplaceAll(r.IBAN, " ", "")
}

// SellerIdentity is the read-only profile owned by the external
// user-identity system. The core references it, never mutates it.
type SellerIdentity struct {
	ID        primitive.ObjectID `bson:"_id" json:"_id"`
	Email     string             `bson:"email" json:"email"`
	FirstName string             `bson:"first_name" json:"firstName"`
	LastName  string             `bson:"last_name" json:"lastName"`
	IsSeller  bool               `bson:"is_seller" json:"isSeller"`
}
