package services

import (
	"context"

	"shay-b-io/api/internal/common"
	"shay-b-io/api/pkg/models"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type documentService struct {
	provider   PaymentProvider
	onboarding OnboardingService
}

func NewDocumentService(provider PaymentProvider, onboarding OnboardingService) DocumentService {
	return &documentService{provider: provider, onboarding: onboarding}
}

// UploadDocument pushes a bounded identity document to the provider and
// binds the returned file handle to the account's pending document
// requirement.
func (s *documentService) UploadDocument(ctx context.Context, sellerID primitive.ObjectID, doc models.DocumentUpload) (string, error) {
	if _, err := doc.Purpose.ParseDocumentPurpose(string(doc.Purpose)); err != nil {
		return "", err
	}
	if len(doc.Data) == 0 {
		return "", &models.InputValidationError{
			Message: "document file is required",
			Field:   "file",
			Tag:     "required",
		}
	}
	if len(doc.Data) > common.MAX_DOCUMENT_SIZE {
		return "", errors.Wrapf(models.ErrDocumentTooLarge, "%d bytes", len(doc.Data))
	}

	acct, err := s.onboarding.GetAccount(ctx, sellerID)
	if err != nil {
		return "", err
	}
	if !acct.IsRegistered() {
		return "", models.ErrAccountNotRegistered
	}

	fileID, err := s.provider.UploadFile(ctx, acct.ProviderAccountID, doc)
	if err != nil {
		return "", err
	}

	if _, err := s.onboarding.BindDocument(ctx, sellerID, fileID, pendingDocumentRequirement(acct)); err != nil {
		return "", err
	}

	return fileID, nil
}

// pendingDocumentRequirement picks the outstanding requirement the
// upload satisfies. Falls back to the provider's generic identity
// document code when the account lists none.
func pendingDocumentRequirement(acct *models.SellerAccount) string {
	for _, code := range acct.PendingRequirements {
		if models.IsDocumentRequirement(code) {
			return code
		}
	}
	return "individual.verification.document"
}
