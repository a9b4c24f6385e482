package models

import "fmt"

type DocumentPurpose string

const (
	PurposeIdentityFront DocumentPurpose = "identity-front"
	PurposeIdentityBack  DocumentPurpose = "identity-back"
	PurposeAdditional    DocumentPurpose = "additional"
)

func (DocumentPurpose) ParseDocumentPurpose(purpose string) (DocumentPurpose, error) {
	switch purpose {
	case "identity-front":
		return PurposeIdentityFront, nil
	case "identity-back":
		return PurposeIdentityBack, nil
	case "additional":
		return PurposeAdditional, nil
	}

	return PurposeIdentityFront, fmt.Errorf("%w: %v", ErrUnsupportedPurpose, purpose)
}

// DocumentUpload is the transient payload handed to the document
// intake: raw bytes bounded by MaxDocumentSize plus a purpose tag.
type DocumentUpload struct {
	FileName    string
	ContentType string
	Purpose     DocumentPurpose
	Data        []byte
}
