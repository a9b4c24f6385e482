package common

import (
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

var Validate = validator.New()

const (
	REQUEST_TIMEOUT_SECS  = 2 * 60 * time.Second
	PROVIDER_CALL_TIMEOUT = 30 * time.Second

	// MAX_DOCUMENT_SIZE bounds identity document uploads.
	MAX_DOCUMENT_SIZE = 10 << 20

	// MAX_PROVIDER_CONCURRENCY bounds in-flight calls to the payment
	// provider across all requests.
	MAX_PROVIDER_CONCURRENCY = 8

	// STATUS_RETRY_MAX caps backoff retries for idempotent status reads.
	STATUS_RETRY_MAX = 3

	DEFAULT_FEE_BPS      = 800
	DEFAULT_FIXED_FEE    = 70
	DEFAULT_CURRENCY     = "eur"
	DEFAULT_COUNTRY      = "FR"
	DEFAULT_DESCRIPTOR   = "SHAY BEAUTY"
	DEFAULT_SUCCESS_PATH = "/success"
	DEFAULT_CANCEL_PATH  = "/cancel"
)

// Utility Functions

// IsEmptyString checks if a string is empty
func IsEmptyString(s string) bool {
	return strings.Compare(s, "") == 0
}
