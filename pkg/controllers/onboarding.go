package controllers

import (
	"context"
	"net/http"

	"shay-b-io/api/internal/common"
	"shay-b-io/api/pkg/models"
	"shay-b-io/api/pkg/services"
	"shay-b-io/api/pkg/util"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type OnboardingController struct {
	onboardingService services.OnboardingService
}

func InitOnboardingController(onboardingService services.OnboardingService) *OnboardingController {
	return &OnboardingController{onboardingService: onboardingService}
}

// CreateSellerAccount -> POST /sellers/:sellerid/onboard
func (oc *OnboardingController) CreateSellerAccount() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(context.Background(), common.REQUEST_TIMEOUT_SECS)
		defer cancel()

		sellerID, ok := sellerIDParam(c)
		if !ok {
			return
		}

		var req models.OnboardingRequest
		if err := c.BindJSON(&req); err != nil {
			util.HandleErrorCode(c, http.StatusBadRequest, "validation_error", errors.Wrap(err, "invalid data detected in JSON"))
			return
		}
		req.TOSAcceptanceIP = c.ClientIP()

		acct, err := oc.onboardingService.CreateAccount(ctx, sellerID, req)
		if err != nil {
			status, code := statusForError(err)
			util.HandleErrorCode(c, status, code, err)
			return
		}

		util.HandleSuccess(c, http.StatusOK, "Payment account created successfully", gin.H{
			"account_id": acct.ProviderAccountID,
			"state":      acct.State,
		})
	}
}

// GetSellerStatus -> GET /sellers/:sellerid/status
//
// Always refreshes from the provider; the cached registry state is
// display data, not an authorization source.
func (oc *OnboardingController) GetSellerStatus() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(context.Background(), common.REQUEST_TIMEOUT_SECS)
		defer cancel()

		sellerID, ok := sellerIDParam(c)
		if !ok {
			return
		}

		acct, err := oc.onboardingService.RefreshStatus(ctx, sellerID)
		if err != nil {
			status, code := statusForError(err)
			util.HandleErrorCode(c, status, code, err)
			return
		}

		util.HandleSuccess(c, http.StatusOK, "Success", gin.H{
			"account_id":           acct.ProviderAccountID,
			"state":                acct.State,
			"is_verified":          acct.State == models.AccountStateVerified,
			"is_restricted":        acct.State == models.AccountStateRestricted,
			"pending_requirements": acct.PendingRequirements,
			"review_deadline":      acct.ReviewDeadline,
		})
	}
}

func sellerIDParam(c *gin.Context) (primitive.ObjectID, bool) {
	sellerID, err := primitive.ObjectIDFromHex(c.Param("sellerid"))
	if err != nil {
		util.HandleErrorCode(c, http.StatusBadRequest, "validation_error", errors.New("bad seller id"))
		return primitive.NilObjectID, false
	}
	return sellerID, true
}
