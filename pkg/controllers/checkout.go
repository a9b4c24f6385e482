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
)

type CheckoutController struct {
	checkoutService services.CheckoutService
}

func InitCheckoutController(checkoutService services.CheckoutService) *CheckoutController {
	return &CheckoutController{checkoutService: checkoutService}
}

// CreateCheckoutSession -> POST /checkout
func (cc *CheckoutController) CreateCheckoutSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(context.Background(), common.REQUEST_TIMEOUT_SECS)
		defer cancel()

		var req models.CheckoutRequest
		if err := c.BindJSON(&req); err != nil {
			util.HandleErrorCode(c, http.StatusBadRequest, "validation_error", errors.Wrap(err, "invalid data detected in JSON"))
			return
		}

		sess, err := cc.checkoutService.CreateCheckoutSession(ctx, req)
		if err != nil {
			status, code := statusForError(err)
			util.HandleErrorCode(c, status, code, err)
			return
		}

		util.HandleSuccess(c, http.StatusOK, "Checkout session created", gin.H{
			"redirect_url":    sess.RedirectURL,
			"session_id":      sess.SessionID,
			"order_reference": sess.OrderReference,
			"split":           sess.Split,
		})
	}
}
