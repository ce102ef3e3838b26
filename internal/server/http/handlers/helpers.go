package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	domainErrors "github.com/polkiloo/storefront/internal/domain/errors"
	"github.com/polkiloo/storefront/internal/domain/model"
	"github.com/polkiloo/storefront/internal/server/http/dto"
	"github.com/polkiloo/storefront/internal/server/http/middleware"
)

const (
	supportMessage = "your payment was taken but the order could not be recorded, please contact support"
	unknownMessage = "the payment result is unknown, please check your orders before trying again"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// CurrentSession extracts the authenticated session from context.
func CurrentSession(c *gin.Context) model.Session {
	session, _ := middleware.CurrentSession(c)
	return session
}

// bind decodes JSON into req and validates it, answering 400 on failure.
func bind(c *gin.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		c.JSON(http.StatusBadRequest, dto.Fail("malformed request body"))
		return false
	}
	if err := validate.Struct(req); err != nil {
		c.JSON(http.StatusBadRequest, dto.Fail(validationMessage(err)))
		return false
	}
	return true
}

func validationMessage(err error) string {
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		fe := fieldErrs[0]
		return "invalid field " + fe.Field() + ": failed " + fe.Tag()
	}
	return domainErrors.ErrValidation.Error()
}

// statusFor maps domain errors onto HTTP status and a client-safe message.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, domainErrors.ErrPostPaymentInconsistency):
		return http.StatusInternalServerError, supportMessage
	case errors.Is(err, domainErrors.ErrValidation):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, domainErrors.ErrAuthentication):
		return http.StatusUnauthorized, domainErrors.ErrAuthentication.Error()
	case errors.Is(err, domainErrors.ErrAuthorization):
		return http.StatusUnauthorized, domainErrors.ErrAuthorization.Error()
	case errors.Is(err, domainErrors.ErrNotFound):
		return http.StatusNotFound, domainErrors.ErrNotFound.Error()
	case errors.Is(err, domainErrors.ErrAlreadyExists):
		return http.StatusConflict, domainErrors.ErrAlreadyExists.Error()
	case errors.Is(err, domainErrors.ErrCheckoutInProgress):
		return http.StatusConflict, domainErrors.ErrCheckoutInProgress.Error()
	case errors.Is(err, domainErrors.ErrChargeDeclined):
		return http.StatusPaymentRequired, err.Error()
	case errors.Is(err, domainErrors.ErrChargeOutcomeUnknown):
		return http.StatusGatewayTimeout, unknownMessage
	default:
		return http.StatusInternalServerError, domainErrors.ErrOperation.Error()
	}
}

func respondError(c *gin.Context, err error) {
	status, message := statusFor(err)
	_ = c.Error(err)
	c.JSON(status, dto.Fail(message))
}
