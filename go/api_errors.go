package storefrontserver

import (
	"errors"

	"github.com/gin-gonic/gin"

	orderapp "github.com/Apurer/storefront-tracking/internal/domains/orders/application"
	orderports "github.com/Apurer/storefront-tracking/internal/domains/orders/ports"
	shippingapp "github.com/Apurer/storefront-tracking/internal/domains/shipping/application"
	shippingports "github.com/Apurer/storefront-tracking/internal/domains/shipping/ports"
	apierrors "github.com/Apurer/storefront-tracking/internal/shared/errors"
)

var problems = apierrors.NewResponder(notFoundProblem, validationProblem)

func notFoundProblem(err error) (apierrors.ProblemDetail, bool) {
	switch {
	case errors.Is(err, shippingports.ErrNotFound):
		return apierrors.ErrNotFound.WithDetail(err.Error()).WithExtension("resourceType", "shipmentStep"), true
	case errors.Is(err, shippingports.ErrOrderNotFound), errors.Is(err, orderports.ErrNotFound):
		return apierrors.ErrNotFound.WithDetail(err.Error()).WithExtension("resourceType", "order"), true
	}
	return apierrors.ProblemDetail{}, false
}

func validationProblem(err error) (apierrors.ProblemDetail, bool) {
	if errors.Is(err, shippingapp.ErrInvalidInput) || errors.Is(err, orderapp.ErrInvalidInput) {
		return apierrors.ErrValidation.WithDetail(err.Error()), true
	}
	return apierrors.ProblemDetail{}, false
}

// respondServiceError maps application errors to problem responses.
func respondServiceError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	problems.RespondError(c, err)
}

// respondBadRequest reports a malformed request, such as a non-numeric path id or an unparsable body.
func respondBadRequest(c *gin.Context, err error) {
	apierrors.Respond(c, apierrors.ErrBadRequest.WithDetail(err.Error()))
}
