package handlers

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	apperrors "assettracker/internal/errors"
	"assettracker/internal/logger"
	"assettracker/internal/models"
)

// ErrorResponse is the JSON body of every failed request.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail carries the error code and message.
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// parseDateParam validates the :date path parameter.
func parseDateParam(c *gin.Context) (string, error) {
	return models.ParseDate(c.Param("date"))
}

// bindingError maps a request binding failure to an AppError. Failures of
// the currency and market tags keep their domain error codes.
func bindingError(err error) *apperrors.AppError {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		switch fe.Tag() {
		case "currency":
			return apperrors.WithMessage(apperrors.ErrUnsupportedCurrency, "Unsupported currency: "+fe.Value().(string))
		case "market":
			return apperrors.WithMessage(apperrors.ErrUnknownMarket, "Unknown market: "+fe.Value().(string))
		case "isodate":
			return apperrors.WithMessage(apperrors.ErrInvalidDate, fe.Field()+" must be formatted as YYYY-MM-DD")
		}
	}
	return apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error())
}

// respondWithError writes a consistent JSON error response. If the error is an
// *AppError it uses the error's status code, code, and message. Otherwise it
// logs the unexpected error and returns a generic internal server error.
func respondWithError(c *gin.Context, err error) {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		if appErr.Internal != nil {
			logger.Get().Errorw("app error",
				"code", appErr.Code,
				"internal", appErr.Internal.Error(),
				"path", c.Request.URL.Path,
			)
		}
		c.JSON(appErr.StatusCode, ErrorResponse{Error: ErrorDetail{Code: appErr.Code, Message: appErr.Message}})
		return
	}

	logger.Get().Errorw("unexpected error",
		"error", err.Error(),
		"path", c.Request.URL.Path,
		"method", c.Request.Method,
	)
	c.JSON(apperrors.ErrInternalServer.StatusCode, ErrorResponse{
		Error: ErrorDetail{Code: apperrors.ErrInternalServer.Code, Message: apperrors.ErrInternalServer.Message},
	})
}
