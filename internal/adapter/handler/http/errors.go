package http

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	domainErrors "github.com/wekeepgrowing/accounting-sync/internal/domain/errors"
	pkgErrors "github.com/wekeepgrowing/accounting-sync/pkg/errors"
)

// toAppError classifies a sync error into an AppError code. The message is
// the error text, which never carries credentials.
func toAppError(err error) *pkgErrors.AppError {
	code := pkgErrors.ErrInternal
	switch {
	case errors.Is(err, domainErrors.ErrNoToken), errors.Is(err, domainErrors.ErrRefreshExpired):
		code = pkgErrors.ErrUnauthenticated
	case errors.Is(err, domainErrors.ErrValidation), errors.Is(err, domainErrors.ErrMissingExternalID):
		code = pkgErrors.ErrInvalidArgument
	case errors.Is(err, domainErrors.ErrNotFound), errors.Is(err, domainErrors.ErrCustomerNotFound):
		code = pkgErrors.ErrNotFound
	case errors.Is(err, domainErrors.ErrDuplicateEntity), errors.Is(err, domainErrors.ErrCustomerLinkageMismatch):
		code = pkgErrors.ErrConflict
	case errors.Is(err, domainErrors.ErrRemoteWriteFailed), errors.Is(err, domainErrors.ErrRemoteUpdateFailed):
		code = pkgErrors.ErrUpstream
	}
	return pkgErrors.NewAppError(code, err.Error(), err)
}

func respondError(c echo.Context, logger *zap.Logger, err error, msg string, fields ...zap.Field) error {
	appErr := toAppError(err)
	pkgErrors.LogError(logger, appErr, msg, fields...)

	return c.JSON(pkgErrors.ToHTTPStatus(appErr.Code()), echo.Map{
		"error": appErr.Message(),
	})
}

func badRequest(c echo.Context, msg string) error {
	return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
}
