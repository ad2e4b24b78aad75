package responses

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/CloudNativeWorks/datalayer-license/dlmlicense"
	"github.com/CloudNativeWorks/datalayer-license/internal/apierrors"
	"github.com/CloudNativeWorks/datalayer-license/internal/logger"
)

// WriteLicense writes a license response with HTTP 200.
func WriteLicense(w http.ResponseWriter, resp dlmlicense.Response) {
	writeJSON(w, http.StatusOK, resp)
}

// WriteError maps err to an HTTP status and a {success: false, message}
// body. Untyped errors become internal errors; server-side failures carry
// status "error" and never expose their cause.
func WriteError(ctx context.Context, logg *logger.Logger, w http.ResponseWriter, err error) {
	if err == nil {
		err = errors.New("unknown error")
	}

	typed := apierrors.As(err)
	if typed == nil {
		typed = apierrors.Wrap(apierrors.CodeInternal, err, "unexpected error")
	}

	payload := dlmlicense.Response{
		Success: false,
		Message: typed.PublicMessage(),
	}

	status := typed.HTTPStatus()
	if status >= http.StatusInternalServerError {
		if typed.Code() == apierrors.CodeInternal {
			payload.Status = dlmlicense.StatusError
		}
		if logg != nil {
			ctx = logg.WithField(ctx, "error_code", string(typed.Code()))
			logg.Error(ctx, "request.error", err)
		}
	} else if logg != nil {
		ctx = logg.WithFields(ctx, map[string]any{
			"error_code": string(typed.Code()),
			"error":      typed.Message(),
		})
		logg.Info(ctx, "request.rejected")
	}

	writeJSON(w, status, payload)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload) // status already sent
}
