package responses

import (
	"context"
	"encoding/json"
	"net/http"

	apperrors "github.com/tradesphere/tradesphere-backend/pkg/errors"
	"github.com/tradesphere/tradesphere-backend/pkg/logger"
	"github.com/tradesphere/tradesphere-backend/pkg/types"
)

// WriteSuccess renders a {data: ...} envelope with the given status.
func WriteSuccess(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(types.SuccessEnvelope{Data: data})
}

// WriteError renders the typed error envelope. Unknown error types collapse
// into an internal error so no raw failure detail leaks to clients.
func WriteError(ctx context.Context, w http.ResponseWriter, log *logger.Logger, err error) {
	typed := apperrors.As(err)
	if typed == nil {
		typed = apperrors.Wrap(apperrors.CodeInternal, err, "unexpected error")
	}

	meta := apperrors.MetadataFor(typed.Code())

	if meta.HTTPStatus >= http.StatusInternalServerError {
		log.Error(log.WithField(ctx, "error_chain", apperrors.Dump(err).Chain), "request failed", err)
	} else {
		log.Warn(log.WithField(ctx, "error_code", string(typed.Code())), typed.Message())
	}

	body := types.ErrorEnvelope{
		Error: types.APIError{
			Code:    string(typed.Code()),
			Message: meta.PublicMessage,
		},
	}
	if meta.DetailsAllowed {
		if typed.Message() != "" {
			body.Error.Message = typed.Message()
		}
		body.Error.Details = typed.Details()
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(meta.HTTPStatus)
	_ = json.NewEncoder(w).Encode(body)
}
