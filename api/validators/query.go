package validators

import (
	"net/http"
	"strconv"

	apperrors "github.com/tradesphere/tradesphere-backend/pkg/errors"
)

// ParseQueryInt reads an integer query parameter, returning fallback when absent.
func ParseQueryInt(r *http.Request, name string, fallback int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback, nil
	}

	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, apperrors.New(apperrors.CodeValidation, "query parameter "+name+" must be an integer")
	}
	return value, nil
}
