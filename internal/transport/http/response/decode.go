package response

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/baechuer/iset-library/internal/domain"
)

// MaxBodyBytes caps request bodies read by DecodeJSON.
const MaxBodyBytes = 1 << 20

var errEmptyBody = errors.New("empty body")

// DecodeJSON decodes exactly one JSON value from the request body into dst.
// Unknown fields are ignored; the web client sends extras such as role.
func DecodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, MaxBodyBytes))

	if err := dec.Decode(dst); err != nil {
		return decodeErr(err)
	}

	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		if err == nil {
			err = errors.New("multiple JSON values")
		}
		return decodeErr(err)
	}
	return nil
}

func decodeErr(err error) error {
	var tooLarge *http.MaxBytesError
	switch {
	case errors.As(err, &tooLarge):
		return domain.ErrBodyTooLarge(tooLarge.Limit)
	case errors.Is(err, io.EOF):
		return domain.ErrInvalidJSON(errEmptyBody)
	default:
		return domain.ErrInvalidJSON(err)
	}
}
