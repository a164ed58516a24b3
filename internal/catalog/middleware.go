package catalog

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"ProductAPI/pkg/kit"
)

const (
	APIKeyHeader = "x-api-key"

	maxBodyBytes = 1 << 20

	msgUnauthorized  = "Unauthorized request"
	msgMissingFields = "Missing required product fields"
	msgInvalidJSON   = "Invalid JSON body"
	msgBodyTooLarge  = "Request body too large"
)

type ctxKey string

const inputKey ctxKey = "product_input"

func InputFromContext(ctx context.Context) (ProductInput, bool) {
	in, ok := ctx.Value(inputKey).(ProductInput)
	return in, ok
}

// RequireAPIKey short-circuits with 403 unless the x-api-key header matches key.
func RequireAPIKey(key string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got := r.Header.Get(APIKeyHeader)
			if key == "" || subtle.ConstantTimeCompare([]byte(got), []byte(key)) != 1 {
				kit.WriteErr(w, r, nil, kit.Forbidden(msgUnauthorized))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// validateProduct decodes the body into a ProductInput, rejects incomplete ones,
// and hands the input to the next handler through the request context.
func (s *Server) validateProduct(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		in, err := decodeInput(w, r)
		if err == nil && !in.Complete() {
			err = kit.BadRequest(msgMissingFields)
		}
		if err != nil {
			kit.WriteErr(w, r, s.Log, err)
			return
		}

		ctx := context.WithValue(r.Context(), inputKey, in)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func decodeInput(w http.ResponseWriter, r *http.Request) (ProductInput, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	defer func() { _ = r.Body.Close() }()

	var in ProductInput
	dec := json.NewDecoder(r.Body)

	err := dec.Decode(&in)
	switch {
	case errors.Is(err, io.EOF):
		// empty body: nothing supplied
		return ProductInput{}, nil
	case err != nil:
		return ProductInput{}, decodeErr(err)
	}

	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return ProductInput{}, &kit.HTTPError{
			Status: http.StatusBadRequest,
			Msg:    msgInvalidJSON,
			Err:    errors.New("extra data after json object"),
		}
	}
	return in, nil
}

func decodeErr(err error) error {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return &kit.HTTPError{Status: http.StatusRequestEntityTooLarge, Msg: msgBodyTooLarge, Err: err}
	}
	return &kit.HTTPError{Status: http.StatusBadRequest, Msg: msgInvalidJSON, Err: err}
}
