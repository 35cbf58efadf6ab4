package httpapi

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/techappsUT/planer/internal/apperr"
)

var validate = validator.New()

// decodeAndValidate reads the request body into dst (which must carry
// `validate` struct tags) and rejects both malformed JSON and tag
// violations with a single BadRequest, adapted from the teacher's
// middleware.ValidateRequest into a per-handler call instead of a
// blanket middleware, since not every route decodes a body.
func decodeAndValidate(r *http.Request, dst interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		if err == io.EOF {
			return apperr.BadRequest("request body is required")
		}
		return apperr.BadRequest("invalid request body")
	}
	if err := validate.Struct(dst); err != nil {
		if verrs, ok := err.(validator.ValidationErrors); ok && len(verrs) > 0 {
			fe := verrs[0]
			return apperr.BadRequest(fe.Field() + " failed " + fe.Tag() + " validation")
		}
		return apperr.BadRequest("validation failed")
	}
	return nil
}
