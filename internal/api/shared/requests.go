package shared

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
)

// validate is shared across handlers; validator.Validate caches struct
// metadata, so a single instance is the cheap path.
var validate = validator.New()

// DecodeJSON decodes the request body into v. A body that is not valid JSON
// for v's shape, including mismatched field types, is a decode error.
func DecodeJSON(r *http.Request, v interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return fmt.Errorf("decode request body: %w", err)
	}
	return nil
}

// ValidateRequest validates a decoded request struct. Types carrying their
// own Validate method are checked with it; everything else goes through the
// struct tag validator.
func ValidateRequest(v interface{}) error {
	if custom, ok := v.(interface{ Validate() error }); ok {
		return custom.Validate()
	}
	return validate.Struct(v)
}
