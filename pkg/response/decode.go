package response

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"lexivo/pkg/apperr"
)

const maxBodyBytes = 1 << 20

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func validatorInstance() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(func(f reflect.StructField) string {
			name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
	})
	return validate
}

// Decode reads a JSON body into dst and runs its `validate` tags.
func Decode(r *http.Request, dst any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		return apperr.Validation("Invalid request body")
	}
	return Validate(dst)
}

// DecodeOptional is Decode for endpoints whose fields are all optional: an
// empty body decodes as {}.
func DecodeOptional(r *http.Request, dst any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil && !errors.Is(err, io.EOF) {
		return apperr.Validation("Invalid request body")
	}
	return Validate(dst)
}

// Validate runs struct validation and turns the first failure into a readable ErrValidation.
func Validate(v any) error {
	err := validatorInstance().Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return apperr.Validation("Invalid request body")
	}
	fe := verrs[0]
	switch fe.Tag() {
	case "required", "required_without":
		return apperr.Validation("%s is required", fe.Field())
	case "max":
		return apperr.Validation("%s must be at most %s characters", fe.Field(), fe.Param())
	case "oneof":
		return apperr.Validation("%s must be one of: %s", fe.Field(), strings.ReplaceAll(fe.Param(), " ", ", "))
	case "min", "gte", "lte":
		return apperr.Validation("%s is out of range", fe.Field())
	case "uuid", "uuid4":
		return apperr.Validation("%s must be a valid id", fe.Field())
	default:
		return apperr.Validation("%s is invalid", fe.Field())
	}
}

// PathID returns the {name} path value, or an ErrValidation when it is empty.
func PathID(r *http.Request, name string) (string, error) {
	id := strings.TrimSpace(r.PathValue(name))
	if id == "" {
		return "", apperr.Validation("Missing %s parameter", name)
	}
	return id, nil
}
