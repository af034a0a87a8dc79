package http

import (
	"encoding/json"
	"reflect"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/go-playground/locales/en"
	entrans "github.com/go-playground/validator/translations/en"
	ut "github.com/go-playground/universal-translator"

	"gopkg.in/go-playground/validator.v9"

	"github.com/cashbridge/tokenvault/pkg/apperr"
)

// DecodeHandlerFunc receives the struct WithBody decoded and validated
// before handing control to it.
type DecodeHandlerFunc func(body any, c *fiber.Ctx) error

// ConstructorFunc builds a fresh instance of the target payload struct.
type ConstructorFunc func() any

// WithBody decodes the request body into a fresh instance of s's type,
// rejects any JSON property the struct does not declare, validates the
// declared fields with validator.v9, and only then invokes h.
func WithBody(s any, h DecodeHandlerFunc) fiber.Handler {
	t := reflect.TypeOf(s)

	return func(c *fiber.Ctx) error {
		target := reflect.New(t.Elem()).Interface()

		raw := c.Body()

		if err := json.Unmarshal(raw, target); err != nil {
			return WithError(c, apperr.ValidateBusinessError(apperr.ErrMissingFields, "request"))
		}

		marshaled, err := json.Marshal(target)
		if err != nil {
			return WithError(c, apperr.ValidateInternalError(err))
		}

		var originalMap, marshaledMap map[string]any

		if err := json.Unmarshal(raw, &originalMap); err != nil {
			return WithError(c, apperr.ValidateBusinessError(apperr.ErrMissingFields, "request"))
		}

		if err := json.Unmarshal(marshaled, &marshaledMap); err != nil {
			return WithError(c, apperr.ValidateInternalError(err))
		}

		unexpected := make(map[string]any)

		for key, value := range originalMap {
			if _, ok := marshaledMap[key]; !ok {
				unexpected[key] = value
			}
		}

		if len(unexpected) > 0 {
			return WithError(c, apperr.ValidateBusinessError(apperr.ErrUnexpectedFields, "request"))
		}

		if err := ValidateStruct(target); err != nil {
			return WithError(c, apperr.ValidationError{
				EntityType: "request",
				Code:       apperr.ErrMissingFields.Error(),
				Title:      "Missing Fields in Request",
				Message:    err.Error(),
			})
		}

		return h(target, c)
	}
}

var (
	validatorInstance *validator.Validate
	translator        ut.Translator
)

func newValidator() (*validator.Validate, ut.Translator) {
	if validatorInstance != nil {
		return validatorInstance, translator
	}

	enLocale := en.New()
	uni := ut.New(enLocale, enLocale)
	trans, _ := uni.GetTranslator("en")

	v := validator.New()
	_ = entrans.RegisterDefaultTranslations(v, trans)

	_ = v.RegisterValidation("keymax", validateMetadataKeyMaxLength)
	_ = v.RegisterValidation("nonested", validateMetadataNestedValues)

	_ = v.RegisterTranslation("keymax", trans, func(ut ut.Translator) error {
		return ut.Add("keymax", "{0}", true)
	}, func(ut ut.Translator, fe validator.FieldError) string {
		t, _ := ut.T("keymax", fe.Field())
		return t
	})

	_ = v.RegisterTranslation("nonested", trans, func(ut ut.Translator) error {
		return ut.Add("nonested", "{0}", true)
	}, func(ut ut.Translator, fe validator.FieldError) string {
		t, _ := ut.T("nonested", fe.Field())
		return t
	})

	validatorInstance = v
	translator = trans

	return v, trans
}

// validateMetadataNestedValues rejects metadata values that are themselves
// maps; the attempt metadata document is required to stay flat.
func validateMetadataNestedValues(fl validator.FieldLevel) bool {
	return fl.Field().Kind() != reflect.Map
}

// validateMetadataKeyMaxLength bounds a metadata map key's length, 100 bytes
// by default or the validator param when given (e.g. keymax=100).
func validateMetadataKeyMaxLength(fl validator.FieldLevel) bool {
	limit := 100

	if param := fl.Param(); param != "" {
		if parsed, err := strconv.Atoi(param); err == nil {
			limit = parsed
		}
	}

	return len(fl.Field().String()) <= limit
}

// ValidateStruct runs validator.v9 against s, translating the first failing
// field into a human-readable message.
func ValidateStruct(s any) error {
	v, trans := newValidator()

	k := reflect.ValueOf(s).Kind()
	if k == reflect.Ptr {
		k = reflect.ValueOf(s).Elem().Kind()
	}

	if k != reflect.Struct {
		return nil
	}

	err := v.Struct(s)
	if err == nil {
		return nil
	}

	verrs, ok := err.(validator.ValidationErrors)
	if !ok || len(verrs) == 0 {
		return err
	}

	return errString(verrs[0].Translate(trans))
}

type errString string

func (e errString) Error() string { return string(e) }
