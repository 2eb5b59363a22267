package techcv

import (
	"context"
	"errors"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/goliatone/go-print"
)

// FormErrorKey is the map key for errors not attributable to a single
// form field.
const FormErrorKey = "form"

// RegistrationFailureMessage is the generic fallback when registration
// fails without a typed API error.
const RegistrationFailureMessage = "登録に失敗しました。もう一度お試しください。"

// RegistrationPayload is the registration form content.
type RegistrationPayload struct {
	Email                string `json:"email"`
	Password             string `json:"password"`
	PasswordConfirmation string `json:"password_confirmation"`
}

// Validate runs the form validation rules.
func (r RegistrationPayload) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(
			&r.Email,
			validation.Required.Error("メールアドレスを入力してください"),
			is.Email.Error("メールアドレスの形式が正しくありません"),
		),
		validation.Field(
			&r.Password,
			validation.Required.Error("パスワードを入力してください"),
			validation.Length(8, 72).Error("パスワードは8文字以上で、英字と数字を含む必要があります"),
			validation.By(ValidatePasswordComposition("パスワードは8文字以上で、英字と数字を含む必要があります")),
		),
		validation.Field(
			&r.PasswordConfirmation,
			validation.Required.Error("確認用パスワードを入力してください"),
			validation.By(ValidateStringEquals(r.Password, "パスワードが一致しません")),
		),
	)
}

// ValidateStringEquals builds a rule that fails with message unless the
// value equals str.
func ValidateStringEquals(str, message string) validation.RuleFunc {
	return func(value any) error {
		s, _ := value.(string)
		if s != str {
			return errors.New(message)
		}
		return nil
	}
}

// ValidatePasswordComposition builds a rule that fails with message unless
// the value contains at least one ASCII letter and one digit.
func ValidatePasswordComposition(message string) validation.RuleFunc {
	return func(value any) error {
		s, _ := value.(string)
		var hasLetter, hasDigit bool
		for _, r := range s {
			switch {
			case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
				hasLetter = true
			case r >= '0' && r <= '9':
				hasDigit = true
			}
		}
		if !hasLetter || !hasDigit {
			return errors.New(message)
		}
		return nil
	}
}

// FormatValidationErrorToMap flattens an ozzo validation error into a
// field name to message map. Non-validation errors land on FormErrorKey.
func FormatValidationErrorToMap(err error) map[string]string {
	out := map[string]string{}
	if err == nil {
		return out
	}

	var verrs validation.Errors
	if errors.As(err, &verrs) {
		for field, ferr := range verrs {
			if ferr != nil {
				out[field] = ferr.Error()
			}
		}
		return out
	}

	out[FormErrorKey] = err.Error()
	return out
}

// RegistrationControllerOption customizes controller construction.
type RegistrationControllerOption func(*RegistrationController)

// WithRegistrationLogger overrides the controller's logger.
func WithRegistrationLogger(logger Logger) RegistrationControllerOption {
	return func(c *RegistrationController) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// RegistrationController validates the registration form and submits it to
// the backend. Validation errors render inline beside the offending field;
// anything else lands on the root form error.
type RegistrationController struct {
	api    RegistrationService
	logger Logger
}

// NewRegistrationController wires the controller to the registration API.
func NewRegistrationController(api RegistrationService, opts ...RegistrationControllerOption) *RegistrationController {
	c := &RegistrationController{
		api:    api,
		logger: defLogger{},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c
}

// Submit validates payload and, when valid, issues the register call. The
// returned map carries per-field messages; it is empty on success. No
// network call is made when local validation fails.
func (c *RegistrationController) Submit(ctx context.Context, payload RegistrationPayload) (*RegisterResult, map[string]string, error) {
	if err := payload.Validate(); err != nil {
		c.logger.Debug("registration payload rejected: %s", err)
		return nil, FormatValidationErrorToMap(err), err
	}

	result, err := c.api.Register(ctx, payload)
	if err != nil {
		fieldErrs := registrationFieldErrors(err)
		c.logger.Error("registration request failed: %s, fields: %s", err, print.MaybePrettyJSON(fieldErrs))
		return nil, fieldErrs, err
	}

	return result, map[string]string{}, nil
}

var registrationFields = map[string]struct{}{
	"email":                 {},
	"password":              {},
	"password_confirmation": {},
}

// registrationFieldErrors maps a server failure onto form fields. Details
// naming an unknown field fall back to the root error area.
func registrationFieldErrors(err error) map[string]string {
	out := map[string]string{}

	apiErr, ok := AsAPIError(err)
	if !ok {
		out[FormErrorKey] = RegistrationFailureMessage
		return out
	}

	for _, d := range apiErr.Details {
		field := d.Field
		if _, known := registrationFields[field]; !known {
			field = FormErrorKey
		}
		if existing, dup := out[field]; dup {
			out[field] = existing + " / " + d.Message
			continue
		}
		out[field] = d.Message
	}

	if len(out) == 0 {
		message := apiErr.Message
		if message == "" {
			message = RegistrationFailureMessage
		}
		out[FormErrorKey] = message
	}
	return out
}
