package validator

import (
	"errors"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	govalidator "github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
	"github.com/stemsi/tuition-backend/internal/calendar"
	"github.com/stemsi/tuition-backend/internal/model"
)

// trans is the singleton English translator for validation errors.
var trans ut.Translator

type customTag struct {
	tag     string
	fn      govalidator.Func
	message string
}

var customTags = []customTag{
	{"cycle_type", validCycleType, "{0} must be one of 1-thang, 8-buoi, 10-buoi, theo-ngay"},
	{"fee_mode", validFeeMode, "{0} must be PER_SESSION or PER_CYCLE"},
	{"attendance_status", validAttendanceStatus, "{0} must be present, absent, teacher_absent or makeup"},
	{"payment_status", validPaymentStatus, "{0} must be paid, pending, overdue or partial_refund"},
	{"civil_date", validCivilDate, "{0} must be a date in YYYY-MM-DD format"},
}

// Setup registers the validator with English translations on Gin's binding engine.
// Call once during application startup.
func Setup() {
	if v, ok := binding.Validator.Engine().(*govalidator.Validate); ok {
		register(v)
	}
}

func register(v *govalidator.Validate) {
	// Use JSON tag name for field names in error messages.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		tag := fld.Tag.Get("json")
		if tag == "" {
			tag = fld.Tag.Get("form")
		}
		name := strings.SplitN(tag, ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	// Dates validate as their YYYY-MM-DD string so "required" sees the zero date as empty.
	v.RegisterCustomTypeFunc(func(field reflect.Value) any {
		if d, ok := field.Interface().(calendar.Date); ok && !d.IsZero() {
			return d.String()
		}
		return ""
	}, calendar.Date{})

	enLocale := en.New()
	uni := ut.New(enLocale, enLocale)
	trans, _ = uni.GetTranslator("en")
	en_translations.RegisterDefaultTranslations(v, trans)

	for _, ct := range customTags {
		_ = v.RegisterValidation(ct.tag, ct.fn)
		message := ct.message
		_ = v.RegisterTranslation(ct.tag, trans,
			func(u ut.Translator) error { return u.Add(ct.tag, message, true) },
			func(u ut.Translator, fe govalidator.FieldError) string {
				t, _ := u.T(fe.Tag(), fe.Field())
				return t
			})
	}
}

func validCycleType(fl govalidator.FieldLevel) bool {
	_, err := model.ParseCycleType(fl.Field().String())
	return err == nil
}

func validFeeMode(fl govalidator.FieldLevel) bool {
	_, err := model.ParseFeeMode(fl.Field().String())
	return err == nil
}

func validAttendanceStatus(fl govalidator.FieldLevel) bool {
	return model.AttendanceStatus(fl.Field().String()).Valid()
}

func validPaymentStatus(fl govalidator.FieldLevel) bool {
	return model.PaymentStatus(fl.Field().String()).Valid()
}

func validCivilDate(fl govalidator.FieldLevel) bool {
	s := fl.Field().String()
	if s == "" {
		return true
	}
	_, err := calendar.ParseDate(s)
	return err == nil
}

// TranslateErrors takes a binding/validation error and returns a map of
// field name to human-readable error message. If the error is not a
// validation error, it returns a single-key map with "detail".
func TranslateErrors(err error) map[string]string {
	fields := make(map[string]string)

	var ve govalidator.ValidationErrors
	if errors.As(err, &ve) {
		for _, fe := range ve {
			fields[fe.Field()] = fe.Translate(trans)
		}
		return fields
	}

	// Not a validation error (e.g., JSON syntax error).
	fields["detail"] = err.Error()
	return fields
}

// Bind binds and validates the request body into dst.
// Returns nil on success or a translated field error map on failure.
func Bind(c *gin.Context, dst any) map[string]string {
	if err := c.ShouldBindJSON(dst); err != nil {
		return TranslateErrors(err)
	}
	return nil
}

// BindQuery binds and validates query parameters into dst.
func BindQuery(c *gin.Context, dst any) map[string]string {
	if err := c.ShouldBindQuery(dst); err != nil {
		return TranslateErrors(err)
	}
	return nil
}
