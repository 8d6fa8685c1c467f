package handlers

import (
	"errors"
	"fmt"
	"mime/multipart"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	apperrors "github.com/maitriconnect/maitri-api/pkg/util"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "" || name == "-" {
			return fld.Name
		}
		return name
	})
	return v
}

// bind parses the body into req and runs struct validation.
func bind(c *fiber.Ctx, req interface{}) error {
	if err := c.BodyParser(req); err != nil {
		return apperrors.NewValidationError("invalid payload")
	}
	if err := validate.Struct(req); err != nil {
		return validationError(err)
	}
	return nil
}

func validationError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return apperrors.NewValidationError("invalid payload")
	}
	fe := verrs[0]
	switch fe.Tag() {
	case "required":
		return apperrors.NewValidationError(fmt.Sprintf("%s is required", fe.Field()))
	case "email":
		return apperrors.NewValidationError(fmt.Sprintf("%s must be a valid email", fe.Field()))
	case "min":
		return apperrors.NewValidationError(fmt.Sprintf("%s must be at least %s characters", fe.Field(), fe.Param()))
	case "max":
		return apperrors.NewValidationError(fmt.Sprintf("%s must be at most %s characters", fe.Field(), fe.Param()))
	case "oneof":
		return apperrors.NewValidationError(fmt.Sprintf("%s must be one of: %s", fe.Field(), fe.Param()))
	default:
		return apperrors.NewValidationError(fmt.Sprintf("%s is invalid", fe.Field()))
	}
}

// optionalFile returns the named upload of a multipart request, or nil.
func optionalFile(c *fiber.Ctx, field string) *multipart.FileHeader {
	if !strings.HasPrefix(string(c.Request().Header.ContentType()), fiber.MIMEMultipartForm) {
		return nil
	}
	fh, err := c.FormFile(field)
	if err != nil {
		return nil
	}
	return fh
}
