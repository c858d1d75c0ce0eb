package v1

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"unicode"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

var (
	errInvalidRequestBody  = errors.New("invalid request body")
	errInvalidCredentials  = errors.New("invalid credentials")
	errNoToken             = errors.New("no token provided")
	errUnauthorizedTaskOp  = errors.New("unauthorized to modify this task")
	errValidationFailed    = errors.New("validation failed")
	errMissingUserIDInCtx  = errors.New("no user id found in context")
	errMissingTaskIDInPath = errors.New("no task id provided")
)

type apiError struct {
	Code    int
	Message string
	Fields  []fieldError
}

type fieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func newAPIError(code int, message string) apiError {
	return apiError{
		Code:    code,
		Message: message,
	}
}

func (e apiError) Error() string {
	return e.Message
}

func abort(c *gin.Context, err apiError) {
	body := gin.H{"error": err.Message}
	if len(err.Fields) > 0 {
		body["errors"] = err.Fields
	}
	c.AbortWithStatusJSON(err.Code, body)
}

func newStatusTextError(status int) apiError {
	return newAPIError(status, http.StatusText(status))
}

func newBadRequestError(message string) apiError {
	return newAPIError(http.StatusBadRequest, message)
}

func newUnauthorizedError(message string) apiError {
	return newAPIError(http.StatusUnauthorized, message)
}

func newForbiddenError(message string) apiError {
	return newAPIError(http.StatusForbidden, message)
}

func newNotFoundError(message string) apiError {
	return newAPIError(http.StatusNotFound, message)
}

func newConflictError(message string) apiError {
	return newAPIError(http.StatusConflict, message)
}

// newBindError turns a binding failure into a 400. Validator failures carry
// one message per offending field.
func newBindError(err error) apiError {
	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return newBadRequestError(errInvalidRequestBody.Error())
	}

	apiErr := newBadRequestError(errValidationFailed.Error())
	for _, fe := range validationErrs {
		apiErr.Fields = append(apiErr.Fields, fieldError{
			Field:   jsonFieldName(fe.Field()),
			Message: validationMessage(fe),
		})
	}
	return apiErr
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email"
	case "min":
		return fmt.Sprintf("must be at least %s characters", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	case "oneof":
		return "must be one of: " + strings.ReplaceAll(fe.Param(), " ", ", ")
	default:
		return "is invalid"
	}
}

func jsonFieldName(field string) string {
	if field == "" {
		return field
	}
	runes := []rune(field)
	runes[0] = unicode.ToLower(runes[0])
	return string(runes)
}
