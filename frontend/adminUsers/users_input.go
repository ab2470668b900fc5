package adminusers

import (
	"errors"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"

	"wmsadmin/infrastructure/rbac"
)

var ErrUsernameInvalid = errors.New("username may use letters, digits, dot, dash and underscore, up to 64 characters")

var usernamePattern = regexp.MustCompile(`^[A-Za-z0-9._-]+$`)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("username", func(fl validator.FieldLevel) bool {
		return usernamePattern.MatchString(fl.Field().String())
	})
	_ = v.RegisterValidation("role", func(fl validator.FieldLevel) bool {
		return rbac.ValidRole(fl.Field().String())
	})
	return v
}

// NewUser is the form the admin screen and wmsctl seed-user both submit.
// Password strength is checked separately by the login password policy.
type NewUser struct {
	Username string `validate:"required,max=64,username"`
	Password string `validate:"required"`
	Role     string `validate:"role"`
}

// Normalize trims the username. The password is kept as typed.
func (u NewUser) Normalize() NewUser {
	u.Username = strings.TrimSpace(u.Username)
	u.Role = strings.TrimSpace(u.Role)
	return u
}

// Validate maps the first failing field onto the package sentinels.
func (u NewUser) Validate() error {
	check := u
	check.Password = strings.TrimSpace(u.Password)
	err := validate.Struct(check)
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return err
	}
	fe := fieldErrs[0]
	switch fe.Field() {
	case "Username":
		if fe.Tag() == "required" {
			return ErrUsernameRequired
		}
		return ErrUsernameInvalid
	case "Password":
		return ErrPasswordRequired
	default:
		return ErrInvalidRole
	}
}
