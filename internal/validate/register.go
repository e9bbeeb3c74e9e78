package validate

import (
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"

	"hbnb_web/internal/domain"
)

type RegisterForm struct {
	FirstName string
	LastName  string
	UserName  string
	Email     string
	Password  string
	Role      string
}

type RegisterResult struct {
	Errors []string
	Input  domain.RegisterInput
}

func (r RegisterResult) OK() bool { return len(r.Errors) == 0 }

type registerRules struct {
	FirstName string `validate:"required"`
	LastName  string `validate:"required"`
	Username  string `validate:"required"`
	Email     string `validate:"required,email"`
	Password  string `validate:"required"`
}

func Register(f RegisterForm) RegisterResult {
	var res RegisterResult

	rules := registerRules{
		FirstName: strings.TrimSpace(f.FirstName),
		LastName:  strings.TrimSpace(f.LastName),
		Username:  strings.TrimSpace(f.UserName),
		Email:     strings.TrimSpace(f.Email),
		Password:  f.Password,
	}
	if err := v.Struct(rules); err != nil {
		var ve validator.ValidationErrors
		if errors.As(err, &ve) {
			for _, fe := range ve {
				res.Errors = append(res.Errors, fieldMessage(fe))
			}
		} else {
			res.Errors = append(res.Errors, err.Error())
		}
	}

	if len(res.Errors) == 0 {
		res.Input = domain.RegisterInput{
			FirstName: rules.FirstName,
			LastName:  rules.LastName,
			UserName:  rules.Username,
			Email:     rules.Email,
			Password:  f.Password,
			Role:      strings.TrimSpace(f.Role),
		}
	}
	return res
}
