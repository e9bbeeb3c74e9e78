package validate_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hbnb_web/internal/validate"
)

func TestReview_Valid(t *testing.T) {
	res := validate.Review(validate.ReviewForm{Text: "  great stay  ", Rating: "4"})
	require.True(t, res.OK(), "errors: %v", res.Errors)
	assert.Equal(t, "great stay", res.Text)
	assert.Equal(t, 4, res.Rating)
}

func TestReview_Invalid(t *testing.T) {
	cases := []struct {
		name string
		form validate.ReviewForm
	}{
		{"empty text", validate.ReviewForm{Text: "   ", Rating: "4"}},
		{"missing rating", validate.ReviewForm{Text: "ok", Rating: ""}},
		{"rating zero", validate.ReviewForm{Text: "ok", Rating: "0"}},
		{"rating six", validate.ReviewForm{Text: "ok", Rating: "6"}},
		{"rating fractional", validate.ReviewForm{Text: "ok", Rating: "4.5"}},
		{"rating words", validate.ReviewForm{Text: "ok", Rating: "five"}},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			res := validate.Review(c.form)
			require.False(t, res.OK())
			require.NotEmpty(t, res.Errors)
		})
	}
}

func TestRegister_AllFieldsRequired(t *testing.T) {
	res := validate.Register(validate.RegisterForm{})
	require.False(t, res.OK())
	assert.Len(t, res.Errors, 5)

	res = validate.Register(validate.RegisterForm{
		FirstName: "Ana", LastName: "B", UserName: "anab",
		Email: "ana@example.com", Password: "secret", Role: "owner",
	})
	require.True(t, res.OK(), "errors: %v", res.Errors)
	assert.Equal(t, "owner", res.Input.Role)
}

func TestRegister_EmailShape(t *testing.T) {
	res := validate.Register(validate.RegisterForm{
		FirstName: "Ana", LastName: "B", UserName: "anab",
		Email: "not-an-email", Password: "secret",
	})
	require.False(t, res.OK())
}
