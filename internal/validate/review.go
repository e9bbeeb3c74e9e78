package validate

import (
	"errors"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

type ReviewForm struct {
	Text   string
	Rating string
}

type ReviewResult struct {
	Fields map[string]Field
	Errors []string
	Text   string
	Rating int
}

func (r ReviewResult) OK() bool { return len(r.Errors) == 0 }

type reviewRules struct {
	Text   string `validate:"required"`
	Rating int    `validate:"gte=1,lte=5"`
}

// Review checks the review form: text non-empty after trimming, rating
// an integer 1..5. The rating stays an integer all the way to the wire.
func Review(f ReviewForm) ReviewResult {
	res := ReviewResult{Fields: make(map[string]Field, 2)}

	rules := reviewRules{Text: strings.TrimSpace(f.Text)}

	rawRating := strings.TrimSpace(f.Rating)
	if rawRating == "" {
		res.Fields["rating"] = Field{State: Invalid, Message: "rating is required"}
	} else if n, err := strconv.Atoi(rawRating); err != nil {
		res.Fields["rating"] = Field{State: Invalid, Message: "rating must be a whole number"}
	} else {
		rules.Rating = n
	}

	if err := v.Struct(rules); err != nil {
		var ve validator.ValidationErrors
		if errors.As(err, &ve) {
			for _, fe := range ve {
				name := strings.ToLower(fe.Field())
				if res.Fields[name].IsInvalid() {
					continue
				}
				res.Fields[name] = Field{State: Invalid, Message: fieldMessage(fe)}
			}
		} else {
			res.Errors = append(res.Errors, err.Error())
		}
	}

	for _, name := range []string{"text", "rating"} {
		fld, seen := res.Fields[name]
		if fld.IsInvalid() {
			res.Errors = append(res.Errors, fld.Message)
			continue
		}
		if !seen {
			res.Fields[name] = Field{State: Valid}
		}
	}

	if len(res.Errors) == 0 {
		res.Text = rules.Text
		res.Rating = rules.Rating
	}
	return res
}
