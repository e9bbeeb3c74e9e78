package validate

import (
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"

	"hbnb_web/internal/domain"
)

// PlaceForm is raw form input for create/edit, before any parsing.
type PlaceForm struct {
	Title       string
	Description string
	Price       string
	Latitude    string
	Longitude   string
	Amenities   []string
}

// PlaceFields is the fixed render order of the form's validated fields.
var PlaceFields = []string{"title", "price", "latitude", "longitude"}

type PlaceResult struct {
	Fields map[string]Field
	Errors []string // every violation, aggregated for the form banner
	Input  domain.PlaceInput
}

func (r PlaceResult) OK() bool { return len(r.Errors) == 0 }

// rules mirror the page contract: title trimmed length >= 3, price a
// positive number, latitude/longitude within the geographic ranges.
type placeRules struct {
	Title     string  `validate:"required,min=3"`
	Price     float64 `validate:"gt=0"`
	Latitude  float64 `validate:"gte=-90,lte=90"`
	Longitude float64 `validate:"gte=-180,lte=180"`
}

// Place re-validates every field regardless of any earlier per-field
// state (stale UI state is not trusted) and reports all violations at
// once rather than stopping at the first.
func Place(f PlaceForm) PlaceResult {
	res := PlaceResult{Fields: make(map[string]Field, len(PlaceFields))}

	rules := placeRules{Title: strings.TrimSpace(f.Title)}

	// parse stage: numbers that don't parse are invalid before the
	// rule stage ever sees them
	numbers := []struct {
		name string
		raw  string
		dst  *float64
	}{
		{"price", f.Price, &rules.Price},
		{"latitude", f.Latitude, &rules.Latitude},
		{"longitude", f.Longitude, &rules.Longitude},
	}
	for _, n := range numbers {
		val, present, err := parseNumber(n.raw)
		switch {
		case !present:
			res.Fields[n.name] = Field{State: Invalid, Message: n.name + " is required"}
		case err != nil:
			res.Fields[n.name] = Field{State: Invalid, Message: n.name + " must be a number"}
		default:
			*n.dst = val
		}
	}

	if err := v.Struct(rules); err != nil {
		var ve validator.ValidationErrors
		if errors.As(err, &ve) {
			for _, fe := range ve {
				name := strings.ToLower(fe.Field())
				if res.Fields[name].IsInvalid() {
					continue // parse error already reported for this field
				}
				res.Fields[name] = Field{State: Invalid, Message: fieldMessage(fe)}
			}
		} else {
			res.Errors = append(res.Errors, err.Error())
		}
	}

	for _, name := range PlaceFields {
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
		amenities := f.Amenities
		if amenities == nil {
			amenities = []string{}
		}
		res.Input = domain.PlaceInput{
			Title:       rules.Title,
			Description: strings.TrimSpace(f.Description),
			Price:       rules.Price,
			Latitude:    rules.Latitude,
			Longitude:   rules.Longitude,
			Amenities:   amenities,
		}
	}
	return res
}
