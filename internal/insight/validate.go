package insight

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// Report fields by their wire names.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Validate checks every record of every window and returns an *InputError for
// the first problem found. Empty windows are valid.
func Validate(l *Listening) error {
	for _, w := range Windows {
		data := l.Window(w)

		seen := make(map[string]bool, len(data.Artists))
		for i, a := range data.Artists {
			if err := validateRecord(a, w, "artist", i); err != nil {
				return err
			}
			if seen[a.ID] {
				return &InputError{Window: w, Kind: "artist", Index: i, Field: "id", Reason: "duplicates " + a.ID}
			}
			seen[a.ID] = true
		}

		for i, t := range data.Tracks {
			if err := validateRecord(t, w, "track", i); err != nil {
				return err
			}
		}
	}
	return nil
}

func validateRecord(record any, w Window, kind string, index int) error {
	err := validate.Struct(record)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		return &InputError{Window: w, Kind: kind, Index: index, Field: fieldErrs[0].Field(), Reason: "is missing"}
	}
	return &InputError{Window: w, Kind: kind, Index: index, Reason: err.Error()}
}
