package schemavalidator

import (
	"regexp"
	"time"

	"github.com/Masterminds/semver/v3"
	"github.com/go-playground/validator/v10"
)

var noSpacesRe = regexp.MustCompile(`^[^\s]+$`)

func noSpacesValidator(fl validator.FieldLevel) bool {
	return noSpacesRe.MatchString(fl.Field().String())
}

// durationValidator accepts any string time.ParseDuration accepts.
func durationValidator(fl validator.FieldLevel) bool {
	_, err := time.ParseDuration(fl.Field().String())
	return err == nil
}

// semverValidator accepts a semantic version, with or without a leading v.
func semverValidator(fl validator.FieldLevel) bool {
	_, err := semver.NewVersion(fl.Field().String())
	return err == nil
}

// notBlankValidator rejects strings made only of whitespace.
func notBlankValidator(fl validator.FieldLevel) bool {
	s := fl.Field().String()
	for _, r := range s {
		if r != ' ' && r != '\t' && r != '\n' && r != '\r' {
			return true
		}
	}
	return false
}

func registerValidators(v *validator.Validate) {
	v.RegisterValidation("noSpaces", noSpacesValidator)
	v.RegisterValidation("duration", durationValidator)
	v.RegisterValidation("semver", semverValidator)
	v.RegisterValidation("notBlank", notBlankValidator)
}
