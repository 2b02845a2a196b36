package identity

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/pmezard/go-difflib/difflib"

	"github.com/elimuhq/elimu/core"
)

var (
	allRolesTag  = "allroles"
	allRolesText = "invalid role"

	// self-registration password policy
	pwdMinLen     = 8
	pwdMinLenTag  = "pwdminlen"
	pwdMinLenText = fmt.Sprintf("password must contain at least %d characters", pwdMinLen)

	pwdMinDigits     = 3
	pwdMinDigitsTag  = "pwdmindigits"
	pwdMinDigitsText = fmt.Sprintf("password must contain at least %d digits", pwdMinDigits)

	pwdNoSpaceTag  = "pwdnospace"
	pwdNoSpaceText = "password must not contain whitespace"

	pwdNotAllNumTag  = "pwdnotallnum"
	pwdNotAllNumText = "password cannot be entirely numeric"

	pwdComplexityTag  = "pwdcplx"
	pwdComplexityText = "password must contain at least 1 uppercase character and 1 special character"
	specialRegex      = regexp.MustCompile("[^A-Za-z0-9]")

	pwdMaxSim      = .7
	pwdAttrSimTag  = "pwdtoosim"
	pwdAttrSimText = "password cannot be similar to your name or email"
)

// InitValidators registers this package's custom validators and translations.
func InitValidators(validate *validator.Validate, translator ut.Translator) {
	_ = validate.RegisterValidation(allRolesTag, allRolesValidation)
	core.RegisterCustomTranslation(validate, translator, allRolesTag, allRolesText)

	validate.RegisterStructValidation(studentStructValidation, NewStudent{})
	validate.RegisterStructValidation(studentStructValidation, UpdateStudent{})
	core.RegisterCustomTranslation(validate, translator, pwdMinLenTag, pwdMinLenText)
	core.RegisterCustomTranslation(validate, translator, pwdMinDigitsTag, pwdMinDigitsText)
	core.RegisterCustomTranslation(validate, translator, pwdNoSpaceTag, pwdNoSpaceText)
	core.RegisterCustomTranslation(validate, translator, pwdNotAllNumTag, pwdNotAllNumText)
	core.RegisterCustomTranslation(validate, translator, pwdComplexityTag, pwdComplexityText)
	core.RegisterCustomTranslation(validate, translator, pwdAttrSimTag, pwdAttrSimText)
}

// allRolesValidation checks that a provided role tag is in AllRoles.
func allRolesValidation(fl validator.FieldLevel) bool {
	role := NormalizeRole(fl.Field().String())
	for _, r := range AllRoles {
		if role == r {
			return true
		}
	}
	return false
}

// studentStructValidation applies the self-registration password policy to
// NewStudent and UpdateStudent structs. Operator passwords follow the looser
// min-6 policy expressed as a field tag on NewAdmin and AdminPassword instead.
func studentStructValidation(sl validator.StructLevel) {
	switch s := sl.Current().Interface().(type) {
	case NewStudent:
		validatePassword(s.Password, s.FullName, s.Email, sl)
	case UpdateStudent:
		if s.Password != "" {
			validatePassword(s.Password, s.FullName, "", sl)
		}
	}
}

// validatePassword applies the password policy to the provided password:
// - minLen: 8
// - no whitespace
// - at least 3 digits, but not all numeric
// - complexity: 1 upper & 1 special
// - no similarity with the holder's name or email
func validatePassword(pwd, name, email string, sl validator.StructLevel) {
	reportErr := func(tag string) {
		sl.ReportError(pwd, "password", "Password", tag, "")
	}

	var (
		digitCount int
		hasUpper   bool
	)

	pwdLen := len(pwd)
	if pwdLen < pwdMinLen {
		reportErr(pwdMinLenTag)
		return
	}
	for _, char := range pwd {
		if unicode.IsSpace(char) {
			reportErr(pwdNoSpaceTag)
			return
		}
		if unicode.IsDigit(char) {
			digitCount++
		}
		if !hasUpper && unicode.IsUpper(char) {
			hasUpper = true
		}
	}

	if digitCount == pwdLen {
		reportErr(pwdNotAllNumTag)
		return
	}
	if digitCount < pwdMinDigits {
		reportErr(pwdMinDigitsTag)
		return
	}
	if !hasUpper || !specialRegex.MatchString(pwd) {
		reportErr(pwdComplexityTag)
		return
	}

	getRatio := func(pass, attr string) float64 {
		if attr == "" {
			return 0
		}
		return difflib.NewMatcher(strings.Split(pass, ""), strings.Split(attr, "")).QuickRatio()
	}
	if getRatio(pwd, name) >= pwdMaxSim || getRatio(pwd, email) >= pwdMaxSim {
		reportErr(pwdAttrSimTag)
		return
	}
}
