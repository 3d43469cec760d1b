package utils

import (
	"fmt"
	"strings"
	"unicode"

	"gin-shop/internals/config"
)

// Characters that satisfy the symbol-class requirement.
const passwordSymbols = "!@#$%&'()*+,-./:;<=>?[\\]^_`{|}~"

// PolicyViolation is returned when a candidate password fails the
// configured complexity rules. Its message lists every enabled
// requirement, not just the ones the candidate missed.
type PolicyViolation struct {
	Message string
}

func (e *PolicyViolation) Error() string {
	return e.Message
}

// ValidatePassword checks a candidate password against the policy.
// It has no side effects and is shared by signup and password reset.
func ValidatePassword(candidate string, policy config.PasswordPolicy) error {
	var hasUpper, hasLower, hasDigit, hasSymbol bool
	for _, r := range candidate {
		switch {
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsDigit(r):
			hasDigit = true
		case strings.ContainsRune(passwordSymbols, r):
			hasSymbol = true
		}
	}

	length := len(candidate)
	ok := length >= policy.MinLength && length <= policy.MaxLength &&
		(!policy.RequireUppercase || hasUpper) &&
		(!policy.RequireLowercase || hasLower) &&
		(!policy.RequireDigit || hasDigit) &&
		(!policy.RequireSymbol || hasSymbol)
	if ok {
		return nil
	}
	return &PolicyViolation{Message: policyMessage(policy)}
}

// policyMessage assembles the requirement list in a fixed order
// (length, uppercase, lowercase, digit, symbol), comma-joined with a
// final "and" before the last item.
func policyMessage(policy config.PasswordPolicy) string {
	items := []string{
		fmt.Sprintf("be between %d and %d characters", policy.MinLength, policy.MaxLength),
	}

	var classes []string
	if policy.RequireUppercase {
		classes = append(classes, "uppercase letters")
	}
	if policy.RequireLowercase {
		classes = append(classes, "lowercase letters")
	}
	if policy.RequireDigit {
		classes = append(classes, "digits")
	}
	if policy.RequireSymbol {
		classes = append(classes, "symbols")
	}
	for i, class := range classes {
		if i == 0 {
			items = append(items, "contain "+class)
		} else {
			items = append(items, class)
		}
	}

	if len(items) == 1 {
		return "must " + items[0]
	}
	return "must " + strings.Join(items[:len(items)-1], ", ") + " and " + items[len(items)-1]
}
