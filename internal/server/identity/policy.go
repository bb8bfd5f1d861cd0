package identity

import (
	"fmt"
	"strings"

	"github.com/dmitrijs2005/recipekeeper/internal/server/validation"
)

// Error codes produced by identity creation.
const (
	CodePasswordTooShort                = "PasswordTooShort"
	CodePasswordRequiresDigit           = "PasswordRequiresDigit"
	CodePasswordRequiresLower           = "PasswordRequiresLower"
	CodePasswordRequiresUpper           = "PasswordRequiresUpper"
	CodePasswordRequiresNonAlphanumeric = "PasswordRequiresNonAlphanumeric"
	CodePasswordRequiresUniqueChars     = "PasswordRequiresUniqueChars"
	CodeInvalidUserName                 = "InvalidUserName"
)

// AllowedUserNameCharacters is the username alphabet.
const AllowedUserNameCharacters = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789-._@+"

// PasswordPolicy describes the strength rules checked before hashing.
type PasswordPolicy struct {
	RequiredLength         int
	RequiredUniqueChars    int
	RequireDigit           bool
	RequireLowercase       bool
	RequireUppercase       bool
	RequireNonAlphanumeric bool
}

var DefaultPasswordPolicy = PasswordPolicy{
	RequiredLength:         8,
	RequiredUniqueChars:    1,
	RequireDigit:           true,
	RequireLowercase:       true,
	RequireUppercase:       true,
	RequireNonAlphanumeric: true,
}

// Check returns every rule the password breaks.
func (p PasswordPolicy) Check(password string) validation.Result {
	var res validation.Result
	add := func(code, msg string) {
		res = append(res, validation.Error{Field: "password", Code: code, Message: msg})
	}

	if len(password) < p.RequiredLength {
		add(CodePasswordTooShort, fmt.Sprintf("Passwords must be at least %d characters.", p.RequiredLength))
	}

	var digit, lower, upper, other bool
	unique := make(map[rune]struct{})
	for _, c := range password {
		switch {
		case c >= '0' && c <= '9':
			digit = true
		case c >= 'a' && c <= 'z':
			lower = true
		case c >= 'A' && c <= 'Z':
			upper = true
		default:
			other = true
		}
		unique[c] = struct{}{}
	}

	if p.RequireNonAlphanumeric && !other {
		add(CodePasswordRequiresNonAlphanumeric, "Passwords must have at least one non alphanumeric character.")
	}
	if p.RequireDigit && !digit {
		add(CodePasswordRequiresDigit, "Passwords must have at least one digit ('0'-'9').")
	}
	if p.RequireLowercase && !lower {
		add(CodePasswordRequiresLower, "Passwords must have at least one lowercase ('a'-'z').")
	}
	if p.RequireUppercase && !upper {
		add(CodePasswordRequiresUpper, "Passwords must have at least one uppercase ('A'-'Z').")
	}
	if p.RequiredUniqueChars >= 1 && len(unique) < p.RequiredUniqueChars {
		add(CodePasswordRequiresUniqueChars,
			fmt.Sprintf("Passwords must use at least %d different characters.", p.RequiredUniqueChars))
	}

	return res
}

// CheckUserName rejects names with characters outside AllowedUserNameCharacters.
func CheckUserName(name string) validation.Result {
	if name == "" || strings.Trim(name, AllowedUserNameCharacters) != "" {
		return validation.Fail("userName", CodeInvalidUserName,
			fmt.Sprintf("Username '%s' is invalid, can only contain letters or digits.", name))
	}
	return nil
}
