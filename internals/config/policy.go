package config

// PasswordPolicy holds the complexity rules a candidate password is checked against.
// The zero requirements (length bounds only) match the policy defaults.
type PasswordPolicy struct {
	MinLength        int
	MaxLength        int
	RequireUppercase bool
	RequireLowercase bool
	RequireDigit     bool
	RequireSymbol    bool
}

// PasswordPolicyFromEnv loads the policy toggles. The key names are kept
// exactly as the deployment configuration defines them.
func PasswordPolicyFromEnv() PasswordPolicy {
	return PasswordPolicy{
		MinLength:        GetEnvAsInt("PASSWORD_MIN", 8, true),
		MaxLength:        GetEnvAsInt("PASSWORD_MAX", 64, true),
		RequireUppercase: GetEnvAsBool("PASSWORD_MAIUSCULA", false),
		RequireLowercase: GetEnvAsBool("PASSWORD_MINUSCULA", false),
		RequireDigit:     GetEnvAsBool("PASSWORD_NUMERO", false),
		RequireSymbol:    GetEnvAsBool("PASSWORD_SIMBOLO", false),
	}
}
