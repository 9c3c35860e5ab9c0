package lockgate

import "regexp"

// emailPattern matches the address shapes treated as email logins. Anything
// else is looked up as an account name.
var emailPattern = regexp.MustCompile(`^[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,6}$`)

// ResolveLookupField decides whether an identifier is an email address or an
// account name, purely by format.
func ResolveLookupField(identifier string) LookupField {
	if emailPattern.MatchString(identifier) {
		return FieldEmail
	}
	return FieldName
}

// isEmailAddress reports whether s is a syntactically plausible address.
// Two-factor issuance requires one; a record with two-factor enabled but a
// malformed address falls back to a direct login.
func isEmailAddress(s string) bool {
	return emailPattern.MatchString(s)
}
