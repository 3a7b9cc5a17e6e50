package auth

import (
	"github.com/pquerna/otp/totp"
)

// GenerateTOTPSecret creates a new TOTP secret for a user and returns the
// shared secret together with the otpauth:// provisioning URI.
func GenerateTOTPSecret(issuer, email string) (secret, provisioningURI string, err error) {
	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      issuer,
		AccountName: email,
	})
	if err != nil {
		return "", "", err
	}
	return key.Secret(), key.URL(), nil
}

// ValidateTOTPCode checks a 6-digit code against the stored secret.
func ValidateTOTPCode(code, secret string) bool {
	return totp.Validate(code, secret)
}
