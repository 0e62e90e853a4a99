// Package common contains shared constants, sentinel errors and small helpers
// used across volunteerhub components.
package common

// AccessTokenHeaderName is the fallback HTTP header carrying a session token
// when no Authorization bearer header is present.
const AccessTokenHeaderName = "access_token"

// VerificationTokenSize is the number of random bytes in an email
// verification token (hex-encoded to twice as many characters).
const VerificationTokenSize = 16
