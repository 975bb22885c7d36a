// Package routes holds the static access classification of every page path.
// The classification is configuration, not derived data: every reachable
// page maps to exactly one class, and unlisted paths require authentication.
package routes

// Class tags how much session state a page requires before rendering.
type Class int

const (
	// Public pages render for anyone
	Public Class = iota
	// Private pages require a present token
	Private
	// PrivateVerified pages additionally require a verified email
	PrivateVerified
)

func (c Class) String() string {
	switch c {
	case Public:
		return "public"
	case Private:
		return "private"
	case PrivateVerified:
		return "private+verified"
	default:
		return "unknown"
	}
}

// Page paths
const (
	PathIndex              = "/"
	PathFeatures           = "/features"
	PathLogin              = "/login"
	PathRegister           = "/register"
	PathVerified           = "/verified"
	PathResendVerification = "/resend-verification"
	PathCreate             = "/create"
	PathMyWords            = "/my-words"
	PathMyAccount          = "/my-account"
	PathImport             = "/import"
)

var classification = map[string]Class{
	PathIndex:              Public,
	PathFeatures:           Public,
	PathLogin:              Public,
	PathRegister:           Public,
	PathVerified:           Public,
	PathResendVerification: Public,
	PathCreate:             Private,
	PathMyWords:            PrivateVerified,
	PathMyAccount:          PrivateVerified,
	PathImport:             PrivateVerified,
}

// Classify returns the access class for a page path. Unknown paths are
// Private: an unlisted page fails closed, never open.
func Classify(path string) Class {
	if class, ok := classification[path]; ok {
		return class
	}
	return Private
}

// IsPublic reports whether the path renders without authentication.
func IsPublic(path string) bool {
	return Classify(path) == Public
}
