// env.go loads optional local development configuration and the ADAN_PACKAGE_PATH environment variable
// described in spec.md ch.6.

package util

import (
	"os"

	"github.com/joho/godotenv"
)

// EnvPackagePath is the name of the environment variable that, when set, is prepended to the library
// search path list.
const EnvPackagePath = "ADAN_PACKAGE_PATH"

// LoadEnv loads a ".env" file from the current working directory if one is present. A missing file is not
// an error: this is a convenience for local development, not a requirement of the compiler's configuration.
func LoadEnv() {
	_ = godotenv.Load()
}

// PackagePath returns the value of ADAN_PACKAGE_PATH, or the empty string if unset.
func PackagePath() string {
	return os.Getenv(EnvPackagePath)
}
