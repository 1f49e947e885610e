package utils

import (
	"os"
	"strings"
)

// EnvTrueValues contains strings that we interpret as boolean true in env vars.
var EnvTrueValues = []string{"true", "yes", "1", "TRUE", "YES"}

// PackageDirEnvVar returns the environment variable consulted for the root directory of the named
// package, e.g. "iiwa_description" becomes "IIWA_DESCRIPTION_DIR".
func PackageDirEnvVar(pkg string) string {
	return strings.ToUpper(strings.ReplaceAll(pkg, "-", "_")) + "_DIR"
}

// LookupPackageDir returns the directory registered for the named package in the environment, if any.
func LookupPackageDir(pkg string) (string, bool) {
	dir, ok := os.LookupEnv(PackageDirEnvVar(pkg))
	if !ok || dir == "" {
		return "", false
	}
	return dir, true
}

// EnvFlagSet reports whether the given environment variable holds one of EnvTrueValues.
func EnvFlagSet(name string) bool {
	val := os.Getenv(name)
	for _, t := range EnvTrueValues {
		if val == t {
			return true
		}
	}
	return false
}
