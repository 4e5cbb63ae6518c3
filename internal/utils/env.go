package utils

import (
	"os"
	"strings"
)

// SafeEnv reads an environment variable, falling back when it is unset or
// blank. Used for the few settings read outside the server's parsed config,
// such as the JWT secret.
func SafeEnv(key, fallback string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	return v
}
