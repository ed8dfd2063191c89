package env

import (
	"os"
	"strings"
)

const prefix = "GUDANG_"

// Get returns GUDANG_<key>, then the bare key, then fallback.
func Get(key, fallback string) string {
	for _, name := range []string{prefix + key, key} {
		if val := strings.TrimSpace(os.Getenv(name)); val != "" {
			return val
		}
	}
	return fallback
}
