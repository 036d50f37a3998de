package settings

import (
	"fmt"
	"strings"
)

// EnvPrefix marks environment variables that act like --set pairs:
// ASSEMBLY_SET_PUBLISH_BACKEND=git is publish-backend=git.
const EnvPrefix = "ASSEMBLY_SET_"

// ParsePairs splits key=value arguments. Later keys win.
func ParsePairs(args []string) (map[string]string, error) {
	out := make(map[string]string, len(args))
	for _, arg := range args {
		key, val, ok := strings.Cut(arg, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid setting %q (want key=value)", arg)
		}
		out[normalizeKey(key)] = strings.TrimSpace(val)
	}
	return out, nil
}

// FromEnv collects EnvPrefix variables from environ (os.Environ format).
func FromEnv(environ []string) map[string]string {
	out := make(map[string]string)
	for _, kv := range environ {
		key, val, ok := strings.Cut(kv, "=")
		if !ok || !strings.HasPrefix(key, EnvPrefix) {
			continue
		}
		name := normalizeKey(strings.TrimPrefix(key, EnvPrefix))
		if name != "" {
			out[name] = val
		}
	}
	return out
}

// Merge overlays scopes left to right.
func Merge(scopes ...map[string]string) map[string]string {
	out := make(map[string]string)
	for _, scope := range scopes {
		for k, v := range scope {
			out[normalizeKey(k)] = v
		}
	}
	return out
}
