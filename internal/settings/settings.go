// Package settings applies key=value overrides on top of settings.toml.
package settings

import (
	"sort"
	"strings"

	"github.com/unkn0wn-root/assembly/internal/errdef"
)

type Matcher func(string) bool
type ApplyFunc func(key, val string) error

type Handler struct {
	Match Matcher
	Apply ApplyFunc
}

// Applier routes each key to the first handler that matches it.
type Applier struct {
	handlers []Handler
}

func New(handlers ...Handler) Applier {
	return Applier{handlers: handlers}
}

// ApplyAll applies every pair in sorted key order and returns the pairs no
// handler claimed.
func (a Applier) ApplyAll(pairs map[string]string) (map[string]string, error) {
	left := make(map[string]string)
	for _, k := range sortedKeys(pairs) {
		key := normalizeKey(k)
		if key == "" {
			continue
		}
		h, ok := a.find(key)
		if !ok {
			left[key] = pairs[k]
			continue
		}
		if h.Apply == nil {
			continue
		}
		if err := h.Apply(key, strings.TrimSpace(pairs[k])); err != nil {
			return nil, errdef.Wrap(errdef.CodeSettings, err, "%s", key)
		}
	}
	return left, nil
}

// ApplyStrict is ApplyAll that fails on unclaimed keys.
func (a Applier) ApplyStrict(pairs map[string]string) error {
	left, err := a.ApplyAll(pairs)
	if err != nil {
		return err
	}
	if len(left) == 0 {
		return nil
	}
	return errdef.New(errdef.CodeSettings, "unknown setting(s): %s", strings.Join(sortedKeys(left), ", "))
}

func (a Applier) find(key string) (Handler, bool) {
	for _, h := range a.handlers {
		if h.Match != nil && h.Match(key) {
			return h, true
		}
	}
	return Handler{}, false
}

func PrefixMatcher(prefixes ...string) Matcher {
	return func(key string) bool {
		key = normalizeKey(key)
		for _, p := range prefixes {
			if strings.HasPrefix(key, normalizeKey(p)) {
				return true
			}
		}
		return false
	}
}

func ExactMatcher(keys ...string) Matcher {
	return func(key string) bool {
		key = normalizeKey(key)
		for _, k := range keys {
			if key == normalizeKey(k) {
				return true
			}
		}
		return false
	}
}

// normalizeKey lowercases and maps '_' and '.' to '-' so publish.fail_fast
// and publish-fail-fast name the same setting.
func normalizeKey(k string) string {
	k = strings.ToLower(strings.TrimSpace(k))
	return strings.NewReplacer("_", "-", ".", "-").Replace(k)
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
