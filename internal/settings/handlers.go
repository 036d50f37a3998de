package settings

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/unkn0wn-root/assembly/internal/config"
)

// Handlers binds every known key to a field of s.
func Handlers(s *config.Settings) []Handler {
	return []Handler{
		PublishHandler(&s.Publish),
		InstallHandler(&s.Install),
		LogHandler(&s.Log),
		DefaultsHandler(&s.Defaults),
	}
}

func PublishHandler(p *config.Publish) Handler {
	return Handler{
		Match: PrefixMatcher("publish-"),
		Apply: func(key, val string) error {
			switch strings.TrimPrefix(key, "publish-") {
			case "backend":
				p.Backend = val
			case "branch":
				p.Branch = val
			case "author-name":
				p.AuthorName = val
			case "author-email":
				p.AuthorEmail = val
			case "fail-fast":
				b, err := parseBool(val)
				if err != nil {
					return err
				}
				p.FailFast = b
			default:
				return fmt.Errorf("unknown publish setting")
			}
			return nil
		},
	}
}

func InstallHandler(i *config.Install) Handler {
	return Handler{
		Match: ExactMatcher("install-run"),
		Apply: func(_, val string) error {
			b, err := parseBool(val)
			if err != nil {
				return err
			}
			i.Run = b
			return nil
		},
	}
}

func LogHandler(l *config.Log) Handler {
	return Handler{
		Match: ExactMatcher("log-level"),
		Apply: func(_, val string) error {
			var lvl slog.Level
			if err := lvl.UnmarshalText([]byte(val)); err != nil {
				return err
			}
			l.Level = strings.ToLower(val)
			return nil
		},
	}
}

func DefaultsHandler(d *config.Defaults) Handler {
	return Handler{
		Match: PrefixMatcher("default-"),
		Apply: func(key, val string) error {
			switch strings.TrimPrefix(key, "default-") {
			case "preprocessor":
				d.Preprocessor = val
			case "framework":
				d.Framework = val
			case "vcs":
				d.VCS = val
			case "account":
				d.Account = val
			case "features":
				d.SetFeatures(splitList(val))
			default:
				return fmt.Errorf("unknown default")
			}
			return nil
		},
	}
}

func parseBool(val string) (bool, error) {
	b, err := strconv.ParseBool(strings.TrimSpace(val))
	if err != nil {
		return false, fmt.Errorf("expected a boolean, got %q", val)
	}
	return b, nil
}

// splitList keeps an explicit empty value as an empty, non-nil list so
// "default-features=" unchecks every feature.
func splitList(val string) []string {
	out := []string{}
	for _, item := range strings.Split(val, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
