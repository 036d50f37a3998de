package answers

import (
	"strings"

	"github.com/unkn0wn-root/assembly/internal/errdef"
)

// Complete walks the catalog in order and fills every asked question that has
// no value with its default. Values for questions that are not asked are
// dropped so the result only describes the prompts a user would have seen.
func Complete(catalog []Question, partial Set) Set {
	out := New(nil)
	for _, q := range catalog {
		if !q.Asked(out) {
			continue
		}
		if v, ok := partial.Get(q.Key); ok {
			out = out.With(q.Key, normalizeKind(q, v))
			continue
		}
		out = out.With(q.Key, q.DefaultFor(out))
	}
	return out
}

// Validate checks presence, kind and free-text rules for every asked
// question. Token membership is checked when flags are derived.
func Validate(catalog []Question, set Set) error {
	var problems []string
	for _, q := range catalog {
		if !q.Asked(set) {
			continue
		}
		v, ok := set.Get(q.Key)
		switch q.Kind {
		case KindText:
			s := ""
			if ok {
				s = strings.TrimSpace(v.String())
			}
			if ok && v.IsList() {
				problems = append(problems, q.Key+": expected a single value")
				continue
			}
			if q.Validate != nil {
				if err := q.Validate(s); err != nil {
					problems = append(problems, q.Key+": "+err.Error())
				}
			} else if s == "" {
				problems = append(problems, q.Key+": value is required")
			}
		case KindSingle:
			switch {
			case !ok || strings.TrimSpace(v.String()) == "":
				problems = append(problems, q.Key+": a selection is required")
			case v.IsList():
				problems = append(problems, q.Key+": expected one selection")
			}
		case KindMulti:
			if ok && !v.IsList() {
				problems = append(problems, q.Key+": expected a list")
			}
		}
	}
	if len(problems) == 0 {
		return nil
	}
	return errdef.New(errdef.CodeAnswers, "invalid answers: %s", strings.Join(problems, "; "))
}

func normalizeKind(q Question, v Value) Value {
	if q.Kind == KindMulti && !v.IsList() {
		return List(v.Items()...)
	}
	if q.Kind == KindText && !v.IsList() {
		return Scalar(strings.TrimSpace(v.String()))
	}
	return v
}
