package screenersource

import (
	"errors"
	"regexp"
	"strings"

	"screener-service/internal/pkg/exceptions"
)

// ErrNotFound is wrapped by every source when a screener type has no
// definition.
var ErrNotFound = errors.New("screener definition not found")

var screenerTypePattern = regexp.MustCompile(`^[a-z0-9][a-z0-9_-]{0,63}$`)

// NormalizeType lowercases screenerType and rejects anything that could not
// be a file or object name, e.g. path separators.
func NormalizeType(screenerType string) (string, error) {
	t := strings.ToLower(strings.TrimSpace(screenerType))
	if !screenerTypePattern.MatchString(t) {
		return "", exceptions.ErrURLParamValidation(errors.New("invalid screener type"), "screenerType")
	}
	return t, nil
}

func notFound(screenerType, source string) error {
	return exceptions.ErrScreenerNotFound(ErrNotFound, screenerType, source)
}

// IsNotFound reports whether err means the definition does not exist.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
