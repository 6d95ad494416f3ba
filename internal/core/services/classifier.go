package services

import (
	"regexp"

	"github.com/enunezf/routinesync/internal/core/domain"
)

type kindPattern struct {
	re   *regexp.Regexp
	kind domain.ObjectKind
}

// Checked in order, the first match wins. Text-only inspection cannot tell
// table-valued functions from scalar ones, so every function is scalar here.
var kindPatterns = []kindPattern{
	{regexp.MustCompile(`(?i)\bCREATE PROCEDURE\b`), domain.KindStoredProcedure},
	{regexp.MustCompile(`(?i)\bCREATE FUNCTION\b`), domain.KindScalarFunction},
	{regexp.MustCompile(`(?i)\bCREATE TRIGGER\b`), domain.KindTrigger},
}

// Classify determines the kind of a definition from its CREATE statement
func Classify(text string) (domain.ObjectKind, error) {
	for _, p := range kindPatterns {
		if p.re.MatchString(text) {
			return p.kind, nil
		}
	}
	return 0, &domain.UnknownObjectKindError{}
}
