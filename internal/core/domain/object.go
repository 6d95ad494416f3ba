package domain

import (
	"sort"
	"strings"
	"unicode"
)

// ObjectKind is the category of a programmable database object
type ObjectKind int

const (
	KindStoredProcedure ObjectKind = iota + 1
	KindScalarFunction
	KindInlineTableValuedFunction
	KindTableValuedFunction
	KindTrigger
)

// AllKinds lists every supported kind in declaration order
var AllKinds = []ObjectKind{
	KindStoredProcedure,
	KindScalarFunction,
	KindInlineTableValuedFunction,
	KindTableValuedFunction,
	KindTrigger,
}

var kindNames = map[ObjectKind]string{
	KindStoredProcedure:           "SQL_STORED_PROCEDURE",
	KindScalarFunction:            "SQL_SCALAR_FUNCTION",
	KindInlineTableValuedFunction: "SQL_INLINE_TABLE_VALUED_FUNCTION",
	KindTableValuedFunction:       "SQL_TABLE_VALUED_FUNCTION",
	KindTrigger:                   "SQL_TRIGGER",
}

// String returns the sys.objects type_desc of the kind
func (k ObjectKind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "UNKNOWN"
}

// IsFunction reports whether the kind is one of the three function kinds
func (k ObjectKind) IsFunction() bool {
	switch k {
	case KindScalarFunction, KindInlineTableValuedFunction, KindTableValuedFunction:
		return true
	}
	return false
}

// ParseObjectKind maps a sys.objects type_desc onto an ObjectKind
func ParseObjectKind(typeDesc string) (ObjectKind, error) {
	typeDesc = strings.ToUpper(strings.TrimSpace(typeDesc))
	for kind, name := range kindNames {
		if name == typeDesc {
			return kind, nil
		}
	}
	return 0, &UnsupportedKindError{Kind: typeDesc}
}

// MarshalText implements encoding.TextMarshaler
func (k ObjectKind) MarshalText() ([]byte, error) {
	if _, ok := kindNames[k]; !ok {
		return nil, &UnsupportedKindError{Kind: k.String()}
	}
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (k *ObjectKind) UnmarshalText(text []byte) error {
	kind, err := ParseObjectKind(string(text))
	if err != nil {
		return err
	}
	*k = kind
	return nil
}

// SqlObject is a snapshot of one routine, read either from a file or from
// the database.
type SqlObject struct {
	Name           string     // Lowercased object name, unique within a set
	Kind           ObjectKind // Object kind
	Text           string     // Definition as authored/stored
	NormalizedText string     // Normalize(Text), only used for comparison
	IsNew          bool       // Set by reconciliation when absent from the database
}

// NewSqlObject builds an object, lowercasing the name and deriving the
// normalized text.
func NewSqlObject(name string, kind ObjectKind, text string) SqlObject {
	return SqlObject{
		Name:           strings.ToLower(name),
		Kind:           kind,
		Text:           text,
		NormalizedText: Normalize(text),
	}
}

// SameText reports whether both objects have the same normalized definition
func (o SqlObject) SameText(other SqlObject) bool {
	return o.NormalizedText == other.NormalizedText
}

// ObjectSet maps lowercased names to objects
type ObjectSet map[string]SqlObject

// Add inserts obj keyed by its name. An existing entry is replaced.
func (s ObjectSet) Add(obj SqlObject) {
	s[obj.Name] = obj
}

// Names returns the set's keys in ascending order
func (s ObjectSet) Names() []string {
	names := make([]string, 0, len(s))
	for name := range s {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// SortByName orders objects by ascending name in place
func SortByName(objects []SqlObject) {
	sort.Slice(objects, func(i, j int) bool {
		return objects[i].Name < objects[j].Name
	})
}

// Normalize right-trims every line of text and drops the lines that end up
// empty. Leading whitespace is preserved.
func Normalize(text string) string {
	lines := strings.Split(text, "\n")
	kept := lines[:0]
	for _, line := range lines {
		line = strings.TrimRightFunc(line, unicode.IsSpace)
		if line != "" {
			kept = append(kept, line)
		}
	}
	return strings.Join(kept, "\n")
}
