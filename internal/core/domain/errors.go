package domain

import "fmt"

// UnknownObjectKindError is returned when a definition matches none of the
// CREATE PROCEDURE / FUNCTION / TRIGGER phrases.
type UnknownObjectKindError struct {
	Name string // Object (file) name, empty when classifying bare text
}

func (e *UnknownObjectKindError) Error() string {
	if e.Name == "" {
		return "can't find object type"
	}
	return fmt.Sprintf("can't find type for %s", e.Name)
}

// KindMismatchError is returned when the same name has a different kind in
// the files than in the database.
type KindMismatchError struct {
	Name        string
	TargetKind  ObjectKind
	CurrentKind ObjectKind
}

func (e *KindMismatchError) Error() string {
	return fmt.Sprintf("%s: %s != %s", e.Name, e.TargetKind, e.CurrentKind)
}

// UnsupportedKindError is returned for a kind that has no script template
type UnsupportedKindError struct {
	Kind string
}

func (e *UnsupportedKindError) Error() string {
	return fmt.Sprintf("unsupported object kind: %s", e.Kind)
}
