package pinboard

import "fmt"

// TemplateError reports a component builder that did not yield exactly one
// root element.
type TemplateError struct {
	Component string // Component being built (e.g., "note")
	Roots     int    // Number of root elements the builder produced
}

// Error implements the error interface.
func (e *TemplateError) Error() string {
	return fmt.Sprintf("%s component: template must have exactly one root element, got %d", e.Component, e.Roots)
}

// UnknownKindError reports an ItemSpec whose kind has no component.
type UnknownKindError struct {
	Kind string
}

func (e *UnknownKindError) Error() string {
	return fmt.Sprintf("unknown item kind %q (expected one of %v)", e.Kind, Kinds())
}
