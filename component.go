package pinboard

import (
	"fmt"

	"github.com/livetemplate/pinboard/internal/dom"
)

// Component is anything that can be attached to a container and removed from it.
type Component interface {
	AttachTo(parent *dom.Element, pos dom.InsertPosition) error
	RemoveFrom(parent *dom.Element) error
}

// Composable is a component that accepts nested children.
type Composable interface {
	AddChild(child Component) error
}

// DefaultPosition is where components attach when the caller has no preference.
const DefaultPosition = dom.AfterBegin

// Base implements Component on top of a single root element. Concrete
// components embed it and keep references to their own sub-regions.
type Base struct {
	root *dom.Element
}

// NewBase wraps the builder output for the named component. The output must
// be exactly one element.
func NewBase(name string, nodes ...*dom.Element) (*Base, error) {
	var root *dom.Element
	roots := 0
	for _, n := range nodes {
		if n != nil {
			root = n
			roots++
		}
	}
	if roots != 1 {
		return nil, &TemplateError{Component: name, Roots: roots}
	}
	return &Base{root: root}, nil
}

// Root returns the component's root element.
func (b *Base) Root() *dom.Element {
	return b.root
}

// AttachTo inserts the root element relative to parent.
func (b *Base) AttachTo(parent *dom.Element, pos dom.InsertPosition) error {
	if parent == nil {
		return fmt.Errorf("attach: nil container")
	}
	return parent.InsertAdjacent(pos, b.root)
}

// RemoveFrom detaches the root element from parent.
func (b *Base) RemoveFrom(parent *dom.Element) error {
	if err := parent.RemoveChild(b.root); err != nil {
		return fmt.Errorf("remove: %w", err)
	}
	return nil
}
