// Package dom provides the server-side node tree the board components are
// built from. It mirrors the small part of the browser DOM the components
// need: element creation, adjacent insertion, removal, class lists, event
// listeners with bubbling, and HTML rendering.
package dom

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/google/uuid"
)

var (
	// ErrNotFound is returned when a lookup matches no element.
	ErrNotFound = errors.New("element not found")
	// ErrNotChild is returned when removing a node from a parent it is not attached to.
	ErrNotChild = errors.New("element is not a child of the container")
	// ErrNoParent is returned for sibling insertions on a detached element.
	ErrNoParent = errors.New("element has no parent")
)

// IDAttr is the attribute carrying an element's id in rendered HTML.
// Browser events reference their target through it.
const IDAttr = "data-id"

// InsertPosition selects where InsertAdjacent places a node, using the same
// names as the browser's insertAdjacentElement.
type InsertPosition string

const (
	BeforeBegin InsertPosition = "beforebegin"
	AfterBegin  InsertPosition = "afterbegin"
	BeforeEnd   InsertPosition = "beforeend"
	AfterEnd    InsertPosition = "afterend"
)

// Rect is the vertical extent of an element as last reported by the client.
type Rect struct {
	Top    float64 `json:"top"`
	Height float64 `json:"height"`
}

// Mid returns the vertical midpoint.
func (r Rect) Mid() float64 {
	return r.Top + r.Height/2
}

// Element is a node in the tree. Text holds the element's text content;
// elements with children render the text before them.
type Element struct {
	id       string
	tag      string
	classes  []string
	attrs    map[string]string
	text     string
	parent   *Element
	children []*Element

	listeners map[EventType][]Listener

	bounds    Rect
	hasBounds bool
}

// Option configures an element at construction time.
type Option func(*Element)

// Class adds CSS classes.
func Class(names ...string) Option {
	return func(e *Element) {
		for _, n := range names {
			e.AddClass(n)
		}
	}
}

// Attr sets an attribute.
func Attr(key, value string) Option {
	return func(e *Element) {
		e.SetAttr(key, value)
	}
}

// Text sets the text content.
func Text(s string) Option {
	return func(e *Element) {
		e.text = s
	}
}

// Children appends child elements.
func Children(children ...*Element) Option {
	return func(e *Element) {
		for _, c := range children {
			e.appendChild(c)
		}
	}
}

// New creates a detached element.
func New(tag string, opts ...Option) *Element {
	e := &Element{
		id:    uuid.NewString(),
		tag:   tag,
		attrs: make(map[string]string),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// ID returns the element's generated id.
func (e *Element) ID() string { return e.id }

func (e *Element) Tag() string { return e.tag }

// Parent returns the containing element, or nil when detached.
func (e *Element) Parent() *Element { return e.parent }

func (e *Element) TextContent() string { return e.text }

func (e *Element) SetText(s string) { e.text = s }

func (e *Element) Classes() []string { return slices.Clone(e.classes) }

func (e *Element) HasClass(name string) bool { return slices.Contains(e.classes, name) }

// Children returns a copy of the child list.
func (e *Element) Children() []*Element {
	return slices.Clone(e.children)
}

// AddClass adds a class if not already present.
func (e *Element) AddClass(name string) {
	if name == "" || e.HasClass(name) {
		return
	}
	e.classes = append(e.classes, name)
}

// RemoveClass removes a class if present.
func (e *Element) RemoveClass(name string) {
	e.classes = slices.DeleteFunc(e.classes, func(c string) bool { return c == name })
}

// SetAttr sets an attribute. "class" and the id attribute are managed by the
// element itself and cannot be set this way.
func (e *Element) SetAttr(key, value string) {
	switch key {
	case "class":
		e.classes = nil
		for _, c := range strings.Fields(value) {
			e.AddClass(c)
		}
	case IDAttr:
	default:
		e.attrs[key] = value
	}
}

// Attr returns an attribute value.
func (e *Element) Attr(key string) (string, bool) {
	v, ok := e.attrs[key]
	return v, ok
}

// SetBounds records the element's layout as seen by the client.
func (e *Element) SetBounds(r Rect) {
	e.bounds = r
	e.hasBounds = true
}

// ClearBounds forgets the recorded layout.
func (e *Element) ClearBounds() {
	e.bounds = Rect{}
	e.hasBounds = false
}

// Bounds returns the recorded layout and whether one was ever recorded.
func (e *Element) Bounds() (Rect, bool) {
	return e.bounds, e.hasBounds
}

// Index returns the element's position among its parent's children, or -1
// when detached.
func (e *Element) Index() int {
	if e.parent == nil {
		return -1
	}
	return slices.Index(e.parent.children, e)
}

// InsertAdjacent inserts node relative to e. A node that is already attached
// elsewhere is moved.
func (e *Element) InsertAdjacent(pos InsertPosition, node *Element) error {
	if node == nil {
		return fmt.Errorf("insert %s: nil element", pos)
	}
	if node == e || node.contains(e) {
		return fmt.Errorf("insert %s: element would become its own descendant", pos)
	}
	switch pos {
	case AfterBegin:
		node.detach()
		e.insertChildAt(0, node)
	case BeforeEnd:
		node.detach()
		e.appendChild(node)
	case BeforeBegin, AfterEnd:
		if e.parent == nil {
			return fmt.Errorf("insert %s: %w", pos, ErrNoParent)
		}
		node.detach()
		idx := e.Index()
		if pos == AfterEnd {
			idx++
		}
		e.parent.insertChildAt(idx, node)
	default:
		return fmt.Errorf("insert: unknown position %q", pos)
	}
	return nil
}

// RemoveChild detaches child from e.
func (e *Element) RemoveChild(child *Element) error {
	if child == nil || child.parent != e {
		return ErrNotChild
	}
	child.detach()
	return nil
}

// Query returns the first descendant (depth-first, document order) carrying
// the class.
func (e *Element) Query(class string) (*Element, error) {
	var found *Element
	e.walk(func(n *Element) bool {
		if n != e && n.HasClass(class) {
			found = n
			return false
		}
		return true
	})
	if found == nil {
		return nil, fmt.Errorf("query .%s: %w", class, ErrNotFound)
	}
	return found, nil
}

// QueryAll returns every descendant carrying the class, in document order.
func (e *Element) QueryAll(class string) []*Element {
	var out []*Element
	e.walk(func(n *Element) bool {
		if n != e && n.HasClass(class) {
			out = append(out, n)
		}
		return true
	})
	return out
}

// Find returns the element with the given id within e's subtree, e included.
func (e *Element) Find(id string) (*Element, error) {
	var found *Element
	e.walk(func(n *Element) bool {
		if n.id == id {
			found = n
			return false
		}
		return true
	})
	if found == nil {
		return nil, fmt.Errorf("element %q: %w", id, ErrNotFound)
	}
	return found, nil
}

// walk visits e and its descendants in document order until fn returns false.
func (e *Element) walk(fn func(*Element) bool) bool {
	if !fn(e) {
		return false
	}
	for _, c := range e.children {
		if !c.walk(fn) {
			return false
		}
	}
	return true
}

func (e *Element) contains(n *Element) bool {
	for p := n; p != nil; p = p.parent {
		if p == e {
			return true
		}
	}
	return false
}

func (e *Element) appendChild(c *Element) {
	c.detach()
	c.parent = e
	e.children = append(e.children, c)
}

func (e *Element) insertChildAt(i int, c *Element) {
	c.parent = e
	e.children = slices.Insert(e.children, i, c)
}

func (e *Element) detach() {
	if e.parent == nil {
		return
	}
	p := e.parent
	p.children = slices.DeleteFunc(p.children, func(c *Element) bool { return c == e })
	e.parent = nil
}
