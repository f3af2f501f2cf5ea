package pinboard

import (
	"fmt"
	"log"
	"slices"

	"github.com/livetemplate/pinboard/internal/dom"
)

// DragState signals a drag lifecycle transition for a page item.
type DragState string

const (
	DragStart DragState = "start"
	DragStop  DragState = "stop"
	DragEnter DragState = "enter"
	DragLeave DragState = "leave"
)

// OnCloseListener is invoked when an item's close control is activated.
type OnCloseListener func()

// OnDragStateListener is invoked on every drag transition of target.
type OnDragStateListener func(target SectionContainer, state DragState)

// SectionContainer wraps one content component in a page entry that can be
// closed and dragged. Listener slots hold one listener each; registering
// again replaces the previous one.
type SectionContainer interface {
	Component
	Composable
	SetOnCloseListener(OnCloseListener)
	SetOnDragStateListener(OnDragStateListener)
	Root() *dom.Element
	Content() Component
}

// SectionContainerFactory builds the page entry type a Page uses.
type SectionContainerFactory func() (SectionContainer, error)

// PageItem is the default SectionContainer: a list entry with a body region
// and a close button.
type PageItem struct {
	*Base
	body     *dom.Element
	closeBtn *dom.Element
	content  Component
	dragging bool

	closeListener     OnCloseListener
	dragStateListener OnDragStateListener
}

// NewPageItem builds a PageItem. It has the SectionContainerFactory signature.
func NewPageItem() (SectionContainer, error) {
	body := dom.New("section", dom.Class(ClassPageItemBody))
	closeBtn := dom.New("button", dom.Class(ClassClose), dom.Text("×"), dom.Attr("type", "button"))
	base, err := NewBase("page item", dom.New("li",
		dom.Class(ClassPageItem),
		dom.Attr("draggable", "true"),
		dom.Children(body, dom.New("div", dom.Class(ClassPageControls), dom.Children(closeBtn))),
	))
	if err != nil {
		return nil, err
	}

	item := &PageItem{Base: base, body: body, closeBtn: closeBtn}
	closeBtn.AddEventListener(dom.Click, func(*dom.Event) {
		if item.closeListener != nil {
			item.closeListener()
		}
	})

	root := base.Root()
	root.AddEventListener(dom.DragStart, func(*dom.Event) {
		item.dragging = true
		item.notifyDragState(DragStart)
	})
	root.AddEventListener(dom.DragEnd, func(*dom.Event) {
		item.dragging = false
		item.notifyDragState(DragStop)
	})
	root.AddEventListener(dom.DragEnter, func(*dom.Event) {
		item.notifyDragState(DragEnter)
	})
	root.AddEventListener(dom.DragLeave, func(*dom.Event) {
		item.notifyDragState(DragLeave)
	})
	return item, nil
}

// AddChild nests child in the body region, replacing any earlier content.
func (p *PageItem) AddChild(child Component) error {
	if p.content != nil {
		if err := p.content.RemoveFrom(p.body); err != nil {
			return fmt.Errorf("page item: replace content: %w", err)
		}
		p.content = nil
	}
	if err := child.AttachTo(p.body, dom.BeforeEnd); err != nil {
		return fmt.Errorf("page item: %w", err)
	}
	p.content = child
	return nil
}

// Content returns the nested content component, or nil.
func (p *PageItem) Content() Component {
	return p.content
}

// Dragging reports whether the item is the source of an active drag.
func (p *PageItem) Dragging() bool {
	return p.dragging
}

func (p *PageItem) SetOnCloseListener(l OnCloseListener) {
	p.closeListener = l
}

func (p *PageItem) SetOnDragStateListener(l OnDragStateListener) {
	p.dragStateListener = l
}

func (p *PageItem) notifyDragState(state DragState) {
	if p.dragStateListener != nil {
		p.dragStateListener(p, state)
	}
}

// PageOption configures a Page.
type PageOption func(*Page)

// WithDebug enables logging of drag transitions and reorders.
func WithDebug(debug bool) PageOption {
	return func(p *Page) {
		p.debug = debug
	}
}

// Page owns the ordered sequence of items. It is the only writer of that
// sequence; items report close and drag transitions back to it.
type Page struct {
	*Base
	newItem SectionContainerFactory
	items   []SectionContainer
	debug   bool

	dragTarget SectionContainer
	dropTarget SectionContainer
}

// NewPage builds a page whose entries come from factory. A nil factory
// selects NewPageItem.
func NewPage(factory SectionContainerFactory, opts ...PageOption) (*Page, error) {
	if factory == nil {
		factory = NewPageItem
	}
	base, err := NewBase("page", dom.New("ul", dom.Class(ClassPage)))
	if err != nil {
		return nil, err
	}
	p := &Page{Base: base, newItem: factory}
	for _, opt := range opts {
		opt(p)
	}

	root := base.Root()
	root.AddEventListener(dom.DragOver, func(ev *dom.Event) {
		ev.PreventDefault()
	})
	root.AddEventListener(dom.Drop, p.onDrop)
	return p, nil
}

// AddChild wraps content in a new page entry and appends it.
func (p *Page) AddChild(content Component) error {
	item, err := p.newItem()
	if err != nil {
		return fmt.Errorf("page: new item: %w", err)
	}
	if err := item.AddChild(content); err != nil {
		return err
	}
	if err := item.AttachTo(p.Root(), dom.BeforeEnd); err != nil {
		return fmt.Errorf("page: attach item: %w", err)
	}
	p.items = append(p.items, item)

	item.SetOnCloseListener(func() {
		if err := p.Remove(item); err != nil {
			log.Printf("[Page] close: %v", err)
		}
	})
	item.SetOnDragStateListener(p.onDragState)
	return nil
}

// Items returns the entries in display order.
func (p *Page) Items() []SectionContainer {
	return slices.Clone(p.items)
}

// Len returns the number of entries.
func (p *Page) Len() int {
	return len(p.items)
}

// Specs describes the content of every entry in display order. Entries whose
// content cannot describe itself are skipped.
func (p *Page) Specs() []ItemSpec {
	specs := make([]ItemSpec, 0, len(p.items))
	for _, item := range p.items {
		if c, ok := item.Content().(Content); ok {
			specs = append(specs, c.Spec())
		}
	}
	return specs
}

// IndexOf returns the position of item, or -1.
func (p *Page) IndexOf(item SectionContainer) int {
	return slices.Index(p.items, item)
}

// Remove detaches item from the page.
func (p *Page) Remove(item SectionContainer) error {
	i := p.IndexOf(item)
	if i < 0 {
		return fmt.Errorf("page: remove: %w", dom.ErrNotChild)
	}
	if err := item.RemoveFrom(p.Root()); err != nil {
		return fmt.Errorf("page: %w", err)
	}
	p.items = slices.Delete(p.items, i, i+1)
	if p.dragTarget == item {
		p.endDrag()
	}
	if p.dropTarget == item {
		p.dropTarget = nil
	}
	return nil
}

// Move places item at index among the other entries. Index is clamped to
// the valid range.
func (p *Page) Move(item SectionContainer, index int) error {
	i := p.IndexOf(item)
	if i < 0 {
		return fmt.Errorf("page: move: %w", dom.ErrNotChild)
	}
	rest := slices.Delete(slices.Clone(p.items), i, i+1)
	index = max(0, min(index, len(rest)))

	var err error
	if index == len(rest) {
		err = item.AttachTo(p.Root(), dom.BeforeEnd)
	} else {
		err = item.AttachTo(rest[index].Root(), dom.BeforeBegin)
	}
	if err != nil {
		return fmt.Errorf("page: move: %w", err)
	}
	p.items = slices.Insert(rest, index, item)
	return nil
}

func (p *Page) onDragState(target SectionContainer, state DragState) {
	if p.debug {
		log.Printf("[Page] item %d: drag %s", p.IndexOf(target), state)
	}
	switch state {
	case DragStart:
		p.dragTarget = target
		p.muteOthers(target, true)
	case DragStop:
		p.endDrag()
	case DragEnter:
		if p.dragTarget == nil || target == p.dragTarget {
			return
		}
		if p.dropTarget != nil {
			p.dropTarget.Root().RemoveClass(ClassDropArea)
		}
		p.dropTarget = target
		target.Root().AddClass(ClassDropArea)
	case DragLeave:
		target.Root().RemoveClass(ClassDropArea)
		if p.dropTarget == target {
			p.dropTarget = nil
		}
	}
}

func (p *Page) endDrag() {
	if p.dragTarget != nil {
		p.muteOthers(p.dragTarget, false)
	}
	if p.dropTarget != nil {
		p.dropTarget.Root().RemoveClass(ClassDropArea)
	}
	p.dragTarget = nil
	p.dropTarget = nil
}

func (p *Page) muteOthers(source SectionContainer, mute bool) {
	for _, item := range p.items {
		if item == source {
			continue
		}
		if mute {
			item.Root().AddClass(ClassMute)
		} else {
			item.Root().RemoveClass(ClassMute)
		}
	}
}

func (p *Page) onDrop(ev *dom.Event) {
	ev.PreventDefault()
	source := p.dragTarget
	if source == nil {
		return
	}
	index, ok := p.dropIndex(source, ev.ClientY)
	if !ok {
		if p.dropTarget == nil {
			return
		}
		index = slices.Index(p.others(source), p.dropTarget)
	}
	if err := p.Move(source, index); err != nil {
		log.Printf("[Page] drop: %v", err)
		return
	}
	if p.debug {
		log.Printf("[Page] dropped item at %d", p.IndexOf(source))
	}
}

// dropIndex hit-tests y against the midpoints of the entries other than
// source. The result is the index of the first entry whose midpoint lies
// below y, or the end of the list. It fails when any entry has no bounds.
func (p *Page) dropIndex(source SectionContainer, y float64) (int, bool) {
	others := p.others(source)
	mids := make([]float64, len(others))
	for i, item := range others {
		r, ok := item.Root().Bounds()
		if !ok {
			return 0, false
		}
		mids[i] = r.Mid()
	}
	for i, mid := range mids {
		if y < mid {
			return i, true
		}
	}
	return len(others), true
}

func (p *Page) others(source SectionContainer) []SectionContainer {
	return slices.DeleteFunc(slices.Clone(p.items), func(it SectionContainer) bool { return it == source })
}
