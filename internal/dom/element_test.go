package dom

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tags(els []*Element) []string {
	out := make([]string, len(els))
	for i, e := range els {
		out[i] = e.TextContent()
	}
	return out
}

func TestInsertAdjacent(t *testing.T) {
	list := New("ul")
	a := New("li", Text("a"))
	b := New("li", Text("b"))
	c := New("li", Text("c"))
	d := New("li", Text("d"))

	require.NoError(t, list.InsertAdjacent(BeforeEnd, b))
	require.NoError(t, list.InsertAdjacent(AfterBegin, a))
	require.NoError(t, b.InsertAdjacent(AfterEnd, d))
	require.NoError(t, d.InsertAdjacent(BeforeBegin, c))

	assert.Equal(t, []string{"a", "b", "c", "d"}, tags(list.Children()))
	assert.Equal(t, 2, c.Index())
	assert.Same(t, list, c.Parent())
}

func TestInsertAdjacentMovesAttachedNode(t *testing.T) {
	list := New("ul", Children(New("li", Text("a")), New("li", Text("b")), New("li", Text("c"))))
	kids := list.Children()

	require.NoError(t, kids[0].InsertAdjacent(BeforeBegin, kids[2]))
	assert.Equal(t, []string{"c", "a", "b"}, tags(list.Children()))
	assert.Len(t, list.Children(), 3)
}

func TestInsertAdjacentErrors(t *testing.T) {
	detached := New("li")
	err := detached.InsertAdjacent(BeforeBegin, New("li"))
	assert.True(t, errors.Is(err, ErrNoParent))

	parent := New("ul")
	child := New("li")
	require.NoError(t, parent.InsertAdjacent(BeforeEnd, child))
	assert.Error(t, child.InsertAdjacent(BeforeEnd, parent), "cycle must be rejected")
	assert.Error(t, parent.InsertAdjacent("sideways", New("li")))
}

func TestRemoveChild(t *testing.T) {
	parent := New("ul")
	child := New("li")
	require.NoError(t, parent.InsertAdjacent(BeforeEnd, child))

	require.NoError(t, parent.RemoveChild(child))
	assert.Nil(t, child.Parent())
	assert.Empty(t, parent.Children())
	assert.Equal(t, -1, child.Index())

	assert.True(t, errors.Is(parent.RemoveChild(child), ErrNotChild))
}

func TestQuery(t *testing.T) {
	title := New("h3", Class("note__title"))
	root := New("section", Class("note"), Children(title, New("p", Class("note__text"))))

	got, err := root.Query("note__title")
	require.NoError(t, err)
	assert.Same(t, title, got)

	_, err = root.Query("missing")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.Contains(t, err.Error(), ".missing")

	// the root itself is not a match
	_, err = root.Query("note")
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestFind(t *testing.T) {
	leaf := New("button")
	root := New("div", Children(New("div", Children(leaf))))

	got, err := root.Find(leaf.ID())
	require.NoError(t, err)
	assert.Same(t, leaf, got)

	got, err = root.Find(root.ID())
	require.NoError(t, err)
	assert.Same(t, root, got)

	_, err = root.Find("nope")
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestClasses(t *testing.T) {
	e := New("li", Class("page-item", "page-item"))
	assert.Equal(t, []string{"page-item"}, e.Classes())

	e.AddClass("mute")
	assert.True(t, e.HasClass("mute"))
	e.RemoveClass("mute")
	assert.False(t, e.HasClass("mute"))

	e.SetAttr("class", "a  b")
	assert.Equal(t, []string{"a", "b"}, e.Classes())
}

func TestDispatchBubblesInOrder(t *testing.T) {
	btn := New("button")
	item := New("li", Children(btn))
	page := New("ul", Children(item))

	var order []string
	btn.AddEventListener(Click, func(*Event) { order = append(order, "button-1") })
	btn.AddEventListener(Click, func(*Event) { order = append(order, "button-2") })
	item.AddEventListener(Click, func(ev *Event) {
		assert.Same(t, btn, ev.Target)
		assert.Same(t, item, ev.CurrentTarget)
		order = append(order, "item")
	})
	page.AddEventListener(Click, func(*Event) { order = append(order, "page") })
	page.AddEventListener(Drop, func(*Event) { order = append(order, "wrong type") })

	assert.True(t, Dispatch(NewEvent(Click, btn)))
	assert.Equal(t, []string{"button-1", "button-2", "item", "page"}, order)
}

func TestDispatchPreventDefaultAndStop(t *testing.T) {
	child := New("li")
	parent := New("ul", Children(child))

	reached := false
	child.AddEventListener(DragOver, func(ev *Event) {
		ev.PreventDefault()
		ev.StopPropagation()
	})
	parent.AddEventListener(DragOver, func(*Event) { reached = true })

	assert.False(t, Dispatch(NewEvent(DragOver, child)))
	assert.False(t, reached)
}

func TestRenderEscapesText(t *testing.T) {
	e := New("section", Class("note"), Children(
		New("h3", Class("note__title"), Text(`<b>"x"</b>`)),
		New("img", Attr("src", "https://picsum.photos/600/300"), Attr("alt", "a&b")),
	))

	out, err := RenderString(e)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, `<section data-id="`+e.ID()+`" class="note">`))
	assert.Contains(t, out, "&lt;b&gt;&#34;x&#34;&lt;/b&gt;")
	assert.Contains(t, out, `alt="a&amp;b" src="https://picsum.photos/600/300"/>`)
}

func TestEventTypeKnown(t *testing.T) {
	assert.True(t, Drop.Known())
	assert.False(t, EventType("mouseover").Known())
}

func TestRectMid(t *testing.T) {
	assert.Equal(t, 150.0, Rect{Top: 100, Height: 100}.Mid())

	e := New("li")
	_, ok := e.Bounds()
	assert.False(t, ok)
	e.SetBounds(Rect{Top: 1, Height: 2})
	r, ok := e.Bounds()
	assert.True(t, ok)
	assert.Equal(t, 2.0, r.Mid())

	e.ClearBounds()
	_, ok = e.Bounds()
	assert.False(t, ok)
}
