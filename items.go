package pinboard

import (
	"fmt"

	"github.com/livetemplate/pinboard/internal/dom"
)

// Kind identifies a content component type.
type Kind string

const (
	KindImage Kind = "image"
	KindVideo Kind = "video"
	KindNote  Kind = "note"
	KindTodo  Kind = "todo"
)

// Kinds lists the supported content kinds in display order.
func Kinds() []Kind {
	return []Kind{KindImage, KindVideo, KindNote, KindTodo}
}

// ItemSpec is the serializable description of a content component. Body
// holds the URL for images and videos and the text for notes and todos.
type ItemSpec struct {
	Kind  Kind   `json:"kind" yaml:"kind"`
	Title string `json:"title" yaml:"title"`
	Body  string `json:"body" yaml:"body"`
}

// Content is a content component that can describe itself.
type Content interface {
	Component
	Spec() ItemSpec
}

// NewItem builds the content component described by spec.
func NewItem(spec ItemSpec) (Content, error) {
	switch spec.Kind {
	case KindImage:
		return NewImage(spec.Title, spec.Body)
	case KindVideo:
		return NewVideo(spec.Title, spec.Body)
	case KindNote:
		return NewNote(spec.Title, spec.Body)
	case KindTodo:
		return NewTodo(spec.Title, spec.Body)
	default:
		return nil, &UnknownKindError{Kind: string(spec.Kind)}
	}
}

// Image shows a thumbnail with a title.
type Image struct {
	*Base
	thumbnail *dom.Element
	title     *dom.Element
}

func NewImage(title, url string) (*Image, error) {
	thumbnail := dom.New("img", dom.Class(ClassImageThumbnail), dom.Attr("src", url), dom.Attr("alt", title))
	titleEl := dom.New("h2", dom.Class(ClassPageTitle, ClassImageTitle), dom.Text(title))
	base, err := NewBase("image", dom.New("section", dom.Class(ClassImage), dom.Children(
		dom.New("div", dom.Class(ClassImageHolder), dom.Children(thumbnail)),
		titleEl,
	)))
	if err != nil {
		return nil, err
	}
	return &Image{Base: base, thumbnail: thumbnail, title: titleEl}, nil
}

func (c *Image) Title() string { return c.title.TextContent() }

func (c *Image) URL() string {
	src, _ := c.thumbnail.Attr("src")
	return src
}

func (c *Image) Spec() ItemSpec {
	return ItemSpec{Kind: KindImage, Title: c.Title(), Body: c.URL()}
}

// Video embeds a player frame with a title.
type Video struct {
	*Base
	iframe *dom.Element
	title  *dom.Element
}

func NewVideo(title, url string) (*Video, error) {
	iframe := dom.New("iframe", dom.Class(ClassVideoIframe),
		dom.Attr("src", url),
		dom.Attr("title", title),
		dom.Attr("allowfullscreen", ""),
	)
	titleEl := dom.New("h3", dom.Class(ClassPageTitle, ClassVideoTitle), dom.Text(title))
	base, err := NewBase("video", dom.New("section", dom.Class(ClassVideo), dom.Children(
		dom.New("div", dom.Class(ClassVideoPlayer), dom.Children(iframe)),
		titleEl,
	)))
	if err != nil {
		return nil, err
	}
	return &Video{Base: base, iframe: iframe, title: titleEl}, nil
}

func (c *Video) Title() string { return c.title.TextContent() }

func (c *Video) URL() string {
	src, _ := c.iframe.Attr("src")
	return src
}

func (c *Video) Spec() ItemSpec {
	return ItemSpec{Kind: KindVideo, Title: c.Title(), Body: c.URL()}
}

// Note is a titled block of text.
type Note struct {
	*Base
	title *dom.Element
	text  *dom.Element
}

func NewNote(title, text string) (*Note, error) {
	titleEl := dom.New("h3", dom.Class(ClassNoteTitle), dom.Text(title))
	textEl := dom.New("p", dom.Class(ClassNoteText), dom.Text(text))
	base, err := NewBase("note", dom.New("section", dom.Class(ClassNote), dom.Children(titleEl, textEl)))
	if err != nil {
		return nil, err
	}
	return &Note{Base: base, title: titleEl, text: textEl}, nil
}

func (c *Note) Title() string { return c.title.TextContent() }

func (c *Note) Text() string { return c.text.TextContent() }

func (c *Note) Spec() ItemSpec {
	return ItemSpec{Kind: KindNote, Title: c.Title(), Body: c.Text()}
}

// Todo is a titled checkbox entry.
type Todo struct {
	*Base
	title    *dom.Element
	checkbox *dom.Element
	label    *dom.Element
}

func NewTodo(title, todo string) (*Todo, error) {
	titleEl := dom.New("h3", dom.Class(ClassTodoTitle), dom.Text(title))
	checkbox := dom.New("input", dom.Class(ClassTodoCheckbox), dom.Attr("type", "checkbox"))
	// The label targets its own checkbox; several todos can share a page.
	checkboxID := "todo-" + checkbox.ID()
	checkbox.SetAttr("id", checkboxID)
	label := dom.New("label", dom.Class(ClassTodoLabel), dom.Attr("for", checkboxID), dom.Text(todo))
	base, err := NewBase("todo", dom.New("section", dom.Class(ClassTodo), dom.Children(titleEl, checkbox, label)))
	if err != nil {
		return nil, err
	}
	return &Todo{Base: base, title: titleEl, checkbox: checkbox, label: label}, nil
}

func (c *Todo) Title() string { return c.title.TextContent() }

func (c *Todo) Todo() string { return c.label.TextContent() }

func (c *Todo) Spec() ItemSpec {
	return ItemSpec{Kind: KindTodo, Title: c.Title(), Body: c.Todo()}
}

// String implements fmt.Stringer for log output.
func (s ItemSpec) String() string {
	return fmt.Sprintf("%s(%q)", s.Kind, s.Title)
}
