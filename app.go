package pinboard

import (
	"fmt"

	"github.com/livetemplate/pinboard/internal/dom"
)

// App is the composition root: a document element holding one page.
type App struct {
	Document *dom.Element
	Page     *Page
}

// DemoItems returns the sample board shown when nothing else is configured.
func DemoItems() []ItemSpec {
	return []ItemSpec{
		{Kind: KindImage, Title: "helloworld", Body: "https://picsum.photos/600/300"},
		{Kind: KindVideo, Title: "helloworld", Body: "https://www.youtube.com/embed/t3M6toIflyQ"},
		{Kind: KindNote, Title: "title", Body: "tex?t"},
		{Kind: KindTodo, Title: "title", Body: "hello"},
	}
}

// NewApp attaches a new page to root and fills it with the given items. A nil
// root gets a fresh document element.
func NewApp(root *dom.Element, items []ItemSpec, opts ...PageOption) (*App, error) {
	if root == nil {
		root = NewDocument()
	}
	page, err := NewPage(NewPageItem, opts...)
	if err != nil {
		return nil, err
	}
	if err := page.AttachTo(root, dom.BeforeEnd); err != nil {
		return nil, fmt.Errorf("app: %w", err)
	}
	app := &App{Document: root, Page: page}
	for i, spec := range items {
		if err := app.Add(spec); err != nil {
			return nil, fmt.Errorf("app: item %d: %w", i, err)
		}
	}
	return app, nil
}

// Add builds the content described by spec and appends it to the page.
func (a *App) Add(spec ItemSpec) error {
	content, err := NewItem(spec)
	if err != nil {
		return err
	}
	return a.Page.AddChild(content)
}
