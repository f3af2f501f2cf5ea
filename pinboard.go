// Package pinboard provides the component model for a board of draggable,
// closable item cards: images, videos, notes and todos. Components are built
// over the node tree in internal/dom, composed into page items, and ordered by
// a Page that owns the drag and drop reorder protocol.
package pinboard

import "github.com/livetemplate/pinboard/internal/dom"

// Class names shared between component builders, the page stylesheet and the
// client script.
const (
	ClassDocument     = "document"
	ClassPage         = "page"
	ClassPageItem     = "page-item"
	ClassPageItemBody = "page-item__body"
	ClassPageControls = "page-item__controls"
	ClassPageTitle    = "page-item__title"
	ClassClose        = "close"

	ClassImage          = "image"
	ClassImageHolder    = "image__holder"
	ClassImageThumbnail = "image__thumbnail"
	ClassImageTitle     = "image__title"

	ClassVideo       = "video"
	ClassVideoPlayer = "video__player"
	ClassVideoIframe = "video__iframe"
	ClassVideoTitle  = "video__title"

	ClassNote      = "note"
	ClassNoteTitle = "note__title"
	ClassNoteText  = "note__text"

	ClassTodo         = "todo"
	ClassTodoTitle    = "todo__title"
	ClassTodoCheckbox = "todo-checkbox"
	ClassTodoLabel    = "todo-label"

	// ClassMute marks items that are not the drag source while a drag is active.
	ClassMute = "mute"
	// ClassDropArea marks the item currently under the dragged item.
	ClassDropArea = "drop-area"
)

// NewDocument returns the root element an App attaches its page to.
func NewDocument() *dom.Element {
	return dom.New("main", dom.Class(ClassDocument))
}
