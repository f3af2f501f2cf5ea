package dom

import (
	"bytes"
	"io"
	"maps"
	"slices"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Render writes the HTML for e and its subtree.
func Render(w io.Writer, e *Element) error {
	return html.Render(w, e.htmlNode())
}

// RenderString renders e to a string.
func RenderString(e *Element) (string, error) {
	var buf bytes.Buffer
	if err := Render(&buf, e); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func (e *Element) htmlNode() *html.Node {
	n := &html.Node{
		Type:     html.ElementNode,
		Data:     e.tag,
		DataAtom: atom.Lookup([]byte(e.tag)),
	}
	n.Attr = append(n.Attr, html.Attribute{Key: IDAttr, Val: e.id})
	if len(e.classes) > 0 {
		n.Attr = append(n.Attr, html.Attribute{Key: "class", Val: strings.Join(e.classes, " ")})
	}
	for _, k := range slices.Sorted(maps.Keys(e.attrs)) {
		n.Attr = append(n.Attr, html.Attribute{Key: k, Val: e.attrs[k]})
	}
	if e.text != "" {
		n.AppendChild(&html.Node{Type: html.TextNode, Data: e.text})
	}
	for _, c := range e.children {
		n.AppendChild(c.htmlNode())
	}
	return n
}
