// Package xmltree decodes an XML document into a navigable tree of elements.
//
// Element names are matched by local name, so namespaced NF-e documents are
// addressed as plain paths such as "nfeProc", "NFe", "infNFe". Character data
// is trimmed. Non UTF-8 documents are decoded through their declared charset.
package xmltree

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html/charset"
)

var (
	// ErrSyntax is returned when the input is not well-formed XML.
	ErrSyntax = errors.New("malformed XML")

	// ErrEmpty is returned when the input holds no element at all.
	ErrEmpty = errors.New("XML document has no root element")
)

// Node is one XML element.
type Node struct {
	Name     string
	Space    string
	Attrs    map[string]string
	Text     string
	Children []*Node
}

// Parse reads a whole document. The returned node is a synthetic document
// node whose children are the top-level elements.
func Parse(r io.Reader) (*Node, error) {
	dec := xml.NewDecoder(r)
	dec.CharsetReader = charset.NewReaderLabel

	doc := &Node{}
	stack := []*Node{doc}
	texts := []*strings.Builder{{}}

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrSyntax, err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			n := &Node{Name: t.Name.Local, Space: t.Name.Space}
			if len(t.Attr) > 0 {
				n.Attrs = make(map[string]string, len(t.Attr))
				for _, a := range t.Attr {
					n.Attrs[a.Name.Local] = a.Value
				}
			}
			parent := stack[len(stack)-1]
			parent.Children = append(parent.Children, n)
			stack = append(stack, n)
			texts = append(texts, &strings.Builder{})
		case xml.EndElement:
			top := len(stack) - 1
			stack[top].Text = strings.TrimSpace(texts[top].String())
			stack = stack[:top]
			texts = texts[:top]
		case xml.CharData:
			texts[len(texts)-1].Write(t)
		}
	}

	if len(stack) != 1 {
		return nil, fmt.Errorf("%w: unclosed element <%s>", ErrSyntax, stack[len(stack)-1].Name)
	}
	if len(doc.Children) == 0 {
		return nil, ErrEmpty
	}
	return doc, nil
}

// ParseString is Parse over an in-memory document.
func ParseString(s string) (*Node, error) {
	return Parse(strings.NewReader(s))
}

// Child returns the first child element with the given local name, or nil.
func (n *Node) Child(name string) *Node {
	if n == nil {
		return nil
	}
	for _, c := range n.Children {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// ChildrenNamed returns every child element with the given local name.
func (n *Node) ChildrenNamed(name string) []*Node {
	if n == nil {
		return nil
	}
	var out []*Node
	for _, c := range n.Children {
		if c.Name == name {
			out = append(out, c)
		}
	}
	return out
}

// Find follows path through first-match children and returns the element it
// ends on, or nil when any step is missing.
func (n *Node) Find(path ...string) *Node {
	cur := n
	for _, name := range path {
		cur = cur.Child(name)
		if cur == nil {
			return nil
		}
	}
	return cur
}

// Lookup returns the text of the element at path and whether it exists with
// non-empty text.
func (n *Node) Lookup(path ...string) (string, bool) {
	found := n.Find(path...)
	if found == nil || found.Text == "" {
		return "", false
	}
	return found.Text, true
}

// ValueOr returns the text at path, or fallback when it is missing or empty.
func (n *Node) ValueOr(fallback string, path ...string) string {
	if v, ok := n.Lookup(path...); ok {
		return v
	}
	return fallback
}
