// Package xml parses corpus documents into a tree that can be walked with
// XPath. Entity expansion is off: CheckWellFormed rejects any entity other
// than the five predefined ones, which closes the XXE door before xmlquery
// sees the bytes.
package xml

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/antchfx/xmlquery"
	"github.com/antchfx/xpath"
)

// SyntaxError locates the first well-formedness failure.
type SyntaxError struct {
	Offset int64
	Msg    string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("malformed XML at byte %d: %s", e.Offset, e.Msg)
}

// CheckWellFormed tokenizes data with entity expansion disabled.
func CheckWellFormed(data []byte) error {
	d := xml.NewDecoder(bytes.NewReader(data))
	d.Entity = map[string]string{}
	for {
		_, err := d.Token()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return &SyntaxError{Offset: d.InputOffset(), Msg: err.Error()}
		}
	}
}

// Compile compiles an XPath expression for use with Node.Select.
func Compile(expr string) (*xpath.Expr, error) {
	e, err := xpath.Compile(expr)
	if err != nil {
		return nil, fmt.Errorf("invalid xpath %q: %w", expr, err)
	}
	return e, nil
}

// MustCompile is Compile for package-level expressions.
func MustCompile(expr string) *xpath.Expr {
	e, err := Compile(expr)
	if err != nil {
		panic(err)
	}
	return e
}

// Document is a parsed XML document.
type Document struct {
	top *xmlquery.Node
}

// Parse checks data is well formed and parses it.
func Parse(data []byte) (*Document, error) {
	if err := CheckWellFormed(data); err != nil {
		return nil, err
	}
	top, err := xmlquery.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("parsing XML: %w", err)
	}
	return &Document{top: top}, nil
}

// Root returns the document element, or nil for an empty document.
func (d *Document) Root() *Node {
	for c := d.top.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == xmlquery.ElementNode {
			return &Node{x: c}
		}
	}
	return nil
}

// Find returns the nodes matching an absolute XPath expression.
func (d *Document) Find(expr string) ([]*Node, error) {
	e, err := Compile(expr)
	if err != nil {
		return nil, err
	}
	return (&Node{x: d.top}).Select(e), nil
}

// FindOne returns the first match of expr, or nil.
func (d *Document) FindOne(expr string) (*Node, error) {
	e, err := Compile(expr)
	if err != nil {
		return nil, err
	}
	if n := xmlquery.QuerySelector(d.top, e); n != nil {
		return &Node{x: n}, nil
	}
	return nil, nil
}

// Node is an element in a Document. Methods on a nil Node return zero values.
type Node struct {
	x *xmlquery.Node
}

// Select evaluates e relative to n.
func (n *Node) Select(e *xpath.Expr) []*Node {
	if n == nil {
		return nil
	}
	found := xmlquery.QuerySelectorAll(n.x, e)
	out := make([]*Node, len(found))
	for i, x := range found {
		out[i] = &Node{x: x}
	}
	return out
}

func (n *Node) Name() string {
	if n == nil {
		return ""
	}
	return n.x.Data
}

func (n *Node) Attr(name string) string {
	if n == nil {
		return ""
	}
	return n.x.SelectAttr(name)
}

// Text is the node's text content with whitespace runs collapsed.
func (n *Node) Text() string {
	return n.TextWithout()
}

// TextWithout is Text leaving out the content of the named elements at any
// depth. An omitted or empty element still separates the words around it.
func (n *Node) TextWithout(skip ...string) string {
	if n == nil {
		return ""
	}
	var b strings.Builder
	var walk func(*xmlquery.Node)
	walk = func(x *xmlquery.Node) {
		for c := x.FirstChild; c != nil; c = c.NextSibling {
			switch c.Type {
			case xmlquery.TextNode, xmlquery.CharDataNode:
				b.WriteString(c.Data)
			case xmlquery.ElementNode:
				if c.FirstChild == nil || slices.Contains(skip, c.Data) {
					b.WriteByte(' ')
				} else {
					walk(c)
				}
			}
		}
	}
	walk(n.x)
	return strings.Join(strings.Fields(b.String()), " ")
}
