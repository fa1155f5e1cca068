package vdom

import (
	"github.com/agentflare-ai/go-xmldom"
)

// xmldomElement adapts an xmldom.Element (the teacher's parsed-tree type)
// to the narrower Element interface the interpreter depends on. This is
// the seam between the external tokenizer/tree-builder and the coroutine
// engine: everything above this file talks to vdom.Element, never to
// xmldom directly.
type xmldomElement struct {
	el xmldom.Element
}

func wrapElement(el xmldom.Element) Element {
	if el == nil {
		return nil
	}
	return &xmldomElement{el: el}
}

func (x *xmldomElement) NodeType() NodeType { return ElementNode }

func (x *xmldomElement) ParentNode() Node {
	p := x.el.ParentNode()
	if p == nil {
		return nil
	}
	if pe, ok := p.(xmldom.Element); ok {
		return wrapElement(pe)
	}
	return nil
}

func (x *xmldomElement) ChildNodes() []Node {
	nodes := x.el.ChildNodes()
	out := make([]Node, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, wrapNode(n))
	}
	return out
}

func (x *xmldomElement) TextContent() string { return string(x.el.TextContent()) }

func (x *xmldomElement) Position() Position {
	line, col, offset := x.el.Position()
	return Position{Line: line, Column: col, Offset: offset}
}

func (x *xmldomElement) TagName() string      { return string(x.el.TagName()) }
func (x *xmldomElement) LocalName() string    { return string(x.el.LocalName()) }
func (x *xmldomElement) NamespaceURI() string { return string(x.el.NamespaceURI()) }

func (x *xmldomElement) GetAttribute(name string) string {
	return string(x.el.GetAttribute(xmldom.DOMString(name)))
}

func (x *xmldomElement) HasAttribute(name string) bool {
	return x.GetAttribute(name) != ""
}

func (x *xmldomElement) SetAttribute(name, value string) {
	x.el.SetAttribute(xmldom.DOMString(name), xmldom.DOMString(value))
}

func (x *xmldomElement) RemoveAttribute(name string) {
	x.el.RemoveAttribute(xmldom.DOMString(name))
}

func (x *xmldomElement) AttributeNames() []string {
	attrs := x.el.Attributes()
	out := make([]string, 0, attrs.Length())
	for i := 0; i < attrs.Length(); i++ {
		out = append(out, string(attrs.Item(i).Name()))
	}
	return out
}

func (x *xmldomElement) Children() []Element {
	els := x.el.Children()
	out := make([]Element, 0, len(els))
	for _, e := range els {
		out = append(out, wrapElement(e))
	}
	return out
}

type xmldomText struct{ n xmldom.Node }

func (t *xmldomText) NodeType() NodeType   { return TextNode }
func (t *xmldomText) ParentNode() Node     { return nil }
func (t *xmldomText) ChildNodes() []Node   { return nil }
func (t *xmldomText) TextContent() string  { return string(t.n.TextContent()) }
func (t *xmldomText) Position() Position {
	line, col, offset := t.n.Position()
	return Position{Line: line, Column: col, Offset: offset}
}

type xmldomComment struct{ n xmldom.Node }

func (c *xmldomComment) NodeType() NodeType  { return CommentNode }
func (c *xmldomComment) ParentNode() Node    { return nil }
func (c *xmldomComment) ChildNodes() []Node  { return nil }
func (c *xmldomComment) TextContent() string { return string(c.n.TextContent()) }
func (c *xmldomComment) Position() Position {
	line, col, offset := c.n.Position()
	return Position{Line: line, Column: col, Offset: offset}
}

func wrapNode(n xmldom.Node) Node {
	if el, ok := n.(xmldom.Element); ok {
		return wrapElement(el)
	}
	switch n.NodeType() {
	case xmldom.COMMENT:
		return &xmldomComment{n: n}
	default:
		return &xmldomText{n: n}
	}
}

type xmldomDocument struct {
	doc xmldom.Document
}

func (d *xmldomDocument) NodeType() NodeType  { return DocumentNode }
func (d *xmldomDocument) ParentNode() Node    { return nil }
func (d *xmldomDocument) TextContent() string { return string(d.doc.TextContent()) }
func (d *xmldomDocument) Position() Position {
	line, col, offset := d.doc.Position()
	return Position{Line: line, Column: col, Offset: offset}
}

func (d *xmldomDocument) ChildNodes() []Node {
	nodes := d.doc.ChildNodes()
	out := make([]Node, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, wrapNode(n))
	}
	return out
}

func (d *xmldomDocument) DocumentElement() Element {
	return wrapElement(d.doc.DocumentElement())
}

func wrapDocument(doc xmldom.Document) Document {
	if doc == nil {
		return nil
	}
	return &xmldomDocument{doc: doc}
}
