package dom

import (
	"context"
	"fmt"

	"github.com/agentflare-ai/hvml-go/vdom"
)

// Effector applies document mutations to an in-memory element tree and,
// when a renderer is attached, forwards each mutation to it. A nil
// Renderer is valid: effects still apply to the in-memory tree, just
// with no visible UI, the mode a headless/test run uses.
type Effector struct {
	Renderer *RendererClient
	Page     string
}

// AppendElement creates a new element tag under parent and forwards an
// appendChild call to the renderer, if attached.
func (e *Effector) AppendElement(ctx context.Context, parent *vdom.MemElement, tag string, attrs map[string]string) (*vdom.MemElement, error) {
	child := vdom.NewElement(tag, attrs)
	parent.AppendChild(child)
	if e.Renderer != nil {
		_, err := e.Renderer.Call(ctx, "appendChild", map[string]interface{}{
			"page": e.Page, "tag": tag, "attrs": attrs,
		})
		if err != nil {
			return nil, fmt.Errorf("dom: appendChild: %w", err)
		}
	}
	return child, nil
}

// AppendContent appends a text node under parent.
func (e *Effector) AppendContent(ctx context.Context, parent *vdom.MemElement, text string) error {
	parent.AppendChild(vdom.NewText(text))
	if e.Renderer != nil {
		_, err := e.Renderer.Call(ctx, "appendContent", map[string]interface{}{
			"page": e.Page, "text": text,
		})
		return err
	}
	return nil
}

// DisplaceContent replaces all of parent's children with a single text
// node, the effect `<update to="displace">` on text content produces.
func (e *Effector) DisplaceContent(ctx context.Context, parent *vdom.MemElement, text string) error {
	for _, c := range parent.ChildNodes() {
		parent.RemoveChild(c)
	}
	parent.AppendChild(vdom.NewText(text))
	if e.Renderer != nil {
		_, err := e.Renderer.Call(ctx, "displaceContent", map[string]interface{}{
			"page": e.Page, "text": text,
		})
		return err
	}
	return nil
}

// SetAttribute updates an attribute on el and forwards an updateProperty
// call to the renderer.
func (e *Effector) SetAttribute(ctx context.Context, el *vdom.MemElement, name, value string) error {
	el.SetAttribute(name, value)
	if e.Renderer != nil {
		_, err := e.Renderer.Call(ctx, "updateProperty", map[string]interface{}{
			"page": e.Page, "name": name, "value": value,
		})
		return err
	}
	return nil
}

// AddChildChunk appends a batch of pre-built children under parent in one
// renderer round trip.
func (e *Effector) AddChildChunk(ctx context.Context, parent *vdom.MemElement, children []*vdom.MemElement) error {
	for _, c := range children {
		parent.AppendChild(c)
	}
	if e.Renderer != nil && len(children) > 0 {
		tags := make([]string, len(children))
		for i, c := range children {
			tags[i] = c.TagName()
		}
		_, err := e.Renderer.Call(ctx, "appendChild", map[string]interface{}{
			"page": e.Page, "tags": tags,
		})
		return err
	}
	return nil
}

// SetChildChunk replaces parent's children with a new batch in one
// renderer round trip.
func (e *Effector) SetChildChunk(ctx context.Context, parent *vdom.MemElement, children []*vdom.MemElement) error {
	for _, c := range parent.ChildNodes() {
		parent.RemoveChild(c)
	}
	return e.AddChildChunk(ctx, parent, children)
}
