// Package ui models the small slice of a widget tree the panels need: named
// actors that can be detached from one box and inserted into another.
package ui

import (
	"errors"
	"fmt"
)

var (
	ErrHasParent = errors.New("actor already has a parent")
	ErrNotChild  = errors.New("actor is not a child of this box")
)

// Actor is a named, reparentable element such as an indicator container.
type Actor struct {
	Name    string
	visible bool
	parent  *Box
}

// NewActor returns a visible actor with no parent.
func NewActor(name string) *Actor {
	return &Actor{Name: name, visible: true}
}

// Parent returns the box currently holding a, or nil.
func (a *Actor) Parent() *Box {
	return a.parent
}

func (a *Actor) Visible() bool {
	return a.visible
}

func (a *Actor) SetVisible(v bool) {
	a.visible = v
}

// Detach removes a from its parent, if any.
func (a *Actor) Detach() {
	if a.parent != nil {
		_ = a.parent.RemoveChild(a)
	}
}

// Box is an ordered container of actors.
type Box struct {
	Name     string
	children []*Actor
}

func NewBox(name string) *Box {
	return &Box{Name: name}
}

// Names returns the child names in display order.
func (b *Box) Names() []string {
	out := make([]string, len(b.children))
	for i, c := range b.children {
		out[i] = c.Name
	}
	return out
}

func (b *Box) Len() int {
	return len(b.children)
}

// Contains reports whether a is a direct child of b.
func (b *Box) Contains(a *Actor) bool {
	return a != nil && a.parent == b
}

// IndexOf returns the position of a in b, or -1.
func (b *Box) IndexOf(a *Actor) int {
	for i, c := range b.children {
		if c == a {
			return i
		}
	}
	return -1
}

// InsertChildAt inserts a at index. Out of range indexes are clamped.
func (b *Box) InsertChildAt(a *Actor, index int) error {
	if a == nil {
		return fmt.Errorf("insert into %s: nil actor", b.Name)
	}
	if a.parent != nil {
		return fmt.Errorf("insert %s into %s: %w", a.Name, b.Name, ErrHasParent)
	}
	if index < 0 {
		index = 0
	}
	if index > len(b.children) {
		index = len(b.children)
	}
	b.children = append(b.children, nil)
	copy(b.children[index+1:], b.children[index:])
	b.children[index] = a
	a.parent = b
	return nil
}

// AddChild appends a.
func (b *Box) AddChild(a *Actor) error {
	return b.InsertChildAt(a, len(b.children))
}

// RemoveChild detaches a from b.
func (b *Box) RemoveChild(a *Actor) error {
	i := b.IndexOf(a)
	if i < 0 {
		name := "<nil>"
		if a != nil {
			name = a.Name
		}
		return fmt.Errorf("remove %s from %s: %w", name, b.Name, ErrNotChild)
	}
	b.children = append(b.children[:i], b.children[i+1:]...)
	a.parent = nil
	return nil
}

// RemoveAll detaches every child.
func (b *Box) RemoveAll() {
	for _, c := range b.children {
		c.parent = nil
	}
	b.children = nil
}
