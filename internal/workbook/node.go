package workbook

import "encoding/xml"

// Node is one element of the parsed workbook tree. Children preserve document
// order, which rule evaluation relies on for stable traversal.
type Node struct {
	XMLName  xml.Name
	Attrs    []xml.Attr `xml:",any,attr"`
	Children []*Node    `xml:",any"`
	Text     string     `xml:",chardata"`

	parent *Node
}

// Tag returns the element's local name.
func (n *Node) Tag() string {
	return n.XMLName.Local
}

// Attr returns the value of the named attribute, or "" if absent.
func (n *Node) Attr(name string) string {
	for _, a := range n.Attrs {
		if a.Name.Local == name {
			return a.Value
		}
	}
	return ""
}

// HasAttr reports whether the named attribute is present, even when empty.
func (n *Node) HasAttr(name string) bool {
	for _, a := range n.Attrs {
		if a.Name.Local == name {
			return true
		}
	}
	return false
}

// Parent returns the enclosing element, or nil for the root.
func (n *Node) Parent() *Node {
	return n.parent
}

// Find returns the first descendant with the given tag in document order,
// or nil if none exists.
func (n *Node) Find(tag string) *Node {
	for _, c := range n.Children {
		if c.Tag() == tag {
			return c
		}
		if found := c.Find(tag); found != nil {
			return found
		}
	}
	return nil
}

// FindAll returns every descendant with the given tag in document order.
func (n *Node) FindAll(tag string) []*Node {
	var out []*Node
	for _, c := range n.Children {
		if c.Tag() == tag {
			out = append(out, c)
		}
		out = append(out, c.FindAll(tag)...)
	}
	return out
}

// Child returns the first direct child with the given tag, or nil.
func (n *Node) Child(tag string) *Node {
	for _, c := range n.Children {
		if c.Tag() == tag {
			return c
		}
	}
	return nil
}

// ChildIndex returns the position of child among n's direct children, or -1.
func (n *Node) ChildIndex(child *Node) int {
	for i, c := range n.Children {
		if c == child {
			return i
		}
	}
	return -1
}

// linkParents fills in parent pointers after unmarshaling.
func linkParents(n *Node) {
	for _, c := range n.Children {
		c.parent = n
		linkParents(c)
	}
}
