// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package akn

import (
	"strings"
)

// Node is one element or text run of a document tree.
// Parent links are set while the tree is built.
type Node struct {
	Kind     Kind
	Name     string            // Local element name, empty for text
	Attr     map[string]string // Attributes by local name
	Data     string            // Character data, KindText only
	Parent   *Node
	Children []*Node
}

// Attribute returns the value of the attribute with the given local name.
func (n *Node) Attribute(name string) string {
	if n.Attr == nil {
		return ""
	}
	return n.Attr[name]
}

// EID returns the eId attribute of the node.
func (n *Node) EID() string {
	return n.Attribute("eId")
}

// Fragments returns the text runs of the subtree in document order.
func (n *Node) Fragments() []string {
	var out []string
	n.collect(&out)
	return out
}

func (n *Node) collect(out *[]string) {
	if n.Kind == KindText {
		*out = append(*out, n.Data)
		return
	}
	for _, child := range n.Children {
		child.collect(out)
	}
}

// Text returns the flattened text of the subtree.
func (n *Node) Text() string {
	return strings.Join(n.Fragments(), "")
}

// FirstChild returns the first direct child of the given kind, or nil.
func (n *Node) FirstChild(kind Kind) *Node {
	for _, child := range n.Children {
		if child.Kind == kind {
			return child
		}
	}
	return nil
}

// FirstDescendant returns the first node of the given kind below n in
// document order, or nil. n itself is not considered.
func (n *Node) FirstDescendant(kind Kind) *Node {
	for _, child := range n.Children {
		if child.Kind == kind {
			return child
		}
		if found := child.FirstDescendant(kind); found != nil {
			return found
		}
	}
	return nil
}

// Ancestors returns the parent chain of n, nearest first.
func (n *Node) Ancestors() []*Node {
	var chain []*Node
	for p := n.Parent; p != nil; p = p.Parent {
		chain = append(chain, p)
	}
	return chain
}
