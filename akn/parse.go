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
	"encoding/xml"
	"errors"
	"fmt"
	"io"

	"github.com/poiesic/lexcorpus/core"
	"golang.org/x/net/html/charset"
)

// ErrNoBody indicates a well-formed document without a body element.
var ErrNoBody = errors.New("document has no body")

// Document is a parsed legislative document.
type Document struct {
	Root *Node
	Body *Node

	manifestation string
}

// Manifestation returns the value of meta/FRBRManifestation/FRBRthis, or "".
func (d *Document) Manifestation() string {
	return d.manifestation
}

// Parse reads an XML document and builds its tree.
// Syntax errors and a missing body are reported as core.ErrMalformedDocument.
func Parse(r io.Reader) (*Document, error) {
	dec := xml.NewDecoder(r)
	dec.CharsetReader = charset.NewReaderLabel

	doc := &Document{}
	var (
		current    *Node
		inMeta     int
		inManifest int
	)

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %w", core.ErrMalformedDocument, err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			node := &Node{
				Kind:   kindOf(t.Name.Local),
				Name:   t.Name.Local,
				Parent: current,
			}
			if len(t.Attr) > 0 {
				node.Attr = make(map[string]string, len(t.Attr))
				for _, a := range t.Attr {
					node.Attr[a.Name.Local] = a.Value
				}
			}

			switch {
			case node.Kind == KindMeta:
				inMeta++
			case inMeta > 0 && t.Name.Local == "FRBRManifestation":
				inManifest++
			case inManifest > 0 && t.Name.Local == "FRBRthis" && doc.manifestation == "":
				doc.manifestation = node.Attribute("value")
			}
			if node.Kind == KindBody && doc.Body == nil {
				doc.Body = node
			}

			if current == nil {
				if doc.Root != nil {
					return nil, fmt.Errorf("%w: multiple root elements", core.ErrMalformedDocument)
				}
				doc.Root = node
			} else {
				current.Children = append(current.Children, node)
			}
			current = node

		case xml.EndElement:
			if current == nil {
				return nil, fmt.Errorf("%w: unexpected end element %s", core.ErrMalformedDocument, t.Name.Local)
			}
			switch {
			case current.Kind == KindMeta:
				inMeta--
			case inManifest > 0 && current.Name == "FRBRManifestation":
				inManifest--
			}
			current = current.Parent

		case xml.CharData:
			if current == nil {
				continue
			}
			current.Children = append(current.Children, &Node{
				Kind:   KindText,
				Data:   string(t),
				Parent: current,
			})
		}
	}

	if doc.Root == nil {
		return nil, fmt.Errorf("%w: empty document", core.ErrMalformedDocument)
	}
	if current != nil {
		return nil, fmt.Errorf("%w: unclosed element %s", core.ErrMalformedDocument, current.Name)
	}
	if doc.Body == nil {
		return nil, fmt.Errorf("%w: %w", core.ErrMalformedDocument, ErrNoBody)
	}
	return doc, nil
}
