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

// Walk returns the article nodes below node in document order.
// Article nodes are collected and not descended into; every other kind is
// transparent regardless of depth.
func Walk(node *Node) []*Node {
	var articles []*Node
	walk(node, &articles)
	return articles
}

func walk(node *Node, articles *[]*Node) {
	for _, child := range node.Children {
		switch child.Kind {
		case KindArticle:
			*articles = append(*articles, child)
		case KindText:
		default:
			walk(child, articles)
		}
	}
}
