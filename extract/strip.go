package extract

import (
	"bytes"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// StripMarkup reduces an HTML fragment to bare structure: script and style
// subtrees are removed entirely, every remaining tag loses all of its
// attributes, and the result is collapsed to a single line.
func StripMarkup(fragment string) (string, error) {
	ctx := &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}
	nodes, err := html.ParseFragment(strings.NewReader(fragment), ctx)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	for _, node := range nodes {
		if !stripNode(node) {
			continue
		}
		if err := html.Render(&buf, node); err != nil {
			return "", err
		}
	}
	return strings.ReplaceAll(buf.String(), "\n", ""), nil
}

// stripNode clears attributes and prunes script/style subtrees in place.
// It reports false when the node itself should be dropped.
func stripNode(n *html.Node) bool {
	if n.Type == html.ElementNode {
		if n.Data == "script" || n.Data == "style" {
			return false
		}
		n.Attr = nil
	}
	for c := n.FirstChild; c != nil; {
		next := c.NextSibling
		if !stripNode(c) {
			n.RemoveChild(c)
		}
		c = next
	}
	return true
}
