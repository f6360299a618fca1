// Package extract turns a parsed DOM into content strings in one of the
// supported output formats, driven by an optional selector spec.
package extract

import (
	"bytes"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
	"golang.org/x/net/html"

	"github.com/gleanerhq/gleaner/models"
)

// Content selects and formats content from the document.
//
// With a nil spec the whole document is returned in the requested format
// and no match bookkeeping is done. With a spec, the returned
// ExtractionDebug always reflects the match count; zero matches yield
// empty content, never an error. The only error conditions are an invalid
// selector and a markup render failure.
func Content(doc *goquery.Document, spec *models.ExtractSpec, format string) (string, *models.ExtractionDebug, error) {
	if spec == nil {
		content, err := wholeDocument(doc, format)
		return content, nil, err
	}

	matcher, err := cascadia.Compile(spec.Selector)
	if err != nil {
		return "", nil, err
	}

	sel := doc.FindMatcher(matcher)
	debug := &models.ExtractionDebug{
		SelectorMatched: sel.Length() > 0,
		ElementsFound:   sel.Length(),
		SelectorUsed:    spec.Selector,
	}

	if sel.Length() == 0 {
		return "", debug, nil
	}

	if !spec.Multiple {
		sel = sel.First()
	}

	content, err := formatSelection(sel, spec, format)
	if err != nil {
		return "", debug, err
	}
	return content, debug, nil
}

// wholeDocument serializes the full document per output format.
func wholeDocument(doc *goquery.Document, format string) (string, error) {
	if format == models.FormatHTML {
		return renderNodes(doc.Selection)
	}
	// markdown keeps one text fragment per line to preserve block
	// structure; text and json flatten to a single space-joined line.
	sep := " "
	if format == models.FormatMarkdown {
		sep = "\n"
	}
	return Text(doc.Selection, sep), nil
}

// formatSelection formats the selected element(s) per the extraction
// settings and output format.
func formatSelection(sel *goquery.Selection, spec *models.ExtractSpec, format string) (string, error) {
	if format == models.FormatHTML {
		// html output serializes markup; the attribute/text distinction
		// does not apply.
		out, err := markup(sel, spec.InnerHTML)
		if err != nil {
			return "", err
		}
		if spec.Strip {
			return StripMarkup(out)
		}
		return out, nil
	}

	values := make([]string, 0, sel.Length())
	sel.Each(func(_ int, s *goquery.Selection) {
		if spec.Attribute != "" {
			values = append(values, s.AttrOr(spec.Attribute, ""))
		} else {
			values = append(values, Text(s, " "))
		}
	})
	return strings.Join(values, "\n"), nil
}

// markup serializes every node in the selection, concatenated.
func markup(sel *goquery.Selection, inner bool) (string, error) {
	if !inner {
		return renderNodes(sel)
	}
	var buf bytes.Buffer
	var err error
	sel.EachWithBreak(func(_ int, s *goquery.Selection) bool {
		var h string
		h, err = s.Html()
		if err != nil {
			return false
		}
		buf.WriteString(h)
		return true
	})
	return buf.String(), err
}

// renderNodes renders the outer markup of every node in the selection.
func renderNodes(sel *goquery.Selection) (string, error) {
	var buf bytes.Buffer
	for _, node := range sel.Nodes {
		if err := html.Render(&buf, node); err != nil {
			return "", err
		}
	}
	return buf.String(), nil
}

// Text returns the visible text of the selection: descendant text nodes
// with runs of whitespace collapsed, empties dropped, joined by sep.
// script, style, and noscript subtrees are excluded.
func Text(sel *goquery.Selection, sep string) string {
	var parts []string
	for _, node := range sel.Nodes {
		collectText(node, &parts)
	}
	return strings.Join(parts, sep)
}

func collectText(n *html.Node, parts *[]string) {
	switch n.Type {
	case html.TextNode:
		if t := strings.Join(strings.Fields(n.Data), " "); t != "" {
			*parts = append(*parts, t)
		}
		return
	case html.ElementNode:
		switch n.Data {
		case "script", "style", "noscript":
			return
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collectText(c, parts)
	}
}
