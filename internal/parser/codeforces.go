package parser

import (
	"fmt"
	"io"
	"net/url"
	"slices"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"cpt/internal/checker"
	"cpt/internal/domain"
)

// CodeforcesParser parses Codeforces problem statements
type CodeforcesParser struct{}

// NewCodeforcesParser creates a new CodeforcesParser
func NewCodeforcesParser() *CodeforcesParser {
	return &CodeforcesParser{}
}

// IsCodeforcesURL reports whether raw points at codeforces.com over http or https
func IsCodeforcesURL(raw string) bool {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return false
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return false
	}
	host := strings.ToLower(u.Hostname())
	return host == "codeforces.com" || strings.HasSuffix(host, ".codeforces.com")
}

// Parse collects the <pre> blocks of every div.input and div.output on the page.
// Inputs and outputs are paired by position.
func (p *CodeforcesParser) Parse(r io.Reader) ([]domain.TestCase, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse page: %w", err)
	}

	var inputs, outputs []string
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.DataAtom == atom.Div {
			switch {
			case hasClass(n, "input"):
				if pre := findPre(n); pre != nil {
					inputs = append(inputs, preText(pre))
				}
				return
			case hasClass(n, "output"):
				if pre := findPre(n); pre != nil {
					outputs = append(outputs, preText(pre))
				}
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	if len(inputs) == 0 {
		return nil, ErrNoSamples
	}
	if len(inputs) != len(outputs) {
		return nil, fmt.Errorf("found %d sample inputs but %d outputs", len(inputs), len(outputs))
	}

	cases := make([]domain.TestCase, len(inputs))
	for i := range inputs {
		cases[i] = domain.TestCase{Input: inputs[i], ExpectedOutput: outputs[i]}
	}
	return cases, nil
}

func hasClass(n *html.Node, class string) bool {
	for _, a := range n.Attr {
		if a.Key == "class" && slices.Contains(strings.Fields(a.Val), class) {
			return true
		}
	}
	return false
}

func findPre(n *html.Node) *html.Node {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && c.DataAtom == atom.Pre {
			return c
		}
		if pre := findPre(c); pre != nil {
			return pre
		}
	}
	return nil
}

// preText renders a sample block. Older statements separate lines with <br>,
// newer ones wrap each line in a div.test-example-line.
func preText(pre *html.Node) string {
	var b strings.Builder
	var render func(n *html.Node)
	render = func(n *html.Node) {
		switch {
		case n.Type == html.TextNode:
			b.WriteString(n.Data)
			return
		case n.Type == html.ElementNode && n.DataAtom == atom.Br:
			b.WriteByte('\n')
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			render(c)
		}
		if n.Type == html.ElementNode && n.DataAtom == atom.Div && hasClass(n, "test-example-line") {
			b.WriteByte('\n')
		}
	}
	for c := pre.FirstChild; c != nil; c = c.NextSibling {
		render(c)
	}

	text := checker.NormalizeLineEndings(b.String())
	return strings.Trim(text, "\n") + "\n"
}
