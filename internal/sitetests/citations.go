package sitetests

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/net/html"

	"git.home.luguber.info/inful/attackbuild/internal/foundation/errors"
)

// CitationMarker is the text left behind when a citation was not rendered.
const CitationMarker = "(Citation:"

const snippetWidth = 80

// FindCitations returns the unparsed citation snippets in an HTML document.
func FindCitations(r io.Reader) ([]string, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryValidation, "failed to parse HTML").Build()
	}

	var found []string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && (n.Data == "script" || n.Data == "style") {
			return
		}
		if n.Type == html.TextNode {
			found = append(found, citationSnippets(n.Data)...)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return found, nil
}

func citationSnippets(text string) []string {
	var out []string
	for {
		i := strings.Index(text, CitationMarker)
		if i < 0 {
			return out
		}
		rest := text[i:]
		end := strings.IndexByte(rest, ')')
		if end < 0 || end > snippetWidth {
			end = min(len(rest), snippetWidth)
		} else {
			end++
		}
		out = append(out, strings.Join(strings.Fields(rest[:end]), " "))
		text = rest[len(CitationMarker):]
	}
}

func (s *Suite) checkCitations() (Result, error) {
	res := Result{Name: "citations"}
	if s.outputMissing(&res) {
		return res, nil
	}
	err := filepath.WalkDir(s.paths.Output, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.EqualFold(filepath.Ext(path), ".html") {
			return nil
		}
		f, err := os.Open(filepath.Clean(path))
		if err != nil {
			return err
		}
		defer func() { _ = f.Close() }()

		snippets, err := FindCitations(f)
		if err != nil {
			return err
		}
		rel, _ := filepath.Rel(s.paths.Output, path)
		for _, snip := range snippets {
			res.Lines = append(res.Lines, fmt.Sprintf("%s: %s", filepath.ToSlash(rel), snip))
		}
		return nil
	})
	if err != nil {
		return res, errors.WrapError(err, errors.CategoryFileSystem, "failed to scan output for citations").
			Path(s.paths.Output).
			Build()
	}
	res.Passed = len(res.Lines) == 0
	return res, nil
}
