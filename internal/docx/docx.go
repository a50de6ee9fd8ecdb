// Package docx fills placeholder tokens in a Word (.docx) template.
//
// A .docx file is a ZIP container of XML parts. Rendering rewrites the
// container: the body, header, and footer parts have their {{token}}
// placeholders substituted, every other entry is copied through unchanged,
// and entry order is preserved. The template must keep each placeholder
// inside a single text run; Word does this as long as the token is typed
// in one go without intermediate formatting changes.
package docx

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"
)

// placeholderPattern matches {{token}} with any non-brace token text.
var placeholderPattern = regexp.MustCompile(`\{\{([^{}]+)\}\}`)

// UnresolvedTokenError reports a placeholder the resolver could not supply.
type UnresolvedTokenError struct {
	Token string
}

func (e *UnresolvedTokenError) Error() string {
	return fmt.Sprintf("unresolved template placeholder %q", e.Token)
}

type entry struct {
	name       string
	data       []byte
	substitute bool // part receives placeholder substitution
}

// Template is a parsed .docx template. It is immutable after load and safe
// to share across concurrent renders.
type Template struct {
	entries []entry
}

// Load reads and parses a template file from disk.
func Load(path string) (*Template, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read template: %w", err)
	}
	return New(data)
}

// New parses a template from its raw bytes.
func New(data []byte) (*Template, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("open template container: %w", err)
	}

	t := &Template{entries: make([]entry, 0, len(zr.File))}
	hasDocument := false
	for _, f := range zr.File {
		rc, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("open template part %s: %w", f.Name, err)
		}
		content, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return nil, fmt.Errorf("read template part %s: %w", f.Name, err)
		}
		sub := substitutablePart(f.Name)
		if f.Name == "word/document.xml" {
			hasDocument = true
		}
		t.entries = append(t.entries, entry{name: f.Name, data: content, substitute: sub})
	}

	if !hasDocument {
		return nil, fmt.Errorf("not a Word document: missing word/document.xml")
	}
	return t, nil
}

// substitutablePart reports whether a container entry holds visible text
// that should receive placeholder substitution.
func substitutablePart(name string) bool {
	if name == "word/document.xml" {
		return true
	}
	if strings.HasPrefix(name, "word/header") && strings.HasSuffix(name, ".xml") {
		return true
	}
	if strings.HasPrefix(name, "word/footer") && strings.HasSuffix(name, ".xml") {
		return true
	}
	return false
}

// Placeholders returns the distinct placeholder tokens across all
// substitutable parts, trimmed, in order of first appearance.
func (t *Template) Placeholders() []string {
	seen := make(map[string]struct{})
	var out []string
	for _, e := range t.entries {
		if !e.substitute {
			continue
		}
		for _, m := range placeholderPattern.FindAllSubmatch(e.data, -1) {
			token := strings.TrimSpace(string(m[1]))
			if _, dup := seen[token]; dup {
				continue
			}
			seen[token] = struct{}{}
			out = append(out, token)
		}
	}
	return out
}

// Render produces a complete document with every placeholder replaced by
// the resolver's value for its trimmed token. The first token the resolver
// rejects aborts the render with an UnresolvedTokenError.
func (t *Template) Render(resolve func(token string) (string, bool)) ([]byte, error) {
	var unresolved *UnresolvedTokenError

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, e := range t.entries {
		data := e.data
		if e.substitute {
			data = placeholderPattern.ReplaceAllFunc(data, func(m []byte) []byte {
				token := strings.TrimSpace(string(placeholderPattern.FindSubmatch(m)[1]))
				value, ok := resolve(token)
				if !ok {
					if unresolved == nil {
						unresolved = &UnresolvedTokenError{Token: token}
					}
					return m
				}
				return []byte(escapeXML(value))
			})
		}
		w, err := zw.Create(e.name)
		if err != nil {
			return nil, fmt.Errorf("write document part %s: %w", e.name, err)
		}
		if _, err := w.Write(data); err != nil {
			return nil, fmt.Errorf("write document part %s: %w", e.name, err)
		}
	}
	if unresolved != nil {
		return nil, unresolved
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("finalize document: %w", err)
	}
	return buf.Bytes(), nil
}

// escapeXML escapes a replacement value for inclusion in document XML.
func escapeXML(s string) string {
	r := strings.NewReplacer(
		"&", "&amp;",
		"<", "&lt;",
		">", "&gt;",
		`"`, "&quot;",
		"'", "&apos;",
	)
	return r.Replace(s)
}
