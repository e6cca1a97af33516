// Package latex renders the include snippet placed on the clipboard after
// each figure conversion.
package latex

import (
	"fmt"
	"strings"
	"text/template"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// defaultTemplate references the converted figure by its base name via the
// \incfig macro. Users can override it with the snippet-template config
// option.
const defaultTemplate = `\begin{figure}[ht]
    \centering
    \incfig{{"{"}}{{.Name}}{{"}"}}
    \caption{{"{"}}{{.Title}}{{"}"}}
    \label{fig:{{.Name}}}
\end{figure}`

var titleCaser = cases.Title(language.English)

// Snippet renders LaTeX include snippets for converted figures.
type Snippet struct {
	tmpl *template.Template
}

// NewSnippet builds a Snippet from custom, a Go text/template with {{.Name}}
// and {{.Title}} fields. An empty custom string selects the built-in
// template.
func NewSnippet(custom string) (*Snippet, error) {
	text := custom
	if text == "" {
		text = defaultTemplate
	}

	tmpl, err := template.New("snippet").Parse(text)
	if err != nil {
		return nil, fmt.Errorf("parsing snippet template: %w", err)
	}

	return &Snippet{tmpl: tmpl}, nil
}

// Render produces the include snippet for a figure with the given base name
// and human-readable title.
func (s *Snippet) Render(name, title string) (string, error) {
	var sb strings.Builder

	data := struct {
		Name  string
		Title string
	}{Name: name, Title: title}

	if err := s.tmpl.Execute(&sb, data); err != nil {
		return "", fmt.Errorf("rendering snippet: %w", err)
	}

	return sb.String(), nil
}

// Beautify turns a figure file stem into a human-readable title by
// replacing underscores and hyphens with spaces and title-casing the
// result ("bode_plot" → "Bode Plot").
func Beautify(name string) string {
	r := strings.NewReplacer("_", " ", "-", " ")

	return titleCaser.String(r.Replace(name))
}

// Indent prefixes every line of text with n spaces.
func Indent(text string, n int) string {
	prefix := strings.Repeat(" ", n)
	lines := strings.Split(text, "\n")

	for i, line := range lines {
		lines[i] = prefix + line
	}

	return strings.Join(lines, "\n")
}
