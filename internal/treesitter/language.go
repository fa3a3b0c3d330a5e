/*
Copyright © 2025 Benny Powers <web@bennypowers.com>

This program is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

This program is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with this program. If not, see <http://www.gnu.org/licenses/>.
*/

// Package treesitter owns per-language parsers and compiled queries and
// the per-buffer parse trees they run against (spec.md §4.9). Parsing
// happens only on the daemon's single event-loop goroutine; nothing here
// is safe to call concurrently from two goroutines on the same buffer.
package treesitter

import (
	"strings"
	"sync"

	ts "github.com/tree-sitter/go-tree-sitter"
	tsBlade "github.com/EmranMR/tree-sitter-blade/bindings/go"
	tsCss "github.com/tree-sitter/tree-sitter-css/bindings/go"
	tsEmbedded "github.com/tree-sitter/tree-sitter-embedded-template/bindings/go"
	tsHandlebars "bennypowers.dev/tree-sitter-handlebars/bindings/go"
	tsHtml "github.com/tree-sitter/tree-sitter-html/bindings/go"
	tsJinja "bennypowers.dev/tree-sitter-jinja-dialects/bindings/go"
	tsJsdoc "github.com/tree-sitter/tree-sitter-jsdoc/bindings/go"
	tsPhp "github.com/tree-sitter/tree-sitter-php/bindings/go"
	tsTypescript "github.com/tree-sitter/tree-sitter-typescript/bindings/go"
)

// builtinLanguage is one entry of the static grammar table: every grammar
// this module links in at compile time, independent of the LSP server
// table in internal/config (a file can have tree-sitter support with no
// LSP server, or vice versa).
type builtinLanguage struct {
	name       string
	extensions []string
	lang       *ts.Language
}

// builtinLanguages is built lazily: go-tree-sitter's NewLanguage call does
// non-trivial work per grammar, and most daemon runs only ever touch one
// or two of these.
var (
	builtinOnce sync.Once
	builtin     []builtinLanguage
)

func loadBuiltins() []builtinLanguage {
	builtinOnce.Do(func() {
		builtin = []builtinLanguage{
			{"typescript", []string{".ts"}, ts.NewLanguage(tsTypescript.LanguageTypescript())},
			{"tsx", []string{".tsx", ".jsx"}, ts.NewLanguage(tsTypescript.LanguageTSX())},
			{"jsdoc", nil, ts.NewLanguage(tsJsdoc.Language())},
			{"css", []string{".css"}, ts.NewLanguage(tsCss.Language())},
			{"html", []string{".html", ".htm"}, ts.NewLanguage(tsHtml.Language())},
			{"php", []string{".php"}, ts.NewLanguage(tsPhp.LanguagePHP())},
			{"embedded-template", []string{".erb", ".ejs"}, ts.NewLanguage(tsEmbedded.Language())},
			{"handlebars", []string{".hbs", ".handlebars"}, ts.NewLanguage(tsHandlebars.Language())},
			{"jinja", []string{".jinja", ".j2"}, ts.NewLanguage(tsJinja.LanguageJinja())},
			{"blade", []string{".blade.php"}, ts.NewLanguage(tsBlade.Language())},
		}
	})
	return builtin
}

// languageForPath picks the built-in or user-registered language whose
// extension list matches path, longest suffix first so ".blade.php" wins
// over ".php".
func languageForPath(path string, extra map[string]*userLanguage) (string, bool) {
	best := ""
	bestLen := 0
	consider := func(name string, exts []string) {
		for _, ext := range exts {
			if strings.HasSuffix(path, ext) && len(ext) > bestLen {
				best = name
				bestLen = len(ext)
			}
		}
	}
	for _, b := range loadBuiltins() {
		consider(b.name, b.extensions)
	}
	for name, ul := range extra {
		consider(name, ul.extensions)
	}
	return best, best != ""
}

func builtinByName(name string) (*builtinLanguage, bool) {
	for i, b := range loadBuiltins() {
		if b.name == name {
			return &loadBuiltins()[i], true
		}
	}
	return nil, false
}

// queryDirFor maps a language name to the embedded queries directory it
// reads from. tsx shares typescript's grammar-compatible query set rather
// than duplicating four .scm files with identical content.
func queryDirFor(name string) string {
	if name == "tsx" {
		return "typescript"
	}
	return name
}
