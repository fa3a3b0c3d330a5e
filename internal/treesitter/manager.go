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
package treesitter

import (
	"crypto/sha256"
	"embed"
	"fmt"
	"path"
	"sync"

	ts "github.com/tree-sitter/go-tree-sitter"

	"lspbroker.dev/lspbroker/internal/config"
	"lspbroker.dev/lspbroker/internal/platform"
)

//go:embed queries/*/*.scm
var compiledQueries embed.FS

// queryKinds are the four operations spec.md §4.9 names.
var queryKinds = []string{"symbols", "folds", "textobjects", "highlights"}

// LangState is `{ parser, language, compiled_queries[symbols|folds|
// textobjects|highlights] }` (spec.md §3 "Lang State"). Queries are
// nullable: a language with no matching .scm file for a kind simply
// returns no results for that operation instead of failing.
type LangState struct {
	language *ts.Language
	queries  map[string]*ts.Query // kind -> query, absent if no file
}

// BufferTree is `{ tree, source_copy, language, content_hash }` keyed by
// file path (spec.md §3 "Buffer Tree").
type BufferTree struct {
	Tree        *ts.Tree
	Source      []byte
	Language    string
	contentHash [32]byte
}

// userLanguage is a languages.json entry resolved to a loaded grammar.
type userLanguage struct {
	extensions []string
	language   *ts.Language
}

// Manager owns every LangState and every open buffer's BufferTree. It is
// touched only from the daemon's single event-loop goroutine (spec.md
// §5 "Tree-sitter ownership") and carries no internal locking.
type Manager struct {
	langs      map[string]*LangState
	parserPool map[string]*sync.Pool
	buffers    map[string]*BufferTree
	userLangs  map[string]*userLanguage
}

// NewManager constructs an empty Manager. Grammars and queries are loaded
// lazily on first use of a given language in ParseBuffer.
func NewManager() *Manager {
	return &Manager{
		langs:      make(map[string]*LangState),
		parserPool: make(map[string]*sync.Pool),
		buffers:    make(map[string]*BufferTree),
		userLangs:  make(map[string]*userLanguage),
	}
}

// LoadUserLanguages reads languages.json's grammar/queriesDir entries and
// registers each as a WASM-backed language (spec.md §4.9: "the language-
// config registry, which can be extended by a user languages.json naming
// a WASM grammar and a queries directory").
func (m *Manager) LoadUserLanguages(fs platform.FileSystem, path string) error {
	entries, err := config.LoadUserGrammars(fs, path)
	if err != nil {
		return err
	}
	for name, ul := range entries {
		if ul.Grammar == "" {
			continue
		}
		lang, err := loadWasmLanguage(fs, name, ul.Grammar)
		if err != nil {
			return fmt.Errorf("loading grammar for %s: %w", name, err)
		}
		m.userLangs[name] = &userLanguage{extensions: ul.Extensions, language: lang}
		if ul.QueriesDir != "" {
			if err := m.loadQueriesFromDir(name, lang, fs, ul.QueriesDir); err != nil {
				return fmt.Errorf("loading queries for %s: %w", name, err)
			}
		}
	}
	return nil
}

func (m *Manager) ensureLangState(name string) (*LangState, error) {
	if ls, ok := m.langs[name]; ok {
		return ls, nil
	}

	var lang *ts.Language
	if b, ok := builtinByName(name); ok {
		lang = b.lang
	} else if ul, ok := m.userLangs[name]; ok {
		lang = ul.language
	} else {
		return nil, fmt.Errorf("unknown language %s", name)
	}

	ls := &LangState{language: lang, queries: make(map[string]*ts.Query)}
	for _, kind := range queryKinds {
		data, err := compiledQueries.ReadFile(path.Join("queries", queryDirFor(name), kind+".scm"))
		if err != nil {
			continue // nullable: missing query files are non-fatal
		}
		q, err := ts.NewQuery(lang, string(data))
		if err != nil {
			return nil, fmt.Errorf("compiling %s/%s query: %w", name, kind, err)
		}
		ls.queries[kind] = q
	}
	m.langs[name] = ls

	m.parserPool[name] = &sync.Pool{
		New: func() any {
			p := ts.NewParser()
			if err := p.SetLanguage(lang); err != nil {
				panic(fmt.Sprintf("treesitter: failed to set language %s: %v", name, err))
			}
			return p
		},
	}
	return ls, nil
}

func (m *Manager) getParser(name string) *ts.Parser {
	return m.parserPool[name].Get().(*ts.Parser)
}

func (m *Manager) putParser(name string, p *ts.Parser) {
	p.Reset()
	m.parserPool[name].Put(p)
}

// ParseBuffer implements `parse_buffer(path, source)` (spec.md §4.9): the
// language is resolved from path's extension; if source's hash matches
// the stored one, nothing happens. Otherwise a full re-parse replaces the
// stored tree/source/hash. Incremental re-parse is not attempted — edit
// deltas aren't tracked by the editor-facing protocol.
func (m *Manager) ParseBuffer(filePath string, source []byte) error {
	langName, ok := languageForPath(filePath, m.userLangs)
	if !ok {
		return fmt.Errorf("no tree-sitter language for %s", filePath)
	}

	hash := sha256.Sum256(source)
	if existing, ok := m.buffers[filePath]; ok && existing.contentHash == hash {
		return nil
	}

	if _, err := m.ensureLangState(langName); err != nil {
		return err
	}

	parser := m.getParser(langName)
	defer m.putParser(langName, parser)

	tree := parser.Parse(source, nil)
	if tree == nil {
		return fmt.Errorf("parsing %s produced no tree", filePath)
	}

	if existing, ok := m.buffers[filePath]; ok && existing.Tree != nil {
		existing.Tree.Close()
	}

	sourceCopy := make([]byte, len(source))
	copy(sourceCopy, source)

	m.buffers[filePath] = &BufferTree{
		Tree:        tree,
		Source:      sourceCopy,
		Language:    langName,
		contentHash: hash,
	}
	return nil
}

// GetTree returns the stored parse tree for path, if any.
func (m *Manager) GetTree(filePath string) (*ts.Tree, bool) {
	bt, ok := m.buffers[filePath]
	if !ok {
		return nil, false
	}
	return bt.Tree, true
}

// GetSource returns the stored source bytes for path, if any.
func (m *Manager) GetSource(filePath string) ([]byte, bool) {
	bt, ok := m.buffers[filePath]
	if !ok {
		return nil, false
	}
	return bt.Source, true
}

// RemoveBuffer drops path's parse tree, called on textDocument/didClose.
func (m *Manager) RemoveBuffer(filePath string) {
	if bt, ok := m.buffers[filePath]; ok {
		if bt.Tree != nil {
			bt.Tree.Close()
		}
		delete(m.buffers, filePath)
	}
}

func (m *Manager) queryFor(filePath, kind string) (*ts.Query, *BufferTree, bool) {
	bt, ok := m.buffers[filePath]
	if !ok {
		return nil, nil, false
	}
	ls, ok := m.langs[bt.Language]
	if !ok {
		return nil, nil, false
	}
	q, ok := ls.queries[kind]
	if !ok {
		return nil, nil, false
	}
	return q, bt, true
}
