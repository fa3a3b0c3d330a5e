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
	"fmt"
	"path"
	"sync"

	ts "github.com/tree-sitter/go-tree-sitter"
	tswasm "github.com/tree-sitter/go-tree-sitter/wasm"

	"lspbroker.dev/lspbroker/internal/platform"
)

// wasmStore is the lazily-constructed, process-wide WASM engine backing
// user-supplied grammars (spec.md §4.9: "a user languages.json naming a
// WASM grammar"). go-tree-sitter's wasm subpackage runs on wazero, which
// is why wazero appears in go.mod even though nothing here touches it
// directly.
var (
	wasmStoreOnce sync.Once
	wasmStore     *tswasm.Store
	wasmStoreErr  error
)

func wasmStoreSingleton() (*tswasm.Store, error) {
	wasmStoreOnce.Do(func() {
		wasmStore, wasmStoreErr = tswasm.NewStore()
	})
	return wasmStore, wasmStoreErr
}

// loadWasmLanguage compiles and registers one WASM grammar file under
// name, used as the language identifier tree-sitter queries reference.
func loadWasmLanguage(fs platform.FileSystem, name, wasmPath string) (*ts.Language, error) {
	store, err := wasmStoreSingleton()
	if err != nil {
		return nil, fmt.Errorf("initializing wasm grammar engine: %w", err)
	}
	data, err := fs.ReadFile(wasmPath)
	if err != nil {
		return nil, err
	}
	return store.LoadLanguage(name, data)
}

// loadQueriesFromDir compiles symbols.scm/folds.scm/textobjects.scm/
// highlights.scm found under dir for a user-registered language. Missing
// files are skipped, matching the built-in languages' nullable-query rule.
func (m *Manager) loadQueriesFromDir(name string, lang *ts.Language, fs platform.FileSystem, dir string) error {
	ls := &LangState{language: lang, queries: make(map[string]*ts.Query)}
	for _, kind := range queryKinds {
		data, err := fs.ReadFile(path.Join(dir, kind+".scm"))
		if err != nil {
			continue
		}
		q, err := ts.NewQuery(lang, string(data))
		if err != nil {
			return fmt.Errorf("compiling %s/%s query: %w", name, kind, err)
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
	return nil
}
