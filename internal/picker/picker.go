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
package picker

import (
	"sort"
	"sync"
)

// Match is one scored result from FileQuery, editor-facing shape.
type Match struct {
	Path  string `json:"path"`
	Score int    `json:"score"`
}

// Picker owns one workspace's file index, MRU list, and scanner process
// lifecycle (spec.md §4.10: picker_init/picker_file_query/
// picker_grep_query/picker_close).
type Picker struct {
	mu      sync.RWMutex
	cwd     string
	scanner *Scanner
	paths   []string
	mru     *mru
}

// New returns an unstarted Picker; call Init before issuing any query.
func New() *Picker {
	return &Picker{}
}

// Init starts a new scanner rooted at cwd and seeds the MRU list from
// recent (spec.md §4.10 "picker_init(cwd, recent_files?)"). Any
// previously running scanner is stopped first.
func (p *Picker) Init(cwd string, recent []string) {
	p.mu.Lock()
	if p.scanner != nil {
		_ = p.scanner.Stop()
	}
	scanner, err := StartScanner(cwd)
	p.cwd = cwd
	p.scanner = scanner
	p.paths = nil
	p.mru = newMRU(recent)
	p.mu.Unlock()

	if err != nil {
		return
	}
	go p.drain(scanner)
}

func (p *Picker) drain(scanner *Scanner) {
	for path := range scanner.Paths {
		p.mu.Lock()
		if p.scanner == scanner {
			p.paths = append(p.paths, path)
		}
		p.mu.Unlock()
	}
}

// Touch records path as most-recently-used, called on file_open.
func (p *Picker) Touch(path string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.mru == nil {
		p.mru = newMRU(nil)
	}
	p.mru.touch(path)
}

// FileQuery implements picker_file_query: empty query returns the MRU
// list as-is, otherwise every indexed path is scored, MRU-boosted, sorted
// descending, and capped at 50 (spec.md §4.10 "Scoring").
func (p *Picker) FileQuery(query string) []Match {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if query == "" {
		var out []Match
		for _, path := range p.mru.list() {
			out = append(out, Match{Path: path, Score: 0})
			if len(out) >= 50 {
				break
			}
		}
		return out
	}

	var matches []Match
	for _, path := range p.paths {
		s, ok := score(query, path)
		if !ok {
			continue
		}
		if p.mru != nil {
			if _, isMRU := p.mru.rank(path); isMRU {
				s += mruBoost
			}
		}
		matches = append(matches, Match{Path: path, Score: s})
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})
	if len(matches) > 50 {
		matches = matches[:50]
	}
	return matches
}

// GrepQuery implements picker_grep_query: a synchronous `rg --vimgrep`
// over the picker's cwd.
func (p *Picker) GrepQuery(query string) ([]GrepMatch, error) {
	p.mu.RLock()
	cwd := p.cwd
	p.mu.RUnlock()
	return Grep(cwd, query)
}

// Close stops the running scanner, if any (spec.md §4.10 "picker_close").
func (p *Picker) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.scanner != nil {
		_ = p.scanner.Stop()
		p.scanner = nil
	}
	p.paths = nil
}
