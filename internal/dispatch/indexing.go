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
package dispatch

// Indexing tracks active `$/progress` sessions per language (spec.md §3
// "Indexing counters", "Progress titles") and which query methods must be
// deferred while a language's counter is above zero.
type Indexing struct {
	counts []indexCount
	titles map[string]string // token -> title
}

type indexCount struct {
	language string
	n        int
}

// NewIndexing returns an empty counter/title set.
func NewIndexing() *Indexing {
	return &Indexing{titles: make(map[string]string)}
}

// Begin increments language's counter and remembers title against token
// (spec.md §4.7: "on begin increment indexing_counts[lang], remember title
// by token").
func (ix *Indexing) Begin(language, token, title string) {
	ix.titles[token] = title
	for i := range ix.counts {
		if ix.counts[i].language == language {
			ix.counts[i].n++
			return
		}
	}
	ix.counts = append(ix.counts, indexCount{language: language, n: 1})
}

// Title returns the remembered title for token, if any.
func (ix *Indexing) Title(token string) (string, bool) {
	t, ok := ix.titles[token]
	return t, ok
}

// End decrements language's counter and forgets token's title, returning
// true if every language's counter is now zero (spec.md §4.7: "on end
// decrement, forget title; whenever all counters hit zero, flush the
// deferred queue").
func (ix *Indexing) End(language, token string) (allZero bool) {
	delete(ix.titles, token)
	for i := range ix.counts {
		if ix.counts[i].language == language && ix.counts[i].n > 0 {
			ix.counts[i].n--
		}
	}
	return ix.AllZero()
}

// AllZero reports whether no language currently has an active indexing
// session.
func (ix *Indexing) AllZero() bool {
	for _, c := range ix.counts {
		if c.n > 0 {
			return false
		}
	}
	return true
}

// IsIndexing reports whether language currently has indexing in progress
// (spec.md §3 "Query methods against a language are deferred whenever its
// counter is > 0").
func (ix *Indexing) IsIndexing(language string) bool {
	for _, c := range ix.counts {
		if c.language == language {
			return c.n > 0
		}
	}
	return false
}
