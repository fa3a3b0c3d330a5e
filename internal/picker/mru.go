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

// mruCapacity bounds the recent-files list seeded by picker_init and
// grown by touch (spec.md §4.10: "MRU list, most-recent-first, capped").
const mruCapacity = 200

// mru is a most-recent-first list of paths with O(n) touch/contains,
// adequate at mruCapacity's size.
type mru struct {
	paths []string
}

func newMRU(seed []string) *mru {
	m := &mru{paths: make([]string, 0, mruCapacity)}
	for _, p := range seed {
		m.touch(p)
	}
	return m
}

// touch moves path to the front, trimming to mruCapacity.
func (m *mru) touch(path string) {
	for i, p := range m.paths {
		if p == path {
			m.paths = append(m.paths[:i], m.paths[i+1:]...)
			break
		}
	}
	m.paths = append([]string{path}, m.paths...)
	if len(m.paths) > mruCapacity {
		m.paths = m.paths[:mruCapacity]
	}
}

func (m *mru) rank(path string) (int, bool) {
	for i, p := range m.paths {
		if p == path {
			return i, true
		}
	}
	return 0, false
}

func (m *mru) list() []string {
	out := make([]string, len(m.paths))
	copy(out, m.paths)
	return out
}
