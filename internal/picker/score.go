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

// Package picker implements the fuzzy file finder and synchronous grep
// helper (spec.md §3 "Picker", §4.10): an external-process file index,
// a bespoke fuzzy-scoring formula, MRU boosting, and `rg --vimgrep`.
package picker

import (
	"path"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"
)

// mruBoost is added to a path's score when it appears in the MRU list
// (spec.md §4.10: "MRU boost of +5000 applied after base score").
const mruBoost = 5000

// scoreExactBasename, scoreBasenamePrefix, scoreCaseInsensitivePrefix and
// the subsequence bonuses are taken verbatim from spec.md §4.10's scoring
// table.
const (
	scoreExactBasename          = 10000
	scoreBasenamePrefixBase     = 5000
	scoreCaseInsensitivePrefixBase = 2000
	bonusAdjacency              = 100
	bonusAfterBoundary          = 80
	bonusCamelCase              = 60
	bonusBasenameStart          = 150
)

func isBoundary(b byte) bool {
	return b == '/' || b == '_' || b == '-' || b == '.'
}

func isCamelBoundary(prev, cur byte) bool {
	return prev >= 'a' && prev <= 'z' && cur >= 'A' && cur <= 'Z'
}

// score computes one candidate path's match score against query, or
// (0, false) if the candidate doesn't match at all (spec.md §4.10
// "Scoring").
func score(query, candidate string) (int, bool) {
	base := path.Base(candidate)

	if query == base {
		return scoreExactBasename, true
	}
	if strings.HasPrefix(base, query) {
		return scoreBasenamePrefixBase + len(query), true
	}
	if strings.HasPrefix(strings.ToLower(base), strings.ToLower(query)) {
		return scoreCaseInsensitivePrefixBase + len(query), true
	}

	return subsequenceScore(query, candidate, len(candidate)-len(base))
}

// subsequenceScore implements the fall-through case: a bonused subsequence
// match scanned left to right over candidate, with fuzzy.MatchNormalizedFold
// as the gate
// (a query that isn't even a subsequence scores nothing at all).
func subsequenceScore(query, candidate string, basenameStart int) (int, bool) {
	if query == "" {
		return 0, false
	}
	if !fuzzy.MatchNormalizedFold(query, candidate) {
		return 0, false
	}

	lowerQuery := strings.ToLower(query)
	lowerCandidate := strings.ToLower(candidate)

	total := 0
	qi := 0
	lastMatch := -1
	for ci := 0; ci < len(candidate) && qi < len(lowerQuery); ci++ {
		if lowerCandidate[ci] != lowerQuery[qi] {
			continue
		}
		pointBonus := 0
		if lastMatch == ci-1 {
			pointBonus += bonusAdjacency
		}
		if ci > 0 && isBoundary(candidate[ci-1]) {
			pointBonus += bonusAfterBoundary
		}
		if ci > 0 && isCamelBoundary(candidate[ci-1], candidate[ci]) {
			pointBonus += bonusCamelCase
		}
		if ci == basenameStart {
			pointBonus += bonusBasenameStart
		}
		total += pointBonus
		lastMatch = ci
		qi++
	}
	if qi < len(lowerQuery) {
		return 0, false
	}

	penalty := lastMatch
	if penalty > 50 {
		penalty = 50
	}
	total -= penalty

	return total, true
}
