package songmap

import "strings"

// FindByTitle returns every song whose title matches query exactly,
// case-insensitively. Used before falling back to fuzzy matching.
func (idx *Index) FindByTitle(query string) []*Song {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	want := strings.ToLower(query)
	var out []*Song
	for _, albums := range idx.tree {
		for _, discs := range albums {
			for _, tracks := range discs {
				for _, inodes := range tracks {
					for _, s := range inodes {
						if strings.ToLower(s.Metadata.Title) == want {
							out = append(out, s)
						}
					}
				}
			}
		}
	}
	return out
}

// FindByTitleFuzzy returns every song whose title is within maxDist edits
// (case-insensitive Levenshtein distance) of query, sorted by ascending
// distance. A maxDist of 0 degrades to exact matching.
func (idx *Index) FindByTitleFuzzy(query string, maxDist int) []*Song {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	want := strings.ToLower(query)
	type scored struct {
		song *Song
		dist int
	}
	var hits []scored
	for _, albums := range idx.tree {
		for _, discs := range albums {
			for _, tracks := range discs {
				for _, inodes := range tracks {
					for _, s := range inodes {
						d := levenshtein(want, strings.ToLower(s.Metadata.Title))
						if d <= maxDist {
							hits = append(hits, scored{s, d})
						}
					}
				}
			}
		}
	}

	// insertion sort: hit counts are small (single-digit maxDist over a
	// personal library), and this keeps the result stable for equal
	// distances without pulling in sort.Slice's closure overhead.
	for i := 1; i < len(hits); i++ {
		for j := i; j > 0 && hits[j].dist < hits[j-1].dist; j-- {
			hits[j], hits[j-1] = hits[j-1], hits[j]
		}
	}

	out := make([]*Song, len(hits))
	for i, h := range hits {
		out[i] = h.song
	}
	return out
}

// levenshtein computes the edit distance between a and b using a
// two-row dynamic-programming table.
func levenshtein(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	if len(ra) == 0 {
		return len(rb)
	}
	if len(rb) == 0 {
		return len(ra)
	}

	prev := make([]int, len(rb)+1)
	curr := make([]int, len(rb)+1)
	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= len(ra); i++ {
		curr[0] = i
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			del := prev[j] + 1
			ins := curr[j-1] + 1
			sub := prev[j-1] + cost
			m := del
			if ins < m {
				m = ins
			}
			if sub < m {
				m = sub
			}
			curr[j] = m
		}
		prev, curr = curr, prev
	}
	return prev[len(rb)]
}
