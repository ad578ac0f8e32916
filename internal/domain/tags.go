package domain

import "sort"

// TagCount is one entry of the tag index.
type TagCount struct {
	Tag   string `json:"tag"`
	Count int    `json:"count"`
}

// ComputeTagCounts aggregates tag occurrences across bookmarks, most used
// first. Equal counts keep the order in which the tags were first seen.
// Duplicated tags on one bookmark are counted each time.
func ComputeTagCounts(bookmarks []Bookmark) []TagCount {
	index := make(map[string]int)
	counts := make([]TagCount, 0)

	for _, b := range bookmarks {
		for _, tag := range b.Tags {
			i, ok := index[tag]
			if !ok {
				i = len(counts)
				index[tag] = i
				counts = append(counts, TagCount{Tag: tag})
			}
			counts[i].Count++
		}
	}

	sort.SliceStable(counts, func(i, j int) bool {
		return counts[i].Count > counts[j].Count
	})

	return counts
}

// TagPaletteSize is the number of distinct tag colours.
const TagPaletteSize = 6

// TagColor maps a tag to a stable palette slot in [0, TagPaletteSize).
func TagColor(tag string) int {
	sum := 0
	for _, r := range tag {
		sum += int(r)
	}
	return sum % TagPaletteSize
}
