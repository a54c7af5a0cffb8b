package catalog

import (
	"sort"

	"medicatalog/internal/domain"
)

// SortMedia orders a gallery by its Order field, keeping ties stable.
func SortMedia(media []domain.Media) []domain.Media {
	out := append([]domain.Media(nil), media...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Order < out[j].Order })
	return out
}

// RemoveMedia deletes the gallery entry at index (position in display order)
// and renumbers the rest 0..n-1.
func RemoveMedia(media []domain.Media, index int) ([]domain.Media, error) {
	ordered := SortMedia(media)
	if index < 0 || index >= len(ordered) {
		return nil, domain.Invalid("index", "no media at this position")
	}
	out := make([]domain.Media, 0, len(ordered)-1)
	out = append(out, ordered[:index]...)
	out = append(out, ordered[index+1:]...)
	for i := range out {
		out[i].Order = i
	}
	return out, nil
}
