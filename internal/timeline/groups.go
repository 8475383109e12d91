package timeline

import (
	"slices"
	"strings"

	"schedview/internal/model"
)

// GroupOrder is the track comparator: the "Layers" header first, the final
// schedule last, everything else by label.
func GroupOrder(a, b model.Group) int {
	switch {
	case a.ID == b.ID:
		return 0
	case a.ID == GroupLayers:
		return -1
	case b.ID == GroupLayers:
		return 1
	case a.ID == GroupFinal:
		return 1
	case b.ID == GroupFinal:
		return -1
	}
	return strings.Compare(a.Label, b.Label)
}

// SortGroups orders groups in place with GroupOrder.
func SortGroups(groups []model.Group) {
	slices.SortStableFunc(groups, GroupOrder)
}

// GroupIDs returns the ids in order.
func GroupIDs(groups []model.Group) []string {
	out := make([]string, len(groups))
	for i, g := range groups {
		out[i] = g.ID
	}
	return out
}
