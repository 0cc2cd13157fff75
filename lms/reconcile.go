package lms

import (
	"cmp"
	"slices"
)

// linkAccess exposes the parts of an ordered link (qualification to
// requirement, requirement to activity) that reconcileLinks rewrites.
type linkAccess[L any] struct {
	target func(*L) int
	order  func(*L) *int
	// touch marks an existing link as updated.
	touch func(*L)
	// create builds a new link to target at position order.
	create func(target, order int) L
}

// reconcileLinks rewrites links so their targets are exactly want, in that
// order. Links to dropped targets are removed, new targets get fresh links
// and surviving links are renumbered from 1. Existing links are touched only
// when their position changes unless touchAll is set. The result is sorted
// by display order.
func reconcileLinks[L any](links []L, want []int, access linkAccess[L], touchAll bool) []L {
	kept := make([]L, 0, len(want))
	for _, link := range links {
		if slices.Contains(want, access.target(&link)) {
			kept = append(kept, link)
		}
	}

	for i, id := range want {
		order := i + 1
		idx := slices.IndexFunc(kept, func(l L) bool { return access.target(&l) == id })
		if idx < 0 {
			kept = append(kept, access.create(id, order))
			continue
		}
		existing := &kept[idx]
		if p := access.order(existing); *p != order || touchAll {
			*p = order
			access.touch(existing)
		}
	}

	slices.SortStableFunc(kept, func(a, b L) int {
		return cmp.Compare(*access.order(&a), *access.order(&b))
	})
	return kept
}
