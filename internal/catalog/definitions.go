package catalog

import "fmt"

// definitions returns the built-in table. Ids are stable: saved activation
// state and result files refer to them.
func definitions() []Definition {
	var defs []Definition
	add := func(id int, family Family, cmp Comparator, format string, args ...any) {
		defs = append(defs, Definition{
			ID:          id,
			Description: fmt.Sprintf(format, args...),
			Family:      family,
			Comparator:  cmp,
		})
	}

	add(1, FamilyCloseOpen, GreaterEqual, "Close 18h DAY-1 ≥ Open 18h DAY-1")
	add(2, FamilyCloseOpen, GreaterEqual, "Close 19h DAY-1 ≥ Open 19h DAY-1")
	for h := 4; h <= 19; h++ {
		add(h-1, FamilyCloseOpen, GreaterEqual, "Close %dh ≥ Open %dh", h, h)
	}

	add(19, FamilyCrossSession, LessEqual, "Low 4h ≤ Low 19h DAY-1")
	for h := 5; h <= 19; h++ {
		add(h+15, FamilyMonotonic, LessEqual, "Low %dh ≤ Low %dh", h, h-1)
	}

	for h := 4; h <= 15; h++ {
		add(h+31, FamilyRange, GreaterEqual, "High %dh ≥ High [4;15]", h)
	}
	for h := 16; h <= 19; h++ {
		add(h+31, FamilyRange, GreaterEqual, "High %dh ≥ High [4;19]", h)
	}

	add(51, FamilyCrossSession, GreaterEqual, "High 4h ≥ High 19h DAY-1")
	for h := 5; h <= 19; h++ {
		add(h+47, FamilyMonotonic, GreaterEqual, "High %dh ≥ High %dh", h, h-1)
	}

	add(67, FamilyRange, Greater, "High 10h > High [4;9]")
	add(68, FamilyRange, Less, "Low 10h < Low [4;9]")

	id := 69
	for _, h := range []int{4, 5} {
		add(id, FamilyDegenerate, NotEqual, "Open %dh ≠ Low %dh", h, h)
		add(id+1, FamilyDegenerate, NotEqual, "Open %dh ≠ High %dh", h, h)
		add(id+2, FamilyDegenerate, NotEqual, "Close %dh ≠ Low %dh", h, h)
		add(id+3, FamilyDegenerate, NotEqual, "Close %dh ≠ High %dh", h, h)
		id += 4
	}

	add(77, FamilyOrdinal, GreaterEqual, "First bar : Close ≥ Open")
	add(78, FamilyOrdinal, GreaterEqual, "Second bar : Close ≥ Open")
	add(79, FamilyOrdinal, GreaterEqual, "Third bar : Close ≥ Open")
	add(80, FamilyCrossSession, LessEqual, "Low First bar ≤ Low 19h DAY-1")
	add(81, FamilyOrdinal, LessEqual, "Low Second bar ≤ Low First bar")

	add(82, FamilyRange, GreaterEqual, "High 4h ≥ High [5;8]")
	add(83, FamilyRange, GreaterEqual, "High 8h ≥ High [4;7]")

	add(84, FamilyDegenerate, NotEqual, "High 18h DAY-1 ≠ Low 18h DAY-1")
	add(85, FamilyDegenerate, NotEqual, "High 19h DAY-1 ≠ Low 19h DAY-1")
	for h := 4; h <= 19; h++ {
		add(h+82, FamilyDegenerate, NotEqual, "High %dh ≠ Low %dh", h, h)
	}

	for h := 4; h <= 9; h++ {
		add(h+98, FamilyFirstBar, Equal, "First bar = %dh", h)
	}

	for h := 16; h <= 19; h++ {
		add(h+92, FamilyDegenerate, Equal, "Open %dh = Low %dh", h, h)
		add(h+96, FamilyDegenerate, Equal, "Open %dh = High %dh", h, h)
		add(h+100, FamilyDegenerate, Equal, "Close %dh = Low %dh", h, h)
		add(h+104, FamilyDegenerate, Equal, "Close %dh = High %dh", h, h)
	}

	add(124, FamilyAnchorMultiple, Greater, "High [16h DAY-1 ; 19h DAY] > 1.5 * Open 16h DAY-1")
	add(125, FamilyAnchorMultiple, Greater, "High [16h DAY-1 ; 19h DAY] > 1.7 * Open 16h DAY-1")
	add(126, FamilyCrossSession, Greater, "High [4h DAY ; 19h DAY] > 2 * Close 19h DAY-1")
	add(127, FamilyAnchorMultiple, Greater, "High [16h DAY-1 ; 19h DAY] > 2 * Open 16h DAY-1")
	add(128, FamilyAnchorMultiple, Greater, "High [16h DAY-1 ; 19h DAY] > 2.3 * Open 16h DAY-1")
	add(129, FamilyAnchorMultiple, Less, "Low [16h DAY-1 ; 19h DAY] < 0.5 * Open 16h DAY-1")

	return defs
}
