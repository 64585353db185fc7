package strategy

// predicates maps each condition id to the operands its comparator is applied to.
// Ids and hour formulas line up with the catalog definitions.
var predicates = buildPredicates()

func buildPredicates() map[int]operands {
	p := make(map[int]operands, 129)

	// close vs open
	p[1] = sameBar(priorBar(18), closeOf, open)
	p[2] = sameBar(priorBar(19), closeOf, open)
	for h := 4; h <= 19; h++ {
		p[h-1] = sameBar(todayBar(h), closeOf, open)
	}

	// lows
	p[19] = pair(today(4, low), prior(19, low))
	for h := 5; h <= 19; h++ {
		p[h+15] = pair(today(h, low), today(h-1, low))
	}

	// high vs session range
	for h := 4; h <= 15; h++ {
		p[h+31] = pair(today(h, high), rangeHigh(4, 15))
	}
	for h := 16; h <= 19; h++ {
		p[h+31] = pair(today(h, high), rangeHigh(4, 19))
	}

	// highs
	p[51] = pair(today(4, high), prior(19, high))
	for h := 5; h <= 19; h++ {
		p[h+47] = pair(today(h, high), today(h-1, high))
	}

	p[67] = pair(today(10, high), rangeHigh(4, 9))
	p[68] = pair(today(10, low), rangeLow(4, 9))

	id := 69
	for _, h := range []int{4, 5} {
		p[id] = sameBar(todayBar(h), open, low)
		p[id+1] = sameBar(todayBar(h), open, high)
		p[id+2] = sameBar(todayBar(h), closeOf, low)
		p[id+3] = sameBar(todayBar(h), closeOf, high)
		id += 4
	}

	// ordinal bars: first, second and third are the fixed 4h, 5h and 6h buckets
	p[77] = sameBar(todayBar(4), closeOf, open)
	p[78] = sameBar(todayBar(5), closeOf, open)
	p[79] = sameBar(todayBar(6), closeOf, open)
	p[80] = pair(today(4, low), prior(19, low))
	p[81] = pair(today(5, low), today(4, low))

	p[82] = pair(today(4, high), rangeHigh(5, 8))
	p[83] = pair(today(8, high), rangeHigh(4, 7))

	// degenerate bars
	p[84] = sameBar(priorBar(18), high, low)
	p[85] = sameBar(priorBar(19), high, low)
	for h := 4; h <= 19; h++ {
		p[h+82] = sameBar(todayBar(h), high, low)
	}

	// first qualifying bar; at most one of 102..107 holds
	for h := 4; h <= 9; h++ {
		p[h+98] = pair(firstHour, constant(float64(h)))
	}

	for h := 16; h <= 19; h++ {
		p[h+92] = sameBar(todayBar(h), open, low)
		p[h+96] = sameBar(todayBar(h), open, high)
		p[h+100] = sameBar(todayBar(h), closeOf, low)
		p[h+104] = sameBar(todayBar(h), closeOf, high)
	}

	// anchor multiples
	p[124] = pair(crossHigh, anchorTimes(1.5))
	p[125] = pair(crossHigh, anchorTimes(1.7))
	p[126] = pair(rangeHigh(4, 19), times(2, prior(19, closeOf)))
	p[127] = pair(crossHigh, anchorTimes(2))
	p[128] = pair(crossHigh, anchorTimes(2.3))
	p[129] = pair(crossLow, anchorTimes(0.5))

	return p
}
