package engine

// HeightTracker smooths the bar height: it jumps up to a higher target at
// once and falls toward a lower one by a 15/16 weighted average per tick.
type HeightTracker struct {
	length int
	height int
}

// NewHeightTracker tracks heights in [0, length].
func NewHeightTracker(length int) *HeightTracker {
	return &HeightTracker{length: length}
}

// TargetHeight maps amplitude from [0, ceiling] onto [0, length], truncating
// and clamping. A non-positive ceiling yields 0.
func TargetHeight(amplitude, ceiling, length int) int {
	if ceiling <= 0 {
		return 0
	}
	return clampInt(amplitude*length/ceiling, 0, length)
}

// Update advances the displayed height toward the target for amplitude.
func (h *HeightTracker) Update(amplitude, ceiling int) int {
	target := TargetHeight(amplitude, ceiling, h.length)
	if target > h.height {
		h.height = target
	} else {
		h.height = (h.height*15 + target) / 16
	}
	h.height = clampInt(h.height, 0, h.length)
	return h.height
}

// Height returns the displayed height.
func (h *HeightTracker) Height() int { return h.height }

// Set overrides the displayed height.
func (h *HeightTracker) Set(v int) { h.height = clampInt(v, 0, h.length) }

func clampInt(v, min, max int) int {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}
