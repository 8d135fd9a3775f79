package idle

import (
	"math"
	"time"
)

// Beat helpers turn the loop clock into periodic waves. A wave at bpm
// completes bpm cycles per minute.

func millis(now time.Duration) uint32 {
	return uint32(now / time.Millisecond)
}

func beat16(bpm uint16, now time.Duration) uint16 {
	return uint16((uint64(millis(now)) * uint64(bpm) * 256 * 280) >> 16)
}

func beat8(bpm uint16, now time.Duration) uint8 {
	return uint8(beat16(bpm, now) >> 8)
}

func sin8(theta uint8) uint8 {
	return uint8(math.Round(128 + 127*math.Sin(2*math.Pi*float64(theta)/256)))
}

func sin16(theta uint16) int16 {
	return int16(math.Round(32767 * math.Sin(2*math.Pi*float64(theta)/65536)))
}

func scale8(v, scale uint8) uint8 {
	return uint8((uint16(v) * (uint16(scale) + 1)) >> 8)
}

func scale16(v, scale uint16) uint16 {
	return uint16((uint32(v) * (uint32(scale) + 1)) >> 16)
}

// beatsin8 oscillates between low and high inclusive.
func beatsin8(bpm uint16, low, high uint8, now time.Duration) uint8 {
	return low + scale8(sin8(beat8(bpm, now)), high-low)
}

// beatsin16 oscillates between low and high inclusive.
func beatsin16(bpm uint16, low, high uint16, now time.Duration) uint16 {
	s := uint16(int32(sin16(beat16(bpm, now))) + 32768)
	return low + scale16(s, high-low)
}
