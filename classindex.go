package mem

import "github.com/cznic/mathutil"

// classBoundaries holds the inclusive upper bound, in bytes, of each of the
// 14 fine classes (indices 0..13); the 6 geometric classes above that
// (14..19) are handled arithmetically in classOf, not via this table.
var classBoundaries = func() [fineClassCount]int {
	var t [fineClassCount]int
	for i := range t {
		t[i] = fineClassFloor + i*fineClassStep
	}
	t[fineClassCount-1] = fineClassTop // class 13 spans 120..128
	return t
}()

// classOf maps a block size to one of the 20 free-list bucket indices of
// §3. Small sizes (<=128) dispatch by direct division, matching their fixed
// 8-byte stride; larger sizes dispatch via mathutil.BitLen the same way the
// teacher computes its power-of-two slot class (memory.go:
// `log := uint(mathutil.BitLen(roundup(size, mallocAllign) - 1))`), adapted
// here from the teacher's open-ended power-of-two ladder to the spec's six
// geometric classes topping out at class 19.
func classOf(size int) int {
	if size <= fineClassTop {
		idx := (size - fineClassFloor) / fineClassStep
		switch {
		case idx < 0:
			return 0
		case idx >= fineClassCount:
			return fineClassCount - 1
		default:
			return idx
		}
	}

	// size-1 in [128,255] -> BitLen 8 -> class 14
	// size-1 in [256,511] -> BitLen 9 -> class 15
	// ... size-1 >= 4096   -> BitLen >=13 -> class 19 (clamped)
	shift := mathutil.BitLen(size-1) - 8
	class := firstGeoClass + shift
	if class > numClasses-1 {
		class = numClasses - 1
	}
	if class < firstGeoClass {
		class = firstGeoClass
	}
	return class
}
