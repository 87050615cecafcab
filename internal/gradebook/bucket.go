package gradebook

// Bucketize maps a continuous percentage to the discrete 0..5 point bucket:
//
//	>= 93: 5
//	>= 80: 4
//	>= 60: 3
//	>= 40: 2
//	>= 20: 1
//	else:  0
//
// The breakpoints are course policy and are not tunable per call.
func Bucketize(pct float64) int {
	switch {
	case pct >= 93:
		return 5
	case pct >= 80:
		return 4
	case pct >= 60:
		return 3
	case pct >= 40:
		return 2
	case pct >= 20:
		return 1
	default:
		return 0
	}
}
