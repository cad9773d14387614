package booking

import "hash/fnv"

// estimateDistanceMiles produces a stable distance estimate in the 1-11 mile
// band from the two free-text locations. The exact figure is not a contract
// of the lifecycle engine; it only has to be deterministic and reasonable so
// updated bookings get a repeatable re-estimate. A routing backend can
// replace this without touching the lifecycle transitions.
func estimateDistanceMiles(pickup, drop string) float64 {
	h := fnv.New32a()
	h.Write([]byte(pickup))
	h.Write([]byte{0})
	h.Write([]byte(drop))

	// 1.0 .. 11.0 miles in tenths
	return 1.0 + float64(h.Sum32()%101)/10.0
}
