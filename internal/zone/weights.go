package zone

// Strava quantizes stream timestamps to whole seconds, so several samples
// can land on the same timestamp, and device auto-pause leaves long gaps
// between consecutive ones. SampleWeights converts the raw timestamp
// stream into a per-sample duration so that neither effect inflates zone
// time.

// maxBlockSeconds is the largest gap between consecutive unique
// timestamps that still counts as real elapsed time. Anything longer is
// treated as a pause and contributes one second.
const maxBlockSeconds = 10

// SampleWeights returns a duration weight in seconds for each sample in a
// non-decreasing timestamp stream, aligned index-for-index with the
// input. The duration of each unique timestamp is the distance to the
// next unique timestamp (the final one defaults to 1s), clamped to 1s
// when it exceeds maxBlockSeconds, and split evenly among the samples
// sharing that timestamp. An empty stream yields nil.
func SampleWeights(times []int) []float64 {
	if len(times) == 0 {
		return nil
	}

	weights := make([]float64, len(times))

	i := 0
	for i < len(times) {
		// Find the run of samples sharing times[i].
		j := i + 1
		for j < len(times) && times[j] == times[i] {
			j++
		}

		duration := 1.0
		if j < len(times) {
			duration = float64(times[j] - times[i])
		}
		if duration > maxBlockSeconds {
			duration = 1.0
		}

		per := duration / float64(j-i)
		for k := i; k < j; k++ {
			weights[k] = per
		}

		i = j
	}

	return weights
}

// TotalWeight sums a weight slice. It is the activity's effective
// duration after pause clamping.
func TotalWeight(weights []float64) float64 {
	var total float64
	for _, w := range weights {
		total += w
	}
	return total
}
