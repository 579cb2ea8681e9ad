package systems

// clampFloat clamps a float32 value between min and max.
func clampFloat(v, minVal, maxVal float32) float32 {
	if v < minVal {
		return minVal
	}
	if v > maxVal {
		return maxVal
	}
	return v
}

// clamp01 clamps a float32 value to the [0, 1] range.
func clamp01(v float32) float32 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// clampInt clamps an int between min and max.
func clampInt(v, minVal, maxVal int) int {
	if v < minVal {
		return minVal
	}
	if v > maxVal {
		return maxVal
	}
	return v
}

// floorInt returns floor(v) as an int. Unlike int(v) it rounds negative
// values down, which matters for particles sitting left of a face row.
func floorInt(v float32) int {
	i := int(v)
	if v < 0 && float32(i) != v {
		i--
	}
	return i
}

// absf returns |v|.
func absf(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}

// signf returns -1 for negative values and +1 otherwise.
func signf(v float32) float32 {
	if v < 0 {
		return -1
	}
	return 1
}
