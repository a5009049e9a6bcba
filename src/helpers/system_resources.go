package helpers

// GetRecommendedMemoryLimit returns 75% of physical memory in MB, never
// below 512MB unless the machine has less than that.
func GetRecommendedMemoryLimit() int {
	totalMB := GetTotalSystemMemoryMB()
	if totalMB == 0 {
		return 512
	}

	limit := totalMB * 3 / 4
	if limit < 512 {
		return min(totalMB, 512)
	}
	return limit
}
