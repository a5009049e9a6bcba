//go:build !linux

package helpers

// GetTotalSystemMemoryMB is unknown off Linux; callers fall back to a fixed limit.
func GetTotalSystemMemoryMB() int {
	return 0
}
