//go:build windows

package cmd

// getTermWidthIoctl is not available on Windows; terminalWidth falls back
// to $COLUMNS or 80.
func getTermWidthIoctl() int {
	return 0
}
