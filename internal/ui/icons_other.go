//go:build !windows

package ui

func encodeIcon(pngData []byte) []byte {
	return pngData
}
