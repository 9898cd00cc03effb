//go:build windows

package ui

import "encoding/binary"

// encodeIcon wraps a PNG in a single-image ICO container, which is what the
// Windows tray expects.
func encodeIcon(pngData []byte) []byte {
	const headerSize = 6 + 16
	buf := make([]byte, headerSize, headerSize+len(pngData))

	// ICONDIR
	binary.LittleEndian.PutUint16(buf[2:], 1) // type: icon
	binary.LittleEndian.PutUint16(buf[4:], 1) // count

	// ICONDIRENTRY
	buf[6] = iconSize
	buf[7] = iconSize
	binary.LittleEndian.PutUint16(buf[10:], 1)  // planes
	binary.LittleEndian.PutUint16(buf[12:], 32) // bpp
	binary.LittleEndian.PutUint32(buf[14:], uint32(len(pngData)))
	binary.LittleEndian.PutUint32(buf[18:], headerSize)

	return append(buf, pngData...)
}
