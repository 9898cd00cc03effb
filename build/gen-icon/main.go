//go:build ignore

// gen-icon writes the dnskeeper application icon as a multi-size .ico.
// Usage: go run build/gen-icon/main.go [output.ico]
//
// The generated .ico can be used for the Windows installer and executable.
package main

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"

	"github.com/user/dnskeeper/internal/ui"
)

func main() {
	output := "build/windows/icon.ico"
	if len(os.Args) > 1 {
		output = os.Args[1]
	}

	sizes := []int{16, 32, 48, 256}
	images := make([][]byte, len(sizes))
	for i, size := range sizes {
		images[i] = ui.IconPNG("ok", size)
	}

	ico := buildICO(sizes, images)

	if err := os.MkdirAll(filepath.Dir(output), 0755); err != nil {
		fmt.Fprintf(os.Stderr, "mkdir: %v\n", err)
		os.Exit(1)
	}
	if err := os.WriteFile(output, ico, 0644); err != nil {
		fmt.Fprintf(os.Stderr, "write %s: %v\n", output, err)
		os.Exit(1)
	}

	fmt.Printf("Generated %s (%d bytes)\n", output, len(ico))
}

// buildICO packs PNG images into one .ico. A 256 px entry is recorded as 0
// in the directory, as the format requires.
func buildICO(sizes []int, images [][]byte) []byte {
	var buf bytes.Buffer
	n := len(sizes)

	binary.Write(&buf, binary.LittleEndian, uint16(0)) // reserved
	binary.Write(&buf, binary.LittleEndian, uint16(1)) // type: icon
	binary.Write(&buf, binary.LittleEndian, uint16(n))

	offset := uint32(6 + 16*n)
	for i, size := range sizes {
		dim := byte(size)
		if size >= 256 {
			dim = 0
		}
		buf.WriteByte(dim)
		buf.WriteByte(dim)
		buf.WriteByte(0) // palette
		buf.WriteByte(0) // reserved
		binary.Write(&buf, binary.LittleEndian, uint16(1))  // planes
		binary.Write(&buf, binary.LittleEndian, uint16(32)) // bpp
		binary.Write(&buf, binary.LittleEndian, uint32(len(images[i])))
		binary.Write(&buf, binary.LittleEndian, offset)
		offset += uint32(len(images[i]))
	}

	for _, img := range images {
		buf.Write(img)
	}
	return buf.Bytes()
}
