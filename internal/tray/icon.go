package tray

import (
	"bytes"
	"encoding/binary"
	"image"
	"image/color"
	"image/png"
	"runtime"
)

const iconSize = 32

// Icons are drawn at start up: a keycap outline, solid when an accessory
// is connected.
var (
	IconIdle      = trayIcon(false)
	IconConnected = trayIcon(true)
)

func trayIcon(filled bool) []byte {
	data := keycapPNG(filled)
	if runtime.GOOS == "windows" {
		return wrapICO(data)
	}
	return data
}

func keycapPNG(filled bool) []byte {
	img := image.NewNRGBA(image.Rect(0, 0, iconSize, iconSize))
	ink := color.NRGBA{A: 0xFF}
	const inset, border, radius = 3, 3, 5
	for y := inset; y < iconSize-inset; y++ {
		for x := inset; x < iconSize-inset; x++ {
			if outsideCorner(x-inset, y-inset, iconSize-2*inset, radius) {
				continue
			}
			edge := x < inset+border || x >= iconSize-inset-border ||
				y < inset+border || y >= iconSize-inset-border
			if filled || edge {
				img.SetNRGBA(x, y, ink)
			}
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		panic(err)
	}
	return buf.Bytes()
}

// outsideCorner reports whether (x, y) of a size×size square lies outside
// its rounded corners.
func outsideCorner(x, y, size, r int) bool {
	cx, cy := -1, -1
	switch {
	case x < r:
		cx = r
	case x >= size-r:
		cx = size - r - 1
	}
	switch {
	case y < r:
		cy = r
	case y >= size-r:
		cy = size - r - 1
	}
	if cx < 0 || cy < 0 {
		return false
	}
	dx, dy := x-cx, y-cy
	return dx*dx+dy*dy > r*r
}

// wrapICO stores a PNG in a single image .ico container, which Windows
// accepts since Vista.
func wrapICO(pngData []byte) []byte {
	var buf bytes.Buffer
	le := binary.LittleEndian
	binary.Write(&buf, le, [3]uint16{0, 1, 1}) // reserved, type icon, count
	buf.WriteByte(iconSize)
	buf.WriteByte(iconSize)
	buf.WriteByte(0) // palette
	buf.WriteByte(0)
	binary.Write(&buf, le, uint16(1))  // planes
	binary.Write(&buf, le, uint16(32)) // bits per pixel
	binary.Write(&buf, le, uint32(len(pngData)))
	binary.Write(&buf, le, uint32(6+16))
	buf.Write(pngData)
	return buf.Bytes()
}
