package tray

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"image/png"
	"testing"

	"github.com/HopIT-Hub/hotkeykit/internal/app"
)

func TestBindingLabels(t *testing.T) {
	got := bindingLabels([]app.Binding{
		{Name: "hello", Shortcut: "⌃⌥H", Registered: true},
		{Name: "taken", Shortcut: "⌘Space"},
		{Name: "broken"},
	})
	want := []string{"⌃⌥H  hello", "✗ ⌘Space  taken", "✗ broken"}
	if fmt.Sprint(got) != fmt.Sprint(want) {
		t.Fatalf("labels = %q, want %q", got, want)
	}

	many := make([]app.Binding, maxShown+5)
	if n := len(bindingLabels(many)); n != maxShown {
		t.Errorf("%d labels for %d bindings", n, len(many))
	}
}

func TestIcons(t *testing.T) {
	for _, filled := range []bool{false, true} {
		data := keycapPNG(filled)
		img, err := png.Decode(bytes.NewReader(data))
		if err != nil {
			t.Fatal(err)
		}
		if b := img.Bounds(); b.Dx() != iconSize || b.Dy() != iconSize {
			t.Fatalf("bounds %v", b)
		}
		_, _, _, corner := img.At(3, 3).RGBA()
		_, _, _, centre := img.At(iconSize/2, iconSize/2).RGBA()
		if corner != 0 || (centre != 0) != filled {
			t.Errorf("filled=%v: corner alpha %d, centre alpha %d", filled, corner, centre)
		}

		ico := wrapICO(data)
		if binary.LittleEndian.Uint16(ico[2:]) != 1 || binary.LittleEndian.Uint32(ico[18:]) != 22 || !bytes.Equal(ico[22:], data) {
			t.Errorf("bad ico header % x", ico[:22])
		}
	}
}
