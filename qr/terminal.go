package qr

import "strings"

// ASCII renders the symbol for a terminal using half-block characters,
// packing two module rows into each text line. The quiet zone configured on
// the symbol is included as blank space.
func ASCII(sym *Symbol) string {
	border := sym.Config.Border
	total := sym.Size() + 2*border

	darkAt := func(x, y int) bool {
		return sym.Module(x-border, y-border)
	}

	var b strings.Builder
	for y := 0; y < total; y += 2 {
		for x := 0; x < total; x++ {
			top := darkAt(x, y)
			bottom := y+1 < total && darkAt(x, y+1)
			switch {
			case top && bottom:
				b.WriteRune('█')
			case top:
				b.WriteRune('▀')
			case bottom:
				b.WriteRune('▄')
			default:
				b.WriteRune(' ')
			}
		}
		b.WriteByte('\n')
	}
	return b.String()
}
