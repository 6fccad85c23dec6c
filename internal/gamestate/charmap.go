package gamestate

// The game stores text in its own byte encoding. 0xFF terminates a string;
// anything we do not recognize renders as a placeholder glyph instead of
// failing the whole decode.
const textTerminator = 0xFF

func decodeChar(b byte) rune {
	switch {
	case b == 0x00:
		return ' '
	case b >= 0xA1 && b <= 0xAA:
		return rune('0' + (b - 0xA1))
	case b >= 0xBB && b <= 0xD4:
		return rune('A' + (b - 0xBB))
	case b >= 0xD5 && b <= 0xEE:
		return rune('a' + (b - 0xD5))
	case b == 0xAB:
		return '!'
	case b == 0xAC:
		return '?'
	case b == 0xAD:
		return '.'
	case b == 0xB4:
		return '\''
	case b == 0xB5:
		return '♂'
	case b == 0xB6:
		return '♀'
	case b == 0xB8:
		return ','
	case b == 0xBA:
		return '/'
	default:
		return '?'
	}
}

// decodeText converts raw in-game text to a string, stopping at the
// terminator byte. Trailing bytes past the terminator are ignored.
func decodeText(raw []byte) string {
	out := make([]rune, 0, len(raw))
	for _, b := range raw {
		if b == textTerminator {
			break
		}
		out = append(out, decodeChar(b))
	}
	return string(out)
}
