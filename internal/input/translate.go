// Package input decodes raw terminal byte sequences into key events.
package input

// KeyType identifies the kind of key a byte sequence decoded to.
type KeyType int

const (
	KeyChar KeyType = iota
	KeyUp
	KeyDown
	KeyLeft
	KeyRight
	KeyPageUp
	KeyPageDown
	KeyHome
	KeyEnd
	KeyTab
	KeyBackspace
	KeyDelete
	KeyEnter
)

// Key is one decoded key event. Rune is set only for KeyChar.
type Key struct {
	Type KeyType
	Rune rune
}

// sequences maps complete escape sequences and control bytes to keys.
// Both the CSI ("\x1b[") and SS3 ("\x1bO") variants are listed for the
// navigation keys because terminals disagree on which one they send.
var sequences = map[string]Key{
	"\x1b[A":  {Type: KeyUp},
	"\x1bOA":  {Type: KeyUp},
	"\x1b[B":  {Type: KeyDown},
	"\x1bOB":  {Type: KeyDown},
	"\x1b[C":  {Type: KeyRight},
	"\x1bOC":  {Type: KeyRight},
	"\x1b[D":  {Type: KeyLeft},
	"\x1bOD":  {Type: KeyLeft},
	"\x1b[5~": {Type: KeyPageUp},
	"\x1b[6~": {Type: KeyPageDown},
	"\x1b[H":  {Type: KeyHome},
	"\x1bOH":  {Type: KeyHome},
	"\x1b[F":  {Type: KeyEnd},
	"\x1bOF":  {Type: KeyEnd},
	"\x1b[3~": {Type: KeyDelete},
	"\t":      {Type: KeyTab},
	"\x7f":    {Type: KeyBackspace},
	"\r":      {Type: KeyEnter},
	"\n":      {Type: KeyEnter},
	" ":       {Type: KeyChar, Rune: ' '},
}

// Translate maps a single inbound read to a key event. It is stateless:
// an escape sequence split across two reads is not recognized. Unknown
// sequences produce no event.
func Translate(data []byte) (Key, bool) {
	if k, ok := sequences[string(data)]; ok {
		return k, true
	}
	if len(data) == 1 && data[0] > 0x20 && data[0] < 0x7f {
		return Key{Type: KeyChar, Rune: rune(data[0])}, true
	}
	return Key{}, false
}
