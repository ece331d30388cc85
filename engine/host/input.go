package host

import "fmt"

// Key is a keyboard key the host can bind.
type Key string

const (
	KeyRightControl Key = "RightControl"
	KeyLeftControl  Key = "LeftControl"
	KeyTab          Key = "Tab"
	KeyF1           Key = "F1"
	KeyF2           Key = "F2"
)

var validKeys = map[Key]bool{
	KeyRightControl: true,
	KeyLeftControl:  true,
	KeyTab:          true,
	KeyF1:           true,
	KeyF2:           true,
}

// ParseKey returns the key with the given name.
func ParseKey(name string) (Key, error) {
	k := Key(name)
	if !validKeys[k] {
		return "", fmt.Errorf("unknown key %q", name)
	}
	return k, nil
}

// Keyboard buffers presses from the OS until the host polls events. Each
// polled press is reported by Pressed exactly once.
type Keyboard struct {
	queued []Key
	ready  map[Key]int
}

func NewKeyboard() *Keyboard {
	return &Keyboard{ready: make(map[Key]int)}
}

// Press records an OS key event.
func (kb *Keyboard) Press(k Key) {
	kb.queued = append(kb.queued, k)
}

func (kb *Keyboard) poll() {
	for _, k := range kb.queued {
		kb.ready[k]++
	}
	kb.queued = kb.queued[:0]
}

// Pressed consumes one polled press of k.
func (kb *Keyboard) Pressed(k Key) bool {
	if kb.ready[k] == 0 {
		return false
	}
	kb.ready[k]--
	return true
}

// Binding adapts one key of a keyboard to a pressed-edge toggle.
type Binding struct {
	Keyboard *Keyboard
	Key      Key
}

func (b Binding) Pressed() bool { return b.Keyboard.Pressed(b.Key) }
