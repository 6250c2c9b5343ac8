package core

type Button uint16

const (
	BUTTON_LEFT Button = iota
	BUTTON_RIGHT
	BUTTON_MIDDLE
	BUTTON_MAX_BUTTONS
)

// Key code definitions
type KeyCode uint16

const (
	KEY_TAB    KeyCode = 0x09
	KEY_ENTER  KeyCode = 0x0D
	KEY_SHIFT  KeyCode = 0x10
	KEY_ESCAPE KeyCode = 0x1B
	KEY_SPACE  KeyCode = 0x20
	KEY_A      KeyCode = 0x41
	KEY_D      KeyCode = 0x44
	KEY_E      KeyCode = 0x45
	KEY_Q      KeyCode = 0x51
	KEY_S      KeyCode = 0x53
	KEY_W      KeyCode = 0x57
	KEY_F1     KeyCode = 0x70
	KEY_F2     KeyCode = 0x71
	KEY_F3     KeyCode = 0x72
	KEY_LSHIFT KeyCode = 0xA0
	KEY_RSHIFT KeyCode = 0xA1

	KEYS_MAX_KEYS KeyCode = 0xFF
)

// Mouse state structure
type MouseState struct {
	X       float64
	Y       float64
	Buttons [BUTTON_MAX_BUTTONS]bool
}

// Keyboard state structure
type KeyboardState struct {
	Keys [256]bool
}

// Input holds current and previous states for keyboard and mouse. The
// platform layer writes into it from its callbacks and the frame loop reads
// it during Update.
type Input struct {
	KeyboardCurrent  KeyboardState
	KeyboardPrevious KeyboardState
	MouseCurrent     MouseState
	MousePrevious    MouseState

	mouseDeltaX   float64
	mouseDeltaY   float64
	hasMouseInput bool
}

func NewInput() *Input {
	return &Input{}
}

// Update copies current states to previous states and clears the
// accumulated mouse motion. Call it once at the end of every frame.
func (in *Input) Update() {
	in.KeyboardPrevious = in.KeyboardCurrent
	in.MousePrevious = in.MouseCurrent
	in.mouseDeltaX = 0
	in.mouseDeltaY = 0
}

// keyboard input
func (in *Input) IsKeyDown(key KeyCode) bool {
	return in.KeyboardCurrent.Keys[key]
}

func (in *Input) IsKeyUp(key KeyCode) bool {
	return !in.KeyboardCurrent.Keys[key]
}

func (in *Input) WasKeyDown(key KeyCode) bool {
	return in.KeyboardPrevious.Keys[key]
}

// KeyPressed reports a down transition during the current frame.
func (in *Input) KeyPressed(key KeyCode) bool {
	return in.KeyboardCurrent.Keys[key] && !in.KeyboardPrevious.Keys[key]
}

func (in *Input) ProcessKey(key KeyCode, pressed bool) {
	if in.KeyboardCurrent.Keys[key] != pressed {
		in.KeyboardCurrent.Keys[key] = pressed
	}
}

// mouse input
func (in *Input) IsButtonDown(button Button) bool {
	return in.MouseCurrent.Buttons[button]
}

func (in *Input) ProcessButton(button Button, pressed bool) {
	in.MouseCurrent.Buttons[button] = pressed
}

// ProcessMouseMove accumulates the cursor delta since the last frame. The
// very first event only seeds the position so the camera does not jump.
func (in *Input) ProcessMouseMove(x, y float64) {
	if !in.hasMouseInput {
		in.MouseCurrent.X = x
		in.MouseCurrent.Y = y
		in.hasMouseInput = true
		return
	}
	in.mouseDeltaX += x - in.MouseCurrent.X
	in.mouseDeltaY += y - in.MouseCurrent.Y
	in.MouseCurrent.X = x
	in.MouseCurrent.Y = y
}

// MouseDelta returns the cursor motion accumulated during this frame.
func (in *Input) MouseDelta() (float64, float64) {
	return in.mouseDeltaX, in.mouseDeltaY
}
