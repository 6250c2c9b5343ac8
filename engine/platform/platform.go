package platform

import (
	"runtime"

	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/pkg/errors"

	"github.com/spaghettifunk/anima/engine/core"
)

func init() {
	// GLFW event handling and the GL context must stay on the main OS thread
	runtime.LockOSThread()
}

type WindowConfig struct {
	Name   string
	X      uint32
	Y      uint32
	Width  uint32
	Height uint32
	VSync  bool
	// request a debug context so the driver can report messages
	Debug bool
}

// Platform owns the window and the GL context. Its callbacks feed the
// input state and fire events on the bus.
type Platform struct {
	Window *glfw.Window

	input     *core.Input
	events    *core.EventBus
	startTime float64
}

func New(input *core.Input, events *core.EventBus) (*Platform, error) {
	if input == nil || events == nil {
		return nil, errors.New("func New - platform needs an input state and an event bus")
	}
	return &Platform{
		input:  input,
		events: events,
	}, nil
}

func (p *Platform) Startup(config WindowConfig) error {
	if err := glfw.Init(); err != nil {
		return errors.Wrap(err, "failed to initialize glfw")
	}

	glfw.WindowHint(glfw.Visible, glfw.False)
	glfw.WindowHint(glfw.Resizable, glfw.True)
	glfw.WindowHint(glfw.ContextVersionMajor, 4)
	glfw.WindowHint(glfw.ContextVersionMinor, 3)
	glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)
	glfw.WindowHint(glfw.OpenGLForwardCompatible, glfw.True)
	if config.Debug {
		glfw.WindowHint(glfw.OpenGLDebugContext, glfw.True)
	}

	window, err := glfw.CreateWindow(int(config.Width), int(config.Height), config.Name, nil, nil)
	if err != nil {
		glfw.Terminate()
		return errors.Wrap(err, "failed to create window")
	}
	window.MakeContextCurrent()
	if config.VSync {
		glfw.SwapInterval(1)
	} else {
		glfw.SwapInterval(0)
	}
	p.Window = window

	p.Window.SetKeyCallback(p.keyCallback)
	p.Window.SetMouseButtonCallback(p.mouseButtonCallback)
	p.Window.SetCursorPosCallback(p.cursorPosCallback)
	p.Window.SetScrollCallback(p.scrollCallback)
	p.Window.SetFramebufferSizeCallback(p.framebufferSizeCallback)
	p.Window.SetCloseCallback(p.closeCallback)
	p.Window.SetPos(int(config.X), int(config.Y))
	p.Window.Show()

	p.startTime = glfw.GetTime()

	return nil
}

func (p *Platform) Shutdown() error {
	if p.Window != nil {
		p.Window.Destroy()
		p.Window = nil
	}
	glfw.Terminate()
	return nil
}

// PumpMessages processes pending window events, running the callbacks.
func (p *Platform) PumpMessages() {
	glfw.PollEvents()
}

func (p *Platform) SwapBuffers() {
	p.Window.SwapBuffers()
}

// FramebufferSize is the drawable size in pixels, which differs from the
// window size on high density displays.
func (p *Platform) FramebufferSize() (uint32, uint32) {
	w, h := p.Window.GetFramebufferSize()
	return uint32(w), uint32(h)
}

// Time returns the seconds elapsed since Startup.
func (p *Platform) Time() float64 {
	return glfw.GetTime() - p.startTime
}

func (p *Platform) keyCallback(w *glfw.Window, key glfw.Key, scancode int, action glfw.Action, mods glfw.ModifierKey) {
	code, ok := translateKey(key)
	if !ok || action == glfw.Repeat {
		return
	}
	pressed := action == glfw.Press
	p.input.ProcessKey(code, pressed)

	var ctx core.EventContext
	ctx.Data.U16[0] = uint16(code)
	if pressed {
		p.events.Fire(core.EVENT_CODE_KEY_PRESSED, p, ctx)
	} else {
		p.events.Fire(core.EVENT_CODE_KEY_RELEASED, p, ctx)
	}
}

func (p *Platform) mouseButtonCallback(w *glfw.Window, button glfw.MouseButton, action glfw.Action, mods glfw.ModifierKey) {
	b, ok := translateButton(button)
	if !ok {
		return
	}
	pressed := action == glfw.Press
	p.input.ProcessButton(b, pressed)

	var ctx core.EventContext
	ctx.Data.U16[0] = uint16(b)
	if pressed {
		p.events.Fire(core.EVENT_CODE_BUTTON_PRESSED, p, ctx)
	} else {
		p.events.Fire(core.EVENT_CODE_BUTTON_RELEASED, p, ctx)
	}
}

func (p *Platform) cursorPosCallback(w *glfw.Window, xpos, ypos float64) {
	p.input.ProcessMouseMove(xpos, ypos)

	var ctx core.EventContext
	ctx.Data.F64[0] = xpos
	ctx.Data.F64[1] = ypos
	p.events.Fire(core.EVENT_CODE_MOUSE_MOVED, p, ctx)
}

func (p *Platform) scrollCallback(w *glfw.Window, xoff, yoff float64) {
	var ctx core.EventContext
	ctx.Data.F64[0] = yoff
	p.events.Fire(core.EVENT_CODE_MOUSE_WHEEL, p, ctx)
}

func (p *Platform) framebufferSizeCallback(w *glfw.Window, width, height int) {
	var ctx core.EventContext
	ctx.Data.U32[0] = uint32(width)
	ctx.Data.U32[1] = uint32(height)
	p.events.Fire(core.EVENT_CODE_RESIZED, p, ctx)
}

func (p *Platform) closeCallback(w *glfw.Window) {
	p.events.Fire(core.EVENT_CODE_APPLICATION_QUIT, p, core.EventContext{})
}

var keyTable = map[glfw.Key]core.KeyCode{
	glfw.KeyTab:        core.KEY_TAB,
	glfw.KeyEnter:      core.KEY_ENTER,
	glfw.KeyEscape:     core.KEY_ESCAPE,
	glfw.KeySpace:      core.KEY_SPACE,
	glfw.KeyA:          core.KEY_A,
	glfw.KeyD:          core.KEY_D,
	glfw.KeyE:          core.KEY_E,
	glfw.KeyQ:          core.KEY_Q,
	glfw.KeyS:          core.KEY_S,
	glfw.KeyW:          core.KEY_W,
	glfw.KeyF1:         core.KEY_F1,
	glfw.KeyF2:         core.KEY_F2,
	glfw.KeyF3:         core.KEY_F3,
	glfw.KeyLeftShift:  core.KEY_LSHIFT,
	glfw.KeyRightShift: core.KEY_RSHIFT,
}

func translateKey(key glfw.Key) (core.KeyCode, bool) {
	code, ok := keyTable[key]
	return code, ok
}

func translateButton(button glfw.MouseButton) (core.Button, bool) {
	switch button {
	case glfw.MouseButtonLeft:
		return core.BUTTON_LEFT, true
	case glfw.MouseButtonRight:
		return core.BUTTON_RIGHT, true
	case glfw.MouseButtonMiddle:
		return core.BUTTON_MIDDLE, true
	}
	return 0, false
}
