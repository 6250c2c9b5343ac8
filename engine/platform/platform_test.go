package platform

import (
	"testing"

	"github.com/go-gl/glfw/v3.3/glfw"

	"github.com/spaghettifunk/anima/engine/core"
)

func TestTranslateKey(t *testing.T) {
	tests := []struct {
		key  glfw.Key
		want core.KeyCode
		ok   bool
	}{
		{glfw.KeyW, core.KEY_W, true},
		{glfw.KeyTab, core.KEY_TAB, true},
		{glfw.KeyF1, core.KEY_F1, true},
		{glfw.KeyEscape, core.KEY_ESCAPE, true},
		{glfw.KeyRightShift, core.KEY_RSHIFT, true},
		{glfw.KeyZ, 0, false},
	}
	for _, tt := range tests {
		got, ok := translateKey(tt.key)
		if ok != tt.ok || got != tt.want {
			t.Errorf("translateKey(%d) = (%#x, %v), want (%#x, %v)", tt.key, got, ok, tt.want, tt.ok)
		}
	}
}

func TestTranslateButton(t *testing.T) {
	if b, ok := translateButton(glfw.MouseButtonRight); !ok || b != core.BUTTON_RIGHT {
		t.Errorf("right button translated to (%d, %v)", b, ok)
	}
	if _, ok := translateButton(glfw.MouseButton5); ok {
		t.Error("extra buttons must be ignored")
	}
}

func TestNewRequiresInputAndEvents(t *testing.T) {
	if _, err := New(nil, core.NewEventBus()); err == nil {
		t.Error("expected an error without input state")
	}
	if _, err := New(core.NewInput(), nil); err == nil {
		t.Error("expected an error without an event bus")
	}
}
