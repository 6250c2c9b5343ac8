package core

import "testing"

func TestInputMouseDelta(t *testing.T) {
	in := NewInput()

	in.ProcessMouseMove(100, 100)
	if dx, dy := in.MouseDelta(); dx != 0 || dy != 0 {
		t.Fatalf("first move must only seed the cursor, got delta (%f, %f)", dx, dy)
	}

	in.ProcessMouseMove(110, 95)
	in.ProcessMouseMove(112, 90)
	dx, dy := in.MouseDelta()
	if dx != 12 || dy != -10 {
		t.Errorf("expected accumulated delta (12, -10), got (%f, %f)", dx, dy)
	}

	in.Update()
	if dx, dy := in.MouseDelta(); dx != 0 || dy != 0 {
		t.Errorf("delta must reset after Update, got (%f, %f)", dx, dy)
	}
}

func TestInputKeyTransitions(t *testing.T) {
	in := NewInput()

	in.ProcessKey(KEY_W, true)
	if !in.IsKeyDown(KEY_W) || !in.KeyPressed(KEY_W) {
		t.Fatal("W should be down and freshly pressed")
	}

	in.Update()
	if in.KeyPressed(KEY_W) {
		t.Error("W should not count as pressed on the following frame")
	}
	if !in.WasKeyDown(KEY_W) {
		t.Error("W should be reported as previously down")
	}

	in.ProcessKey(KEY_W, false)
	if !in.IsKeyUp(KEY_W) {
		t.Error("W should be up after release")
	}
}
