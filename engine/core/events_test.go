package core

import "testing"

type testListener struct {
	name     string
	received []SystemEventCode
	handle   bool
}

func (l *testListener) onEvent(code SystemEventCode, sender interface{}, listenerInst interface{}, data EventContext) bool {
	l.received = append(l.received, code)
	return l.handle
}

func TestEventBusFireStopsWhenHandled(t *testing.T) {
	bus := NewEventBus()
	first := &testListener{name: "first", handle: true}
	second := &testListener{name: "second"}

	if !bus.Register(EVENT_CODE_RESIZED, first, first.onEvent) {
		t.Fatal("first registration should succeed")
	}
	if !bus.Register(EVENT_CODE_RESIZED, second, second.onEvent) {
		t.Fatal("second registration should succeed")
	}

	var ctx EventContext
	ctx.Data.U32[0] = 640
	ctx.Data.U32[1] = 480
	if !bus.Fire(EVENT_CODE_RESIZED, nil, ctx) {
		t.Error("fire should report the event as handled")
	}
	if len(first.received) != 1 {
		t.Errorf("first listener expected 1 event, got %d", len(first.received))
	}
	if len(second.received) != 0 {
		t.Errorf("second listener must not see a handled event, got %d", len(second.received))
	}
}

func TestEventBusRegistration(t *testing.T) {
	bus := NewEventBus()
	l := &testListener{name: "l"}

	if !bus.Register(EVENT_CODE_KEY_PRESSED, l, l.onEvent) {
		t.Fatal("registration should succeed")
	}
	if bus.Register(EVENT_CODE_KEY_PRESSED, l, l.onEvent) {
		t.Error("duplicate listener must be refused")
	}
	if bus.Register(MAX_MESSAGE_CODES, l, l.onEvent) {
		t.Error("out of range code must be refused")
	}

	if bus.Fire(EVENT_CODE_KEY_PRESSED, nil, EventContext{}) {
		t.Error("unhandled event reported as handled")
	}
	if !bus.Unregister(EVENT_CODE_KEY_PRESSED, l) {
		t.Fatal("unregister should find the listener")
	}
	if bus.Unregister(EVENT_CODE_KEY_PRESSED, l) {
		t.Error("second unregister should find nothing")
	}
	bus.Fire(EVENT_CODE_KEY_PRESSED, nil, EventContext{})
	if len(l.received) != 1 {
		t.Errorf("expected 1 delivered event, got %d", len(l.received))
	}
}

func TestEventBusUnregisterKeepsOthers(t *testing.T) {
	bus := NewEventBus()
	a := &testListener{name: "a"}
	b := &testListener{name: "b"}
	c := &testListener{name: "c"}
	for _, l := range []*testListener{a, b, c} {
		bus.Register(EVENT_CODE_APPLICATION_QUIT, l, l.onEvent)
	}

	bus.Unregister(EVENT_CODE_APPLICATION_QUIT, b)
	bus.Fire(EVENT_CODE_APPLICATION_QUIT, nil, EventContext{})

	if len(a.received) != 1 || len(c.received) != 1 {
		t.Errorf("remaining listeners should each get the event, got a=%d c=%d", len(a.received), len(c.received))
	}
	if len(b.received) != 0 {
		t.Errorf("removed listener got %d events", len(b.received))
	}

	bus.Shutdown()
	if bus.Fire(EVENT_CODE_APPLICATION_QUIT, nil, EventContext{}) || len(a.received) != 1 {
		t.Error("no listener should remain after Shutdown")
	}
}
