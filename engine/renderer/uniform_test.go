package renderer

import (
	"errors"
	"testing"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/spaghettifunk/anima/engine/core"
	"github.com/spaghettifunk/anima/engine/renderer/headless"
	"github.com/spaghettifunk/anima/engine/renderer/metadata"
)

func newTestUniformBuffer(t *testing.T, limits metadata.DeviceLimits) *UniformBuffer {
	t.Helper()
	backend := headless.New(headless.WithLimits(limits))
	ub, err := NewUniformBuffer(backend, limits)
	if err != nil {
		t.Fatalf("NewUniformBuffer() error: %v", err)
	}
	return ub
}

func TestUniformBufferHeadAdvances(t *testing.T) {
	ub := newTestUniformBuffer(t, headless.DefaultLimits)
	if err := ub.Map(); err != nil {
		t.Fatalf("Map() error: %v", err)
	}
	defer ub.Unmap()

	steps := []struct {
		name string
		push func() error
		head uint32
	}{
		{"float", func() error { return ub.PushFloat(1) }, 4},
		{"uint", func() error { return ub.PushUInt(7) }, 8},
		{"vec3 aligns to 16", func() error { return ub.PushVec3(mgl32.Vec3{1, 2, 3}) }, 32},
		{"uint after vec3", func() error { return ub.PushUInt(1) }, 36},
		{"mat4 aligns to 16", func() error { return ub.PushMat4(mgl32.Ident4()) }, 112},
		{"align 256", func() error { return ub.AlignHead(256) }, 256},
		{"align is idempotent", func() error { return ub.AlignHead(256) }, 256},
		{"align 0 is a no-op", func() error { return ub.AlignHead(0) }, 256},
	}
	for _, s := range steps {
		if err := s.push(); err != nil {
			t.Fatalf("%s: %v", s.name, err)
		}
		if got := ub.Head(); got != s.head {
			t.Fatalf("%s: head = %d, want %d", s.name, got, s.head)
		}
	}
}

func TestUniformBufferVec3Padding(t *testing.T) {
	ub := newTestUniformBuffer(t, headless.DefaultLimits)
	if err := ub.Map(); err != nil {
		t.Fatal(err)
	}
	defer ub.Unmap()

	if err := ub.PushUInt(0xFFFFFFFF); err != nil {
		t.Fatal(err)
	}
	if err := ub.PushVec3(mgl32.Vec3{1, 2, 3}); err != nil {
		t.Fatal(err)
	}
	raw := ub.Bytes(metadata.BufferRange{Offset: 0, Size: 32})
	for i := 4; i < 16; i++ {
		if raw[i] != 0 {
			t.Fatalf("alignment padding byte %d = %d, want 0", i, raw[i])
		}
	}
	got := ReadFloats(raw[16:32])
	want := []float32{1, 2, 3, 0}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("vec3 slot[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestUniformBufferMatrixRoundTrip(t *testing.T) {
	ub := newTestUniformBuffer(t, headless.DefaultLimits)
	if err := ub.Map(); err != nil {
		t.Fatal(err)
	}
	defer ub.Unmap()

	world := mgl32.Translate3D(-1, 0, -3).Mul4(mgl32.HomogRotate3DY(mgl32.DegToRad(-60)))
	mvp := mgl32.Perspective(mgl32.DegToRad(45), 16.0/9.0, 0.1, 100).Mul4(world)

	if err := ub.PushMat4(world); err != nil {
		t.Fatal(err)
	}
	if err := ub.PushMat4(mvp); err != nil {
		t.Fatal(err)
	}
	got := ReadFloats(ub.Bytes(metadata.BufferRange{Offset: 0, Size: 128}))
	if len(got) != 32 {
		t.Fatalf("read back %d floats, want 32", len(got))
	}
	for i := 0; i < 16; i++ {
		if got[i] != world[i] {
			t.Errorf("world[%d] = %v, want %v", i, got[i], world[i])
		}
		if got[16+i] != mvp[i] {
			t.Errorf("mvp[%d] = %v, want %v", i, got[16+i], mvp[i])
		}
	}
}

func TestUniformBufferOverflow(t *testing.T) {
	limits := metadata.DeviceLimits{MaxUniformBlockSize: 80, UniformBufferOffsetAlignment: 64}
	ub := newTestUniformBuffer(t, limits)
	if err := ub.Map(); err != nil {
		t.Fatal(err)
	}
	defer ub.Unmap()

	if err := ub.PushMat4(mgl32.Ident4()); err != nil {
		t.Fatalf("first matrix should fit: %v", err)
	}
	err := ub.PushMat4(mgl32.Ident4())
	if !errors.Is(err, core.ErrUniformBufferOverflow) {
		t.Fatalf("PushMat4() error = %v, want overflow", err)
	}
	if ub.Head() != 64 {
		t.Errorf("head moved to %d on a failed push", ub.Head())
	}
	if err := ub.AlignHead(128); !errors.Is(err, core.ErrUniformBufferOverflow) {
		t.Errorf("AlignHead() error = %v, want overflow", err)
	}
	if err := ub.PushFloat(1); err != nil {
		t.Errorf("a float still fits: %v", err)
	}
}

func TestUniformBufferRequiresMap(t *testing.T) {
	ub := newTestUniformBuffer(t, headless.DefaultLimits)
	if err := ub.PushFloat(1); !errors.Is(err, core.ErrUniformBufferUnmapped) {
		t.Fatalf("PushFloat() error = %v, want unmapped", err)
	}
	if err := ub.Map(); err != nil {
		t.Fatal(err)
	}
	if err := ub.Map(); !errors.Is(err, core.ErrBufferMapped) {
		t.Fatalf("second Map() error = %v, want already mapped", err)
	}
	if err := ub.Unmap(); err != nil {
		t.Fatal(err)
	}
	if ub.Mapped() {
		t.Error("buffer still reports mapped")
	}
}

func TestNewUniformBufferRejectsZeroLimit(t *testing.T) {
	backend := headless.New()
	if _, err := NewUniformBuffer(backend, metadata.DeviceLimits{}); err == nil {
		t.Fatal("expected an error for a zero block size")
	}
}
