package systems

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/spaghettifunk/anima/engine/renderer/headless"
	"github.com/spaghettifunk/anima/engine/renderer/metadata"
	"github.com/spaghettifunk/anima/engine/scene"
)

// newTestScene places three planes and three lights, two of them point
// lights.
func newTestScene(t *testing.T, sm *SystemManager) *scene.Scene {
	t.Helper()
	mat := metadata.NewMaterial("plane_mat")
	mat.AlbedoTextureIdx = sm.TextureSystem.Load("textures/red.png")
	matIdx := sm.MaterialSystem.Create(mat)

	modelIdx, err := sm.MeshSystem.CreatePlane("plane", matIdx)
	if err != nil {
		t.Fatal(err)
	}

	sc := scene.New(nil)
	for i, pos := range []mgl32.Vec3{{-2, 0, 0}, {0, 0, 0}, {2, 0, 0}} {
		sc.AddEntity(metadata.NewEntity(string(rune('a'+i)), mgl32.Translate3D(pos.X(), pos.Y(), pos.Z()), modelIdx))
	}
	lights := []metadata.Light{
		{Type: metadata.LightTypeDirectional, Direction: mgl32.Vec3{-0.2, -1, -0.3}, Diffuse: mgl32.Vec3{0.25, 0.25, 0.25}},
		{Type: metadata.LightTypePoint, Position: mgl32.Vec3{-4, 1.5, -5}, Diffuse: mgl32.Vec3{1, 0, 0}, Constant: 0.005},
		{Type: metadata.LightTypePoint, Position: mgl32.Vec3{5, 0, -6}, Diffuse: mgl32.Vec3{0, 1, 0}, Constant: 0.005},
	}
	for _, l := range lights {
		if err := sc.AddLight(l); err != nil {
			t.Fatal(err)
		}
	}
	return sc
}

func renderFrame(t *testing.T, sm *SystemManager, sc *scene.Scene) {
	t.Helper()
	rs := sm.RendererSystem
	aspect := float32(rs.FramebufferWidth) / float32(rs.FramebufferHeight)
	if err := sc.WriteUniforms(rs.UniformBuffer, aspect, sm.MeshSystem.Models()); err != nil {
		t.Fatalf("WriteUniforms() error: %v", err)
	}
	packet := sc.Packet(sm.FramePacket(1.0 / 60))
	if err := sm.RenderViewSystem.Render(packet); err != nil {
		t.Fatalf("Render() error: %v", err)
	}
	if err := rs.EndFrame(1.0 / 60); err != nil {
		t.Fatal(err)
	}
}

func framebufferBinds(backend *headless.Backend) []string {
	var out []string
	for _, c := range backend.Commands() {
		if c.Op == headless.OpFramebufferBind {
			out = append(out, c.Target)
		}
	}
	return out
}

func TestRenderFrame(t *testing.T) {
	sm, backend, _ := newTestManager(t, 64, 48)
	sc := newTestScene(t, sm)

	backend.ResetCommands()
	renderFrame(t, sm, sc)

	if sc.GlobalRange.Offset != 0 || sc.GlobalRange.Size != 356 {
		t.Errorf("global range = %+v, want offset 0 size 356", sc.GlobalRange)
	}
	alignment := backend.Limits().UniformBufferOffsetAlignment
	for _, e := range sc.Entities {
		if e.LocalParams.Offset%alignment != 0 || e.LocalParams.Size != 128 {
			t.Errorf("entity `%s` local range = %+v", e.Name, e.LocalParams)
		}
	}

	binds := framebufferBinds(backend)
	want := []string{"gbuffer", "post", "default"}
	if len(binds) != len(want) {
		t.Fatalf("framebuffer binds = %v, want %v", binds, want)
	}
	for i := range want {
		if binds[i] != want[i] {
			t.Fatalf("framebuffer binds = %v, want %v", binds, want)
		}
	}

	// three planes, then one quad each for lighting and post-processing
	if got := backend.Stats().DrawCalls; got != 5 {
		t.Errorf("draw calls = %d, want 5", got)
	}
	if _, r, ok := backend.BoundRange(metadata.UniformBindingGlobal); !ok || r != sc.GlobalRange {
		t.Errorf("global binding = %+v, want %+v", r, sc.GlobalRange)
	}
}

func TestRenderReusesBindings(t *testing.T) {
	sm, backend, _ := newTestManager(t, 32, 32)
	sc := newTestScene(t, sm)

	for i := 0; i < 5; i++ {
		renderFrame(t, sm, sc)
	}
	// plane for geometry, the quad for lighting and for post-processing
	if got := backend.Stats().VertexArraysCreated; got != 3 {
		t.Errorf("vertex arrays created = %d, want 3", got)
	}
	if sm.RendererSystem.FrameNumber != 5 {
		t.Errorf("frame number = %d, want 5", sm.RendererSystem.FrameNumber)
	}
}

func TestRenderDebugTarget(t *testing.T) {
	sm, backend, _ := newTestManager(t, 32, 32)
	sc := newTestScene(t, sm)

	rs := sm.RendererSystem
	if err := sc.WriteUniforms(rs.UniformBuffer, 1, sm.MeshSystem.Models()); err != nil {
		t.Fatal(err)
	}
	packet := sc.Packet(sm.FramePacket(0))
	packet.RenderTarget = metadata.RenderTargetNormal
	if err := sm.RenderViewSystem.Render(packet); err != nil {
		t.Fatal(err)
	}
	got, ok := backend.UniformInt(sm.RenderViewSystem.Lighting.Program.Handle, "uRenderTarget")
	if !ok || got != int32(metadata.RenderTargetNormal) {
		t.Errorf("uRenderTarget = %d, want %d", got, metadata.RenderTargetNormal)
	}
}

func TestWindowResize(t *testing.T) {
	sm, backend, _ := newTestManager(t, 32, 32)
	sc := newTestScene(t, sm)
	rvs := sm.RenderViewSystem
	gbuffer := rvs.Geometry.GBuffer

	if !sm.RendererSystem.OnResize(128, 96) {
		t.Fatal("OnResize() should report a change")
	}
	if err := rvs.OnWindowResize(128, 96); err != nil {
		t.Fatalf("OnWindowResize() error: %v", err)
	}
	if rvs.Geometry.GBuffer != gbuffer || gbuffer.Width != 128 || gbuffer.Height != 96 {
		t.Errorf("gbuffer is %dx%d after resize", gbuffer.Width, gbuffer.Height)
	}
	if out := rvs.Lighting.OutputTexture(); out == nil || out.Width != 128 {
		t.Error("lighting output was not resized")
	}

	backend.ResetCommands()
	renderFrame(t, sm, sc)
	for _, c := range backend.Commands() {
		if c.Op == headless.OpViewport && c.Target != "128x96" {
			t.Errorf("viewport = %s, want 128x96", c.Target)
		}
	}

	// minimized windows keep the old targets
	if err := rvs.OnWindowResize(0, 0); err != nil {
		t.Errorf("OnWindowResize(0, 0) error: %v", err)
	}
}
