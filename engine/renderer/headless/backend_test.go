package headless

import (
	"errors"
	"testing"

	"github.com/spaghettifunk/anima/engine/core"
	"github.com/spaghettifunk/anima/engine/renderer/metadata"
)

func newAttachment(t *testing.T, b *Backend, name string, kind metadata.AttachmentType, format metadata.TextureFormat, w, h uint32) *metadata.Attachment {
	t.Helper()
	tex := &metadata.Texture{Name: name, Width: w, Height: h, Format: format}
	if w > 0 && h > 0 {
		handle, err := b.TextureCreate(&metadata.TextureConfig{Width: w, Height: h, Format: format}, nil)
		if err != nil {
			t.Fatal(err)
		}
		tex.Handle = handle
	}
	return &metadata.Attachment{Name: name, Type: kind, Texture: tex}
}

func TestFramebufferCompleteness(t *testing.T) {
	tests := []struct {
		name  string
		build func(b *Backend) []*metadata.Attachment
		want  metadata.FramebufferStatus
	}{
		{"complete", func(b *Backend) []*metadata.Attachment {
			return []*metadata.Attachment{
				newAttachment(t, b, "color", metadata.AttachmentTypeColor, metadata.TextureFormatRGBA8, 4, 4),
				newAttachment(t, b, "depth", metadata.AttachmentTypeDepth, metadata.TextureFormatDepth24, 4, 4),
			}
		}, metadata.FramebufferComplete},
		{"no attachments", func(b *Backend) []*metadata.Attachment {
			return nil
		}, metadata.FramebufferIncompleteMissingAttachment},
		{"zero sized attachment", func(b *Backend) []*metadata.Attachment {
			return []*metadata.Attachment{newAttachment(t, b, "color", metadata.AttachmentTypeColor, metadata.TextureFormatRGBA8, 0, 0)}
		}, metadata.FramebufferIncompleteAttachment},
		{"depth format as color", func(b *Backend) []*metadata.Attachment {
			return []*metadata.Attachment{newAttachment(t, b, "color", metadata.AttachmentTypeColor, metadata.TextureFormatDepth24, 4, 4)}
		}, metadata.FramebufferIncompleteAttachment},
		{"two depth attachments", func(b *Backend) []*metadata.Attachment {
			return []*metadata.Attachment{
				newAttachment(t, b, "d0", metadata.AttachmentTypeDepth, metadata.TextureFormatDepth24, 4, 4),
				newAttachment(t, b, "d1", metadata.AttachmentTypeDepth, metadata.TextureFormatDepth24, 4, 4),
			}
		}, metadata.FramebufferUnsupported},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := New()
			_, status, err := b.FramebufferCreate(4, 4, tt.build(b))
			if err != nil {
				t.Fatalf("FramebufferCreate() error: %v", err)
			}
			if status != tt.want {
				t.Errorf("status = %s, want %s", status, tt.want)
			}
		})
	}
}

type drawFixture struct {
	b       *Backend
	program metadata.ProgramHandle
	vao     metadata.VertexArrayHandle
	ubo     metadata.BufferHandle
}

func newDrawFixture(t *testing.T) *drawFixture {
	t.Helper()
	b := New()
	program, _, err := b.ProgramCreate(metadata.ProgramSource{Name: "P", Source: "#ifdef P\n#endif\n"})
	if err != nil {
		t.Fatal(err)
	}
	vb, _ := b.BufferCreate(metadata.BufferKindVertex, metadata.BufferUsageStatic, 64, nil)
	ib, _ := b.BufferCreate(metadata.BufferKindIndex, metadata.BufferUsageStatic, 24, nil)
	ubo, _ := b.BufferCreate(metadata.BufferKindUniform, metadata.BufferUsageStream, 256, nil)
	vao, err := b.VertexArrayCreate(vb, ib, nil)
	if err != nil {
		t.Fatal(err)
	}
	return &drawFixture{b: b, program: program, vao: vao, ubo: ubo}
}

func TestDrawRequiresBoundState(t *testing.T) {
	f := newDrawFixture(t)
	if err := f.b.DrawIndexed(6, 0); !errors.Is(err, core.ErrInvalidHandle) {
		t.Fatalf("draw without program: %v", err)
	}
	f.b.ProgramUse(f.program)
	if err := f.b.DrawIndexed(6, 0); !errors.Is(err, core.ErrInvalidHandle) {
		t.Fatalf("draw without vertex array: %v", err)
	}
	f.b.VertexArrayBind(f.vao)
	if err := f.b.DrawIndexed(6, 0); err != nil {
		t.Fatalf("draw: %v", err)
	}
	if err := f.b.DrawIndexed(6, 4); err == nil {
		t.Fatal("expected an error reading past the index buffer")
	}
	if f.b.Stats().DrawCalls != 1 {
		t.Errorf("draw calls = %d, want 1", f.b.Stats().DrawCalls)
	}
}

func TestDrawRefusedWhileMapped(t *testing.T) {
	f := newDrawFixture(t)
	f.b.ProgramUse(f.program)
	f.b.VertexArrayBind(f.vao)

	if _, err := f.b.BufferMap(f.ubo); err != nil {
		t.Fatal(err)
	}
	if err := f.b.DrawIndexed(6, 0); !errors.Is(err, core.ErrBufferMapped) {
		t.Fatalf("draw while mapped: %v", err)
	}
	if err := f.b.BufferUnmap(f.ubo); err != nil {
		t.Fatal(err)
	}
	if err := f.b.DrawIndexed(6, 0); err != nil {
		t.Fatalf("draw after unmap: %v", err)
	}
}

func TestFeedbackLoopDetected(t *testing.T) {
	f := newDrawFixture(t)
	attachment := newAttachment(t, f.b, "color", metadata.AttachmentTypeColor, metadata.TextureFormatRGBA8, 4, 4)
	handle, status, err := f.b.FramebufferCreate(4, 4, []*metadata.Attachment{attachment})
	if err != nil || status != metadata.FramebufferComplete {
		t.Fatalf("FramebufferCreate() = %s, %v", status, err)
	}
	fb := &metadata.Framebuffer{Handle: handle, Name: "target", Attachments: []*metadata.Attachment{attachment}}

	f.b.FramebufferBind(fb)
	f.b.ProgramUse(f.program)
	f.b.VertexArrayBind(f.vao)
	f.b.TextureBind(0, attachment.Texture.Handle)
	if err := f.b.DrawIndexed(6, 0); !errors.Is(err, core.ErrFeedbackLoop) {
		t.Fatalf("sampling the bound attachment: %v", err)
	}

	// the same texture is fine once another target is bound
	f.b.FramebufferBind(nil)
	f.b.TextureBind(0, attachment.Texture.Handle)
	if err := f.b.DrawIndexed(6, 0); err != nil {
		t.Fatalf("sampling after switching targets: %v", err)
	}
}

func TestUnlinkedProgramSkipsDraws(t *testing.T) {
	f := newDrawFixture(t)
	broken, _, err := f.b.ProgramCreate(metadata.ProgramSource{Name: "MISSING", Source: "#ifdef P\n#endif\n"})
	if err == nil {
		t.Fatal("expected an error for a technique without its block")
	}
	if !broken.Valid() {
		t.Fatal("a failed program still gets a handle")
	}
	f.b.ProgramBindUniformBlock(broken, "GlobalParams", metadata.UniformBindingGlobal)
	f.b.ProgramUse(broken)
	f.b.VertexArrayBind(f.vao)
	if err := f.b.DrawIndexed(6, 0); err != nil {
		t.Fatalf("draw with an unlinked program: %v", err)
	}
	if n := f.b.Stats().DrawCalls; n != 0 {
		t.Errorf("draw calls = %d, want 0", n)
	}

	f.b.ProgramUse(f.program)
	if err := f.b.DrawIndexed(6, 0); err != nil {
		t.Fatalf("draw after switching back: %v", err)
	}
	if n := f.b.Stats().DrawCalls; n != 1 {
		t.Errorf("draw calls = %d, want 1", n)
	}
}
