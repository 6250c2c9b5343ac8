package systems

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/spaghettifunk/anima/engine/core"
	"github.com/spaghettifunk/anima/engine/renderer"
	"github.com/spaghettifunk/anima/engine/renderer/metadata"
)

// FramebufferSystem creates framebuffers together with the textures backing
// their attachments and refuses to hand out incomplete ones.
type FramebufferSystem struct {
	backend      renderer.RendererBackend
	framebuffers map[string]*metadata.Framebuffer
}

func NewFramebufferSystem(backend renderer.RendererBackend) (*FramebufferSystem, error) {
	if backend == nil {
		return nil, errors.New("func NewFramebufferSystem - backend is required")
	}
	return &FramebufferSystem{
		backend:      backend,
		framebuffers: make(map[string]*metadata.Framebuffer),
	}, nil
}

func (fs *FramebufferSystem) Create(name string, width, height uint32, configs []metadata.AttachmentConfig) (*metadata.Framebuffer, error) {
	if _, exists := fs.framebuffers[name]; exists {
		return nil, errors.Errorf("func Create - framebuffer `%s` already exists", name)
	}
	fb, err := fs.build(name, width, height, configs)
	if err != nil {
		return nil, err
	}
	fs.framebuffers[name] = fb
	core.LogDebug("framebuffer `%s` created (%dx%d, %d attachments)", name, width, height, len(fb.Attachments))
	return fb, nil
}

// build allocates the attachments and the framebuffer object without
// registering it. Nothing is left allocated on failure.
func (fs *FramebufferSystem) build(name string, width, height uint32, configs []metadata.AttachmentConfig) (*metadata.Framebuffer, error) {
	fb := &metadata.Framebuffer{
		Name:    name,
		Width:   width,
		Height:  height,
		Configs: configs,
	}

	for _, cfg := range configs {
		w, h := cfg.Width, cfg.Height
		if w == 0 && h == 0 {
			w, h = width, height
		}
		texture := &metadata.Texture{
			Name:   fmt.Sprintf("%s.%s.%s", name, cfg.Name, uuid.NewString()),
			Width:  w,
			Height: h,
			Format: cfg.Format,
		}
		// zero sized attachments are left without storage, completeness
		// reports them
		if w > 0 && h > 0 {
			handle, err := fs.backend.TextureCreate(&metadata.TextureConfig{
				Width:         w,
				Height:        h,
				Format:        cfg.Format,
				FilterMinify:  metadata.TextureFilterModeNearest,
				FilterMagnify: metadata.TextureFilterModeNearest,
				Repeat:        metadata.TextureRepeatClampToEdge,
			}, nil)
			if err != nil {
				fs.release(fb)
				return nil, errors.Wrapf(err, "func Create - attachment `%s` of `%s`", cfg.Name, name)
			}
			texture.Handle = handle
		}
		fb.Attachments = append(fb.Attachments, &metadata.Attachment{
			Name:    cfg.Name,
			Type:    cfg.Type,
			Texture: texture,
		})
	}

	handle, status, err := fs.backend.FramebufferCreate(width, height, fb.Attachments)
	if err != nil {
		fs.release(fb)
		return nil, errors.Wrapf(err, "func Create - framebuffer `%s`", name)
	}
	fb.Handle = handle
	if status != metadata.FramebufferComplete {
		fs.release(fb)
		err := errors.Wrapf(core.ErrFramebufferIncomplete, "framebuffer `%s`: %s", name, status)
		core.LogError(err.Error())
		return nil, err
	}
	return fb, nil
}

func (fs *FramebufferSystem) Get(name string) *metadata.Framebuffer {
	return fs.framebuffers[name]
}

func (fs *FramebufferSystem) Destroy(fb *metadata.Framebuffer) {
	if fb == nil {
		return
	}
	fs.release(fb)
	delete(fs.framebuffers, fb.Name)
}

// Resize recreates every registered framebuffer at the new size, keeping
// its attachment layout and pointer. Either all of them are resized or, on
// error, all of them are left as they were.
func (fs *FramebufferSystem) Resize(width, height uint32) error {
	created := make(map[string]*metadata.Framebuffer, len(fs.framebuffers))
	for name, fb := range fs.framebuffers {
		next, err := fs.build(name, width, height, fb.Configs)
		if err != nil {
			for _, c := range created {
				fs.release(c)
			}
			return errors.Wrapf(err, "func Resize - %dx%d", width, height)
		}
		created[name] = next
	}
	for name, fb := range fs.framebuffers {
		fs.release(fb)
		*fb = *created[name]
	}
	return nil
}

func (fs *FramebufferSystem) release(fb *metadata.Framebuffer) {
	if fb.Handle.Valid() {
		fs.backend.FramebufferDestroy(fb.Handle)
	}
	for _, a := range fb.Attachments {
		if a.Texture != nil && a.Texture.Handle.Valid() {
			fs.backend.TextureDestroy(a.Texture.Handle)
		}
	}
	fb.Handle = 0
	fb.Attachments = nil
}

func (fs *FramebufferSystem) Shutdown() error {
	for _, fb := range fs.framebuffers {
		fs.release(fb)
	}
	fs.framebuffers = make(map[string]*metadata.Framebuffer)
	return nil
}
