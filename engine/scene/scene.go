package scene

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"

	"github.com/spaghettifunk/anima/engine/core"
	"github.com/spaghettifunk/anima/engine/renderer"
	"github.com/spaghettifunk/anima/engine/renderer/components"
	"github.com/spaghettifunk/anima/engine/renderer/metadata"
)

// MaxLights matches the light array declared by the lighting technique.
const MaxLights = 16

// Scene is the per-frame state fed to the passes: what is drawn, how it is
// lit and where it is seen from.
type Scene struct {
	Camera   *components.Camera
	Entities []*metadata.Entity
	Lights   []metadata.Light

	// Range of the frame's global block inside the uniform buffer.
	GlobalRange metadata.BufferRange
	ClearColor  mgl32.Vec4
}

func New(camera *components.Camera) *Scene {
	if camera == nil {
		camera = components.NewCamera(mgl32.Vec3{0, 0, 5})
	}
	return &Scene{
		Camera:     camera,
		ClearColor: mgl32.Vec4{0, 0, 0, 1},
	}
}

func (s *Scene) AddEntity(entity *metadata.Entity) {
	s.Entities = append(s.Entities, entity)
}

func (s *Scene) AddLight(light metadata.Light) error {
	if len(s.Lights) >= MaxLights {
		return errors.Errorf("func AddLight - scene already holds the maximum of %d lights", MaxLights)
	}
	s.Lights = append(s.Lights, light)
	return nil
}

// Update moves the camera from keyboard state and turns it with the mouse
// while the right button is held.
func (s *Scene) Update(deltaTime float64, input *core.Input) {
	if input == nil {
		return
	}
	dt := float32(deltaTime)
	sprint := input.IsKeyDown(core.KEY_SHIFT) || input.IsKeyDown(core.KEY_LSHIFT) || input.IsKeyDown(core.KEY_RSHIFT)

	bindings := []struct {
		key       core.KeyCode
		direction components.CameraMovement
	}{
		{core.KEY_W, components.CameraMovementForward},
		{core.KEY_S, components.CameraMovementBackward},
		{core.KEY_A, components.CameraMovementLeft},
		{core.KEY_D, components.CameraMovementRight},
		{core.KEY_E, components.CameraMovementUp},
		{core.KEY_Q, components.CameraMovementDown},
	}
	for _, b := range bindings {
		if input.IsKeyDown(b.key) {
			s.Camera.Move(b.direction, dt, sprint)
		}
	}

	if input.IsButtonDown(core.BUTTON_RIGHT) {
		dx, dy := input.MouseDelta()
		if dx != 0 || dy != 0 {
			s.Camera.ProcessMouse(float32(dx), float32(dy))
		}
	}
}

// WriteUniforms packs the frame into the uniform buffer: the global block
// (camera position, light count, lights) at offset 0 followed by one
// aligned world and world-view-projection block per entity. The buffer is
// unmapped on every path.
func (s *Scene) WriteUniforms(ub *renderer.UniformBuffer, aspect float32, models []*metadata.Model) (err error) {
	if err := ub.Map(); err != nil {
		return err
	}
	defer func() {
		if unmapErr := ub.Unmap(); unmapErr != nil && err == nil {
			err = unmapErr
		}
	}()

	// global params
	start := ub.Head()
	if err := ub.PushVec3(s.Camera.Position); err != nil {
		return err
	}
	if err := ub.PushUInt(uint32(len(s.Lights))); err != nil {
		return err
	}
	for _, light := range s.Lights {
		if err := pushLight(ub, light); err != nil {
			return errors.Wrapf(err, "packing %s light", light.Type)
		}
	}
	s.GlobalRange = metadata.BufferRange{Offset: start, Size: ub.Head() - start}

	// local params
	viewProjection := s.Camera.Projection(aspect).Mul4(s.Camera.View())
	for _, entity := range s.Entities {
		if int(entity.ModelIndex) >= len(models) {
			return errors.Wrapf(core.ErrInvalidHandle, "entity `%s` references model %d of %d", entity.Name, entity.ModelIndex, len(models))
		}
		if err := ub.AlignHead(ub.Alignment); err != nil {
			return errors.Wrapf(err, "entity `%s`", entity.Name)
		}
		offset := ub.Head()
		if err := ub.PushMat4(entity.WorldMatrix); err != nil {
			return errors.Wrapf(err, "entity `%s`", entity.Name)
		}
		if err := ub.PushMat4(viewProjection.Mul4(entity.WorldMatrix)); err != nil {
			return errors.Wrapf(err, "entity `%s`", entity.Name)
		}
		entity.LocalParams = metadata.BufferRange{Offset: offset, Size: ub.Head() - offset}
	}
	return nil
}

func pushLight(ub *renderer.UniformBuffer, light metadata.Light) error {
	// each light is a std140 struct, aligned like a vec4
	if err := ub.AlignHead(16); err != nil {
		return err
	}
	if err := ub.PushUInt(uint32(light.Type)); err != nil {
		return err
	}
	for _, v := range []mgl32.Vec3{light.Position, light.Direction, light.Ambient, light.Diffuse, light.Specular} {
		if err := ub.PushVec3(v); err != nil {
			return err
		}
	}
	return ub.PushFloat(light.Constant)
}

// Packet fills the scene owned fields of a frame packet.
func (s *Scene) Packet(packet *metadata.FramePacket) *metadata.FramePacket {
	if packet == nil {
		packet = &metadata.FramePacket{}
	}
	packet.Entities = s.Entities
	packet.GlobalRange = s.GlobalRange
	packet.ClearColor = s.ClearColor
	return packet
}
