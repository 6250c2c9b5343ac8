package components

import (
	gomath "math"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/spaghettifunk/anima/engine/math"
)

/** @brief Directions a camera can be moved in. */
type CameraMovement int

const (
	CameraMovementForward CameraMovement = iota
	CameraMovementBackward
	CameraMovementLeft
	CameraMovementRight
	CameraMovementUp
	CameraMovementDown
)

const (
	DefaultCameraYaw              float32 = -90
	DefaultCameraPitch            float32 = 0
	DefaultCameraSpeed            float32 = 2.5
	DefaultCameraSprintMultiplier float32 = 2
	DefaultCameraSensitivity      float32 = 0.5
	DefaultCameraFOV              float32 = 45
	DefaultCameraNear             float32 = 0.1
	DefaultCameraFar              float32 = 100

	// pitch stays short of straight up or down so lookAt never degenerates
	MaxCameraPitch float32 = 89
)

var worldUp = mgl32.Vec3{0, 1, 0}

/**
 * @brief A free-flying camera oriented by yaw and pitch, in degrees.
 */
type Camera struct {
	/**
	 * @brief The position of this camera.
	 * NOTE: Prefer SetPosition so the view matrix is rebuilt when needed.
	 */
	Position mgl32.Vec3
	Yaw      float32
	Pitch    float32

	/** @brief Units per second. */
	Speed            float32
	SprintMultiplier float32
	/** @brief Degrees per pixel of mouse motion. */
	Sensitivity float32

	/** @brief Vertical field of view in degrees. */
	FOV  float32
	Near float32
	Far  float32

	Front mgl32.Vec3
	Right mgl32.Vec3
	Up    mgl32.Vec3

	/** @brief Internal flag used to determine when the view matrix needs to be rebuilt. */
	IsDirty    bool
	viewMatrix mgl32.Mat4
}

func NewCamera(position mgl32.Vec3) *Camera {
	camera := &Camera{}
	camera.Reset()
	camera.SetPosition(position)
	return camera
}

func (c *Camera) Reset() {
	c.Position = mgl32.Vec3{}
	c.Yaw = DefaultCameraYaw
	c.Pitch = DefaultCameraPitch
	c.Speed = DefaultCameraSpeed
	c.SprintMultiplier = DefaultCameraSprintMultiplier
	c.Sensitivity = DefaultCameraSensitivity
	c.FOV = DefaultCameraFOV
	c.Near = DefaultCameraNear
	c.Far = DefaultCameraFar
	c.updateVectors()
}

func (c *Camera) SetPosition(position mgl32.Vec3) {
	c.Position = position
	c.IsDirty = true
}

// SetRotation sets yaw and pitch in degrees. Pitch is clamped.
func (c *Camera) SetRotation(yaw, pitch float32) {
	c.Yaw = yaw
	c.Pitch = math.Clamp(pitch, -MaxCameraPitch, MaxCameraPitch)
	c.updateVectors()
}

// ProcessMouse turns the camera by a mouse delta in pixels.
func (c *Camera) ProcessMouse(dx, dy float32) {
	c.SetRotation(c.Yaw+dx*c.Sensitivity, c.Pitch-dy*c.Sensitivity)
}

// Move translates the camera along one of its axes for dt seconds.
func (c *Camera) Move(direction CameraMovement, dt float32, sprint bool) {
	velocity := c.Speed * dt
	if sprint {
		velocity *= c.SprintMultiplier
	}
	switch direction {
	case CameraMovementForward:
		c.Position = c.Position.Add(c.Front.Mul(velocity))
	case CameraMovementBackward:
		c.Position = c.Position.Sub(c.Front.Mul(velocity))
	case CameraMovementRight:
		c.Position = c.Position.Add(c.Right.Mul(velocity))
	case CameraMovementLeft:
		c.Position = c.Position.Sub(c.Right.Mul(velocity))
	case CameraMovementUp:
		c.Position = c.Position.Add(worldUp.Mul(velocity))
	case CameraMovementDown:
		c.Position = c.Position.Sub(worldUp.Mul(velocity))
	}
	c.IsDirty = true
}

func (c *Camera) View() mgl32.Mat4 {
	if c.IsDirty {
		c.viewMatrix = mgl32.LookAtV(c.Position, c.Position.Add(c.Front), c.Up)
		c.IsDirty = false
	}
	return c.viewMatrix
}

func (c *Camera) Projection(aspect float32) mgl32.Mat4 {
	if aspect <= 0 {
		aspect = 1
	}
	return mgl32.Perspective(mgl32.DegToRad(c.FOV), aspect, c.Near, c.Far)
}

func (c *Camera) updateVectors() {
	yaw := float64(mgl32.DegToRad(c.Yaw))
	pitch := float64(mgl32.DegToRad(c.Pitch))
	front := mgl32.Vec3{
		float32(gomath.Cos(yaw) * gomath.Cos(pitch)),
		float32(gomath.Sin(pitch)),
		float32(gomath.Sin(yaw) * gomath.Cos(pitch)),
	}
	c.Front = front.Normalize()
	c.Right = c.Front.Cross(worldUp).Normalize()
	c.Up = c.Right.Cross(c.Front).Normalize()
	c.IsDirty = true
}
