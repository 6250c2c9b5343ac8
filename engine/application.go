package engine

import (
	"os"

	"github.com/pelletier/go-toml/v2"
	"github.com/pkg/errors"

	"github.com/spaghettifunk/anima/engine/core"
	"github.com/spaghettifunk/anima/engine/renderer/components"
	"github.com/spaghettifunk/anima/engine/renderer/metadata"
)

type ApplicationSection struct {
	// The application name used in windowing, if applicable.
	Name string `toml:"name"`
	// Window starting position x axis, if applicable.
	StartPosX uint32 `toml:"start_pos_x"`
	// Window starting position y axis, if applicable.
	StartPosY uint32 `toml:"start_pos_y"`
	// Window starting width, if applicable.
	StartWidth uint32 `toml:"start_width"`
	// Window starting height, if applicable.
	StartHeight uint32 `toml:"start_height"`
	LogLevel    string `toml:"log_level"`
	// Stop after this many frames. 0 runs until quit.
	MaxFrames uint64 `toml:"max_frames"`
}

type RendererSection struct {
	Backend      string `toml:"backend"`
	VSync        bool   `toml:"vsync"`
	DebugContext bool   `toml:"debug_context"`
	// Relative to the assets directory.
	ShaderFile string `toml:"shader_file"`
}

type AssetsSection struct {
	Directory string `toml:"directory"`
	HotReload bool   `toml:"hot_reload"`
	Workers   int    `toml:"workers"`
}

type CameraSection struct {
	Speed            float32 `toml:"speed"`
	SprintMultiplier float32 `toml:"sprint_multiplier"`
	Sensitivity      float32 `toml:"sensitivity"`
	FOV              float32 `toml:"fov"`
	Near             float32 `toml:"near"`
	Far              float32 `toml:"far"`
}

type ApplicationConfig struct {
	Application ApplicationSection `toml:"application"`
	Renderer    RendererSection    `toml:"renderer"`
	Assets      AssetsSection      `toml:"assets"`
	Camera      CameraSection      `toml:"camera"`

	// resolved by Validate
	LogLevel    core.LogLevel                `toml:"-"`
	BackendType metadata.RendererBackendType `toml:"-"`
}

func DefaultApplicationConfig() *ApplicationConfig {
	return &ApplicationConfig{
		Application: ApplicationSection{
			Name:        "Anima",
			StartPosX:   100,
			StartPosY:   100,
			StartWidth:  1280,
			StartHeight: 720,
			LogLevel:    "info",
		},
		Renderer: RendererSection{
			Backend:    "opengl",
			VSync:      true,
			ShaderFile: "shaders/shaders.glsl",
		},
		Assets: AssetsSection{
			Directory: "assets",
			HotReload: true,
			Workers:   4,
		},
		Camera: CameraSection{
			Speed:            components.DefaultCameraSpeed,
			SprintMultiplier: components.DefaultCameraSprintMultiplier,
			Sensitivity:      components.DefaultCameraSensitivity,
			FOV:              components.DefaultCameraFOV,
			Near:             components.DefaultCameraNear,
			Far:              components.DefaultCameraFar,
		},
		LogLevel:    core.LogLevelInfo,
		BackendType: metadata.RendererBackendTypeOpenGL,
	}
}

// LoadApplicationConfig reads a TOML file over the defaults. Keys missing
// from the file keep their default value; unknown keys are rejected.
func LoadApplicationConfig(path string) (*ApplicationConfig, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "func LoadApplicationConfig")
	}
	defer f.Close()

	config := DefaultApplicationConfig()
	decoder := toml.NewDecoder(f)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(config); err != nil {
		var strict *toml.StrictMissingError
		if errors.As(err, &strict) {
			return nil, errors.Errorf("config `%s`: %s", path, strict.String())
		}
		return nil, errors.Wrapf(err, "config `%s`", path)
	}
	if err := config.Validate(); err != nil {
		return nil, errors.Wrapf(err, "config `%s`", path)
	}
	return config, nil
}

// Validate checks every field and resolves the enumerations.
func (c *ApplicationConfig) Validate() error {
	app := c.Application
	if app.Name == "" {
		return errors.New("application.name must not be empty")
	}
	if app.StartWidth == 0 || app.StartHeight == 0 {
		return errors.Errorf("application.start_width and start_height must be positive, got %dx%d", app.StartWidth, app.StartHeight)
	}
	level, err := core.ParseLogLevel(app.LogLevel)
	if err != nil {
		return errors.Wrap(err, "application.log_level")
	}
	c.LogLevel = level

	backend, ok := metadata.ParseRendererBackendType(c.Renderer.Backend)
	if !ok {
		return errors.Wrapf(core.ErrUnknownBackend, "renderer.backend `%s`", c.Renderer.Backend)
	}
	c.BackendType = backend
	if c.Renderer.ShaderFile == "" {
		return errors.New("renderer.shader_file must not be empty")
	}

	if c.Assets.Directory == "" {
		return errors.New("assets.directory must not be empty")
	}
	if c.Assets.Workers < 1 {
		return errors.Errorf("assets.workers must be at least 1, got %d", c.Assets.Workers)
	}

	cam := c.Camera
	switch {
	case cam.Speed <= 0:
		return errors.Errorf("camera.speed must be positive, got %g", cam.Speed)
	case cam.SprintMultiplier < 1:
		return errors.Errorf("camera.sprint_multiplier must be at least 1, got %g", cam.SprintMultiplier)
	case cam.Sensitivity <= 0:
		return errors.Errorf("camera.sensitivity must be positive, got %g", cam.Sensitivity)
	case cam.FOV <= 0 || cam.FOV >= 180:
		return errors.Errorf("camera.fov must be between 0 and 180 degrees, got %g", cam.FOV)
	case cam.Near <= 0:
		return errors.Errorf("camera.near must be positive, got %g", cam.Near)
	case cam.Far <= cam.Near:
		return errors.Errorf("camera.far must be greater than camera.near, got %g <= %g", cam.Far, cam.Near)
	}
	return nil
}

// Apply copies the tunables onto a camera.
func (cs CameraSection) Apply(camera *components.Camera) {
	camera.Speed = cs.Speed
	camera.SprintMultiplier = cs.SprintMultiplier
	camera.Sensitivity = cs.Sensitivity
	camera.FOV = cs.FOV
	camera.Near = cs.Near
	camera.Far = cs.Far
}
