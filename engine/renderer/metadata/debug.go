package metadata

/**
 * @brief State shared with an immediate-mode debug UI. The UI may flip the
 * toggles and pick the render target; the stats are written by the engine.
 */
type DebugPanel struct {
	ShowInfo     bool
	ShowEngine   bool
	RenderTarget RenderTarget

	FrameTimeMS float64
	FPS         float64
	Info        *DeviceInfo
}
