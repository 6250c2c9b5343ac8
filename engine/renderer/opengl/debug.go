package opengl

import (
	"unsafe"

	"github.com/go-gl/gl/v4.3-core/gl"

	"github.com/spaghettifunk/anima/engine/core"
)

// enableDebugOutput routes driver messages to the logger. It reports false
// when the context was not created with the debug flag.
func enableDebugOutput() bool {
	var flags int32
	gl.GetIntegerv(gl.CONTEXT_FLAGS, &flags)
	if flags&gl.CONTEXT_FLAG_DEBUG_BIT == 0 {
		return false
	}
	gl.Enable(gl.DEBUG_OUTPUT)
	gl.Enable(gl.DEBUG_OUTPUT_SYNCHRONOUS)
	gl.DebugMessageCallback(debugMessage, nil)
	gl.DebugMessageControl(gl.DONT_CARE, gl.DONT_CARE, gl.DONT_CARE, 0, nil, true)
	return true
}

func debugMessage(source, gltype, id, severity uint32, length int32, message string, userParam unsafe.Pointer) {
	// 131169, 131185, 131218 and 131204 are buffer/texture usage hints
	switch id {
	case 131169, 131185, 131218, 131204:
		return
	}
	switch severity {
	case gl.DEBUG_SEVERITY_HIGH:
		core.LogError("gl [%s/%s] (%d): %s", debugSource(source), debugType(gltype), id, message)
	case gl.DEBUG_SEVERITY_MEDIUM:
		core.LogWarn("gl [%s/%s] (%d): %s", debugSource(source), debugType(gltype), id, message)
	default:
		core.LogDebug("gl [%s/%s] (%d): %s", debugSource(source), debugType(gltype), id, message)
	}
}

func debugSource(source uint32) string {
	switch source {
	case gl.DEBUG_SOURCE_API:
		return "api"
	case gl.DEBUG_SOURCE_WINDOW_SYSTEM:
		return "window system"
	case gl.DEBUG_SOURCE_SHADER_COMPILER:
		return "shader compiler"
	case gl.DEBUG_SOURCE_THIRD_PARTY:
		return "third party"
	case gl.DEBUG_SOURCE_APPLICATION:
		return "application"
	}
	return "other"
}

func debugType(gltype uint32) string {
	switch gltype {
	case gl.DEBUG_TYPE_ERROR:
		return "error"
	case gl.DEBUG_TYPE_DEPRECATED_BEHAVIOR:
		return "deprecated"
	case gl.DEBUG_TYPE_UNDEFINED_BEHAVIOR:
		return "undefined behaviour"
	case gl.DEBUG_TYPE_PORTABILITY:
		return "portability"
	case gl.DEBUG_TYPE_PERFORMANCE:
		return "performance"
	case gl.DEBUG_TYPE_MARKER:
		return "marker"
	}
	return "other"
}
