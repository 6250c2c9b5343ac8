package metadata

import (
	"fmt"
	"time"
)

/** @brief Shader stages compiled out of a technique source. */
type ShaderStage int

const (
	ShaderStageVertex ShaderStage = iota
	ShaderStageFragment
)

// Define returns the preprocessor symbol that selects the stage in a
// technique source file.
func (s ShaderStage) Define() string {
	switch s {
	case ShaderStageVertex:
		return "VERTEX"
	case ShaderStageFragment:
		return "FRAGMENT"
	}
	return ""
}

func (s ShaderStage) String() string {
	switch s {
	case ShaderStageVertex:
		return "vertex"
	case ShaderStageFragment:
		return "fragment"
	}
	return fmt.Sprintf("stage(%d)", int(s))
}

/** @brief The GLSL version prepended to every compiled stage. */
const ShaderVersionDirective = "#version 430\n"

// Built-in technique names, each guarded by an #ifdef block in the shader file.
const (
	BUILTIN_SHADER_NAME_GEOMETRY     string = "GEOMETRY_PASS"
	BUILTIN_SHADER_NAME_LIGHTING     string = "LIGHTING_PASS"
	BUILTIN_SHADER_NAME_POST_PROCESS string = "POST_PROCESSING_PASS"
)

// Uniform block bindings shared by every technique.
const (
	UniformBindingGlobal uint32 = 0
	UniformBindingLocal  uint32 = 1
)

/**
 * @brief A linked program on the frontend.
 */
type Program struct {
	Handle ProgramHandle
	/** @brief The technique name, also the #define that selects it. */
	Name string
	/** @brief The shared source file the technique was compiled from. */
	FilePath string
	/** @brief Modification time of FilePath when the program was last built. */
	LastWriteTimestamp time.Time
	/** @brief Incremented every time the program is rebuilt. */
	Generation uint32
	/** @brief The reflected active vertex inputs. */
	VertexInputLayout VertexShaderLayout
}

/**
 * @brief Source for one program: the shared file content and the
 * technique selected from it.
 */
type ProgramSource struct {
	Name   string
	Source string
}

// Stage returns the full source for one stage of the technique.
func (ps ProgramSource) Stage(stage ShaderStage) string {
	return ShaderVersionDirective +
		"#define " + ps.Name + "\n" +
		"#define " + stage.Define() + "\n" +
		ps.Source
}
