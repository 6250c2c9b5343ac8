package opengl

import (
	"strings"

	"github.com/go-gl/gl/v4.3-core/gl"
	"github.com/pkg/errors"

	"github.com/spaghettifunk/anima/engine/core"
	"github.com/spaghettifunk/anima/engine/renderer/metadata"
)

type program struct {
	name     string
	uniforms map[string]int32
	// unlinked programs are never handed to the driver
	linked bool
	warned bool
}

func compileStage(stage metadata.ShaderStage, source string) (uint32, error) {
	shaderType := uint32(gl.VERTEX_SHADER)
	if stage == metadata.ShaderStageFragment {
		shaderType = gl.FRAGMENT_SHADER
	}
	shader := gl.CreateShader(shaderType)

	csources, free := gl.Strs(source + "\x00")
	gl.ShaderSource(shader, 1, csources, nil)
	free()
	gl.CompileShader(shader)

	var status int32
	gl.GetShaderiv(shader, gl.COMPILE_STATUS, &status)
	if status == gl.FALSE {
		var logLength int32
		gl.GetShaderiv(shader, gl.INFO_LOG_LENGTH, &logLength)
		log := strings.Repeat("\x00", int(logLength+1))
		gl.GetShaderInfoLog(shader, logLength, nil, gl.Str(log))
		gl.DeleteShader(shader)
		return 0, errors.Errorf("%s stage failed to compile: %s", stage, strings.TrimRight(log, "\x00"))
	}
	return shader, nil
}

// ProgramCreate compiles and links the technique. A program object is
// always returned so the caller can keep a stable handle; on failure it is
// unlinked and the error carries the driver log.
func (b *Backend) ProgramCreate(source metadata.ProgramSource) (metadata.ProgramHandle, metadata.VertexShaderLayout, error) {
	id := gl.CreateProgram()
	h := metadata.ProgramHandle(id)
	b.programs[h] = &program{name: source.Name, uniforms: make(map[string]int32)}

	vertex, err := compileStage(metadata.ShaderStageVertex, source.Stage(metadata.ShaderStageVertex))
	if err != nil {
		return h, metadata.VertexShaderLayout{}, errors.Wrapf(err, "program `%s`", source.Name)
	}
	defer gl.DeleteShader(vertex)
	fragment, err := compileStage(metadata.ShaderStageFragment, source.Stage(metadata.ShaderStageFragment))
	if err != nil {
		return h, metadata.VertexShaderLayout{}, errors.Wrapf(err, "program `%s`", source.Name)
	}
	defer gl.DeleteShader(fragment)

	gl.AttachShader(id, vertex)
	gl.AttachShader(id, fragment)
	gl.LinkProgram(id)
	gl.DetachShader(id, vertex)
	gl.DetachShader(id, fragment)

	var status int32
	gl.GetProgramiv(id, gl.LINK_STATUS, &status)
	if status == gl.FALSE {
		var logLength int32
		gl.GetProgramiv(id, gl.INFO_LOG_LENGTH, &logLength)
		log := strings.Repeat("\x00", int(logLength+1))
		gl.GetProgramInfoLog(id, logLength, nil, gl.Str(log))
		return h, metadata.VertexShaderLayout{}, errors.Errorf("program `%s` failed to link: %s", source.Name, strings.TrimRight(log, "\x00"))
	}
	b.programs[h].linked = true

	return h, reflectAttributes(id), nil
}

// reflectAttributes lists the active vertex inputs of a linked program.
func reflectAttributes(id uint32) metadata.VertexShaderLayout {
	var count, maxLength int32
	gl.GetProgramiv(id, gl.ACTIVE_ATTRIBUTES, &count)
	gl.GetProgramiv(id, gl.ACTIVE_ATTRIBUTE_MAX_LENGTH, &maxLength)

	layout := metadata.VertexShaderLayout{}
	name := make([]uint8, maxLength+1)
	for i := int32(0); i < count; i++ {
		var length, size int32
		var xtype uint32
		gl.GetActiveAttrib(id, uint32(i), maxLength, &length, &size, &xtype, &name[0])
		attrName := string(name[:length])
		// built-ins such as gl_VertexID have no location
		location := gl.GetAttribLocation(id, gl.Str(attrName+"\x00"))
		if location < 0 {
			continue
		}
		layout.Attributes = append(layout.Attributes, metadata.VertexShaderAttribute{
			Location:       uint32(location),
			ComponentCount: attributeComponents(xtype),
		})
	}
	return layout
}

func attributeComponents(xtype uint32) uint8 {
	switch xtype {
	case gl.FLOAT_VEC2, gl.INT_VEC2, gl.UNSIGNED_INT_VEC2:
		return 2
	case gl.FLOAT_VEC3, gl.INT_VEC3, gl.UNSIGNED_INT_VEC3:
		return 3
	case gl.FLOAT_VEC4, gl.INT_VEC4, gl.UNSIGNED_INT_VEC4:
		return 4
	}
	return 1
}

func (b *Backend) ProgramDestroy(handle metadata.ProgramHandle) {
	p, ok := b.programs[handle]
	if !ok {
		return
	}
	if b.current == p {
		b.current = nil
	}
	gl.DeleteProgram(uint32(handle))
	delete(b.programs, handle)
}

// ProgramUse binds handle. Binding a program that failed to link is an
// error in GL, so the slot is cleared instead and later draws are skipped.
func (b *Backend) ProgramUse(handle metadata.ProgramHandle) {
	p, ok := b.programs[handle]
	if !ok || !p.linked {
		if ok && !p.warned {
			core.LogWarn("program `%s` is not linked, its draws are skipped", p.name)
			p.warned = true
		}
		b.current = nil
		gl.UseProgram(0)
		return
	}
	b.current = p
	gl.UseProgram(uint32(handle))
}

func (b *Backend) uniformLocation(handle metadata.ProgramHandle, name string) int32 {
	p, ok := b.programs[handle]
	if !ok || !p.linked {
		return -1
	}
	if loc, ok := p.uniforms[name]; ok {
		return loc
	}
	loc := gl.GetUniformLocation(uint32(handle), gl.Str(name+"\x00"))
	p.uniforms[name] = loc
	return loc
}

func (b *Backend) ProgramSetInt(handle metadata.ProgramHandle, name string, value int32) {
	if loc := b.uniformLocation(handle, name); loc >= 0 {
		gl.ProgramUniform1i(uint32(handle), loc, value)
	}
}

func (b *Backend) ProgramSetFloat(handle metadata.ProgramHandle, name string, value float32) {
	if loc := b.uniformLocation(handle, name); loc >= 0 {
		gl.ProgramUniform1f(uint32(handle), loc, value)
	}
}

func (b *Backend) ProgramBindUniformBlock(handle metadata.ProgramHandle, block string, binding uint32) {
	if p, ok := b.programs[handle]; !ok || !p.linked {
		return
	}
	index := gl.GetUniformBlockIndex(uint32(handle), gl.Str(block+"\x00"))
	if index == gl.INVALID_INDEX {
		return
	}
	gl.UniformBlockBinding(uint32(handle), index, binding)
}
