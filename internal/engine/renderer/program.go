package renderer

import (
	"fmt"

	"github.com/go-gl/gl/v4.1-core/gl"

	"github.com/Faultbox/organism/internal/engine/shader"
)

// compileProgram compiles both stages of a module and links them, binding
// attributes to locations in declaration order.
func compileProgram(mod shader.Module, attributes []string) (uint32, error) {
	if !mod.Language.Supported() {
		return 0, fmt.Errorf("%w: %q", shader.ErrUnsupportedLanguage, mod.Language)
	}

	vertShader, err := compileShader(mod.StageSource(shader.VertexStage), gl.VERTEX_SHADER, mod.Name, shader.VertexStage)
	if err != nil {
		return 0, err
	}
	defer gl.DeleteShader(vertShader)

	fragShader, err := compileShader(mod.StageSource(shader.FragmentStage), gl.FRAGMENT_SHADER, mod.Name, shader.FragmentStage)
	if err != nil {
		return 0, err
	}
	defer gl.DeleteShader(fragShader)

	program := gl.CreateProgram()
	gl.AttachShader(program, vertShader)
	gl.AttachShader(program, fragShader)
	for loc, name := range attributes {
		gl.BindAttribLocation(program, uint32(loc), gl.Str(name+"\x00"))
	}
	gl.LinkProgram(program)

	var status int32
	gl.GetProgramiv(program, gl.LINK_STATUS, &status)
	if status == gl.FALSE {
		var logLen int32
		gl.GetProgramiv(program, gl.INFO_LOG_LENGTH, &logLen)
		log := make([]byte, logLen+1)
		gl.GetProgramInfoLog(program, logLen, nil, &log[0])
		gl.DeleteProgram(program)
		return 0, fmt.Errorf("link %s: %s", mod.Name, gl.GoStr(&log[0]))
	}

	return program, nil
}

// compileShader compiles a single stage.
func compileShader(source string, shaderType uint32, name string, stage shader.Stage) (uint32, error) {
	s := gl.CreateShader(shaderType)
	csource, free := gl.Strs(source + "\x00")
	gl.ShaderSource(s, 1, csource, nil)
	free()
	gl.CompileShader(s)

	var status int32
	gl.GetShaderiv(s, gl.COMPILE_STATUS, &status)
	if status == gl.FALSE {
		var logLen int32
		gl.GetShaderiv(s, gl.INFO_LOG_LENGTH, &logLen)
		log := make([]byte, logLen+1)
		gl.GetShaderInfoLog(s, logLen, nil, &log[0])
		gl.DeleteShader(s)
		return 0, fmt.Errorf("%s %s shader: %s", name, stage, gl.GoStr(&log[0]))
	}

	return s, nil
}
