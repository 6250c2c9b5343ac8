package headless

import (
	"os"
	"testing"

	"github.com/spaghettifunk/anima/engine/renderer/metadata"
)

func TestReflectBuiltinTechniques(t *testing.T) {
	src, err := os.ReadFile("../../../assets/shaders/shaders.glsl")
	if err != nil {
		t.Fatalf("reading shader file: %v", err)
	}

	tests := []struct {
		name string
		want []metadata.VertexShaderAttribute
	}{
		{metadata.BUILTIN_SHADER_NAME_GEOMETRY, []metadata.VertexShaderAttribute{{Location: 0, ComponentCount: 3}, {Location: 1, ComponentCount: 3}, {Location: 2, ComponentCount: 2}}},
		{metadata.BUILTIN_SHADER_NAME_LIGHTING, []metadata.VertexShaderAttribute{{Location: 0, ComponentCount: 2}, {Location: 1, ComponentCount: 2}}},
		{metadata.BUILTIN_SHADER_NAME_POST_PROCESS, []metadata.VertexShaderAttribute{{Location: 0, ComponentCount: 2}, {Location: 1, ComponentCount: 2}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			layout, err := reflectVertexInputs(metadata.ProgramSource{Name: tt.name, Source: string(src)})
			if err != nil {
				t.Fatalf("reflectVertexInputs() error: %v", err)
			}
			if len(layout.Attributes) != len(tt.want) {
				t.Fatalf("attributes = %+v, want %+v", layout.Attributes, tt.want)
			}
			for i, want := range tt.want {
				if layout.Attributes[i] != want {
					t.Errorf("attribute %d = %+v, want %+v", i, layout.Attributes[i], want)
				}
			}
		})
	}
}

func TestReflectErrors(t *testing.T) {
	tests := []struct {
		name   string
		source string
	}{
		{"missing technique", "#ifdef OTHER_PASS\n#endif\n"},
		{"unterminated block", "#ifdef BROKEN\nlayout(location = 0) in vec3 a;\n"},
		{"stray endif", "#ifdef BROKEN\n#endif\n#endif\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := reflectVertexInputs(metadata.ProgramSource{Name: "BROKEN", Source: tt.source}); err == nil {
				t.Fatal("expected an error")
			}
		})
	}
}

func TestReflectSkipsOtherStagesAndTechniques(t *testing.T) {
	src := `
#ifdef A_PASS
#ifdef VERTEX
layout(location = 0) in vec4 aColor;
#else
layout(location = 5) in vec2 notAnInput;
#endif
#endif
#ifdef B_PASS
layout(location = 1) in float other;
#endif
`
	layout, err := reflectVertexInputs(metadata.ProgramSource{Name: "A_PASS", Source: src})
	if err != nil {
		t.Fatal(err)
	}
	if len(layout.Attributes) != 1 || layout.Attributes[0].Location != 0 || layout.Attributes[0].ComponentCount != 4 {
		t.Errorf("attributes = %+v, want only location 0 with 4 components", layout.Attributes)
	}
}
