package gldevice

import (
	"fmt"
	"strings"

	"github.com/go-gl/gl/v4.1-core/gl"
)

const vertexShaderSrc = `
#version 410 core

layout (location = 0) in vec3 aPos;
layout (location = 1) in vec4 aColor;
layout (location = 2) in vec2 aUV;

uniform mat4 uViewProj;

out vec4 vColor;
out vec2 vUV;
out vec3 vWorldPos;

void main() {
	gl_Position = uViewProj * vec4(aPos, 1.0);
	vColor = aColor;
	vUV = aUV;
	vWorldPos = aPos;
}
` + "\x00"

const fragmentShaderSrc = `
#version 410 core

#define MAX_LIGHTS 32

in vec4 vColor;
in vec2 vUV;
in vec3 vWorldPos;

uniform sampler2D uTexture;
uniform vec3 uLightPos[MAX_LIGHTS];
uniform vec3 uLightColor[MAX_LIGHTS];
uniform vec4 uLightDir[MAX_LIGHTS];    // xyz = direction, w = type
uniform vec4 uLightParams[MAX_LIGHTS]; // radius, intensity, inner, outer
uniform int uLightCount;

out vec4 FragColor;

const int LIGHT_POINT = 0;
const int LIGHT_DIRECTIONAL = 1;
const int LIGHT_SPOT = 2;

void main() {
	vec4 base = texture(uTexture, vUV) * vColor;
	if (base.a < 0.01) {
		discard;
	}

	vec3 lit = vec3(0.25); // ambient floor
	for (int i = 0; i < uLightCount; i++) {
		int lightType = int(uLightDir[i].w);
		float intensity = uLightParams[i].y;

		if (lightType == LIGHT_DIRECTIONAL) {
			lit += uLightColor[i] * intensity;
			continue;
		}

		float dist = length(uLightPos[i] - vWorldPos);
		float radius = uLightParams[i].x;
		float falloff = clamp(1.0 - dist / max(radius, 0.001), 0.0, 1.0);

		if (lightType == LIGHT_SPOT) {
			vec3 toFrag = normalize(vWorldPos - uLightPos[i]);
			float cosAngle = dot(toFrag, normalize(uLightDir[i].xyz));
			float cosOuter = cos(uLightParams[i].w);
			float cosInner = cos(uLightParams[i].z);
			falloff *= smoothstep(cosOuter, cosInner, cosAngle);
		}

		lit += uLightColor[i] * intensity * falloff;
	}

	FragColor = vec4(base.rgb * min(lit, vec3(1.5)), base.a);
}
` + "\x00"

// compileProgram compiles and links the pipeline shader program.
func compileProgram(vertexSrc, fragmentSrc string) (uint32, error) {
	vertShader, err := compileShader(vertexSrc, gl.VERTEX_SHADER, "vertex")
	if err != nil {
		return 0, err
	}
	defer gl.DeleteShader(vertShader)

	fragShader, err := compileShader(fragmentSrc, gl.FRAGMENT_SHADER, "fragment")
	if err != nil {
		return 0, err
	}
	defer gl.DeleteShader(fragShader)

	program := gl.CreateProgram()
	gl.AttachShader(program, vertShader)
	gl.AttachShader(program, fragShader)
	gl.LinkProgram(program)

	var status int32
	gl.GetProgramiv(program, gl.LINK_STATUS, &status)
	if status == gl.FALSE {
		var logLen int32
		gl.GetProgramiv(program, gl.INFO_LOG_LENGTH, &logLen)
		log := strings.Repeat("\x00", int(logLen+1))
		gl.GetProgramInfoLog(program, logLen, nil, gl.Str(log))
		gl.DeleteProgram(program)
		return 0, fmt.Errorf("link: %s", log)
	}
	return program, nil
}

func compileShader(source string, shaderType uint32, name string) (uint32, error) {
	shader := gl.CreateShader(shaderType)
	csource, free := gl.Strs(source)
	gl.ShaderSource(shader, 1, csource, nil)
	free()
	gl.CompileShader(shader)

	var status int32
	gl.GetShaderiv(shader, gl.COMPILE_STATUS, &status)
	if status == gl.FALSE {
		var logLen int32
		gl.GetShaderiv(shader, gl.INFO_LOG_LENGTH, &logLen)
		log := strings.Repeat("\x00", int(logLen+1))
		gl.GetShaderInfoLog(shader, logLen, nil, gl.Str(log))
		gl.DeleteShader(shader)
		return 0, fmt.Errorf("%s shader: %s", name, log)
	}
	return shader, nil
}

func uniform(program uint32, name string) int32 {
	return gl.GetUniformLocation(program, gl.Str(name+"\x00"))
}
