package headless

import (
	"bufio"
	"regexp"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/spaghettifunk/anima/engine/renderer/metadata"
)

var vertexInputPattern = regexp.MustCompile(`^layout\s*\(\s*location\s*=\s*(\d+)\s*\)\s*in\s+(\w+)\s+\w+\s*;`)

type condFrame struct {
	parentActive bool
	taken        bool
}

// reflectVertexInputs evaluates the #ifdef structure of the vertex stage and
// collects the explicitly located inputs, standing in for a driver's
// active attribute query. It fails when the technique block is missing or
// the conditionals are unbalanced.
func reflectVertexInputs(source metadata.ProgramSource) (metadata.VertexShaderLayout, error) {
	layout := metadata.VertexShaderLayout{}
	defines := map[string]bool{}
	stack := []condFrame{}
	active := true
	techniqueFound := false

	scanner := bufio.NewScanner(strings.NewReader(source.Stage(metadata.ShaderStageVertex)))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		fields := strings.Fields(line)

		switch {
		case strings.HasPrefix(line, "#define"):
			if active && len(fields) > 1 {
				defines[fields[1]] = true
			}
		case strings.HasPrefix(line, "#ifdef"), strings.HasPrefix(line, "#ifndef"), strings.HasPrefix(line, "#if "):
			cond := evalCondition(fields, defines)
			if cond && active && len(fields) > 1 && fields[1] == source.Name {
				techniqueFound = true
			}
			stack = append(stack, condFrame{parentActive: active, taken: cond})
			active = active && cond
		case strings.HasPrefix(line, "#else"):
			if len(stack) == 0 {
				return layout, errors.Errorf("technique `%s`: #else without #if", source.Name)
			}
			top := &stack[len(stack)-1]
			active = top.parentActive && !top.taken
			top.taken = true
		case strings.HasPrefix(line, "#endif"):
			if len(stack) == 0 {
				return layout, errors.Errorf("technique `%s`: #endif without #if", source.Name)
			}
			active = stack[len(stack)-1].parentActive
			stack = stack[:len(stack)-1]
		case active:
			m := vertexInputPattern.FindStringSubmatch(line)
			if m == nil {
				continue
			}
			location, err := strconv.ParseUint(m[1], 10, 32)
			if err != nil {
				return layout, errors.Wrapf(err, "technique `%s`: bad location in `%s`", source.Name, line)
			}
			layout.Attributes = append(layout.Attributes, metadata.VertexShaderAttribute{
				Location:       uint32(location),
				ComponentCount: componentCount(m[2]),
			})
		}
	}
	if err := scanner.Err(); err != nil {
		return layout, err
	}
	if len(stack) != 0 {
		return layout, errors.Errorf("technique `%s`: unterminated #if block", source.Name)
	}
	if !techniqueFound {
		return layout, errors.Errorf("technique `%s`: no #ifdef %s block in source", source.Name, source.Name)
	}
	return layout, nil
}

func evalCondition(fields []string, defines map[string]bool) bool {
	if len(fields) < 2 {
		return false
	}
	switch fields[0] {
	case "#ifdef":
		return defines[fields[1]]
	case "#ifndef":
		return !defines[fields[1]]
	}
	expr := strings.Join(fields[1:], " ")
	if strings.HasPrefix(expr, "defined(") && strings.HasSuffix(expr, ")") {
		return defines[strings.TrimSuffix(strings.TrimPrefix(expr, "defined("), ")")]
	}
	return expr != "0"
}

func componentCount(glslType string) uint8 {
	switch glslType {
	case "float", "int", "uint":
		return 1
	}
	if n := len(glslType); n > 0 {
		if c, err := strconv.Atoi(glslType[n-1:]); err == nil && c >= 2 && c <= 4 {
			return uint8(c)
		}
	}
	return 1
}
