package scene

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/go-gl/mathgl/mgl32"
)

// LoadOBJ reads the geometry of a Wavefront OBJ stream: "v" and "f" records.
// Texture and normal references in faces are ignored, and face normals are
// recomputed from the winding. Negative (relative) indices are supported.
func LoadOBJ(r io.Reader) (*Mesh, error) {
	m := &Mesh{}
	scanner := bufio.NewScanner(r)
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" || text[0] == '#' {
			continue
		}
		fields := strings.Fields(text)
		switch fields[0] {
		case "v":
			v, err := readVector(fields[1:])
			if err != nil {
				return nil, fmt.Errorf("obj: line %d: %w", line, err)
			}
			m.Vertices = append(m.Vertices, v)
		case "f":
			loop, err := readFace(fields[1:], len(m.Vertices))
			if err != nil {
				return nil, fmt.Errorf("obj: line %d: %w", line, err)
			}
			if err := m.AddPolygon(loop...); err != nil {
				return nil, fmt.Errorf("obj: line %d: %w", line, err)
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("obj: %w", err)
	}
	return m, nil
}

func LoadOBJFile(path string) (*Mesh, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("obj: open %s: %w", path, err)
	}
	defer f.Close()
	return LoadOBJ(f)
}

func readVector(fields []string) (mgl32.Vec3, error) {
	if len(fields) < 3 {
		return mgl32.Vec3{}, fmt.Errorf("invalid vertex, expected 3 coordinates, found %d", len(fields))
	}
	var v mgl32.Vec3
	for i := 0; i < 3; i++ {
		f, err := strconv.ParseFloat(fields[i], 32)
		if err != nil {
			return mgl32.Vec3{}, fmt.Errorf("invalid coordinate %q: %w", fields[i], err)
		}
		v[i] = float32(f)
	}
	return v, nil
}

func readFace(fields []string, vertexCount int) ([]int, error) {
	if len(fields) < 3 {
		return nil, fmt.Errorf("invalid face, expected at least 3 vertices, found %d", len(fields))
	}
	loop := make([]int, 0, len(fields))
	for _, f := range fields {
		ref, _, _ := strings.Cut(f, "/")
		idx, err := strconv.Atoi(ref)
		if err != nil {
			return nil, fmt.Errorf("invalid face index %q: %w", f, err)
		}
		switch {
		case idx > 0:
			idx--
		case idx < 0:
			idx += vertexCount
		default:
			return nil, fmt.Errorf("face index 0 is not valid")
		}
		loop = append(loop, idx)
	}
	return loop, nil
}
