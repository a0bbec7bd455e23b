package scene

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-gl/mathgl/mgl32"
	"gopkg.in/yaml.v3"
)

// SceneDef defines the initial state of a scene.
type SceneDef struct {
	Parts []PartDef `yaml:"parts"`
}

// PartDef defines one mesh part. Exactly one of Box, Boxes or OBJ is used.
type PartDef struct {
	Name     string    `yaml:"name"`
	Position []float32 `yaml:"position,omitempty"`
	Rotation []float32 `yaml:"rotation,omitempty"` // XYZ euler, degrees
	Scale    []float32 `yaml:"scale,omitempty"`
	Parent   string    `yaml:"parent,omitempty"`

	Box   *BoxDef  `yaml:"box,omitempty"`
	Boxes []BoxDef `yaml:"boxes,omitempty"`
	OBJ   string   `yaml:"obj,omitempty"`
}

type BoxDef struct {
	Size   []float32 `yaml:"size"`
	Offset []float32 `yaml:"offset,omitempty"`
}

func ParseSceneDef(data []byte) (*SceneDef, error) {
	var def SceneDef
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&def); err != nil {
		return nil, fmt.Errorf("scene: parse: %w", err)
	}
	return &def, nil
}

func LoadSceneDef(path string) (*SceneDef, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("scene: read %s: %w", path, err)
	}
	def, err := ParseSceneDef(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return def, nil
}

// LoadScene spawns every part of def into s. Relative OBJ paths resolve
// against baseDir. Parents must be declared before their children.
func LoadScene(s *Scene, def *SceneDef, baseDir string) error {
	for i, p := range def.Parts {
		if p.Name == "" {
			return fmt.Errorf("scene: part %d has no name", i)
		}
		mesh, err := spawnMesh(p, baseDir)
		if err != nil {
			return fmt.Errorf("scene: part %q: %w", p.Name, err)
		}
		tr := NewTransformEuler(
			vec3(p.Position, 0),
			vec3(p.Rotation, 0),
			vec3(p.Scale, 1),
		)
		obj := s.AddMesh(p.Name, mesh, tr)
		if obj.Name != p.Name {
			return fmt.Errorf("scene: part %q declared twice", p.Name)
		}
		if p.Parent != "" {
			parent := s.Object(p.Parent)
			if parent == nil {
				return fmt.Errorf("scene: part %q: unknown parent %q", p.Name, p.Parent)
			}
			if err := s.SetParent(obj, parent, false); err != nil {
				return err
			}
		}
	}
	return nil
}

func spawnMesh(p PartDef, baseDir string) (*Mesh, error) {
	sources := 0
	if p.Box != nil {
		sources++
	}
	if len(p.Boxes) > 0 {
		sources++
	}
	if p.OBJ != "" {
		sources++
	}
	if sources != 1 {
		return nil, fmt.Errorf("expected exactly one of box, boxes or obj, got %d", sources)
	}

	switch {
	case p.Box != nil:
		m := &Mesh{}
		m.Append(NewBox(vec3(p.Box.Size, 1)), vec3(p.Box.Offset, 0))
		return m, nil
	case len(p.Boxes) > 0:
		sizes := make([]mgl32.Vec3, len(p.Boxes))
		offsets := make([]mgl32.Vec3, len(p.Boxes))
		for i, b := range p.Boxes {
			sizes[i] = vec3(b.Size, 1)
			offsets[i] = vec3(b.Offset, 0)
		}
		return NewBoxes(sizes, offsets), nil
	default:
		path := p.OBJ
		if !filepath.IsAbs(path) {
			path = filepath.Join(baseDir, path)
		}
		return LoadOBJFile(path)
	}
}

// vec3 reads up to three components; missing ones take def. A single value
// is broadcast.
func vec3(xs []float32, def float32) mgl32.Vec3 {
	switch len(xs) {
	case 0:
		return mgl32.Vec3{def, def, def}
	case 1:
		return mgl32.Vec3{xs[0], xs[0], xs[0]}
	}
	v := mgl32.Vec3{def, def, def}
	copy(v[:], xs)
	return v
}
