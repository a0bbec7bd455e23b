package autorig

import (
	"fmt"
	"io"

	"github.com/gekko3d/autorig/scene"
	"github.com/go-gl/mathgl/mgl32"
	"gopkg.in/yaml.v3"
)

// Report is the serialisable summary of a Result.
type Report struct {
	Armature string       `yaml:"armature"`
	Location [3]float32   `yaml:"location,flow"`
	Bones    []BoneReport `yaml:"bones"`
	Parts    []PartReport `yaml:"parts"`
	Visits   []string     `yaml:"visits,flow"`
}

type BoneReport struct {
	ID     string     `yaml:"id"`
	Name   string     `yaml:"name"`
	Parent string     `yaml:"parent,omitempty"`
	Head   [3]float32 `yaml:"head,flow"`
	Tail   [3]float32 `yaml:"tail,flow"`
	Length float32    `yaml:"length"`
	// Children names the bones parented to this one.
	Children []string `yaml:"children,flow,omitempty"`
}

type PartReport struct {
	Name         string   `yaml:"name"`
	Parent       string   `yaml:"parent,omitempty"`
	VertexGroups []string `yaml:"vertex_groups,flow"`
	Modifiers    []string `yaml:"modifiers,flow"`
}

func NewReport(res *Result, parts []*scene.Object) *Report {
	rep := &Report{
		Armature: res.Armature.Name,
		Location: vecArray(res.Armature.Location()),
		Visits:   res.Visits,
	}
	for _, b := range res.Bones {
		br := BoneReport{
			ID:   b.ID.String(),
			Name: b.Name,
			Head: vecArray(b.Head),
			Tail: vecArray(b.Tail),

			Length: b.Length(),
		}
		if b.Parent != nil {
			br.Parent = b.Parent.Name
		}
		for _, c := range res.Armature.Armature.Children(b) {
			br.Children = append(br.Children, c.Name)
		}
		rep.Bones = append(rep.Bones, br)
	}
	for _, p := range parts {
		if _, rigged := res.PartBones[p.Name]; !rigged {
			continue
		}
		pr := PartReport{Name: p.Name}
		if p.Parent != nil {
			pr.Parent = p.Parent.Name
		}
		for _, g := range p.VertexGroups {
			pr.VertexGroups = append(pr.VertexGroups, g.Name)
		}
		for _, m := range p.Modifiers {
			target := ""
			if m.Object != nil {
				target = m.Object.Name
			}
			pr.Modifiers = append(pr.Modifiers, fmt.Sprintf("%s:%s->%s", m.Name, m.Type, target))
		}
		rep.Parts = append(rep.Parts, pr)
	}
	return rep
}

func (r *Report) WriteYAML(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(r); err != nil {
		return fmt.Errorf("report: encode: %w", err)
	}
	return enc.Close()
}

func vecArray(v mgl32.Vec3) [3]float32 {
	return [3]float32{v.X(), v.Y(), v.Z()}
}
