package scene

type VertexGroup struct {
	Name    string
	Weights map[int]float32
}

// Assign sets each vertex index to weight, clamped to [0, 1], replacing any
// earlier value.
func (g *VertexGroup) Assign(indices []int, weight float32) {
	w := min(max(weight, 0), 1)
	for _, vi := range indices {
		g.Weights[vi] = w
	}
}

func (g *VertexGroup) Weight(index int) (float32, bool) {
	w, ok := g.Weights[index]
	return w, ok
}

type ModifierType int

const (
	ModifierArmature ModifierType = iota
)

func (t ModifierType) String() string {
	if t == ModifierArmature {
		return "ARMATURE"
	}
	return "UNKNOWN"
}

// Modifier deforms its owner; an armature modifier binds vertex groups to
// the same-named bones of Object.
type Modifier struct {
	Name   string
	Type   ModifierType
	Object *Object
}
