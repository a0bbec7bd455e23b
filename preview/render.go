// Package preview draws an orthographic inspection image of rigged parts and
// their bones, the way an x-ray viewport shows an armature over its mesh.
package preview

import (
	"errors"
	"image"
	"image/color"
	"math"

	"github.com/gekko3d/autorig/scene"
	"github.com/go-gl/mathgl/mgl32"
	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
	"golang.org/x/image/vector"
)

var ErrEmpty = errors.New("preview: nothing to draw")

type View int

const (
	ViewFront View = iota // X right, Z up
	ViewSide              // Y right, Z up
	ViewTop               // X right, Y up
)

func ParseView(s string) (View, bool) {
	switch s {
	case "front", "":
		return ViewFront, true
	case "side":
		return ViewSide, true
	case "top":
		return ViewTop, true
	}
	return ViewFront, false
}

type Options struct {
	Size        int
	Supersample int
	View        View
	Labels      bool
}

func DefaultOptions() Options {
	return Options{Size: 512, Supersample: 2, View: ViewFront, Labels: true}
}

var (
	background = color.RGBA{0x30, 0x30, 0x30, 0xff}
	boneFill   = color.RGBA{0x10, 0x60, 0xd0, 0xff}
	jointFill  = color.RGBA{0xff, 0xff, 0xff, 0xff}
	labelColor = color.RGBA{0xff, 0xee, 0x88, 0xff}

	partPalette = []color.RGBA{
		{0xd9, 0x5f, 0x43, 0x90},
		{0x6a, 0xb1, 0x87, 0x90},
		{0xe0, 0xb1, 0x4a, 0x90},
		{0x8c, 0x6b, 0xc8, 0x90},
		{0x4a, 0xa8, 0xd8, 0x90},
		{0xc8, 0x6b, 0x9b, 0x90},
	}
)

type projector struct {
	view   View
	min    mgl32.Vec2
	scale  float32
	height float32
	margin float32
}

func (p *projector) axes(v mgl32.Vec3) mgl32.Vec2 {
	switch p.view {
	case ViewSide:
		return mgl32.Vec2{v.Y(), v.Z()}
	case ViewTop:
		return mgl32.Vec2{v.X(), v.Y()}
	}
	return mgl32.Vec2{v.X(), v.Z()}
}

// pixel maps a world point to canvas coordinates, Y down.
func (p *projector) pixel(v mgl32.Vec3) (float32, float32) {
	a := p.axes(v).Sub(p.min).Mul(p.scale)
	return p.margin + a.X(), p.height - p.margin - a.Y()
}

// Render draws every mesh object of parts and, when armature is non-nil,
// its bones on top.
func Render(parts []*scene.Object, armature *scene.Object, opts Options) (*image.RGBA, error) {
	if opts.Size <= 0 {
		opts.Size = DefaultOptions().Size
	}
	ss := max(opts.Supersample, 1)
	canvasSize := opts.Size * ss

	type partTris struct {
		name string
		tris [][3]mgl32.Vec3
	}
	var meshes []partTris
	var points []mgl32.Vec3
	for _, o := range parts {
		if !o.IsMesh() {
			continue
		}
		world := o.WorldTransform()
		pt := partTris{name: o.Name}
		for _, poly := range o.Mesh.Polygons {
			if len(poly.Vertices) < 3 {
				continue
			}
			v0 := world.TransformPoint(o.Mesh.Vertices[poly.Vertices[0]])
			for i := 1; i+1 < len(poly.Vertices); i++ {
				tri := [3]mgl32.Vec3{
					v0,
					world.TransformPoint(o.Mesh.Vertices[poly.Vertices[i]]),
					world.TransformPoint(o.Mesh.Vertices[poly.Vertices[i+1]]),
				}
				pt.tris = append(pt.tris, tri)
				points = append(points, tri[:]...)
			}
		}
		meshes = append(meshes, pt)
	}

	var bones []*scene.Bone
	if armature != nil && armature.Armature != nil {
		bones = armature.Armature.Bones
		for _, b := range bones {
			points = append(points, b.Head, b.Tail)
		}
	}
	if len(points) == 0 {
		return nil, ErrEmpty
	}

	proj := fitProjector(points, opts.View, float32(canvasSize))

	canvas := image.NewRGBA(image.Rect(0, 0, canvasSize, canvasSize))
	draw.Draw(canvas, canvas.Bounds(), image.NewUniform(background), image.Point{}, draw.Src)

	z := vector.NewRasterizer(canvasSize, canvasSize)
	for i, m := range meshes {
		z.Reset(canvasSize, canvasSize)
		for _, tri := range m.tris {
			fillTriangle(z, proj, tri)
		}
		z.Draw(canvas, canvas.Bounds(), image.NewUniform(partPalette[i%len(partPalette)]), image.Point{})
	}

	for _, b := range bones {
		z.Reset(canvasSize, canvasSize)
		boneShape(z, proj, b, float32(ss))
		z.Draw(canvas, canvas.Bounds(), image.NewUniform(boneFill), image.Point{})

		z.Reset(canvasSize, canvasSize)
		hx, hy := proj.pixel(b.Head)
		diamond(z, hx, hy, 2.5*float32(ss))
		z.Draw(canvas, canvas.Bounds(), image.NewUniform(jointFill), image.Point{})
	}

	out := canvas
	if ss > 1 {
		out = image.NewRGBA(image.Rect(0, 0, opts.Size, opts.Size))
		draw.CatmullRom.Scale(out, out.Bounds(), canvas, canvas.Bounds(), draw.Src, nil)
	}

	if opts.Labels {
		d := &font.Drawer{
			Dst:  out,
			Src:  image.NewUniform(labelColor),
			Face: basicfont.Face7x13,
		}
		for _, b := range bones {
			x, y := proj.pixel(b.Tail)
			d.Dot = fixed.P(int(x/float32(ss))+4, int(y/float32(ss))-4)
			d.DrawString(b.Name)
		}
	}
	return out, nil
}

func fitProjector(points []mgl32.Vec3, view View, size float32) *projector {
	p := &projector{view: view, height: size, margin: size * 0.08}
	inf := float32(math.Inf(1))
	lo := mgl32.Vec2{inf, inf}
	hi := mgl32.Vec2{-inf, -inf}
	for _, v := range points {
		a := p.axes(v)
		lo = mgl32.Vec2{min(lo.X(), a.X()), min(lo.Y(), a.Y())}
		hi = mgl32.Vec2{max(hi.X(), a.X()), max(hi.Y(), a.Y())}
	}
	extent := max(hi.X()-lo.X(), hi.Y()-lo.Y())
	if extent <= 0 {
		extent = 1
	}
	p.scale = (size - 2*p.margin) / extent
	// Centre the shorter axis.
	pad := hi.Sub(lo).Sub(mgl32.Vec2{extent, extent}).Mul(0.5)
	p.min = lo.Add(pad)
	return p
}

// fillTriangle adds one projected triangle, wound consistently so
// overlapping faces accumulate instead of cancelling.
func fillTriangle(z *vector.Rasterizer, p *projector, tri [3]mgl32.Vec3) {
	x0, y0 := p.pixel(tri[0])
	x1, y1 := p.pixel(tri[1])
	x2, y2 := p.pixel(tri[2])
	area := (x1-x0)*(y2-y0) - (x2-x0)*(y1-y0)
	if area == 0 {
		return
	}
	if area < 0 {
		x1, y1, x2, y2 = x2, y2, x1, y1
	}
	z.MoveTo(x0, y0)
	z.LineTo(x1, y1)
	z.LineTo(x2, y2)
	z.ClosePath()
}

// boneShape is the flat octahedral bone outline: widest a tenth of the way
// from head to tail.
func boneShape(z *vector.Rasterizer, p *projector, b *scene.Bone, ss float32) {
	hx, hy := p.pixel(b.Head)
	tx, ty := p.pixel(b.Tail)
	dx, dy := tx-hx, ty-hy
	length := float32(math.Hypot(float64(dx), float64(dy)))
	if length < 1 {
		return
	}
	w := max(length*0.1, 1.5*ss)
	nx, ny := -dy/length*w, dx/length*w
	mx, my := hx+dx*0.1, hy+dy*0.1

	z.MoveTo(hx, hy)
	z.LineTo(mx+nx, my+ny)
	z.LineTo(tx, ty)
	z.LineTo(mx-nx, my-ny)
	z.ClosePath()
}

func diamond(z *vector.Rasterizer, x, y, r float32) {
	z.MoveTo(x, y-r)
	z.LineTo(x+r, y)
	z.LineTo(x, y+r)
	z.LineTo(x-r, y)
	z.ClosePath()
}
