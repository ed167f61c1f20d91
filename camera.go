package canopy

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

// moveAnim holds active move-to tweens for the camera eye.
type moveAnim struct {
	tweens [3]*gween.Tween
	done   [3]bool
}

// Camera is a perspective camera. It supplies the view used to compute
// back-to-front distances and the projection used by EbitenDevice.
type Camera struct {
	// Eye is the world-space camera position.
	Eye mgl32.Vec3
	// Target is the world-space point the camera looks at.
	Target mgl32.Vec3
	// Up is the world-space up direction.
	Up mgl32.Vec3
	// FovY is the vertical field of view in radians.
	FovY float32
	// Near and Far bound the view frustum.
	Near, Far float32
	// Viewport is the screen-space rectangle this camera renders into.
	Viewport Rect

	viewMatrix mgl32.Mat4
	projMatrix mgl32.Mat4
	dirty      bool

	move *moveAnim
}

// NewCamera creates a camera at (0, 0, 10) looking at the origin.
func NewCamera(viewport Rect) *Camera {
	return &Camera{
		Eye:      mgl32.Vec3{0, 0, 10},
		Up:       mgl32.Vec3{0, 1, 0},
		FovY:     mgl32.DegToRad(60),
		Near:     0.1,
		Far:      1000,
		Viewport: viewport,
		dirty:    true,
	}
}

// LookAt sets the eye and target positions.
func (c *Camera) LookAt(eye, target mgl32.Vec3) {
	c.Eye = eye
	c.Target = target
	c.dirty = true
}

// MoveTo animates the eye to the given position over duration seconds.
func (c *Camera) MoveTo(eye mgl32.Vec3, duration float32, easeFn ease.TweenFunc) {
	c.move = &moveAnim{}
	for i := 0; i < 3; i++ {
		c.move.tweens[i] = gween.New(c.Eye[i], eye[i], duration, easeFn)
	}
}

// Moving reports whether a MoveTo animation is in progress.
func (c *Camera) Moving() bool { return c.move != nil }

// Update advances any MoveTo animation by dt seconds.
func (c *Camera) Update(dt float32) {
	if c.move == nil {
		return
	}
	for i := 0; i < 3; i++ {
		if c.move.done[i] {
			continue
		}
		val, done := c.move.tweens[i].Update(dt)
		c.Eye[i] = val
		c.move.done[i] = done
	}
	c.dirty = true
	if c.move.done[0] && c.move.done[1] && c.move.done[2] {
		c.move = nil
	}
}

// MarkDirty forces a recomputation of the view and projection matrices.
func (c *Camera) MarkDirty() {
	c.dirty = true
}

// computeMatrices recomputes the cached matrices if dirty.
func (c *Camera) computeMatrices() {
	if !c.dirty {
		return
	}
	c.dirty = false
	up := c.Up
	if up.Len() == 0 {
		up = mgl32.Vec3{0, 1, 0}
	}
	c.viewMatrix = mgl32.LookAtV(c.Eye, c.Target, up)
	aspect := float32(1)
	if c.Viewport.Height > 0 {
		aspect = float32(c.Viewport.Width / c.Viewport.Height)
	}
	c.projMatrix = mgl32.Perspective(c.FovY, aspect, c.Near, c.Far)
}

// ViewMatrix returns the world-to-camera matrix.
func (c *Camera) ViewMatrix() mgl32.Mat4 {
	c.computeMatrices()
	return c.viewMatrix
}

// ProjectionMatrix returns the camera-to-clip matrix.
func (c *Camera) ProjectionMatrix() mgl32.Mat4 {
	c.computeMatrices()
	return c.projMatrix
}

// Distance returns the camera-space distance from the eye to the world-space
// point p.
func (c *Camera) Distance(p mgl32.Vec3) float32 {
	return mgl32.TransformCoordinate(p, c.ViewMatrix()).Len()
}

// WorldToScreen projects a world-space point into viewport pixels. ok is false
// for points behind the eye.
func (c *Camera) WorldToScreen(p mgl32.Vec3) (x, y float32, ok bool) {
	return c.project(c.ProjectionMatrix().Mul4(c.ViewMatrix()), p)
}

// project maps p through the combined clip matrix mvp into viewport pixels.
func (c *Camera) project(mvp mgl32.Mat4, p mgl32.Vec3) (x, y float32, ok bool) {
	clip := mvp.Mul4x1(p.Vec4(1))
	if clip[3] <= 0 {
		return 0, 0, false
	}
	nx := clip[0] / clip[3]
	ny := clip[1] / clip[3]
	x = float32(c.Viewport.X) + (nx+1)*0.5*float32(c.Viewport.Width)
	y = float32(c.Viewport.Y) + (1-ny)*0.5*float32(c.Viewport.Height)
	return x, y, true
}
