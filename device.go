package canopy

// Device is the graphics-device abstraction the traverser draws through.
// A Traverser without a device still classifies every frame but skips
// drawing.
type Device interface {
	// BeginFrame is called once per outer frame before any bin draws.
	BeginFrame()
	// DrawGeometry draws n's geometry with the fully composed state rs.
	DrawGeometry(n *Node, rs RenderState)
	// EndFrame is called once per outer frame after every bin has drawn.
	EndFrame()
}

// DrawCall is one DrawGeometry call captured by a RecordingDevice.
type DrawCall struct {
	Node  *Node
	State RenderState
}

// RecordingDevice records draw calls in the order they are issued. It draws
// nothing and is useful for diagnostics and tests.
type RecordingDevice struct {
	Calls  []DrawCall
	Frames int
}

// BeginFrame resets the recorded calls.
func (d *RecordingDevice) BeginFrame() {
	d.Calls = d.Calls[:0]
}

// DrawGeometry records the call.
func (d *RecordingDevice) DrawGeometry(n *Node, rs RenderState) {
	d.Calls = append(d.Calls, DrawCall{Node: n, State: rs})
}

// EndFrame counts the completed frame.
func (d *RecordingDevice) EndFrame() {
	d.Frames++
}

// Names returns the names of the drawn nodes in draw order.
func (d *RecordingDevice) Names() []string {
	var out []string
	for _, c := range d.Calls {
		out = append(out, c.Node.Name)
	}
	return out
}
