package canopy

// renderDirect draws n and its subtree immediately, depth-first, composing
// arc transitions onto rs as it goes. Nothing below n is classified into a
// bin.
func (t *Traverser) renderDirect(n *Node, rs RenderState) {
	if n.Geom != nil {
		t.device.DrawGeometry(n, rs)
	}
	for _, a := range n.children {
		c := a.child
		if a.Pruned() || c.Hidden {
			continue
		}
		if c.OnPreRender != nil {
			c.OnPreRender(c)
		}
		crs := rs.ApplyAll(a.transitions)
		if !t.cfg.DisableSubRender && a.SubRenderCount() > 0 {
			if t.cfg.HideSubRender {
				continue
			}
			if !t.runSubRender(a, crs) {
				if c.Geom != nil {
					t.device.DrawGeometry(c, crs)
				}
				continue
			}
		}
		t.renderDirect(c, crs)
	}
}
