// Package canopy is the cull-traversal and render-bin layer of a retained 3D
// renderer built on [Ebitengine].
//
// Each frame a [Traverser] walks a scene [Graph] depth-first, groups every
// visible geometry node by its accumulated [RenderState] into cached
// [CullState] values, and hands the states to pluggable bins that draw them
// through a [Device].
//
// # Quick start
//
//	g := canopy.NewGraph()
//	cube := g.NewGeomNode("cube", canopy.NewCube(canopy.ColorWhite))
//	g.Attach(g.Root(), cube, canopy.Translate(0, 0, -5))
//
//	tr := canopy.NewTraverser(g, canopy.DefaultConfig())
//	tr.SetCamera(cam)
//	tr.SetDevice(canopy.NewEbitenDevice(screen, cam))
//	tr.Traverse(g.Root(), canopy.EmptyState(), canopy.EmptyState())
//
// # Caching
//
// Every mutation made through the [Graph] API stamps the touched node or arc
// with the graph's logical [Clock]. A node's association with its CullState
// is reused on later frames until something on its path is stamped after the
// association was verified. [Traverser.ForceFullRecompute] discards every
// association for one frame.
//
// A node reachable through several arcs (instancing) is cached once per
// instancing scope: each instancing arc owns a nested [StateLookupTree], so
// the same node can belong to a different CullState per instance.
//
// # Bins
//
// Bins are attached by name from "name sort type" directives (see
// [ParseBinSpec] and [DefaultConfig]). A state selects its bin with
// [BinTransition]; states without one go to the default bin.
//
//   - unsorted: encounter order
//   - fixed: ascending draw order, stable
//   - back_to_front: farthest node first, by camera distance
//   - normal: opaque states unsorted, transparent states back to front
//
// # Direct rendering
//
// An arc carrying [DirectRender] (or a decal arc with Config.DecalsAsDirect)
// hands its child subtree to an immediate depth-first draw instead of
// classifying it into bins.
//
// # ECS integration
//
// The canopy/ecs sub-module publishes [FrameStats] into a [Donburi] world.
//
// [Ebitengine]: https://ebitengine.org
// [Donburi]: https://github.com/yohamta/donburi
package canopy
