// Package neato lays out requests with Graphviz's neato engine.
//
// A [layout.Request] is converted to DOT with every node's start position
// as a pos attribute; pinned nodes additionally carry pin=true and a
// trailing "!" so neato keeps them fixed. The graph is rendered back to DOT
// and node positions are read from the pos attributes of the output.
//
// Graphviz measures positions in points with y growing upwards; canvas
// coordinates grow downwards. Both conversions happen here. Neato may
// still translate the drawing as a whole, so results are shifted by the
// mean displacement of the pinned nodes (or centred on the viewport when
// nothing is pinned).
//
// Graphviz runs as WebAssembly inside the process; no system installation
// is required.
package neato
