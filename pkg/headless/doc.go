// Package headless hosts folder sessions without a screen.
//
// A [Renderer] plays the role of the graph view: it owns node records with
// local positions, a camera and an optional dragged node, and runs the same
// frame order as the interactive host. Each frame it lets the reference
// simulation from package sim advance, copies the simulated positions onto
// its nodes, and ticks the folder session, which pushes foreign nodes and
// redraws the puddles into a [render.Frame].
//
// Graphs usually come from a vault on disk via [LoadVault]: every visible
// file is a node and [[wikilinks]] in Markdown files become links.
package headless
