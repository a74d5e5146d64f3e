// Package web serves an interactive page that draws a community graph with
// Cytoscape.js.
//
// The page is a static template. It loads its elements, stylesheet and
// layout as JSON from the /api endpoints, so the same data can be consumed
// by other tools. Prometheus metrics are exposed at /metrics.
package web
