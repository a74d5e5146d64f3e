// Package graph turns a community graph into what the graph page renders
// and computes topology statistics over it.
//
// Elements and Stylesheet produce Cytoscape.js element and style
// definitions. Analyze builds an undirected gonum graph of the members and
// in-community channels and derives degree, capacity, components and
// betweenness.
package graph
