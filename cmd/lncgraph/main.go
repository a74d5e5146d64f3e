// Package main provides the entry point for the lncgraph CLI.
//
// lncgraph fetches a Lightning network community from the Amboss GraphQL
// API, builds the graph of channels between its members and reports on it.
//
// Usage:
//
//	lncgraph fetch <community-id>
//	lncgraph serve <community-id>
//	lncgraph diff <old.db> <new.db>
//
// See --help for all available options.
package main

// main is the entry point for lncgraph.
func main() {
	Execute()
}
