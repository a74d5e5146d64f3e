// Package model defines the core data structures used throughout the
// community graph tool.
//
// This package contains the following main types:
//   - Community: a named set of Lightning nodes tracked by the remote API
//   - NodeInfo: alias, color and capacity of one community member
//   - Channel: a payment channel between two nodes
//   - CommunityGraph: a community with its members' node info and the
//     filtered, deduplicated set of in-community channels
//   - CommunityReport: the outcome of one pipeline run over one community
//
// The models are serializable to JSON for report output and export.
package model
