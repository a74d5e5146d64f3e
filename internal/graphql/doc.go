// Package graphql is a small client for the Lightning graph GraphQL API.
//
// It knows exactly two query shapes: a community lookup (name, member count,
// member list) and a node lookup (alias, color, total capacity and the full
// channel list). Each request is a JSON POST of {"query", "variables"} with
// the configured Host, User-Agent and extra headers.
//
// Failures are classified as *NetworkError when the round-trip does not
// complete with a readable 2xx body, and *MalformedResponseError when the
// body lacks fields the caller depends on. Both match their sentinel with
// errors.Is.
package graphql
