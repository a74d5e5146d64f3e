// Package report writes CommunityReports as text, JSON or Markdown, and
// dumps node info and in-community channels as indented JSON.
//
// All writers implement Writer so the CLI can pick one by flag and point
// it at stdout or a file.
package report
