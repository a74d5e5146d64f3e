// Package database exports community graphs to SQLite files and reads them
// back for comparison.
//
// An export file holds one row per community plus its members and
// in-community channels, stored in member and discovery order so that a
// loaded graph matches the one that was exported. Files are written with
// modernc.org/sqlite, which needs no cgo.
package database
