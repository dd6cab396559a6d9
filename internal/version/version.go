// Package version contains information on the current version of the program.
// It is split from the main program for easy use.
//
// Release builds rewrite Current from source-control metadata in an external
// build step; the checked-in value is the development default.
package version

// Current is the string representing the current version of natsuki.
const Current = "0.1.0"
