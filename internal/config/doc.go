// Package config provides configuration structures and utilities for mirrorlink.
// It defines the options for locating the two document trees, shaping the
// link conventions (base URL, secondary segment, flag tokens), and selecting
// report output, plus loading named mirror pairs from the .mirrorlink file.
package config
