// Package tray defines the data model for Lost Modeler trays: box extents,
// tray settings, compartments, the honeycomb cutout flag, boardgame
// settings, and validation of all of them against a printer build volume.
package tray
