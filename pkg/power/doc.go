// Package power implements the battery state machine gating flight.
//
// Manager ticks at a fixed interval: it samples power-good, charging
// and the battery voltage, keeps running extrema and the level, derives
// the charge state and performs edge-triggered effects on transitions.
// While on battery or low power it may initiate a shutdown.
package power
