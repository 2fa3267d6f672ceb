// Package monitor is the Cortex system monitor app.
//
// Its stream samples Go runtime statistics on a ticker while the window is
// visible. The last MaxSamples samples are kept and summarized with gonum.
package monitor
