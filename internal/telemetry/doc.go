// Package telemetry samples scalar metrics from a simulation after every
// frame through the read-only dynamo.View. A Recorder is a sim.Observer
// that collects metrics into a Series for plotting and storage.
package telemetry
