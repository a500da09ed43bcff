// Package export writes simulation snapshots as SVG.
package export
