// Package polyline implements the encoded-polyline coordinate codec used by
// the rail trip feed: printable-ASCII varints (offset 63, 5-bit groups,
// 0x20 continuation), ZigZag-signed cumulative deltas at 1e5 precision.
//
// Decode emits coordinates in [lon, lat] order to match GeoJSON, even though
// latitude comes first on the wire.
package polyline
