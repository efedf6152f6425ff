// Package feeds normalizes the three upstream transit feeds into the
// canonical model served to the map layer: Bilbobus vehicle and arrival
// JSON, the Open Data Euskadi multi-operator GeoJSON feed, and the
// Euskotren rail trip feed with encoded-polyline geometry.
//
// Adapters are tolerant by construction: each logical attribute is resolved
// from an ordered list of candidate field names, and a malformed record is
// dropped from its batch instead of failing it.
package feeds
