package polyline

import "fmt"

const precision = 1e5

// ErrTruncated reports an encoded string that ended inside a varint group,
// i.e. the last byte still had its continuation bit set.
type ErrTruncated struct {
	Offset int
}

func (e *ErrTruncated) Error() string {
	return fmt.Sprintf("polyline: truncated varint at byte %d", e.Offset)
}

// Decode converts an encoded polyline into an ordered sequence of
// [lon, lat] pairs. An empty input yields an empty (non-nil) slice.
// Malformed input returns an error; callers decoding many trips should
// isolate the failure per trip rather than dropping the whole batch.
func Decode(encoded string) ([][2]float64, error) {
	coords := make([][2]float64, 0, len(encoded)/4)
	var lat, lng int64
	i := 0
	for i < len(encoded) {
		dLat, n, err := decodeSigned(encoded, i)
		if err != nil {
			return nil, err
		}
		i = n
		lat += dLat

		dLng, n, err := decodeSigned(encoded, i)
		if err != nil {
			return nil, err
		}
		i = n
		lng += dLng

		coords = append(coords, [2]float64{
			float64(lng) / precision,
			float64(lat) / precision,
		})
	}
	return coords, nil
}

// decodeSigned reads one varint starting at offset i and applies ZigZag
// decoding. Returns the value and the offset just past the last byte read.
func decodeSigned(encoded string, i int) (int64, int, error) {
	var result int64
	var shift uint
	for {
		if i >= len(encoded) {
			return 0, i, &ErrTruncated{Offset: i}
		}
		b := int64(encoded[i]) - 63
		if b < 0 {
			return 0, i, fmt.Errorf("polyline: byte %d out of range at offset %d", encoded[i], i)
		}
		i++
		result |= (b & 0x1f) << shift
		shift += 5
		if b&0x20 == 0 {
			break
		}
	}
	if result&1 != 0 {
		return ^(result >> 1), i, nil
	}
	return result >> 1, i, nil
}

// Encode is the inverse of Decode; it takes [lon, lat] pairs and produces
// the compact encoding. Used by tests and fixture generation.
func Encode(coords [][2]float64) string {
	var out []byte
	var prevLat, prevLng int64
	for _, c := range coords {
		lat := int64(round(c[1] * precision))
		lng := int64(round(c[0] * precision))
		out = appendSigned(out, lat-prevLat)
		out = appendSigned(out, lng-prevLng)
		prevLat, prevLng = lat, lng
	}
	return string(out)
}

func appendSigned(dst []byte, v int64) []byte {
	u := uint64(v) << 1
	if v < 0 {
		u = ^u
	}
	for u >= 0x20 {
		dst = append(dst, byte(u&0x1f|0x20)+63)
		u >>= 5
	}
	return append(dst, byte(u)+63)
}

func round(f float64) float64 {
	if f < 0 {
		return float64(int64(f - 0.5))
	}
	return float64(int64(f + 0.5))
}
