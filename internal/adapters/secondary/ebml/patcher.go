// Package ebml repairs the metadata of WebM recordings produced by browser
// media recorders. Both fixes rewrite fields in place at their declared
// width, so the buffer length never changes.
package ebml

import (
	"encoding/binary"
	"math"
	"strings"

	"github.com/fredcamaral/lecturelight/internal/domain/ports"
)

const (
	idTimecode = 0xE7

	// durationSearchLimit bounds the metadata scan when no cluster is found
	durationSearchLimit = 1 << 20

	defaultTimecodeScale = 1_000_000
)

var (
	clusterID       = []byte{0x1F, 0x43, 0xB6, 0x75}
	timecodeScaleID = []byte{0x2A, 0xD7, 0xB1}
	durationID      = []byte{0x44, 0x89}
)

// Report describes what Fix changed
type Report struct {
	Normalized      int  `json:"normalizedClusters"`
	DurationPatched bool `json:"durationPatched"`
}

// Changed returns true if any byte was rewritten
func (r Report) Changed() bool {
	return r.Normalized > 0 || r.DurationPatched
}

// IsWebM reports whether the MIME type is the recorder's WebM audio output
func IsWebM(mimeType string) bool {
	return strings.HasPrefix(mimeType, "audio/webm")
}

// Fix normalizes cluster timecodes and writes the real duration into a WebM
// audio recording. Other MIME types and non-positive durations are left alone.
func Fix(buf []byte, mimeType string, durationMs float64) Report {
	if !IsWebM(mimeType) || !(durationMs > 0) {
		return Report{}
	}
	var report Report
	report.Normalized = NormalizeClusterTimecodes(buf)
	report.DurationPatched = PatchDuration(buf, durationMs)
	return report
}

// Patcher implements ports.ContainerPatcher
type Patcher struct{}

var _ ports.ContainerPatcher = Patcher{}

// Fix runs Fix and reports the result as a ports.PatchReport
func (Patcher) Fix(buf []byte, mimeType string, durationMs float64) ports.PatchReport {
	r := Fix(buf, mimeType, durationMs)
	return ports.PatchReport{Normalized: r.Normalized, DurationPatched: r.DurationPatched}
}

// timecodeField locates a cluster's Timecode payload
type timecodeField struct {
	offset int
	width  int
	value  uint64
}

// NormalizeClusterTimecodes rebases every cluster Timecode on the first one
// found, so playback starts at zero. It returns the number of timecodes
// written. Clusters that cannot be decoded are skipped.
func NormalizeClusterTimecodes(buf []byte) int {
	var (
		base      uint64
		haveBase  bool
		rewritten int
	)

	cursor := 0
	for cursor < len(buf) {
		start := indexOf(buf, clusterID, cursor, len(buf))
		if start < 0 {
			break
		}

		header := start + len(clusterID)
		size, ok := readVint(buf, header)
		if !ok {
			cursor = header
			continue
		}

		dataStart := header + size.length
		if dataStart >= len(buf) {
			break
		}

		end := len(buf)
		if next := indexOf(buf, clusterID, dataStart, len(buf)); next >= 0 {
			end = next
		}
		declared := !isUnknownSize(buf, header, size.length) &&
			size.value > 0 &&
			size.value <= uint64(len(buf)-dataStart)
		if declared {
			end = dataStart + int(size.value)
		}
		if end <= dataStart {
			cursor = header
			continue
		}

		if field, found := findTimecode(buf, dataStart, end); found {
			if !haveBase {
				base = field.value
				haveBase = true
			}
			var rebased uint64
			if field.value > base {
				rebased = field.value - base
			}
			writeUint(buf, field.offset, field.width, rebased)
			rewritten++
		}

		cursor = end
	}

	return rewritten
}

// findTimecode walks the immediate children of a cluster in [from, to)
func findTimecode(buf []byte, from, to int) (timecodeField, bool) {
	pos := from
	for pos < to {
		id, ok := readElementID(buf, pos)
		if !ok {
			return timecodeField{}, false
		}
		size, ok := readVint(buf, pos+id.length)
		if !ok {
			return timecodeField{}, false
		}

		dataOffset := pos + id.length + size.length
		if dataOffset >= to || size.value > uint64(len(buf)-dataOffset) {
			return timecodeField{}, false
		}

		if id.value == idTimecode && size.value > 0 && size.value <= 8 {
			width := int(size.value)
			return timecodeField{
				offset: dataOffset,
				width:  width,
				value:  readUint(buf, dataOffset, width),
			}, true
		}

		end := dataOffset + int(size.value)
		if end > to {
			end = to
		}
		if end <= pos {
			return timecodeField{}, false
		}
		pos = end
	}
	return timecodeField{}, false
}

// PatchDuration writes durationMs into the segment Duration element found
// before the first cluster. Only 8-byte (float64) and 4-byte (float32)
// payloads are rewritten. It returns false when nothing was patched.
func PatchDuration(buf []byte, durationMs float64) bool {
	if !(durationMs > 0) || math.IsInf(durationMs, 0) {
		return false
	}

	searchEnd := len(buf)
	if searchEnd > durationSearchLimit {
		searchEnd = durationSearchLimit
	}
	if first := indexOf(buf, clusterID, 0, len(buf)); first > 0 {
		searchEnd = first
	}

	scale := readTimecodeScale(buf, searchEnd)
	units := durationMs * (1_000_000 / float64(scale))

	for i := 0; i < searchEnd-2; i++ {
		if buf[i] != durationID[0] || buf[i+1] != durationID[1] {
			continue
		}
		size, ok := readVint(buf, i+len(durationID))
		if !ok {
			continue
		}
		dataOffset := i + len(durationID) + size.length
		if size.value > uint64(len(buf)-dataOffset) {
			continue
		}

		switch size.value {
		case 8:
			binary.BigEndian.PutUint64(buf[dataOffset:], math.Float64bits(units))
			return true
		case 4:
			binary.BigEndian.PutUint32(buf[dataOffset:], math.Float32bits(float32(units)))
			return true
		}
	}

	return false
}

// readTimecodeScale returns the segment TimecodeScale in nanoseconds per tick
func readTimecodeScale(buf []byte, searchEnd int) uint64 {
	idx := indexOf(buf, timecodeScaleID, 0, searchEnd)
	if idx < 0 {
		return defaultTimecodeScale
	}
	sizeOffset := idx + len(timecodeScaleID)
	size, ok := readVint(buf, sizeOffset)
	if !ok || size.value < 1 || size.value > 8 {
		return defaultTimecodeScale
	}
	dataOffset := sizeOffset + size.length
	if size.value > uint64(len(buf)-dataOffset) {
		return defaultTimecodeScale
	}
	if scale := readUint(buf, dataOffset, int(size.value)); scale > 0 {
		return scale
	}
	return defaultTimecodeScale
}
