// Package legacy parses the original integer-stream track file format
// into a one-edge layout's worth of segment records.
package legacy

import (
	"bufio"
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/diamondStar35/top-speed-sub005/internal/fsutil"
)

// legacyMinPartLength is the floor below which a record's length field
// must be a 4th integer rather than implied; it is also the floor a
// too-short length is raised to.
const legacyMinPartLength = 5000

// legacyUnitsPerMeter converts legacy length units (1/100 m) to metres.
const legacyUnitsPerMeter = 100

// Weather and Ambience mirror the trailing pair of integers after the
// sentinel.
type Weather int

const (
	Sunny Weather = iota
	Rain
	Wind
	Storm
)

type Ambience int

const (
	NoAmbience Ambience = iota
	Desert
	Airport
)

// Segment is one decoded record: a discrete type/surface/noise triple
// plus a length in metres.
type Segment struct {
	Type         int
	Surface      int
	Noise        int
	LengthMeters float64
}

// Result is the outcome of parsing a legacy file.
type Result struct {
	Name     string
	Segments []Segment
	Weather  Weather
	Ambience Ambience
}

const (
	typeMax    = 8
	surfaceMax = 4
	noiseMax   = 11
)

func clampDiscrete(v, max int) int {
	if v < 0 || v > max {
		return 0
	}
	return v
}

// Parse reads path from fs and decodes it. A missing or empty file
// yields a single 50m straight with default surface/noise, clear
// weather, and no ambience — per the spec's graceful-empty-input rule.
func Parse(fs fsutil.FileSystem, path string) (Result, error) {
	data, err := fs.ReadFile(path)
	if err != nil {
		return defaultResult(), nil
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return defaultResult(), nil
	}
	return ParseBytes(data)
}

func defaultResult() Result {
	return Result{
		Segments: []Segment{{Type: 0, Surface: 0, Noise: 0, LengthMeters: 50}},
		Weather:  Sunny,
		Ambience: NoAmbience,
	}
}

// ParseBytes decodes the legacy text format directly from data.
func ParseBytes(data []byte) (Result, error) {
	name, ints, err := scanTokens(data)
	if err != nil {
		return Result{}, err
	}
	if len(ints) == 0 {
		r := defaultResult()
		r.Name = name
		return r, nil
	}

	recordLens, sentinelIdx, err := countPass(ints)
	if err != nil {
		return Result{}, err
	}
	segments, weather, ambience, err := decodePass(ints, recordLens, sentinelIdx)
	if err != nil {
		return Result{}, err
	}

	return Result{Name: name, Segments: segments, Weather: weather, Ambience: ambience}, nil
}

// scanTokens strips comments and metadata lines, returning the track
// name (if any recognised metadata key was present) and the
// remaining whitespace-separated integers in order.
func scanTokens(data []byte) (name string, ints []int, err error) {
	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, ";") {
			continue
		}
		if key, value, ok := parseMetadataLine(line); ok {
			switch strings.ToLower(key) {
			case "name", "trackname", "title":
				name = value
			}
			continue
		}
		for _, tok := range strings.Fields(line) {
			v, convErr := strconv.Atoi(tok)
			if convErr != nil {
				return "", nil, fmt.Errorf("legacy: invalid integer token %q", tok)
			}
			ints = append(ints, v)
		}
	}
	if err := scanner.Err(); err != nil {
		return "", nil, fmt.Errorf("legacy: scan: %w", err)
	}
	return name, ints, nil
}

// parseMetadataLine recognises "key=value" and "key: value" lines.
func parseMetadataLine(line string) (key, value string, ok bool) {
	if idx := strings.Index(line, "="); idx >= 0 {
		return strings.TrimSpace(line[:idx]), strings.TrimSpace(line[idx+1:]), true
	}
	if idx := strings.Index(line, ":"); idx >= 0 {
		return strings.TrimSpace(line[:idx]), strings.TrimSpace(line[idx+1:]), true
	}
	return "", "", false
}

// countPass walks ints consuming 3- or 4-int records until a sentinel
// < 0 is found, returning each record's consumed width and the index
// of the sentinel.
func countPass(ints []int) (recordLens []int, sentinelIdx int, err error) {
	i := 0
	for i < len(ints) {
		if ints[i] < 0 {
			return recordLens, i, nil
		}
		width, werr := recordWidth(ints, i)
		if werr != nil {
			return nil, 0, werr
		}
		recordLens = append(recordLens, width)
		i += width
	}
	return nil, 0, fmt.Errorf("legacy: no sentinel found in count pass")
}

// recordWidth decides whether the record starting at i is 3 or 4 ints:
// 4 when the third int is below the legacy minimum part length. A
// 4-int reading that would consume the next record's sentinel as its
// length field is never valid, so that case falls back to 3 ints
// instead (the sentinel must remain for the outer count-pass loop).
func recordWidth(ints []int, i int) (int, error) {
	if i+3 > len(ints) {
		return 0, fmt.Errorf("legacy: truncated record at offset %d", i)
	}
	third := ints[i+2]
	if third < legacyMinPartLength && i+4 <= len(ints) && ints[i+3] >= 0 {
		return 4, nil
	}
	return 3, nil
}

// decodePass rereads the ints, producing one Segment per record, then
// decodes the trailing weather/ambience pair.
func decodePass(ints []int, recordLens []int, sentinelIdx int) ([]Segment, Weather, Ambience, error) {
	segments := make([]Segment, 0, len(recordLens))
	i := 0
	for _, width := range recordLens {
		typ := ints[i]
		surface := ints[i+1]
		var noise, lengthLegacy int
		if width == 4 {
			noise = ints[i+2]
			lengthLegacy = ints[i+3]
		} else {
			lengthLegacy = ints[i+2]
			noise = 0
			if typ >= 9 {
				noise = typ - 9 + 1
				typ = 0
			}
		}

		typ = clampDiscrete(typ, typeMax)
		surface = clampDiscrete(surface, surfaceMax)
		noise = clampDiscrete(noise, noiseMax)
		if lengthLegacy < legacyMinPartLength {
			lengthLegacy = legacyMinPartLength
		}

		segments = append(segments, Segment{
			Type: typ, Surface: surface, Noise: noise,
			LengthMeters: float64(lengthLegacy) / legacyUnitsPerMeter,
		})
		i += width
	}

	weather, ambience := Sunny, NoAmbience
	tail := ints[sentinelIdx+1:]
	if len(tail) >= 1 {
		weather = Weather(clampNonNegative(tail[0]))
	}
	if len(tail) >= 2 {
		ambience = Ambience(clampNonNegative(tail[1]))
	}

	return segments, weather, ambience, nil
}

func clampNonNegative(v int) int {
	if v < 0 {
		return 0
	}
	return v
}
