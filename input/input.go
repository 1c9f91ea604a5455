// Package input reads the run description text format (§6). Parsing is
// explicitly out of scope for the simulation's own concerns (§1
// Non-goals), so this package stays deliberately small and stdlib-only:
// bufio for line scanning, strconv for numeric conversion.
package input

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"metrosim/simerr"
)

// Spec is the parsed run description: network topology, the three
// lines, the tick budget, spawn quotas, and how many trailing lines of
// the report to print.
type Spec struct {
	StationNames []string
	Popularities []uint32
	Adjacency    [][]uint32
	LineNames    [3][]string // green, yellow, blue, by station name
	Ticks        int
	VehicleCounts [3]int // green, yellow, blue
	PrintLines   int
}

// Load opens path and parses it. Failure to open the file is reported
// distinctly from a malformed file so main can map the two to the
// separate exit codes §6 requires.
func Load(path string) (*Spec, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err // caller distinguishes "couldn't open" from InputError
	}
	defer f.Close()
	spec, err := Parse(f)
	if err != nil {
		return nil, simerr.Input("%s: %w", path, err)
	}
	return spec, nil
}

// Parse reads the exact grammar from §6:
//
//	S
//	<S station names, one per line>
//	<S popularities, one per line>
//	<S adjacency rows, S whitespace-separated entries each>
//	<green line station names, one line, space separated, may be empty>
//	<yellow line station names, one line, space separated, may be empty>
//	<blue line station names, one line, space separated, may be empty>
//	N
//	<green count> <yellow count> <blue count>
//	L
func Parse(r io.Reader) (*Spec, error) {
	lines, err := readLogicalLines(r)
	if err != nil {
		return nil, err
	}
	cur := 0
	next := func() (string, error) {
		if cur >= len(lines) {
			return "", fmt.Errorf("unexpected end of input")
		}
		line := lines[cur]
		cur++
		return line, nil
	}
	nextInt := func() (int, error) {
		line, err := next()
		if err != nil {
			return 0, err
		}
		v, err := strconv.Atoi(strings.TrimSpace(line))
		if err != nil {
			return 0, fmt.Errorf("expected integer, got %q: %w", line, err)
		}
		return v, nil
	}

	s, err := nextInt()
	if err != nil {
		return nil, fmt.Errorf("station count: %w", err)
	}
	if s < 0 {
		return nil, fmt.Errorf("station count must be non-negative, got %d", s)
	}

	spec := &Spec{StationNames: make([]string, s), Popularities: make([]uint32, s), Adjacency: make([][]uint32, s)}

	for i := 0; i < s; i++ {
		name, err := next()
		if err != nil {
			return nil, fmt.Errorf("station name %d: %w", i, err)
		}
		spec.StationNames[i] = strings.TrimSpace(name)
	}

	for i := 0; i < s; i++ {
		line, err := next()
		if err != nil {
			return nil, fmt.Errorf("popularity %d: %w", i, err)
		}
		v, err := strconv.ParseUint(strings.TrimSpace(line), 10, 32)
		if err != nil {
			return nil, fmt.Errorf("popularity %d: %w", i, err)
		}
		spec.Popularities[i] = uint32(v)
	}

	for i := 0; i < s; i++ {
		line, err := next()
		if err != nil {
			return nil, fmt.Errorf("adjacency row %d: %w", i, err)
		}
		fields := strings.Fields(line)
		if len(fields) != s {
			return nil, fmt.Errorf("adjacency row %d: got %d entries, want %d", i, len(fields), s)
		}
		row := make([]uint32, s)
		for j, f := range fields {
			v, err := strconv.ParseUint(f, 10, 32)
			if err != nil {
				return nil, fmt.Errorf("adjacency[%d][%d]: %w", i, j, err)
			}
			row[j] = uint32(v)
		}
		spec.Adjacency[i] = row
	}

	for l := 0; l < 3; l++ {
		line, err := next()
		if err != nil {
			return nil, fmt.Errorf("line %d station list: %w", l, err)
		}
		spec.LineNames[l] = strings.Fields(line)
	}

	ticks, err := nextInt()
	if err != nil {
		return nil, fmt.Errorf("tick count: %w", err)
	}
	if ticks < 0 {
		return nil, fmt.Errorf("tick count must be non-negative, got %d", ticks)
	}
	spec.Ticks = ticks

	countsLine, err := next()
	if err != nil {
		return nil, fmt.Errorf("vehicle counts: %w", err)
	}
	fields := strings.Fields(countsLine)
	if len(fields) != 3 {
		return nil, fmt.Errorf("vehicle counts: expected 3 values (green yellow blue), got %d", len(fields))
	}
	for i, f := range fields {
		v, err := strconv.Atoi(f)
		if err != nil || v < 0 {
			return nil, fmt.Errorf("vehicle count %d: invalid value %q", i, f)
		}
		spec.VehicleCounts[i] = v
	}

	printLines, err := nextInt()
	if err != nil {
		return nil, fmt.Errorf("print_lines: %w", err)
	}
	if printLines < 0 {
		return nil, fmt.Errorf("print_lines must be non-negative, got %d", printLines)
	}
	spec.PrintLines = printLines

	return spec, nil
}

// readLogicalLines returns every line of r, preserving blank lines
// (an empty line is significant: an unused line's station list).
func readLogicalLines(r io.Reader) ([]string, error) {
	var out []string
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for sc.Scan() {
		out = append(out, sc.Text())
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
