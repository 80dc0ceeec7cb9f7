// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package lut

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// ParseCube reads an Adobe/Resolve .cube file. The returned asset carries
// the parsed size, samples and TITLE (as Name); the caller assigns the
// identity fields.
//
// Output samples are rescaled from [DOMAIN_MIN, DOMAIN_MAX] to [0,1].
func ParseCube(r io.Reader) (*Asset, error) {
	var (
		title      string
		size       int
		domainMin  = [3]float64{0, 0, 0}
		domainMax  = [3]float64{1, 1, 1}
		rows       [][3]float64
		lineNumber int
	)

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 1024*1024)
	for sc.Scan() {
		lineNumber++
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)
		keyword := strings.ToUpper(fields[0])

		switch {
		case keyword == "TITLE":
			title = strings.Trim(strings.TrimSpace(line[len(fields[0]):]), `"`)
		case keyword == "LUT_3D_SIZE":
			if len(fields) != 2 {
				return nil, fmt.Errorf("%w: line %d: malformed LUT_3D_SIZE", ErrParse, lineNumber)
			}
			n, err := strconv.Atoi(fields[1])
			if err != nil {
				return nil, fmt.Errorf("%w: line %d: LUT_3D_SIZE %q is not an integer", ErrParse, lineNumber, fields[1])
			}
			if n < MinSize || n > MaxSize {
				return nil, fmt.Errorf("%w: line %d: unsupported LUT_3D_SIZE %d (want %d..%d)", ErrParse, lineNumber, n, MinSize, MaxSize)
			}
			size = n
		case keyword == "LUT_1D_SIZE":
			return nil, fmt.Errorf("%w: line %d: 1D tables are not supported", ErrParse, lineNumber)
		case keyword == "DOMAIN_MIN", keyword == "DOMAIN_MAX":
			v, err := parseTriple(fields[1:])
			if err != nil {
				return nil, fmt.Errorf("%w: line %d: %s: %w", ErrParse, lineNumber, keyword, err)
			}
			if keyword == "DOMAIN_MIN" {
				domainMin = v
			} else {
				domainMax = v
			}
		case keyword == "LUT_3D_INPUT_RANGE":
			if len(fields) != 3 {
				return nil, fmt.Errorf("%w: line %d: malformed LUT_3D_INPUT_RANGE", ErrParse, lineNumber)
			}
			lo, err1 := strconv.ParseFloat(fields[1], 64)
			hi, err2 := strconv.ParseFloat(fields[2], 64)
			if err1 != nil || err2 != nil {
				return nil, fmt.Errorf("%w: line %d: malformed LUT_3D_INPUT_RANGE", ErrParse, lineNumber)
			}
			domainMin = [3]float64{lo, lo, lo}
			domainMax = [3]float64{hi, hi, hi}
		case isKeyword(fields[0]):
			// Unknown keywords are skipped.
		default:
			v, err := parseTriple(fields)
			if err != nil {
				return nil, fmt.Errorf("%w: line %d: %w", ErrParse, lineNumber, err)
			}
			rows = append(rows, v)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrParse, err)
	}

	if size == 0 {
		return nil, fmt.Errorf("%w: missing LUT_3D_SIZE", ErrParse)
	}
	want := size * size * size
	if len(rows) < want {
		return nil, fmt.Errorf("%w: insufficient rows: got %d, want %d", ErrParse, len(rows), want)
	}
	if len(rows) > want {
		return nil, fmt.Errorf("%w: too many rows: got %d, want %d", ErrParse, len(rows), want)
	}
	for ch := 0; ch < 3; ch++ {
		if domainMax[ch] <= domainMin[ch] {
			return nil, fmt.Errorf("%w: empty domain on channel %d", ErrParse, ch)
		}
	}

	data := make([]float32, 0, want*3)
	for _, row := range rows {
		for ch := 0; ch < 3; ch++ {
			data = append(data, float32((row[ch]-domainMin[ch])/(domainMax[ch]-domainMin[ch])))
		}
	}
	return &Asset{
		Name:   title,
		Format: FormatCube,
		Size:   size,
		Data:   data,
	}, nil
}

func parseTriple(fields []string) ([3]float64, error) {
	var v [3]float64
	if len(fields) != 3 {
		return v, fmt.Errorf("want 3 values, got %d", len(fields))
	}
	for i, s := range fields {
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return v, fmt.Errorf("bad number %q", s)
		}
		v[i] = f
	}
	return v, nil
}

// isKeyword reports whether s looks like a .cube keyword rather than a data
// row.
func isKeyword(s string) bool {
	c := s[0]
	return (c >= 'A' && c <= 'Z') || c == '_'
}
