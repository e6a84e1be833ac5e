// SPDX-License-Identifier: MIT

// Package matrix - plain-text serialisation.
//
// Format: one matrix row per line, values separated by a single space,
// each value printed with the shortest representation that round-trips
// (strconv 'g', -1). Blank lines are ignored on read.

package matrix

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

const (
	opWriteText = "WriteText"
	opReadText  = "ReadText"
)

// WriteText writes m to w, one row per line.
func WriteText(w io.Writer, m Matrix) error {
	if err := ValidateNotNil(m); err != nil {
		return matrixErrorf(opWriteText, err)
	}
	bw := bufio.NewWriter(w)
	r, c := m.Rows(), m.Cols()
	var (
		i, j int
		v    float64
		err  error
		buf  []byte
	)
	for i = 0; i < r; i++ {
		buf = buf[:0]
		for j = 0; j < c; j++ {
			if v, err = m.At(i, j); err != nil {
				return matrixErrorf(opWriteText, err)
			}
			if j > 0 {
				buf = append(buf, ' ')
			}
			buf = strconv.AppendFloat(buf, v, 'g', -1, 64)
		}
		buf = append(buf, '\n')
		if _, err = bw.Write(buf); err != nil {
			return matrixErrorf(opWriteText, err)
		}
	}
	if err = bw.Flush(); err != nil {
		return matrixErrorf(opWriteText, err)
	}

	return nil
}

// ReadText parses the WriteText format back into a Dense.
// Errors: ErrParse for empty input, ragged rows or unparsable numbers;
// ErrNaNInf for non-finite values.
func ReadText(r io.Reader) (*Dense, error) {
	sc := bufio.NewScanner(r)
	var (
		data []float64
		cols int
		rows int
		line int
	)
	for sc.Scan() {
		line++
		fields := strings.Fields(sc.Text())
		if len(fields) == 0 {
			continue
		}
		if rows == 0 {
			cols = len(fields)
		} else if len(fields) != cols {
			return nil, matrixErrorf(opReadText, fmt.Errorf("line %d: %d values, want %d: %w", line, len(fields), cols, ErrParse))
		}
		for _, f := range fields {
			v, err := strconv.ParseFloat(f, 64)
			if err != nil {
				return nil, matrixErrorf(opReadText, fmt.Errorf("line %d: %v: %w", line, err, ErrParse))
			}
			data = append(data, v)
		}
		rows++
	}
	if err := sc.Err(); err != nil {
		return nil, matrixErrorf(opReadText, err)
	}
	if rows == 0 {
		return nil, matrixErrorf(opReadText, fmt.Errorf("no rows: %w", ErrParse))
	}
	m, err := NewDenseFrom(rows, cols, data)
	if err != nil {
		return nil, matrixErrorf(opReadText, err)
	}

	return m, nil
}
