package source

// Text format of the source statistics:
//
//	@name n prefix omega
//	c[0][0] c[0][1] ... c[0][prefix*omega-1]
//	...
//	c[n-1][0] ...
//
// One line per position, counts in context-major, symbol-minor order.
import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

var ErrShape = errors.New("source shape mismatch")
var ErrHeader = errors.New("invalid source header")

// Writes the raw counts of the source.
func (s *Source) Dump(w io.Writer, name string) (err error) {
	s.Lock()
	defer s.Unlock()

	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "@%s %d %d %d\n", name, len(s.raw), s.prefix, s.omega)

	var buf []byte
	for _, raw := range s.raw {
		buf = buf[:0]
		for i, v := range raw {
			if i > 0 {
				buf = append(buf, ' ')
			}
			buf = strconv.AppendUint(buf, v, 10)
		}

		buf = append(buf, '\n')
		if _, err = bw.Write(buf); err != nil {
			return
		}
	}

	return bw.Flush()
}

// Parses a header line. The prefix field is optional, if missing prefix is
// set to -1.
func ParseHeader(line string) (name string, n, prefix, omega int, err error) {
	fs := strings.Fields(line)
	if len(fs) < 3 || len(fs) > 4 || len(fs[0]) < 2 || fs[0][0] != '@' {
		err = ErrHeader
		return
	}

	name = fs[0][1:]
	vals := make([]int, len(fs) - 1)
	for i, f := range fs[1:] {
		vals[i], err = strconv.Atoi(f)
		if err != nil || vals[i] < 0 {
			err = fmt.Errorf("%v: %q", ErrHeader, line)
			return
		}
	}

	n = vals[0]
	if len(vals) == 3 {
		prefix, omega = vals[1], vals[2]
	} else {
		prefix, omega = -1, vals[1]
	}

	return
}

// Checks if the header dimensions match the source
func (s *Source) CheckShape(prefix, omega int) error {
	if (prefix >= 0 && prefix != s.prefix) || omega != s.omega {
		return fmt.Errorf("%w: expected %d x %d, got %d x %d", ErrShape, s.prefix, s.omega, prefix, omega)
	}

	return nil
}

// Drops all statistics and allocates n empty matrices.
func (s *Source) Reset(n int) {
	s.Lock()
	s.raw = make([][]uint64, n)
	for i := range s.raw {
		s.raw[i] = make([]uint64, s.prefix*s.omega)
	}
	s.norm = nil
	s.Unlock()
}

// Parses one line of counts into the matrix at position pos. The matrix
// must have been allocated by Reset.
func (s *Source) ParseRow(pos int, line string) error {
	s.Lock()
	defer s.Unlock()

	if pos < 0 || pos >= len(s.raw) {
		return ErrPosition
	}

	fs := strings.Fields(line)
	if len(fs) != s.prefix*s.omega {
		return fmt.Errorf("%w: expected %d values, got %d", ErrShape, s.prefix*s.omega, len(fs))
	}

	raw := s.raw[pos]
	for i, f := range fs {
		v, err := strconv.ParseUint(f, 10, 64)
		if err != nil {
			return err
		}

		raw[i] = v
	}

	return nil
}

// Creates a scanner that can handle the (long) lines of the format.
func NewScanner(r io.Reader) *bufio.Scanner {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 1024*1024), 256*1024*1024)
	return sc
}

// Reads a single source block (header and rows) written by Dump.
// Replaces the current statistics.
func (s *Source) Parse(r io.Reader) (name string, err error) {
	var n, prefix, omega int

	sc := NewScanner(r)
	hdr := false
	row := 0
	for sc.Scan() {
		line := sc.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}

		if !hdr {
			name, n, prefix, omega, err = ParseHeader(line)
			if err != nil {
				return
			}

			if err = s.CheckShape(prefix, omega); err != nil {
				return
			}

			s.Reset(n)
			hdr = true
			continue
		}

		if row >= n {
			return name, fmt.Errorf("unexpected line after %d rows: %q", n, line)
		}

		if err = s.ParseRow(row, line); err != nil {
			return
		}
		row++
	}

	if err = sc.Err(); err != nil {
		return
	}

	if !hdr {
		return "", ErrHeader
	} else if row != n {
		return name, fmt.Errorf("expected %d rows, got %d", n, row)
	}

	return
}
