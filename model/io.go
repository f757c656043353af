package model

// Model file format:
//
//	$max_insert_size 1000
//	$max_repetition 16
//	$max_motif 6
//	$size_granularity 100
//	#single
//	@alignment ...		four profile blocks
//	#pair
//	@alignment ...		four profile blocks
//	@insert_size ...
//	@orientation ...
//	#amplification
//	@tandem ...
//	%crc64 0123456789abcdef
//
// The checksum line is optional. If present it must be the last line and
// covers all the preceding ones, with LF line endings: files converted to
// CRLF still verify.
import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"readsim/source"
	"readsim/stats"

	"github.com/snksoft/crc"
)

var ErrFormat = errors.New("invalid model file")
var ErrChecksum = errors.New("model checksum mismatch")

type FormatError struct {
	Line	int
	Msg	string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("model: line %d: %s", e.Line, e.Msg)
}

func (e *FormatError) Unwrap() error {
	return ErrFormat
}

func formatErr(line int, format string, args ...interface{}) error {
	return &FormatError{line, fmt.Sprintf(format, args...)}
}

type crcWriter struct {
	h	*crc.Hash
}

func (cw crcWriter) Write(p []byte) (int, error) {
	cw.h.Update(p)
	return len(p), nil
}

// Writes the model followed by its checksum
func (m *Model) Dump(w io.Writer) (err error) {
	h := crc.NewHash(crc.CRC64ECMA)
	bw := bufio.NewWriter(io.MultiWriter(w, crcWriter{h}))

	fmt.Fprintf(bw, "$max_insert_size %d\n", m.MaxInsertSize)
	fmt.Fprintf(bw, "$max_repetition %d\n", m.MaxRepetition)
	fmt.Fprintf(bw, "$max_motif %d\n", m.MaxMotif)
	fmt.Fprintf(bw, "$size_granularity %d\n", m.SizeGranularity)

	fmt.Fprintf(bw, "#single\n")
	if err = m.Single.Dump(bw); err != nil {
		return
	}

	fmt.Fprintf(bw, "#pair\n")
	if err = m.Pair.Dump(bw); err != nil {
		return
	}

	if err = m.InsertSize.Dump(bw, "insert_size"); err != nil {
		return
	}

	if err = m.Orientation.Dump(bw, "orientation"); err != nil {
		return
	}

	fmt.Fprintf(bw, "#amplification\n")
	if err = m.Amplification.Dump(bw, "tandem"); err != nil {
		return
	}

	if err = bw.Flush(); err != nil {
		return
	}

	_, err = fmt.Fprintf(w, "%%crc64 %016x\n", h.CRC())
	return
}

// Finds the source a block header refers to
func (m *Model) block(section, name string) *source.Source {
	switch section {
	case "single", "pair":
		if s := m.Profile(sectionEnd(section)).Source(name); s != nil {
			return s
		}

		switch name {
		case "insert_size":
			return m.InsertSize
		case "orientation":
			return m.Orientation
		}

	case "amplification":
		if name == "tandem" {
			return m.Amplification
		}
	}

	return nil
}

func sectionEnd(section string) int {
	if section == "pair" {
		return 1
	}

	return 0
}

// Reads a model written by Dump.
func Parse(r io.Reader) (m *Model, err error) {
	var cur *source.Source
	var section string
	var rows, row int

	params := make(map[string]int)
	h := crc.NewHash(crc.CRC64ECMA)
	sc := source.NewScanner(r)
	lnum := 0
	sum := false
	for sc.Scan() {
		line := strings.TrimSuffix(sc.Text(), "\r")
		lnum++
		if strings.TrimSpace(line) == "" {
			if !sum {
				h.Update([]byte(line + "\n"))
			}
			continue
		}

		if sum {
			return nil, formatErr(lnum, "data after the checksum")
		}

		switch line[0] {
		case '%':
			fs := strings.Fields(line)
			if len(fs) != 2 || fs[0] != "%crc64" {
				return nil, formatErr(lnum, "invalid checksum line")
			}

			v, err := strconv.ParseUint(fs[1], 16, 64)
			if err != nil {
				return nil, formatErr(lnum, "invalid checksum: %v", err)
			}

			if v != h.CRC() {
				return nil, fmt.Errorf("%w: expected %016x, got %016x", ErrChecksum, v, h.CRC())
			}

			sum = true
			continue

		case '$':
			if m != nil {
				return nil, formatErr(lnum, "parameter after the first section")
			}

			fs := strings.Fields(line)
			if len(fs) != 2 {
				return nil, formatErr(lnum, "invalid parameter line")
			}

			switch fs[0] {
			case "$max_insert_size", "$max_repetition", "$max_motif", "$size_granularity":
			default:
				return nil, formatErr(lnum, "unknown parameter %s", fs[0])
			}

			v, err := strconv.Atoi(fs[1])
			if err != nil {
				return nil, formatErr(lnum, "%s: %v", fs[0], err)
			}

			params[fs[0][1:]] = v

		case '#':
			if rows != row {
				return nil, formatErr(lnum, "expected %d rows, got %d", rows, row)
			}

			if m == nil {
				m, err = New(params["max_insert_size"], params["max_repetition"], params["max_motif"], params["size_granularity"])
				if err != nil {
					return nil, formatErr(lnum, "%v", err)
				}
			}

			section = strings.TrimSpace(line[1:])
			switch section {
			case "single", "pair", "amplification":
			default:
				return nil, formatErr(lnum, "unknown section %s", section)
			}
			cur = nil

		case '@':
			if rows != row {
				return nil, formatErr(lnum, "expected %d rows, got %d", rows, row)
			}

			if m == nil {
				return nil, formatErr(lnum, "block outside of a section")
			}

			name, n, prefix, omega, err := source.ParseHeader(line)
			if err != nil {
				return nil, formatErr(lnum, "%v", err)
			}

			cur = m.block(section, name)
			if cur == nil {
				return nil, formatErr(lnum, "unknown block %s in section %s", name, section)
			}

			if err = cur.CheckShape(prefix, omega); err != nil {
				return nil, formatErr(lnum, "%v", err)
			}

			cur.Reset(n)
			rows, row = n, 0

		default:
			if cur == nil || row >= rows {
				return nil, formatErr(lnum, "unexpected data")
			}

			if err = cur.ParseRow(row, line); err != nil {
				return nil, formatErr(lnum, "%v", err)
			}
			row++
		}

		h.Update([]byte(line + "\n"))
	}

	if err = sc.Err(); err != nil {
		return nil, err
	}

	if m == nil {
		return nil, formatErr(lnum, "no sections")
	} else if rows != row {
		return nil, formatErr(lnum, "expected %d rows, got %d", rows, row)
	}

	return
}

// Like Parse, but panics on error.
func MustParse(r io.Reader) *Model {
	m, err := Parse(r)
	if err != nil {
		panic(err)
	}

	return m
}

func Load(fname string) (m *Model, err error) {
	f, err := os.Open(fname)
	if err != nil {
		return
	}
	defer f.Close()

	m, err = Parse(f)
	if err != nil {
		err = fmt.Errorf("%s: %w", fname, err)
	}

	return
}

func (m *Model) Save(fname string) (err error) {
	f, err := os.Create(fname)
	if err != nil {
		return
	}

	err = m.Dump(f)
	if cerr := f.Close(); err == nil {
		err = cerr
	}

	return
}

// Total number of reads the single and pair profiles learned from
func (m *Model) Reads() (single, pair uint64) {
	return readCount(m.Single), readCount(m.Pair)
}

func readCount(p *stats.Profile) (n uint64) {
	// every learned alignment adds one count at position 0
	a := p.Alignment
	for c := 0; c < a.Omega(); c++ {
		n += a.Count(nil, 0, byte(c))
	}

	return
}
