// Package csv reads delimited text tables, one record per line. Empty
// lines and lines starting with '#' are skipped.
package csv

import (
	"bufio"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"strings"
)

// Opens a file, uncompressing it if it is gzipped
func Open(fname string) (io.ReadCloser, error) {
	f, err := os.Open(fname)
	if err != nil {
		return nil, err
	}

	if cf, err := gzip.NewReader(f); err == nil {
		return struct {
			io.Reader
			io.Closer
		}{cf, f}, nil
	}

	f.Seek(0, 0)
	return f, nil
}

// Calls process for each record. If sep is empty the fields are separated
// by commas, or by white space if the line has no commas.
func ParseReader(r io.Reader, sep string, process func(line int, fields []string) error) error {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 16*1024*1024)
	for n := 1; sc.Scan(); n++ {
		l := strings.TrimRight(sc.Text(), "\r")
		if strings.TrimSpace(l) == "" || l[0] == '#' {
			continue
		}

		var ls []string
		switch {
		case sep != "":
			ls = strings.Split(l, sep)
		case strings.Contains(l, ","):
			ls = strings.Split(l, ",")
		default:
			ls = strings.Fields(l)
		}

		if err := process(n, ls); err != nil {
			return fmt.Errorf("line %d: %w", n, err)
		}
	}

	return sc.Err()
}
