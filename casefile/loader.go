package casefile

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/YuminosukeSato/polyinfer/pkg/errors"
)

const (
	pipeSeparator  = " | "
	arrowSeparator = "->"
)

// Case is one parsed line of a case file.
type Case struct {
	// Line is the 1-based source line.
	Line  int
	Input []float64
	// Parameters is nil for the two-field form.
	Parameters []float64
	Expected   []float64
}

// Name identifies the case in reports, e.g. "Line 4".
func (c Case) Name() string {
	return fmt.Sprintf("Line %d", c.Line)
}

// Result holds the cases read from one source and the lines that were skipped.
type Result struct {
	Source  string
	Cases   []Case
	Skipped []*errors.MalformedLineWarning
}

// LoadFile reads the case file at path.
func LoadFile(path string) (*Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "casefile: open %s", path)
	}
	defer f.Close()

	return Load(f, path)
}

// MaxLineLength bounds one case line in bytes, line terminator included.
// Longer lines are skipped like any other malformed line.
const MaxLineLength = 1 << 20

// Load reads cases from r. name is used in warnings and in Result.Source.
// Only read failures are returned as errors; malformed lines are skipped.
func Load(r io.Reader, name string) (*Result, error) {
	res := &Result{Source: name}
	skip := func(lineNo int, reason string) {
		w := errors.NewMalformedLineWarning(name, lineNo, reason)
		errors.Warn(w)
		res.Skipped = append(res.Skipped, w)
	}

	br := bufio.NewReader(r)
	lineNo := 0
	for {
		raw, tooLong, err := readLine(br, MaxLineLength)
		if err != nil && err != io.EOF {
			return res, errors.Wrapf(err, "casefile: read %s", name)
		}
		if err == io.EOF && raw == "" && !tooLong {
			return res, nil
		}
		lineNo++

		line := strings.TrimSpace(raw)
		switch {
		case tooLong:
			skip(lineNo, fmt.Sprintf("line longer than %d bytes", MaxLineLength))
		case line == "" || strings.HasPrefix(line, "#"):
		default:
			c, perr := ParseLine(line, lineNo)
			if perr != nil {
				reason := perr.Error()
				var pe *errors.ParseError
				if errors.As(perr, &pe) {
					reason = pe.Reason
				}
				skip(lineNo, reason)
				break
			}
			res.Cases = append(res.Cases, c)
		}

		if err == io.EOF {
			return res, nil
		}
	}
}

// readLine returns the next line including its terminator. A line longer
// than limit is consumed in full but returned empty with tooLong set.
func readLine(br *bufio.Reader, limit int) (line string, tooLong bool, err error) {
	var buf []byte
	for {
		chunk, err := br.ReadSlice('\n')
		if !tooLong {
			if len(buf)+len(chunk) > limit {
				tooLong = true
				buf = nil
			} else {
				buf = append(buf, chunk...)
			}
		}
		if err == bufio.ErrBufferFull {
			continue
		}
		return string(buf), tooLong, err
	}
}

// ParseLine parses one non-comment line. lineNo is recorded in the Case and
// in any *errors.ParseError returned.
func ParseLine(line string, lineNo int) (Case, error) {
	c := Case{Line: lineNo}

	var fields []string
	switch {
	case strings.Contains(line, pipeSeparator):
		fields = strings.Split(line, pipeSeparator)
		if len(fields) != 3 {
			return c, errors.NewParseError(lineNo,
				fmt.Sprintf("expected 3 fields separated by %q, got %d", pipeSeparator, len(fields)))
		}
	case strings.Contains(line, arrowSeparator):
		fields = strings.SplitN(line, arrowSeparator, 2)
	default:
		return c, errors.NewParseError(lineNo,
			fmt.Sprintf("missing %q or %q separator", pipeSeparator, arrowSeparator))
	}

	vectors := make([][]float64, len(fields))
	for i, f := range fields {
		v, err := ParseFloats(f)
		if err != nil {
			return c, errors.NewParseError(lineNo, err.Error())
		}
		if len(v) == 0 {
			return c, errors.NewParseError(lineNo, fmt.Sprintf("field %d is empty", i+1))
		}
		vectors[i] = v
	}

	c.Input = vectors[0]
	c.Expected = vectors[len(vectors)-1]
	if len(vectors) == 3 {
		c.Parameters = vectors[1]
	}
	return c, nil
}

// ParseFloats parses comma separated finite floats. Surrounding whitespace and
// empty tokens are ignored, so "1, 2," yields [1 2]. NaN and Inf are rejected.
func ParseFloats(s string) ([]float64, error) {
	var out []float64
	for _, tok := range strings.Split(s, ",") {
		tok = strings.TrimSpace(tok)
		if tok == "" {
			continue
		}
		v, err := strconv.ParseFloat(tok, 64)
		if err != nil {
			return nil, errors.Newf("invalid number %q", tok)
		}
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, errors.Newf("non-finite number %q", tok)
		}
		out = append(out, v)
	}
	return out, nil
}
