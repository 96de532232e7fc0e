package export

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/kilianp07/cwire/core/station"
)

// ErrMalformedRecord matches every *MalformedRecordError.
var ErrMalformedRecord = errors.New("malformed station record")

// ErrLineTooLong is the cause of a MalformedRecordError for a line longer
// than MaxLineLength.
var ErrLineTooLong = errors.New("line too long")

// MaxLineLength bounds the bytes of one input line, terminator included.
const MaxLineLength = 64 * 1024

// prefix of an over-long line kept in MalformedRecordError.Text
const longLinePrefix = 32

// MalformedRecordError describes a line that does not hold three integer
// fields. Decoding can continue after it.
type MalformedRecordError struct {
	Line int
	Text string
	Err  error
}

func (e *MalformedRecordError) Error() string {
	return fmt.Sprintf("line %d: %s %q: %v", e.Line, ErrMalformedRecord, e.Text, e.Err)
}

func (e *MalformedRecordError) Unwrap() error { return e.Err }

// Is makes errors.Is(err, ErrMalformedRecord) hold.
func (e *MalformedRecordError) Is(target error) bool { return target == ErrMalformedRecord }

// DecoderOption configures a Decoder.
type DecoderOption func(*Decoder)

// WithDelimiter sets the field separator. The default is ":".
func WithDelimiter(delim string) DecoderOption {
	return func(d *Decoder) {
		if delim != "" {
			d.delim = delim
		}
	}
}

// WithoutHeader treats the first line as a record.
func WithoutHeader() DecoderOption {
	return func(d *Decoder) { d.header = false }
}

// Decoder reads station records line by line.
type Decoder struct {
	br     *bufio.Reader
	delim  string
	header bool
	line   int
}

// NewDecoder returns a Decoder reading from r. By default the first line is
// a header and fields are separated by ":".
func NewDecoder(r io.Reader, opts ...DecoderOption) *Decoder {
	d := &Decoder{br: bufio.NewReaderSize(r, MaxLineLength), delim: ":", header: true}
	for _, o := range opts {
		o(d)
	}
	return d
}

// Next returns the next record. It returns io.EOF once the input is
// exhausted and a *MalformedRecordError for a line that cannot be parsed,
// including one longer than MaxLineLength; decoding resumes on the line
// after it. Any other error comes from the underlying reader.
func (d *Decoder) Next() (station.Station, error) {
	for {
		raw, long, err := d.readLine()
		if err != nil {
			return station.Station{}, err
		}
		d.line++
		if d.header && d.line == 1 {
			continue
		}
		if long {
			return station.Station{}, &MalformedRecordError{Line: d.line, Text: raw + "...", Err: ErrLineTooLong}
		}
		text := strings.TrimSpace(raw)
		if text == "" {
			continue
		}
		s, err := parseRecord(text, d.delim)
		if err != nil {
			return station.Station{}, &MalformedRecordError{Line: d.line, Text: text, Err: err}
		}
		return s, nil
	}
}

// readLine returns the next line. When the line does not fit in the
// buffer the rest of it is discarded, long is set and only a prefix is
// returned. The final line may lack a terminator.
func (d *Decoder) readLine() (line string, long bool, err error) {
	b, err := d.br.ReadSlice('\n')
	switch {
	case err == nil:
		return string(b), false, nil
	case errors.Is(err, io.EOF):
		if len(b) > 0 {
			return string(b), false, nil
		}
		return "", false, io.EOF
	case !errors.Is(err, bufio.ErrBufferFull):
		return "", false, err
	}
	line = string(b[:min(len(b), longLinePrefix)])
	for errors.Is(err, bufio.ErrBufferFull) {
		_, err = d.br.ReadSlice('\n')
	}
	if err != nil && !errors.Is(err, io.EOF) {
		return "", false, err
	}
	return line, true, nil
}

func parseRecord(text, delim string) (station.Station, error) {
	fields := strings.Split(text, delim)
	if len(fields) != 3 {
		return station.Station{}, fmt.Errorf("want 3 fields, got %d", len(fields))
	}
	id, err := strconv.ParseInt(strings.TrimSpace(fields[0]), 10, 32)
	if err != nil {
		return station.Station{}, fmt.Errorf("station id: %w", err)
	}
	capacity, err := strconv.ParseInt(strings.TrimSpace(fields[1]), 10, 64)
	if err != nil {
		return station.Station{}, fmt.Errorf("capacity: %w", err)
	}
	load, err := strconv.ParseInt(strings.TrimSpace(fields[2]), 10, 64)
	if err != nil {
		return station.Station{}, fmt.Errorf("load: %w", err)
	}
	return station.Station{ID: int32(id), Capacity: capacity, Load: load}, nil
}

// ReadRecords decodes every record from r and stops at the first error.
func ReadRecords(r io.Reader, opts ...DecoderOption) ([]station.Station, error) {
	d := NewDecoder(r, opts...)
	var out []station.Station
	for {
		s, err := d.Next()
		if errors.Is(err, io.EOF) {
			return out, nil
		}
		if err != nil {
			return out, err
		}
		out = append(out, s)
	}
}
