package csvbridge

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
)

// Quote is the quote character of the catalog CSV dialect.
const Quote = '\\'

// ErrSyntax reports malformed CSV quoting.
var ErrSyntax = errors.New("csv syntax error")

// Reader reads records in the catalog dialect: comma separated, fields
// containing a comma, a backslash or a line break enclosed in backslashes,
// a doubled backslash inside a quoted field standing for one backslash.
// Records end with \n or \r\n. Blank lines are skipped.
//
// encoding/csv hardcodes '"' as its quote character, hence this reader.
type Reader struct {
	r    *bufio.Reader
	line int
}

// NewReader returns a Reader reading from r.
func NewReader(r io.Reader) *Reader {
	return &Reader{r: bufio.NewReader(r), line: 1}
}

// Read returns the next record, or io.EOF after the last one.
func (r *Reader) Read() ([]string, error) {
	var (
		fields   []string
		field    strings.Builder
		inQuotes bool
		quoted   bool
		started  bool
	)

	fieldStart := true
	startLine := r.line

	for {
		c, _, err := r.r.ReadRune()
		if errors.Is(err, io.EOF) {
			if inQuotes {
				return nil, fmt.Errorf("%w: line %d: unterminated quoted field", ErrSyntax, startLine)
			}

			if !started {
				return nil, io.EOF
			}

			return append(fields, field.String()), nil
		}

		if err != nil {
			return nil, err
		}

		started = true

		if inQuotes {
			if c == Quote {
				next, _, peekErr := r.r.ReadRune()
				if peekErr == nil && next == Quote {
					field.WriteRune(Quote)

					continue
				}

				if peekErr == nil {
					_ = r.r.UnreadRune()
				}

				inQuotes = false

				continue
			}

			if c == '\n' {
				r.line++
			}

			field.WriteRune(c)

			continue
		}

		switch c {
		case Quote:
			if fieldStart {
				inQuotes = true
				quoted = true
				fieldStart = false

				continue
			}

			field.WriteRune(c)
		case ',':
			fields = append(fields, field.String())
			field.Reset()

			fieldStart = true
		case '\r', '\n':
			if c == '\r' {
				next, _, peekErr := r.r.ReadRune()
				if peekErr == nil && next != '\n' {
					_ = r.r.UnreadRune()
				}
			}

			r.line++

			if len(fields) == 0 && field.Len() == 0 && !quoted {
				started = false
				startLine = r.line

				continue
			}

			return append(fields, field.String()), nil
		default:
			field.WriteRune(c)

			fieldStart = false
		}
	}
}

// ReadAll reads the remaining records.
func (r *Reader) ReadAll() ([][]string, error) {
	var records [][]string

	for {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			return records, nil
		}

		if err != nil {
			return nil, err
		}

		records = append(records, rec)
	}
}

// Writer writes records in the catalog dialect, quoting only fields that
// need it and ending every record with \r\n.
type Writer struct {
	w *bufio.Writer
}

// NewWriter returns a Writer writing to w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: bufio.NewWriter(w)}
}

// Write writes one record.
func (w *Writer) Write(record []string) error {
	for i, field := range record {
		if i > 0 {
			w.w.WriteByte(',')
		}

		if !needsQuotes(field) && (field != "" || len(record) > 1) {
			w.w.WriteString(field)

			continue
		}

		w.w.WriteRune(Quote)

		for _, c := range field {
			if c == Quote {
				w.w.WriteRune(Quote)
			}

			w.w.WriteRune(c)
		}

		w.w.WriteRune(Quote)
	}

	_, err := w.w.WriteString("\r\n")

	return err
}

// Flush writes buffered data to the underlying writer.
func (w *Writer) Flush() error {
	return w.w.Flush()
}

func needsQuotes(field string) bool {
	return strings.ContainsAny(field, ",\r\n"+string(Quote))
}
