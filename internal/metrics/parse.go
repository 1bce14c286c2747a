package metrics

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"nathanbeddoewebdev/chainwatch/internal/domain"
)

// Sample is one line of the text exposition format.
type Sample struct {
	Name      string
	Labels    map[string]string
	Value     float64
	Timestamp time.Time // zero when the line carried none
}

// ParseError describes a malformed exposition line. It wraps
// domain.ErrParse.
type ParseError struct {
	Line   int
	Text   string
	Reason string
}

func (e *ParseError) Error() string {
	if e.Line == 0 {
		return fmt.Sprintf("metrics: %s: %s", e.Text, e.Reason)
	}
	return fmt.Sprintf("metrics: line %d: %s: %q", e.Line, e.Reason, e.Text)
}

func (e *ParseError) Unwrap() error { return domain.ErrParse }

// ParseExposition parses a Prometheus text exposition body. Malformed
// lines are reported in the error slice and skipped; the remaining lines
// still parse.
func ParseExposition(body string) ([]Sample, []error) {
	var (
		samples []Sample
		errs    []error
	)
	for i, raw := range strings.Split(body, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		s, reason := parseLine(line)
		if reason != "" {
			errs = append(errs, &ParseError{Line: i + 1, Text: line, Reason: reason})
			continue
		}
		samples = append(samples, s)
	}
	return samples, errs
}

func parseLine(line string) (Sample, string) {
	var s Sample

	end := strings.IndexAny(line, "{ \t")
	if end == 0 {
		return s, "missing metric name"
	}
	if end < 0 {
		return s, "missing value"
	}
	s.Name = line[:end]
	rest := line[end:]

	if rest[0] == '{' {
		labels, n, reason := parseLabels(rest)
		if reason != "" {
			return s, reason
		}
		s.Labels = labels
		rest = rest[n:]
	}

	fields := strings.Fields(rest)
	switch len(fields) {
	case 1, 2:
	case 0:
		return s, "missing value"
	default:
		return s, "unexpected trailing fields"
	}

	v, err := strconv.ParseFloat(fields[0], 64)
	if err != nil {
		return s, "invalid value"
	}
	s.Value = v

	if len(fields) == 2 {
		ms, err := strconv.ParseInt(fields[1], 10, 64)
		if err != nil {
			return s, "invalid timestamp"
		}
		s.Timestamp = time.UnixMilli(ms)
	}
	return s, ""
}

// parseLabels parses a {k="v",...} block at the start of in and returns
// the labels plus the number of bytes consumed.
func parseLabels(in string) (map[string]string, int, string) {
	labels := map[string]string{}
	i := 1
	for {
		for i < len(in) && (in[i] == ' ' || in[i] == ',') {
			i++
		}
		if i >= len(in) {
			return nil, 0, "unterminated label set"
		}
		if in[i] == '}' {
			return labels, i + 1, ""
		}

		eq := strings.IndexByte(in[i:], '=')
		if eq <= 0 {
			return nil, 0, "malformed label"
		}
		key := strings.TrimSpace(in[i : i+eq])
		i += eq + 1
		if i >= len(in) || in[i] != '"' {
			return nil, 0, "unquoted label value"
		}
		i++

		var b strings.Builder
		closed := false
		for i < len(in) {
			c := in[i]
			if c == '\\' && i+1 < len(in) {
				switch in[i+1] {
				case 'n':
					b.WriteByte('\n')
				default:
					b.WriteByte(in[i+1])
				}
				i += 2
				continue
			}
			i++
			if c == '"' {
				closed = true
				break
			}
			b.WriteByte(c)
		}
		if !closed {
			return nil, 0, "unterminated label value"
		}
		labels[key] = b.String()
	}
}
