package prometheus

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/MrEthical07/prpass"
	"github.com/MrEthical07/prpass/metrics/export/internaldefs"
)

// ContentType is the media type of the text exposition format version 0.0.4.
const ContentType = "text/plain; version=0.0.4; charset=utf-8"

// Source is anything that can report a metrics snapshot. *prpass.Engine satisfies it.
type Source interface {
	MetricsSnapshot() prpass.MetricsSnapshot
	AdvisoriesDropped() uint64
}

// Exporter renders a Source in Prometheus text format. It is an http.Handler.
type Exporter struct {
	source Source
}

// New returns an exporter reading from source.
func New(source Source) *Exporter {
	return &Exporter{source: source}
}

func (e *Exporter) ServeHTTP(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", ContentType)
	_, _ = e.WriteTo(w)
}

// Render returns the exposition as a string. It is empty when the source has nothing
// to report, which is the case for an engine with metrics disabled.
func (e *Exporter) Render() string {
	var buf bytes.Buffer
	_, _ = e.WriteTo(&buf)
	return buf.String()
}

// WriteTo writes the exposition to w.
func (e *Exporter) WriteTo(w io.Writer) (int64, error) {
	if e == nil || e.source == nil {
		return 0, nil
	}

	snapshot := e.source.MetricsSnapshot()
	dropped := e.source.AdvisoriesDropped()
	if len(snapshot.Counters) == 0 && len(snapshot.Histograms) == 0 && dropped == 0 {
		return 0, nil
	}

	cw := &countingWriter{w: bufio.NewWriter(w)}
	for _, def := range internaldefs.CounterDefs {
		cw.counter(def.Name, def.Help, snapshot.Counters[def.ID])
	}
	for _, def := range internaldefs.HistogramDefs {
		raw := internaldefs.NormalizeBuckets(snapshot.Histograms[def.ID])
		cw.histogram(def.Name, def.Help, internaldefs.CumulativeBuckets(raw))
	}
	cw.counter(internaldefs.AdvisoriesDroppedName, internaldefs.AdvisoriesDroppedHelp, dropped)

	if cw.err == nil {
		cw.err = cw.w.Flush()
	}
	return cw.n, cw.err
}

// countingWriter keeps the first write error and stops writing after it.
type countingWriter struct {
	w   *bufio.Writer
	n   int64
	err error
}

func (c *countingWriter) printf(format string, args ...any) {
	if c.err != nil {
		return
	}
	n, err := fmt.Fprintf(c.w, format, args...)
	c.n += int64(n)
	c.err = err
}

func (c *countingWriter) header(name, help, kind string) {
	c.printf("# HELP %s %s\n# TYPE %s %s\n", name, escapeHelp(help), name, kind)
}

func (c *countingWriter) counter(name, help string, value uint64) {
	c.header(name, help, "counter")
	c.printf("%s %d\n", name, value)
}

func (c *countingWriter) histogram(name, help string, cumulative [8]uint64) {
	c.header(name, help, "histogram")
	for i, le := range internaldefs.HistogramBounds {
		c.printf("%s_bucket{le=%q} %d\n", name, le, cumulative[i])
	}
	c.printf("%s_count %d\n", name, cumulative[len(cumulative)-1])
	// Snapshots carry no sum.
	c.printf("%s_sum 0\n", name)
}

var helpEscaper = strings.NewReplacer(`\`, `\\`, "\n", `\n`)

func escapeHelp(help string) string {
	return helpEscaper.Replace(help)
}
