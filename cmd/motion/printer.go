package main

import (
	"encoding/json"
	"fmt"
	"io"
	"maps"
	"slices"
	"strings"
	"text/tabwriter"

	"github.com/phanxgames/motion"
)

type printer interface {
	print(motion.Snapshot) error
	flush() error
}

func newPrinter(w io.Writer, format string) (printer, error) {
	switch format {
	case "json":
		return &jsonPrinter{enc: json.NewEncoder(w)}, nil
	case "text":
		tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "LABEL\tFRAME\tTIME\tNODE\tSTATE\tVALUES")
		return &textPrinter{w: tw}, nil
	default:
		return nil, fmt.Errorf("unknown format %q (want json or text)", format)
	}
}

// jsonPrinter writes one snapshot per line.
type jsonPrinter struct {
	enc *json.Encoder
}

func (p *jsonPrinter) print(snap motion.Snapshot) error {
	return p.enc.Encode(snap)
}

func (p *jsonPrinter) flush() error { return nil }

// textPrinter writes one row per node, aligned on flush.
type textPrinter struct {
	w *tabwriter.Writer
}

func (p *textPrinter) print(snap motion.Snapshot) error {
	label := snap.Label
	if label == "" {
		label = "-"
	}
	for _, id := range slices.Sorted(maps.Keys(snap.Lifecycles)) {
		_, err := fmt.Fprintf(p.w, "%s\t%d\t%.3f\t%s\t%s\t%s\n",
			label, snap.Frame, snap.Time, id, snap.Lifecycles[id], formatValues(snap.Values[id]))
		if err != nil {
			return err
		}
	}
	return nil
}

func (p *textPrinter) flush() error { return p.w.Flush() }

func formatValues(v motion.Values) string {
	parts := make([]string, 0, len(v))
	for _, prop := range slices.Sorted(maps.Keys(v)) {
		parts = append(parts, fmt.Sprintf("%s=%.3f", prop, v[prop]))
	}
	return strings.Join(parts, " ")
}
