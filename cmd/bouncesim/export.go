package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/san-kum/bouncesim/internal/export"
	"github.com/san-kum/bouncesim/internal/sim"
	"github.com/san-kum/bouncesim/internal/storage"
)

// output returns stdout, or the --out file.
func output() (io.WriteCloser, error) {
	if outFile == "" {
		return nopCloser{os.Stdout}, nil
	}
	return os.Create(outFile)
}

type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }

func exportJSON(cmd *cobra.Command, args []string) error {
	data, err := storage.New(dataDir).Export(args[0])
	if err != nil {
		return err
	}
	w, err := output()
	if err != nil {
		return err
	}
	defer w.Close()
	return storage.ExportJSON(w, data)
}

func exportCSV(cmd *cobra.Command, args []string) error {
	frames, err := storage.New(dataDir).LoadFrames(args[0])
	if err != nil {
		return err
	}
	w, err := output()
	if err != nil {
		return err
	}
	defer w.Close()
	return storage.ExportCSV(w, frames)
}

func exportSVG(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}

	var svg string
	if series != "" {
		switch series {
		case "bodies", "energy", "momentum", "collisions":
		default:
			return fmt.Errorf("unknown series: %s", series)
		}
		frames, err := st.LoadFrames(args[0])
		if err != nil {
			return err
		}
		svg = export.SeriesToSVG(frameSeries(frames, series), 800, 300, "#00ff88")
		if svg == "" {
			return fmt.Errorf("not enough frames to plot %s", series)
		}
	} else {
		final, err := st.LoadFinal(args[0])
		if err != nil {
			return err
		}
		svg = export.SnapshotToSVG(final, meta.Params.Boundary, 600)
	}

	w, err := output()
	if err != nil {
		return err
	}
	defer w.Close()
	_, err = io.WriteString(w, svg)
	return err
}

// progressPrinter reports the population each time a whole simulated second
// has passed.
type progressPrinter struct {
	out  io.Writer
	next float64
}

func (p *progressPrinter) OnFrame(w *sim.World, t float64) {
	if p.next == 0 {
		p.next = 1
	}
	for t >= p.next-1e-9 {
		fmt.Fprintf(p.out, "  t=%4.1fs bodies=%d\n", p.next, w.Len())
		p.next++
	}
}
