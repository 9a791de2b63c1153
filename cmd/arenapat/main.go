package main

import (
	"context"
	"encoding/csv"
	"flag"
	"fmt"
	"math"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"periph.io/x/conn/v3/physic"

	"github.com/coreman2200/arenapat/internal/arena"
	"github.com/coreman2200/arenapat/internal/calib"
	"github.com/coreman2200/arenapat/internal/codec"
	"github.com/coreman2200/arenapat/internal/config"
	"github.com/coreman2200/arenapat/internal/diag"
	"github.com/coreman2200/arenapat/internal/numeric"
	"github.com/coreman2200/arenapat/internal/pattern"
	"github.com/coreman2200/arenapat/internal/stimulus"
	"github.com/coreman2200/arenapat/internal/store"
)

func main() {
	// ---- Flags (explicitly set flags win over config.yaml) ----
	var rate physic.Frequency
	var (
		configPath = flag.String("config", "run.yaml", "path to run configuration")
		outDir     = flag.String("out", "", "output directory")
		name       = flag.String("name", "", "pattern name used in the file name")
		id         = flag.Int("id", 0, "pattern id (0 = next free id)")
		workers    = flag.Int("workers", 0, "frames rendered in parallel (0 = all CPUs)")
		inspect    = flag.String("inspect", "", "print the header of an existing .pat file and exit")
		project    = flag.String("project", "", "write the arena's Mollweide projection as CSV and exit")
		logLevel   = flag.String("log-level", "info", "log level: debug | info | warn | error")
	)
	flag.Var(&rate, "rate", "frame rate for exponential looming (e.g. 500Hz)")
	flag.Parse()

	// ---- Logging ----
	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
	if lvl, err := zerolog.ParseLevel(*logLevel); err != nil {
		log.Warn().Err(err).Str("level", *logLevel).Msg("unknown log level; using info")
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	} else {
		zerolog.SetGlobalLevel(lvl)
	}

	reg := codec.Default()

	if *inspect != "" {
		if err := inspectFile(*inspect, reg); err != nil {
			log.Fatal().Err(err).Str("path", *inspect).Msg("inspect failed")
		}
		return
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal().Err(err).Str("path", *configPath).Msg("config load failed")
	}

	// ---- Effective params ----
	set := map[string]bool{}
	flag.Visit(func(f *flag.Flag) { set[f.Name] = true })
	if set["out"] {
		cfg.Output.Dir = *outDir
	}
	if set["name"] {
		cfg.Output.Name = *name
	}
	if set["id"] {
		cfg.Output.ID = *id
	}
	if set["workers"] {
		cfg.Workers = *workers
	}
	if set["rate"] {
		cfg.Stimulus.Rate = rate.String()
	}
	if cfg.Output.Dir == "" {
		cfg.Output.Dir = "."
	}
	if cfg.Output.Name == "" {
		cfg.Output.Name = cfg.Stimulus.Type
		if cfg.Calibration != calib.None {
			cfg.Output.Name = string(cfg.Calibration)
		}
	}

	geom, err := cfg.Arena.Geometry()
	if err != nil {
		log.Fatal().Err(err).Msg("arena setup failed")
	}

	if *project != "" {
		if err := writeProjection(*project, geom); err != nil {
			log.Fatal().Err(err).Str("path", *project).Msg("projection failed")
		}
		log.Info().Str("path", *project).Int("pixels", len(geom.Coordinates())).Msg("projection written")
		return
	}

	gen, depth, err := cfg.Arena.Target()
	if err != nil {
		log.Fatal().Err(err).Msg("arena setup failed")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var (
		p        *pattern.Pattern
		notes    diag.List
		schedule []float64
		source   any = cfg.Stimulus
	)
	if cfg.Calibration != calib.None {
		source = calib.Plan{Kind: cfg.Calibration}
		p, err = calib.Build(calib.Plan{Kind: cfg.Calibration, Stretch: uint8(cfg.Stimulus.Stretch)},
			gen, depth, cfg.Arena.PanelRows, cfg.Arena.PanelCols)
		if err != nil {
			log.Fatal().Err(err).Msg("calibration failed")
		}
	} else {
		params, err := cfg.Stimulus.Params()
		if err != nil {
			log.Fatal().Err(err).Msg("invalid stimulus")
		}
		syn := &stimulus.Synthesizer{
			Geometry:   geom,
			Generation: gen,
			Depth:      depth,
			Samples:    cfg.Arena.Samples,
			Workers:    cfg.Workers,
		}
		start := time.Now()
		out, err := syn.Synthesize(ctx, params)
		if err != nil {
			log.Fatal().Err(err).Msg("synthesis failed")
		}
		out.Diagnostics.Log(log.Logger)
		log.Info().Int("frames", out.Pattern.Len()).Dur("took", time.Since(start)).Msg("synthesized")
		p, notes, schedule = out.Pattern, out.Diagnostics, out.Schedule
	}
	if cfg.Envelope != nil {
		cfg.Envelope.Apply(p)
	}

	path, err := store.Save(cfg.Output.Dir, cfg.Output.ID, cfg.Output.Name, p, reg)
	if err != nil {
		log.Fatal().Err(err).Msg("save failed")
	}
	m := store.NewManifest(path, p)
	m.Source, m.Diagnostics, m.Schedule = source, notes, schedule
	if err := store.WriteManifest(path, m); err != nil {
		log.Warn().Err(err).Str("path", store.ManifestPath(path)).Msg("manifest write failed")
	}
	fmt.Println(path)
}

func inspectFile(path string, reg *codec.Registry) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	h, err := reg.ReadHeader(b)
	if err != nil {
		return err
	}
	p, err := reg.Decode(b)
	if err != nil {
		return err
	}
	fmt.Printf("file        %s\n", path)
	fmt.Printf("generation  %v\n", p.Generation)
	fmt.Printf("bit depth   %v (%d levels)\n", h.Depth, int(h.Depth))
	fmt.Printf("frame grid  %d x %d (%d frames)\n", h.GridX, h.GridY, h.Frames())
	fmt.Printf("panels      %d x %d\n", h.PanelRows, h.PanelCols)
	fmt.Printf("pixels      %d x %d\n", p.Rows(), p.Cols())
	fmt.Printf("record      %d bytes\n", h.RecordLen)
	fmt.Printf("stretch     %v\n", p.Stretch)
	return nil
}

func writeProjection(path string, g arena.Geometry) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	w := csv.NewWriter(f)
	if err := w.Write([]string{"row", "col", "azimuth", "elevation", "x", "y", "converged"}); err != nil {
		return err
	}
	l := g.Layout()
	coords := g.Coordinates()
	ff := func(v float64) string { return strconv.FormatFloat(v, 'g', 10, 64) }
	for row := 0; row < l.Rows(); row++ {
		for col := 0; col < l.Cols(); col++ {
			sp := arena.ToSpherical(coords[l.Index(row, col)])
			d := arena.Direction{Azimuth: sp.Azimuth, Elevation: math.Pi/2 - sp.Colatitude}
			x, y, res := arena.Mollweide(d, numeric.DefaultTolerance, numeric.DefaultMaxIterations)
			if !res.Converged {
				log.Warn().Int("row", row).Int("col", col).Int("iterations", res.Iterations).
					Msg("projection did not converge")
			}
			rec := []string{strconv.Itoa(row), strconv.Itoa(col), ff(d.Azimuth), ff(d.Elevation),
				ff(x), ff(y), strconv.FormatBool(res.Converged)}
			if err := w.Write(rec); err != nil {
				return err
			}
		}
	}
	w.Flush()
	return w.Error()
}
