package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/foldergraph/pkg/cluster"
	"github.com/matzehuels/foldergraph/pkg/config"
	"github.com/matzehuels/foldergraph/pkg/headless"
	"github.com/matzehuels/foldergraph/pkg/membership"
	"github.com/matzehuels/foldergraph/pkg/observability"
	"github.com/matzehuels/foldergraph/pkg/observability/prom"
	"github.com/matzehuels/foldergraph/pkg/render"
	"github.com/matzehuels/foldergraph/pkg/sim"
)

const (
	defaultPNGScale   = 2.0  // resolution multiplier for PNG output
	messageBuffer     = 256  // capacity of the simulation inbox with --async
	frameLogInterval  = 60   // frames between debug progress lines
	liveFramePath     = "/frame.svg"
	shutdownTimeout   = 3 * time.Second
	readHeaderTimeout = 5 * time.Second
)

// simulateOpts holds the command-line flags for the simulate command.
type simulateOpts struct {
	output      string // output file; the extension picks the format
	frames      int    // frames to render, 0 until interrupted
	fps         int    // frame rate
	graphviz    bool   // render image output through Graphviz instead of the SVG sink
	scale       float64
	tui         bool   // live cluster table
	metricsAddr string // address for /metrics and /frame.svg
	polygons    bool
	labels      bool
	noFolders   bool
	local       bool // render as the local graph view
	async       bool // run the simulation in its own goroutine
}

// simulateCommand creates the simulate command that runs a headless graph view.
func (c *CLI) simulateCommand() *cobra.Command {
	opts := simulateOpts{scale: defaultPNGScale}

	cmd := &cobra.Command{
		Use:   "simulate [vault]",
		Short: "Run the folder view over a vault's link graph",
		Long: `Load a vault's notes and [[wikilinks]] into a force-directed layout, group
the notes by folder and run the view frame by frame.

The last frame is written to --out when given; the extension picks the format
(.svg, .dot, .png, .pdf). PNG and PDF need rsvg-convert. With --frames 0 the
view runs until interrupted and the frame at that moment is written.`,
		Example: `  foldergraph simulate ~/notes --frames 300 --out notes.svg
  foldergraph simulate ~/notes --tui --async
  foldergraph simulate ~/notes --metrics-addr :9090`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.simulateConfig(cmd, opts)
			if err != nil {
				return err
			}
			return c.runSimulate(cmd.Context(), cmd.OutOrStdout(), c.vaultArg(args), cfg, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "out", "o", "", "write the last frame to this file")
	cmd.Flags().IntVarP(&opts.frames, "frames", "n", 0, "frames to render (0 runs until interrupted)")
	cmd.Flags().IntVar(&opts.fps, "fps", 60, "frames per second")
	cmd.Flags().BoolVar(&opts.graphviz, "graphviz", false, "render images through Graphviz (neato, pinned positions)")
	cmd.Flags().Float64Var(&opts.scale, "scale", defaultPNGScale, "PNG scale factor")
	cmd.Flags().BoolVar(&opts.tui, "tui", false, "show a live table of folders")
	cmd.Flags().StringVar(&opts.metricsAddr, "metrics-addr", "", "serve Prometheus metrics and the live frame on this address")
	cmd.Flags().BoolVar(&opts.polygons, "polygons", false, "also draw each hull outline")
	cmd.Flags().BoolVar(&opts.labels, "labels", false, "write note names into the output")
	cmd.Flags().BoolVar(&opts.noFolders, "no-folders", false, "hide folder puddles")
	cmd.Flags().BoolVar(&opts.local, "local", false, "render as the local graph view")
	cmd.Flags().BoolVar(&opts.async, "async", false, "run the simulation in its own goroutine")

	return cmd
}

// simulateConfig applies the flags the user set on top of the loaded config.
func (c *CLI) simulateConfig(cmd *cobra.Command, opts simulateOpts) (config.Config, error) {
	cfg := c.cfg
	flags := cmd.Flags()
	if flags.Changed("frames") {
		cfg.Simulation.Frames = opts.frames
	}
	if flags.Changed("fps") {
		cfg.Simulation.FPS = opts.fps
	}
	if opts.polygons {
		cfg.Render.Polygons = true
	}
	if opts.labels {
		cfg.Render.Labels = true
	}
	if opts.noFolders {
		cfg.Render.ShowFolders = false
		cfg.Render.ShowFoldersLocal = false
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	if opts.output != "" {
		if _, err := outputFormat(opts.output); err != nil {
			return cfg, err
		}
	}
	return cfg, nil
}

func (c *CLI) runSimulate(ctx context.Context, out io.Writer, vault string, cfg config.Config, opts simulateOpts) error {
	logger := loggerFromContext(ctx)

	prog := newProgress(logger)
	g, err := headless.LoadVault(ctx, vault)
	if err != nil {
		return err
	}
	idx := membership.New()
	if err := membership.Scan(ctx, vault, idx); err != nil {
		return err
	}
	prog.done("Loaded %d notes, %d links", len(g.Nodes), len(g.Links))

	var hooks *prom.Hooks
	if opts.metricsAddr != "" {
		hooks = prom.New()
		observability.SetFrameHooks(hooks)
		observability.SetForceHooks(hooks)
		observability.SetIndexHooks(hooks)
		defer observability.Reset()
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	grp, gctx := errgroup.WithContext(ctx)

	viewLogger := logger
	if opts.tui {
		// The TUI owns the terminal.
		viewLogger = log.New(io.Discard)
	}
	ropts := []headless.Option{headless.WithLogger(viewLogger), headless.WithContext(gctx)}
	if opts.local {
		ropts = append(ropts, headless.WithLocal())
	}
	var inbox chan sim.Message
	var sender *sim.ChanSender
	if opts.async {
		inbox = make(chan sim.Message, messageBuffer)
		sender = sim.NewChanSender(inbox)
		ropts = append(ropts, headless.WithSender(sender))
	}

	r, err := headless.New(g, idx, cfg, ropts...)
	if err != nil {
		return err
	}
	interval := cfg.Simulation.Interval()

	if opts.async {
		grp.Go(func() error {
			return ignoreCanceled(r.Simulation().Run(gctx, inbox, interval))
		})
	}

	var latest atomic.Pointer[[]byte]
	if hooks != nil {
		srv := newLiveServer(opts.metricsAddr, hooks, &latest)
		grp.Go(func() error {
			logger.Info("Serving", "metrics", "http://"+displayAddr(opts.metricsAddr)+defaultMetricsPath,
				"frame", "http://"+displayAddr(opts.metricsAddr)+liveFramePath)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("metrics server: %w", err)
			}
			return nil
		})
		grp.Go(func() error {
			<-gctx.Done()
			sctx, scancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer scancel()
			return srv.Shutdown(sctx)
		})
	}

	var program *tea.Program
	if opts.tui {
		program = tea.NewProgram(NewFrameModel(vault), tea.WithContext(gctx), tea.WithOutput(out))
		grp.Go(func() error {
			_, err := program.Run()
			// Quitting the TUI stops the run.
			cancel()
			if err != nil && !errors.Is(err, tea.ErrProgramKilled) {
				return fmt.Errorf("tui: %w", err)
			}
			return nil
		})
	}

	onFrame := func(info headless.FrameInfo) {
		if sender != nil {
			sender.Flush()
		}
		if hooks != nil {
			svg := r.SVG()
			latest.Store(&svg)
		}
		if program != nil {
			var clusters []*cluster.Cluster
			if s := r.Session(); s != nil {
				clusters = s.Clusters()
			}
			program.Send(newFrameMsg(info, clusters))
		}
		if info.Frame%frameLogInterval == 0 {
			viewLogger.Debug("frame", "n", info.Frame, "pushed", info.Stats.Pushed,
				"released", info.Stats.Released, "took", info.Duration)
		}
		if info.Stats.Violations > 0 || info.Stats.Faults > 0 {
			viewLogger.Warn("frame issues", "n", info.Frame,
				"violations", info.Stats.Violations, "faults", info.Stats.Faults)
		}
	}

	grp.Go(func() error {
		// Stop the server, simulation and TUI once the last frame is drawn.
		defer cancel()
		err := r.Run(gctx, cfg.Simulation.Frames, interval, onFrame)
		r.Close()
		if sender != nil {
			sender.Flush()
		}
		if program != nil {
			program.Send(doneMsg{})
		}
		return ignoreCanceled(err)
	})

	if err := grp.Wait(); err != nil {
		return err
	}
	logger.Info("Finished", "frames", r.Frames())

	if opts.output != "" {
		if err := writeFrame(context.WithoutCancel(ctx), r, opts); err != nil {
			return err
		}
		printSuccess(out, "Wrote last frame")
		printFile(out, opts.output)
	}
	if s := r.Session(); s != nil {
		printStats(out,
			statCount{r.Frames(), "frames"},
			statCount{len(s.Clusters()), "folders"},
			statCount{s.Forced(), "still pushed"},
		)
	}
	return nil
}

// ignoreCanceled treats cancellation as a normal stop.
func ignoreCanceled(err error) error {
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// newLiveServer routes the metrics and the latest frame.
func newLiveServer(addr string, hooks *prom.Hooks, latest *atomic.Pointer[[]byte]) *http.Server {
	router := chi.NewRouter()
	router.Method(http.MethodGet, defaultMetricsPath, hooks.Handler())
	router.Get(liveFramePath, func(w http.ResponseWriter, req *http.Request) {
		svg := latest.Load()
		if svg == nil {
			http.Error(w, "no frame rendered yet", http.StatusServiceUnavailable)
			return
		}
		w.Header().Set("Content-Type", "image/svg+xml")
		w.Header().Set("Cache-Control", "no-store")
		w.Write(*svg)
	})
	return &http.Server{Addr: addr, Handler: router, ReadHeaderTimeout: readHeaderTimeout}
}

func displayAddr(addr string) string {
	if strings.HasPrefix(addr, ":") {
		return "localhost" + addr
	}
	return addr
}

// outputFormat returns the format named by the extension of path.
func outputFormat(path string) (string, error) {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	switch ext {
	case "svg", "dot", "png", "pdf":
		return ext, nil
	}
	return "", fmt.Errorf("unsupported output format %q (use .svg, .dot, .png or .pdf)", filepath.Ext(path))
}

// writeFrame exports the last frame of r to opts.output.
func writeFrame(ctx context.Context, r *headless.Renderer, opts simulateOpts) error {
	format, err := outputFormat(opts.output)
	if err != nil {
		return err
	}

	var data []byte
	switch {
	case format == "dot":
		data = []byte(r.DOT())
	case opts.graphviz && format == "svg":
		data, err = render.RenderDOTSVG(ctx, r.DOT())
	case opts.graphviz && format == "png":
		data, err = render.RenderDOTPNG(ctx, r.DOT(), opts.scale)
	case opts.graphviz && format == "pdf":
		data, err = render.RenderDOTPDF(ctx, r.DOT())
	case format == "svg":
		data = r.SVG()
	case format == "png":
		data, err = render.ToPNG(r.SVG(), opts.scale)
	case format == "pdf":
		data, err = render.ToPDF(r.SVG())
	}
	if err != nil {
		return err
	}
	if err := os.WriteFile(opts.output, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", opts.output, err)
	}
	return nil
}
