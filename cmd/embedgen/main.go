package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog/log"
	"gonum.org/v1/gonum/mat"

	"embedgen/internal/chunker"
	"embedgen/internal/config"
	"embedgen/internal/embedding"
	"embedgen/internal/logging"
	"embedgen/internal/service"
	"embedgen/internal/vectorstore/memory"
)

var demoTexts = []string{"hello world", "test text", "another one"}

type options struct {
	cfgPath    string
	dim        int
	seed       int64
	random     bool
	noNorm     bool
	input      string
	format     string
	preview    int
	similar    int
	setFlags   map[string]bool
	positional []string
}

func main() {
	_ = config.LoadEnv()

	var o options
	flag.StringVar(&o.cfgPath, "config", "", "Path to YAML config file (optional; uses ~/.config/embedgen/config.yaml if not provided)")
	flag.IntVar(&o.dim, "dim", config.DefaultDimension, "Embedding dimension (must be > 0)")
	flag.Int64Var(&o.seed, "seed", 0, "Seed for random mode")
	flag.BoolVar(&o.random, "random", false, "Use seeded random vectors instead of hashing")
	flag.BoolVar(&o.noNorm, "no-normalize", false, "Disable unit-norm output")
	flag.StringVar(&o.input, "input", "", "JSON array of texts to embed ('-' for stdin)")
	flag.StringVar(&o.format, "format", "text", "Output format: text or json")
	flag.IntVar(&o.preview, "preview", 3, "Rows to preview in text output")
	flag.IntVar(&o.similar, "similar", 0, "Show the K nearest rows for each row")
	flag.Usage = func() {
		fmt.Fprintln(flag.CommandLine.Output(), "Usage: embedgen [flags] [text ...]")
		flag.PrintDefaults()
	}
	flag.Parse()
	o.positional = flag.Args()
	o.setFlags = map[string]bool{}
	flag.Visit(func(f *flag.Flag) { o.setFlags[f.Name] = true })

	cfg, err := loadConfig(o.cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	closer, err := logging.Setup(cfg.Logging)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to set up logging: %v\n", err)
		os.Exit(1)
	}
	defer closer.Close()

	if err := run(o, cfg, os.Stdin, os.Stdout); err != nil {
		if isUserError(err) {
			fmt.Fprintf(os.Stderr, "warning: %v\n", err)
			closer.Close()
			os.Exit(2)
		}
		log.Error().Err(err).Msg("Embedding generation failed")
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		closer.Close()
		os.Exit(1)
	}
}

func loadConfig(path string) (*config.AppConfig, error) {
	var cfg *config.AppConfig
	var err error
	if path == "" {
		cfg, _, err = config.LoadDefault()
	} else {
		cfg, err = config.Load(path)
	}
	if err != nil {
		return nil, err
	}
	if err := config.ApplyEnv(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// settings merges explicitly set flags over the config file.
func settings(o options, cfg *config.AppConfig) service.Settings {
	s := service.SettingsFromConfig(cfg.Embedder)
	if o.setFlags["dim"] {
		s.Dimension = o.dim
	}
	if o.setFlags["seed"] {
		seed := o.seed
		s.Seed = &seed
	}
	if o.setFlags["random"] {
		s.Deterministic = !o.random
	}
	if o.setFlags["no-normalize"] {
		s.Normalize = !o.noNorm
	}
	return s
}

func run(o options, cfg *config.AppConfig, stdin io.Reader, stdout io.Writer) error {
	svc := service.NewEmbeddingService(chunker.NewLineChunker(), memory.NewStorage())
	st := settings(o, cfg)

	var res *service.Result
	var err error
	switch {
	case o.input != "":
		batch, rerr := readBatch(o.input, stdin)
		if rerr != nil {
			return rerr
		}
		res, err = svc.GenerateAny(batch, st)
	case len(o.positional) > 0:
		res, err = svc.GenerateTexts(o.positional, st)
	default:
		res, err = svc.GenerateTexts(demoTexts, st)
	}
	if err != nil {
		return err
	}

	switch o.format {
	case "json":
		return writeJSON(stdout, res)
	case "text", "":
		return writeText(stdout, svc, res, o.preview, o.similar)
	default:
		return fmt.Errorf("unknown format: %s", o.format)
	}
}

func readBatch(path string, stdin io.Reader) (any, error) {
	var r io.Reader = stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		r = f
	}
	var batch any
	if err := json.NewDecoder(r).Decode(&batch); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return batch, nil
}

func writeJSON(w io.Writer, res *service.Result) error {
	rows, cols := res.Matrix.Shape()
	out := struct {
		ID         string      `json:"id"`
		Embedder   string      `json:"embedder"`
		Shape      [2]int      `json:"shape"`
		Texts      []string    `json:"texts"`
		Embeddings [][]float64 `json:"embeddings"`
	}{
		ID:         res.ID.String(),
		Embedder:   res.Embedder,
		Shape:      [2]int{rows, cols},
		Texts:      res.Texts,
		Embeddings: res.Matrix.Rows(),
	}
	if out.Texts == nil {
		out.Texts = []string{}
	}
	if out.Embeddings == nil {
		out.Embeddings = [][]float64{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

var titleStyle = lipgloss.NewStyle().Bold(true)

func writeText(w io.Writer, svc *service.EmbeddingService, res *service.Result, preview, similar int) error {
	rows, cols := res.Matrix.Shape()
	fmt.Fprintln(w, titleStyle.Render("Embedding Matrix Shape"))
	fmt.Fprintf(w, "(%d, %d)  # (number_of_texts, embedding_dimension)\n", rows, cols)

	n := len(res.Matrix.Head(preview))
	if n == 0 {
		return nil
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, titleStyle.Render(fmt.Sprintf("Sample Embeddings (first %d rows)", n)))
	head := res.Matrix.Dense().Slice(0, n, 0, cols)
	fmt.Fprintf(w, "%.4f\n", mat.Formatted(head, mat.Excerpt(3), mat.Squeeze()))

	if similar <= 0 {
		return nil
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, titleStyle.Render("Nearest Rows"))
	for i := 0; i < rows; i++ {
		nb, err := svc.Similar(i, similar)
		if err != nil {
			return err
		}
		parts := make([]string, len(nb))
		for j, r := range nb {
			parts[j] = fmt.Sprintf("%d (%.3f)", r.Entry.Row, r.Score)
		}
		fmt.Fprintf(w, "%3d %-24q -> %s\n", i, res.Texts[i], strings.Join(parts, ", "))
	}
	return nil
}

func isUserError(err error) bool {
	return errors.Is(err, embedding.ErrInvalidConfiguration) ||
		errors.Is(err, embedding.ErrInvalidInputType) ||
		errors.Is(err, service.ErrNoInput) ||
		errors.Is(err, errors.ErrUnsupported)
}
