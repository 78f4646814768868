// Package main is the entry point for the smfcodec CLI
package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/james-see/smfcodec/pkg/api"
	"github.com/james-see/smfcodec/pkg/config"
	"github.com/james-see/smfcodec/pkg/converter"
	"github.com/james-see/smfcodec/pkg/smf"
	"github.com/james-see/smfcodec/pkg/tui"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var (
	outputFile  string
	configFile  string
	verbose     bool
	strict      bool
	skipInvalid bool
	policyName  string
	encoding    string
	serverPort  int

	cfg    *config.Config
	opts   converter.Options
	logger = log.NewWithOptions(os.Stderr, log.Options{Prefix: "smfcodec"})
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		logger.Error(err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "smfcodec",
	Short: "Decode, encode and convert Standard MIDI Files",
	Long: `smfcodec reads and writes Standard MIDI Files chunk by chunk.

It keeps unknown chunks byte for byte, honours running status, and converts
between MIDI, a JSON chunk dump and raw SysEx (.syx) streams.

Examples:
  smfcodec chunks song.mid
  smfcodec dump song.mid
  smfcodec convert song.mid -o song.json
  smfcodec normalize song.mid --policy compact -o small.mid
  smfcodec verify song.mid
  smfcodec tui
  smfcodec serve --port 8080`,
	Version:           fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: loadOptions,
}

var chunksCmd = &cobra.Command{
	Use:   "chunks <input.mid>",
	Short: "List chunk tags, offsets and lengths",
	Args:  cobra.ExactArgs(1),
	RunE:  runChunks,
}

var dumpCmd = &cobra.Command{
	Use:   "dump <input.mid>",
	Short: "Print every event of every track",
	Args:  cobra.ExactArgs(1),
	RunE:  runDump,
}

var inspectCmd = &cobra.Command{
	Use:   "inspect <input.mid>",
	Short: "Summarise header, tracks and chunks",
	Args:  cobra.ExactArgs(1),
	RunE:  runInspect,
}

var convertCmd = &cobra.Command{
	Use:   "convert <input>",
	Short: "Auto-detect and convert between formats",
	Long:  `Automatically detects input format and converts to the output format based on file extension.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runConvert,
}

var normalizeCmd = &cobra.Command{
	Use:   "normalize <input.mid>",
	Short: "Decode and re-encode with a running status policy",
	Args:  cobra.ExactArgs(1),
	RunE:  runNormalize,
}

var verifyCmd = &cobra.Command{
	Use:   "verify <input.mid>",
	Short: "Cross-check a file against the gomidi decoder",
	Args:  cobra.ExactArgs(1),
	RunE:  runVerify,
}

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Launch interactive terminal UI",
	RunE:  runTUI,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the API server",
	RunE:  runServe,
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Write the effective settings to the config file",
	Args:  cobra.NoArgs,
	RunE:  runConfig,
}

// shorthand conversions, one command per direction
var shorthands = []struct {
	name     string
	from, to converter.Format
	ext      string
}{
	{"midi2json", converter.FormatMIDI, converter.FormatJSON, ".json"},
	{"json2midi", converter.FormatJSON, converter.FormatMIDI, ".mid"},
	{"midi2syx", converter.FormatMIDI, converter.FormatSyx, ".syx"},
	{"syx2midi", converter.FormatSyx, converter.FormatMIDI, ".mid"},
}

func init() {
	// Global flags
	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&configFile, "config", "c", "", "Config file (default ~/.config/smfcodec/config.yaml)")
	pf.BoolVarP(&verbose, "verbose", "v", false, "Debug logging")
	pf.BoolVar(&strict, "strict", false, "Reject undefined status bytes")
	pf.BoolVar(&skipInvalid, "skip-invalid", false, "Skip chunks that fail to decode")
	pf.StringVar(&policyName, "policy", "preserve", "Running status policy: preserve, explicit or compact")
	pf.StringVar(&encoding, "encoding", "utf8", "Meta text encoding: utf8, latin1 or shiftjis")

	// Convert command
	convertCmd.Flags().StringVarP(&outputFile, "output", "o", "", "Output file path (required)")
	_ = convertCmd.MarkFlagRequired("output")

	normalizeCmd.Flags().StringVarP(&outputFile, "output", "o", "", "Output .mid file path")

	// serve command
	serveCmd.Flags().IntVarP(&serverPort, "port", "p", 0, "Server port (default from config)")

	rootCmd.AddCommand(chunksCmd, dumpCmd, inspectCmd, convertCmd, normalizeCmd, verifyCmd)
	for _, s := range shorthands {
		c := &cobra.Command{
			Use:   fmt.Sprintf("%s <input.%s>", s.name, s.from),
			Short: fmt.Sprintf("Convert %s to %s", s.from, s.to),
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return convertData(cmd.OutOrStdout(), args[0], getOutputPath(args[0], s.ext), s.from, s.to)
			},
		}
		c.Flags().StringVarP(&outputFile, "output", "o", "", fmt.Sprintf("Output %s file path", s.ext))
		rootCmd.AddCommand(c)
	}
	rootCmd.AddCommand(tuiCmd, serveCmd, configCmd)
}

// loadOptions reads the config file and lets explicitly set flags
// override it
func loadOptions(cmd *cobra.Command, args []string) error {
	if verbose {
		logger.SetLevel(log.DebugLevel)
	}

	var err error
	if configFile != "" {
		cfg, err = config.LoadFrom(configFile)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	if flags.Changed("strict") {
		cfg.Strict = strict
	}
	if flags.Changed("skip-invalid") {
		cfg.SkipInvalid = skipInvalid
	}
	if flags.Changed("policy") {
		cfg.RunningStatus = policyName
	}
	if flags.Changed("encoding") {
		cfg.TextEncoding = encoding
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	opts, err = cfg.ConverterOptions()
	if err != nil {
		return err
	}
	opts.Logger = logger
	logger.Debug("options loaded", "strict", opts.Strict, "skip_invalid", opts.SkipInvalid, "policy", opts.Policy, "encoding", opts.TextEncoding)
	return nil
}

func getOutputPath(input, defaultExt string) string {
	if outputFile != "" {
		return outputFile
	}
	base := strings.TrimSuffix(input, filepath.Ext(input))
	return base + defaultExt
}

func readerOptions() smf.ReaderOptions {
	return smf.ReaderOptions{
		Decode:       smf.DecodeOptions{Strict: opts.Strict},
		SkipInvalid:  opts.SkipInvalid,
		MaxChunkSize: opts.MaxChunkSize,
		Logger:       logger,
	}
}

func runChunks(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(args[0])
	if err != nil {
		return err
	}
	return listChunks(cmd.OutOrStdout(), data)
}

// listChunks frames chunks without decoding their payloads
func listChunks(w io.Writer, data []byte) error {
	src := smf.NewCursor(data)
	for {
		offset := src.Pos()
		c, _, err := smf.ReadChunk(src)
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("offset %d: %w", offset, err)
		}
		fmt.Fprintf(w, "%8d  %s  %d bytes\n", offset, c.Tag, c.Length)
	}
}

func runDump(cmd *cobra.Command, args []string) error {
	f, err := os.Open(args[0])
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	r := smf.NewReader(smf.NewStreamSource(f), readerOptions())
	return dumpChunks(cmd.OutOrStdout(), r)
}

func dumpChunks(w io.Writer, r *smf.Reader) error {
	track := 0
	for {
		chunk, err := r.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return err
		}
		switch c := chunk.(type) {
		case smf.HeaderChunk:
			fmt.Fprintf(w, "MThd %s, %d tracks, %s\n", c.Format, c.TrackCount, c.Division)
		case smf.TrackChunk:
			fmt.Fprintf(w, "MTrk #%d, %d events\n", track, len(c.Events))
			var tick uint64
			for _, ev := range c.Events {
				tick += uint64(ev.Delta)
				fmt.Fprintf(w, "  %8d  +%-6d %s\n", tick, ev.Delta, ev.Message)
			}
			track++
		case smf.UnknownChunk:
			fmt.Fprintf(w, "%s (unknown), %d bytes\n", c.Tag, len(c.Payload))
		}
	}
	if n := r.Skipped(); n > 0 {
		logger.Warn("chunks skipped", "count", n)
	}
	return nil
}

func runInspect(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(args[0])
	if err != nil {
		return err
	}
	summary, err := converter.New(opts).Inspect(data)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Format:   %s\n", summary.Format)
	fmt.Fprintf(out, "Tracks:   %d\n", summary.TrackCount)
	fmt.Fprintf(out, "Division: %s\n", summary.Division)
	if summary.BPM > 0 {
		fmt.Fprintf(out, "Tempo:    %.2f BPM\n", summary.BPM)
	}
	for _, t := range summary.Tracks {
		fmt.Fprintf(out, "  #%d %q: %d events (%d channel, %d meta, %d sysex), %d ticks\n",
			t.Index, t.Name, t.Events, t.Channel, t.Meta, t.SysEx, t.Duration)
	}
	if len(summary.Unknown) > 0 {
		fmt.Fprintf(out, "Unknown:  %s\n", strings.Join(summary.Unknown, ", "))
	}
	if len(summary.Manufacturers) > 0 {
		fmt.Fprintf(out, "SysEx:    %s\n", strings.Join(summary.Manufacturers, ", "))
	}
	return nil
}

func runConvert(cmd *cobra.Command, args []string) error {
	input := args[0]
	conv := converter.New(opts)

	fmt.Fprintf(cmd.OutOrStdout(), "Converting %s -> %s\n", input, outputFile)
	if err := conv.ConvertFile(input, outputFile); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), "Conversion complete!")
	return nil
}

func runNormalize(cmd *cobra.Command, args []string) error {
	input := args[0]
	return convertData(cmd.OutOrStdout(), input, getOutputPath(input, ".normalized.mid"), converter.FormatMIDI, converter.FormatMIDI)
}

func convertData(w io.Writer, input, output string, from, to converter.Format) error {
	data, err := os.ReadFile(input)
	if err != nil {
		return err
	}

	result, err := converter.New(opts).Convert(data, from, to)
	if err != nil {
		return err
	}

	if err := os.WriteFile(output, result, 0644); err != nil {
		return err
	}

	fmt.Fprintf(w, "Converted %s -> %s\n", input, output)
	return nil
}

func runVerify(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(args[0])
	if err != nil {
		return err
	}
	report, err := converter.New(opts).Verify(data)
	if err != nil {
		return err
	}
	for _, t := range report.Tracks {
		logger.Debug("track", "index", t.Index, "ours", t.Ours, "gomidi", t.Gomidi)
	}
	if !report.OK {
		return fmt.Errorf("decoders disagree on %s", args[0])
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s: %d tracks agree with gomidi\n", args[0], len(report.Tracks))
	return nil
}

func runTUI(cmd *cobra.Command, args []string) error {
	// The alt screen owns the terminal.
	tuiOpts := opts
	tuiOpts.Logger = nil
	return tui.Run(tuiOpts)
}

func runServe(cmd *cobra.Command, args []string) error {
	port := cfg.Server.Port
	if serverPort != 0 {
		port = serverPort
	}
	logger.Info("starting API server", "port", port)
	return api.StartServer(port, opts)
}

func runConfig(cmd *cobra.Command, args []string) error {
	path := configFile
	if path == "" {
		var err error
		if path, err = config.ConfigPath(); err != nil {
			return err
		}
	}
	if err := cfg.SaveTo(path); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
	return nil
}
