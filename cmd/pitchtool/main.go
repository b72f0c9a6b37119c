// Command pitchtool inspects, analyzes, and pitch-corrects mono WAV
// recordings.
//
// Usage:
//
//	pitchtool <command> [flags] <args>
//
// Commands:
//
//	info     print the WAV header of a file
//	analyze  detect the fundamental pitch of a recording
//	shift    resynthesize a recording at a new pitch
//	tune     pull a recording onto the nearest octave of a reference note
//	tone     write a deterministic sine tone for pipeline checks
//
// Examples:
//
//	pitchtool info take1.wav
//	pitchtool analyze -at 500 take1.wav
//	pitchtool shift -semitones 3 -engine psola in.wav out.wav
//	pitchtool tune -ref 440 in.wav out.wav
//	pitchtool tone -freq 440 -duration 2000 tone.wav
package main

import (
	"flag"
	"fmt"
	"math"
	"os"
	"strings"
	"text/tabwriter"

	tuner "github.com/cwbudde/algo-tuner"
	"github.com/cwbudde/algo-tuner/audio"
	"github.com/cwbudde/algo-tuner/dsp/core"
	"github.com/cwbudde/algo-tuner/dsp/signal"
	"github.com/cwbudde/algo-tuner/formats/wav"
	"github.com/cwbudde/algo-tuner/measure/pitch"
	"github.com/cwbudde/algo-tuner/shift"
	"github.com/cwbudde/algo-tuner/tune"
)

func main() {
	flag.Usage = usage
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		usage()
		os.Exit(2)
	}

	cmd, rest := args[0], args[1:]
	switch cmd {
	case "info":
		runInfo(rest)
	case "analyze":
		runAnalyze(rest)
	case "shift":
		runShift(rest)
	case "tune":
		runTune(rest)
	case "tone":
		runTone(rest)
	default:
		fmt.Fprintf(os.Stderr, "error: unknown command %q\n\n", cmd)
		usage()
		os.Exit(2)
	}
}

func usage() {
	fmt.Fprintf(os.Stderr, "Usage: pitchtool <command> [flags] <args>\n\n")
	fmt.Fprintf(os.Stderr, "Inspects, analyzes, and pitch-corrects mono WAV recordings.\n\n")
	fmt.Fprintf(os.Stderr, "Commands:\n")
	fmt.Fprintf(os.Stderr, "  info     print the WAV header of a file\n")
	fmt.Fprintf(os.Stderr, "  analyze  detect the fundamental pitch of a recording\n")
	fmt.Fprintf(os.Stderr, "  shift    resynthesize a recording at a new pitch\n")
	fmt.Fprintf(os.Stderr, "  tune     pull a recording onto the nearest octave of a reference note\n")
	fmt.Fprintf(os.Stderr, "  tone     write a deterministic sine tone for pipeline checks\n\n")
	fmt.Fprintf(os.Stderr, "Run 'pitchtool <command> -h' for command flags.\n\n")
	fmt.Fprintf(os.Stderr, "Examples:\n")
	fmt.Fprintf(os.Stderr, "  pitchtool info take1.wav\n")
	fmt.Fprintf(os.Stderr, "  pitchtool analyze -at 500 take1.wav\n")
	fmt.Fprintf(os.Stderr, "  pitchtool shift -semitones 3 -engine psola in.wav out.wav\n")
	fmt.Fprintf(os.Stderr, "  pitchtool tune -ref 440 in.wav out.wav\n")
	fmt.Fprintf(os.Stderr, "  pitchtool tone -freq 440 -duration 2000 tone.wav\n")
}

func fail(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "error: "+format+"\n", args...)
	os.Exit(1)
}

// flushTable renders tab-separated rows through a tabwriter to stdout.
func flushTable(rows string) {
	tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	if _, err := fmt.Fprint(tw, rows); err != nil {
		fail("failed to write output: %v", err)
	}
	if err := tw.Flush(); err != nil {
		fail("failed to flush output: %v", err)
	}
}

func runInfo(args []string) {
	fs := flag.NewFlagSet("info", flag.ExitOnError)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: pitchtool info <file.wav>\n\n")
		fmt.Fprintf(os.Stderr, "Prints the parsed WAV header of a file.\n")
	}
	_ = fs.Parse(args)
	if fs.NArg() != 1 {
		fs.Usage()
		os.Exit(2)
	}

	f, err := os.Open(fs.Arg(0))
	if err != nil {
		fail("%v", err)
	}
	defer f.Close()

	hdr, err := wav.ReadHeader(f)
	if err != nil {
		fail("%s: %v", fs.Arg(0), err)
	}

	encName := "unsupported"
	if enc, ok := hdr.Encoding(); ok {
		encName = enc.String()
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Format\t%d (%s)\n", hdr.Format, encName)
	fmt.Fprintf(&b, "Channels\t%d\n", hdr.Channels)
	fmt.Fprintf(&b, "Sample rate\t%d Hz\n", hdr.SampleRate)
	fmt.Fprintf(&b, "Byte rate\t%d\n", hdr.ByteRate)
	fmt.Fprintf(&b, "Block align\t%d\n", hdr.BlockAlign)
	fmt.Fprintf(&b, "Bits per sample\t%d\n", hdr.BitsPerSample)
	fmt.Fprintf(&b, "Data bytes\t%d\n", hdr.DataBytes)
	fmt.Fprintf(&b, "Frames\t%d\n", hdr.Frames())
	if hdr.SampleRate > 0 {
		fmt.Fprintf(&b, "Duration\t%.3f s\n", float64(hdr.Frames())/float64(hdr.SampleRate))
	}
	flushTable(b.String())
}

func runAnalyze(args []string) {
	fs := flag.NewFlagSet("analyze", flag.ExitOnError)
	start := fs.Int("start", -1, "analysis start in samples, -1 scans past leading silence")
	window := fs.Int("window", 0, "analysis window in samples, 0 uses the detector default")
	at := fs.Int("at", -1, "analysis start in milliseconds, overrides -start when set")
	duration := fs.Int("duration", 0, "analysis window in milliseconds, used with -at")
	threshold := fs.Float64("threshold", pitch.DefaultThreshold, "detection strictness in (0, 1)")
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: pitchtool analyze [flags] <file.wav>\n\n")
		fmt.Fprintf(os.Stderr, "Detects the fundamental pitch of one analysis window.\n\n")
		fmt.Fprintf(os.Stderr, "Flags:\n")
		fs.PrintDefaults()
	}
	_ = fs.Parse(args)
	if fs.NArg() != 1 {
		fs.Usage()
		os.Exit(2)
	}

	clip, err := tuner.LoadAudio(fs.Arg(0))
	if err != nil {
		fail("%s: %v", fs.Arg(0), err)
	}

	var res tuner.PitchResult
	if *at >= 0 {
		res = tuner.DetectPitchAtTime(clip, *at, *duration, *threshold)
	} else {
		res = tuner.DetectPitch(clip, *start, *window, *threshold)
	}

	analyzed := clip.Samples[res.ActualStartSample : res.ActualStartSample+res.BufferSize]

	var b strings.Builder
	fmt.Fprintf(&b, "File\t%s\n", fs.Arg(0))
	fmt.Fprintf(&b, "Window\t%d samples at %d\n", res.BufferSize, res.ActualStartSample)
	fmt.Fprintf(&b, "Peak\t%.1f dBFS\n", core.LinearToDB(signal.Peak(analyzed)))
	if res.Detected() {
		midi := tune.MidiNote(res.Pitch)
		cents := 1200 * math.Log2(res.Pitch/tune.NoteFrequency(midi))
		fmt.Fprintf(&b, "Pitch\t%.2f Hz\n", res.Pitch)
		fmt.Fprintf(&b, "Note\t%s (midi %d, %+.1f cents)\n", tune.NoteName(midi), midi, cents)
		fmt.Fprintf(&b, "Confidence\t%.3f\n", res.Confidence)
	} else {
		fmt.Fprintf(&b, "Pitch\tnot detected\n")
	}
	flushTable(b.String())
}

func runShift(args []string) {
	fs := flag.NewFlagSet("shift", flag.ExitOnError)
	ratio := fs.Float64("ratio", math.NaN(), "pitch ratio, clamped to [0.5, 2.0]")
	semitones := fs.Float64("semitones", math.NaN(), "pitch offset in semitones, alternative to -ratio")
	engineName := fs.String("engine", "vocoder", "shifting engine: vocoder or psola")
	encodingName := fs.String("encoding", "pcm16", "output encoding: pcm16 or float32")
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: pitchtool shift [flags] <in.wav> <out.wav>\n\n")
		fmt.Fprintf(os.Stderr, "Resynthesizes a recording at a new pitch without changing duration.\n\n")
		fmt.Fprintf(os.Stderr, "Flags:\n")
		fs.PrintDefaults()
	}
	_ = fs.Parse(args)
	if fs.NArg() != 2 {
		fs.Usage()
		os.Exit(2)
	}

	if math.IsNaN(*ratio) == math.IsNaN(*semitones) {
		fail("exactly one of -ratio or -semitones must be set")
	}
	r := *ratio
	if math.IsNaN(r) {
		r = tune.SemitonesToRatio(*semitones)
	}

	engine, err := shift.ParseEngine(*engineName)
	if err != nil {
		fail("%v", err)
	}
	enc, err := wav.ParseEncoding(*encodingName)
	if err != nil {
		fail("%v", err)
	}

	clip, err := tuner.LoadAudio(fs.Arg(0))
	if err != nil {
		fail("%s: %v", fs.Arg(0), err)
	}

	out, err := tuner.PitchShift(clip, r, engine)
	if err != nil {
		fail("%v", err)
	}

	if err := tuner.SaveAudio(fs.Arg(1), out, enc); err != nil {
		fail("%s: %v", fs.Arg(1), err)
	}

	effective := min(max(r, shift.MinRatio), shift.MaxRatio)
	fmt.Printf("wrote %s: %d samples at %d Hz, ratio %.4f (%s)\n",
		fs.Arg(1), out.Len(), out.SampleRate, effective, engine)
}

func runTune(args []string) {
	fs := flag.NewFlagSet("tune", flag.ExitOnError)
	ref := fs.Float64("ref", 440, "reference frequency in Hz")
	engineName := fs.String("engine", "vocoder", "shifting engine: vocoder or psola")
	threshold := fs.Float64("threshold", pitch.DefaultThreshold, "detection strictness in (0, 1)")
	encodingName := fs.String("encoding", "pcm16", "output encoding: pcm16 or float32")
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: pitchtool tune [flags] <in.wav> <out.wav>\n\n")
		fmt.Fprintf(os.Stderr, "Detects the pitch of a recording and pulls it onto the nearest\n")
		fmt.Fprintf(os.Stderr, "octave recurrence of the reference note.\n\n")
		fmt.Fprintf(os.Stderr, "Flags:\n")
		fs.PrintDefaults()
	}
	_ = fs.Parse(args)
	if fs.NArg() != 2 {
		fs.Usage()
		os.Exit(2)
	}

	engine, err := shift.ParseEngine(*engineName)
	if err != nil {
		fail("%v", err)
	}
	enc, err := wav.ParseEncoding(*encodingName)
	if err != nil {
		fail("%v", err)
	}

	clip, err := tuner.LoadAudio(fs.Arg(0))
	if err != nil {
		fail("%s: %v", fs.Arg(0), err)
	}

	res := tuner.DetectPitch(clip, -1, 0, *threshold)
	if !res.Detected() {
		fail("%s: no pitch detected", fs.Arg(0))
	}

	ratio := tuner.ComputeShiftRatio(res.Pitch, *ref)
	target := tune.TargetFrequency(res.Pitch, *ref)

	out, err := tuner.PitchShift(clip, ratio, engine)
	if err != nil {
		fail("%v", err)
	}
	if err := tuner.SaveAudio(fs.Arg(1), out, enc); err != nil {
		fail("%s: %v", fs.Arg(1), err)
	}

	if target > 0 {
		fmt.Printf("detected %.2f Hz, target %.2f Hz (%s), ratio %.4f\n",
			res.Pitch, target, tune.NoteName(tune.MidiNote(target)), ratio)
	} else {
		fmt.Printf("detected %.2f Hz, no playable target, ratio %.4f\n", res.Pitch, ratio)
	}
	fmt.Printf("wrote %s: %d samples at %d Hz (%s)\n", fs.Arg(1), out.Len(), out.SampleRate, engine)
}

func runTone(args []string) {
	fs := flag.NewFlagSet("tone", flag.ExitOnError)
	freq := fs.Float64("freq", 440, "tone frequency in Hz")
	rate := fs.Int("rate", 48000, "sample rate in Hz")
	duration := fs.Int("duration", 1000, "tone length in milliseconds")
	amplitude := fs.Float64("amplitude", 0.8, "peak amplitude in [0, 1]")
	encodingName := fs.String("encoding", "pcm16", "output encoding: pcm16 or float32")
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: pitchtool tone [flags] <out.wav>\n\n")
		fmt.Fprintf(os.Stderr, "Writes a deterministic sine tone for pipeline checks.\n\n")
		fmt.Fprintf(os.Stderr, "Flags:\n")
		fs.PrintDefaults()
	}
	_ = fs.Parse(args)
	if fs.NArg() != 1 {
		fs.Usage()
		os.Exit(2)
	}

	enc, err := wav.ParseEncoding(*encodingName)
	if err != nil {
		fail("%v", err)
	}

	gen := signal.NewGenerator(core.WithSampleRate(float64(*rate)))
	samples, err := gen.Sine(*freq, *amplitude, *rate * *duration / 1000)
	if err != nil {
		fail("%v", err)
	}

	clip := &audio.Clip{Samples: samples, SampleRate: *rate}
	if err := tuner.SaveAudio(fs.Arg(0), clip, enc); err != nil {
		fail("%s: %v", fs.Arg(0), err)
	}

	fmt.Printf("wrote %s: %.1f Hz, %d samples at %d Hz\n", fs.Arg(0), *freq, clip.Len(), *rate)
}
