// Command fraudscan runs a single analysis from the command line and prints
// the result as JSON, for scripting and spot checks without the dashboard.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"image"
	"os"
	"strings"

	"github.com/wudi/fraudguard/docimage"
	"github.com/wudi/fraudguard/face"
	"github.com/wudi/fraudguard/face/goface"
	"github.com/wudi/fraudguard/identity"
	"github.com/wudi/fraudguard/ocr"
	_ "github.com/wudi/fraudguard/ocr/tesseract"
	"github.com/wudi/fraudguard/similarity"
	"github.com/wudi/fraudguard/transactions"
)

type options struct {
	mode       string
	langs      string
	faceModels string
	files      []string
}

func main() {
	opts, err := parseFlags()
	if err != nil {
		fmt.Fprintf(os.Stderr, "fraudscan: %v\n", err)
		os.Exit(2)
	}
	if err := run(opts); err != nil {
		fmt.Fprintf(os.Stderr, "fraudscan: %v\n", err)
		os.Exit(1)
	}
}

func parseFlags() (options, error) {
	var opts options
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage: fraudscan -mode <mode> [flags] <file> [file2]\n")
		fmt.Fprintf(flag.CommandLine.Output(), "Modes: forgery, signature, aadhaar, pan, face, transactions\n")
		flag.PrintDefaults()
	}
	flag.StringVar(&opts.mode, "mode", "", "analysis to run")
	flag.StringVar(&opts.langs, "langs", "eng", "comma-separated OCR language hints")
	flag.StringVar(&opts.faceModels, "face-models", "", "directory with the dlib face model files (face mode)")
	flag.Parse()
	if opts.mode == "" {
		return options{}, fmt.Errorf("-mode is required")
	}
	opts.files = flag.Args()
	return opts, nil
}

func run(opts options) error {
	ctx := context.Background()
	var result interface{}
	var err error
	switch opts.mode {
	case "forgery":
		result, err = compare(opts, docimage.DocumentSize, similarity.DocumentBand)
	case "signature":
		result, err = compare(opts, docimage.SignatureSize, similarity.SignatureBand)
	case "aadhaar", "pan":
		result, err = extract(ctx, opts)
	case "face":
		result, err = verifyFaces(ctx, opts)
	case "transactions":
		result, err = scanTransactions(opts)
	default:
		err = fmt.Errorf("unknown mode %q", opts.mode)
	}
	if err != nil {
		return err
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}

func compare(opts options, size int, band func(float64) similarity.Band) (interface{}, error) {
	if len(opts.files) != 2 {
		return nil, fmt.Errorf("%s mode needs exactly two files", opts.mode)
	}
	grays := make([]*image.Gray, 0, 2)
	for _, path := range opts.files {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		img, err := docimage.Decode(path, data)
		if err != nil {
			return nil, err
		}
		grays = append(grays, docimage.Normalize(img, size, size))
	}
	score, _, err := similarity.SSIM(grays[0], grays[1])
	if err != nil {
		return nil, err
	}
	return map[string]interface{}{
		"score": score,
		"band":  band(score).String(),
	}, nil
}

func extract(ctx context.Context, opts options) (interface{}, error) {
	if len(opts.files) != 1 {
		return nil, fmt.Errorf("%s mode needs exactly one file", opts.mode)
	}
	data, err := os.ReadFile(opts.files[0])
	if err != nil {
		return nil, err
	}
	img, err := docimage.Decode(opts.files[0], data)
	if err != nil {
		return nil, err
	}
	in, err := ocr.InputFromImage(opts.mode, img, ocr.WithLanguages(splitLangs(opts.langs)...))
	if err != nil {
		return nil, err
	}
	res, err := ocr.DefaultEngine().Recognize(ctx, in)
	if err != nil {
		return nil, err
	}
	out := map[string]interface{}{"text": res.PlainText}
	var match identity.Match
	var found bool
	if opts.mode == "aadhaar" {
		match, found = identity.BestAadhaar(res.PlainText)
	} else {
		match, found = identity.BestPAN(res.PlainText)
	}
	out["found"] = found
	if found {
		out["number"] = match.Value
		out["valid"] = match.Valid
	}
	return out, nil
}

func verifyFaces(ctx context.Context, opts options) (interface{}, error) {
	if len(opts.files) != 2 {
		return nil, fmt.Errorf("face mode needs an ID photo and a live photo")
	}
	if opts.faceModels == "" {
		return nil, fmt.Errorf("face mode needs -face-models")
	}
	eng, err := goface.New(opts.faceModels)
	if err != nil {
		return nil, err
	}
	defer eng.Close()

	idData, err := os.ReadFile(opts.files[0])
	if err != nil {
		return nil, err
	}
	liveData, err := os.ReadFile(opts.files[1])
	if err != nil {
		return nil, err
	}
	match, err := eng.Verify(ctx,
		face.Input{ID: "id-photo", Image: idData},
		face.Input{ID: "live-photo", Image: liveData})
	if err != nil {
		return nil, err
	}
	return match, nil
}

func scanTransactions(opts options) (interface{}, error) {
	if len(opts.files) != 1 {
		return nil, fmt.Errorf("transactions mode needs exactly one CSV file")
	}
	f, err := os.Open(opts.files[0])
	if err != nil {
		return nil, err
	}
	defer f.Close()
	set, err := transactions.ReadCSV(f)
	if err != nil {
		return nil, err
	}
	return transactions.DetectOutliers(set), nil
}

func splitLangs(s string) []string {
	var out []string
	for _, lang := range strings.Split(s, ",") {
		if lang = strings.TrimSpace(lang); lang != "" {
			out = append(out, lang)
		}
	}
	return out
}
