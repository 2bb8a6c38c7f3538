package main

import (
	"flag"
	"fmt"
	"image/png"
	"os"

	"github.com/sneedgroup-holder/wink-browser/pkg/diag"
	"github.com/sneedgroup-holder/wink-browser/pkg/paint"
	"github.com/sneedgroup-holder/wink-browser/pkg/pipeline"
	"github.com/sneedgroup-holder/wink-browser/pkg/resource"
)

func main() {
	width := flag.Int("w", 800, "viewport width in pixels")
	output := flag.String("o", "output.png", "output PNG file path")
	rules := flag.String("filter", "", "content filter rule file")
	font := flag.String("font", "", "TTF font file for text rendering")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: winkshot [flags] <url-or-file>\n\nFlags:\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() < 1 {
		flag.Usage()
		os.Exit(1)
	}
	target := flag.Arg(0)

	var filter resource.Filter
	if *rules != "" {
		src, err := os.ReadFile(*rules)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error reading filter rules: %v\n", err)
			os.Exit(1)
		}
		list := resource.ParseRuleList(string(src))
		fmt.Fprintf(os.Stderr, "Loaded %d filter rules\n", list.Len())
		filter = list
	}

	sink := diag.NewDevelopmentSink()
	defer sink.Sync()

	doc := pipeline.New(pipeline.Config{
		ViewportWidth: float64(*width),
		Fetcher:       resource.NewHTTPFetcher(""),
		Filter:        filter,
		Sink:          sink,
		FontPath:      *font,
	})

	if resource.IsNetworkURL(target) {
		fmt.Fprintf(os.Stderr, "Fetching %s...\n", target)
		if err := doc.Load(target); err != nil {
			fmt.Fprintf(os.Stderr, "Error loading page: %v\n", err)
			os.Exit(1)
		}
	} else {
		body, err := os.ReadFile(target)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error reading file: %v\n", err)
			os.Exit(1)
		}
		doc.Write(body)
		if err := doc.Finish(); err != nil {
			fmt.Fprintf(os.Stderr, "Error rendering: %v\n", err)
			os.Exit(1)
		}
	}
	doc.LoadImages()

	list := doc.Snapshot()
	fmt.Fprintf(os.Stderr, "Rendering %dx%d...\n", list.Width, list.Height)
	raster := paint.NewRasterizer()
	raster.FontPath = *font
	img := raster.Rasterize(list)

	f, err := os.Create(*output)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating output file: %v\n", err)
		os.Exit(1)
	}
	defer f.Close()

	if err := png.Encode(f, img); err != nil {
		fmt.Fprintf(os.Stderr, "Error encoding PNG: %v\n", err)
		os.Exit(1)
	}

	fmt.Fprintf(os.Stderr, "Saved to %s\n", *output)
}
