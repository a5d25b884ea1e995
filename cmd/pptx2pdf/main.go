// Command pptx2pdf converts a PowerPoint file to a PDF document.
package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/411sst/SkillStack/convert"
)

func main() {
	dpi := flag.Float64("dpi", 0, "raster resolution (default 96)")
	out := flag.String("o", "", "output path (default input with .pdf extension)")
	quiet := flag.Bool("q", false, "suppress progress output")
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: pptx2pdf [flags] input.pptx")
		flag.PrintDefaults()
		os.Exit(2)
	}
	src := flag.Arg(0)
	dst := *out
	if dst == "" {
		dst = strings.TrimSuffix(src, ".pptx") + ".pdf"
	}

	data, err := os.ReadFile(src)
	if err != nil {
		fmt.Fprintf(os.Stderr, "read: %v\n", err)
		os.Exit(1)
	}

	opts := convert.Options{DPI: *dpi}
	if !*quiet {
		opts.Progress = func(pct int) {
			fmt.Fprintf(os.Stderr, "\rconverting... %3d%%", pct)
			if pct == 100 {
				fmt.Fprintln(os.Stderr)
			}
		}
	}

	pdf, err := convert.ToPDF(data, opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "convert: %v\n", err)
		os.Exit(1)
	}

	if err := os.WriteFile(dst, pdf, 0644); err != nil {
		fmt.Fprintf(os.Stderr, "write: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Wrote %s\n", dst)
}
