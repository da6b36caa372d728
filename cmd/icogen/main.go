package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"

	"icon-server/internal/ico"
	"icon-server/internal/raster"
	"icon-server/pkg/config"

	"github.com/sirupsen/logrus"
)

func main() {
	in := flag.String("in", "", "SVG file to convert")
	out := flag.String("out", "favicon.ico", "ICO file to write")
	sizes := flag.String("sizes", "16,32,48", "comma separated icon sizes")
	supersample := flag.Int("supersample", 1, "render multiplier before downscaling (1-8)")
	verbose := flag.Bool("v", false, "log every rendered size")
	flag.Parse()

	logrus.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	if *verbose {
		logrus.SetLevel(logrus.DebugLevel)
	}

	if err := run(*in, *out, *sizes, *supersample); err != nil {
		logrus.WithError(err).Error("icogen failed")
		os.Exit(1)
	}
}

func run(in, out, sizeList string, supersample int) error {
	if in == "" {
		return fmt.Errorf("missing -in")
	}
	sizes, err := config.ParseSizes(sizeList)
	if err != nil {
		return err
	}
	data, err := os.ReadFile(in)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	p := &ico.Packager{
		Rasterizer: raster.NewSVG(&raster.Loader{}, supersample),
		OnRasterized: func(size, index, byteLen int) {
			logrus.WithFields(logrus.Fields{"size": size, "bytes": byteLen}).Debug("Rendered")
		},
	}
	icon, err := p.Pack(ctx, ico.Source{Data: data}, sizes)
	if err != nil {
		return err
	}

	if err := os.WriteFile(out, icon, 0644); err != nil {
		return err
	}
	logrus.WithFields(logrus.Fields{
		"out":   out,
		"sizes": sizes,
		"bytes": len(icon),
	}).Info("Icon written")
	return nil
}
