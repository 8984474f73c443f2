package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/seekerror/logw"

	"github.com/wyvern-chess/wyvern/pkg/engine"
	"github.com/wyvern-chess/wyvern/pkg/engine/console"
	"github.com/wyvern-chess/wyvern/pkg/engine/uci"
)

var (
	hash  = flag.Uint("hash", 64, "Transposition table size in MB (zero disables it)")
	noise = flag.Uint("noise", 10, "Evaluation noise in millipawns (zero if deterministic)")
	book  = flag.String("book", "", "Path to a newline-separated opening book file")
)

func init() {
	flag.Usage = func() {
		fmt.Fprint(os.Stderr, `usage: wyvern [options]

WYVERN is a UCI chess engine.
Options:
`)
		flag.PrintDefaults()
	}
}

func main() {
	flag.Parse()
	ctx := context.Background()

	opts := []engine.Option{
		engine.WithOptions(engine.Options{Hash: *hash, Noise: *noise}),
	}
	if *book != "" {
		b, err := loadBook(*book)
		if err != nil {
			logw.Exitf(ctx, "Failed to load book %v: %v", *book, err)
		}
		opts = append(opts, engine.WithBook(b))
	}

	e := engine.New(ctx, "wyvern", "the wyvern authors", opts...)

	in := engine.ReadStdinLines(ctx)
	switch <-in {
	case uci.ProtocolName:
		driver, out := uci.NewDriver(ctx, e, in)
		go engine.WriteStdoutLines(ctx, out)

		<-driver.Closed()

	case console.ProtocolName:
		driver, out := console.NewDriver(ctx, e, in)
		go engine.WriteStdoutLines(ctx, out)

		<-driver.Closed()

	default:
		flag.Usage()
		logw.Exitf(ctx, "Protocol not supported")
	}
}

func loadBook(path string) (engine.Book, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var lines []engine.Line
	for _, raw := range strings.Split(string(data), "\n") {
		raw = strings.TrimSpace(raw)
		if raw == "" || strings.HasPrefix(raw, "#") {
			continue
		}
		lines = append(lines, engine.Line(strings.Fields(raw)))
	}
	return engine.NewBook(lines)
}
