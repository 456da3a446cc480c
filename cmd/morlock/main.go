package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/seekerror/logw"

	"github.com/umer-fa/morlock-don/pkg/engine"
	"github.com/umer-fa/morlock-don/pkg/uci"
)

var (
	hash    = flag.Uint("hash", 16, "Transposition table size, MB")
	threads = flag.Uint("threads", 1, "Number of search worker threads")
)

func init() {
	flag.Usage = func() {
		fmt.Fprint(os.Stderr, `usage: morlock [options]

morlock is a UCI chess engine.
Options:
`)
		flag.PrintDefaults()
	}
}

func main() {
	flag.Parse()
	ctx := context.Background()

	e := engine.New(ctx, "morlock", "umer-fa",
		engine.WithOptions(engine.Options{Hash: *hash, Threads: *threads, MoveOverhead: 50}))

	in := engine.ReadStdinLines(ctx)
	switch <-in {
	case uci.ProtocolName:
		driver, out := uci.NewDriver(ctx, e, in)
		go engine.WriteStdoutLines(ctx, out)
		<-driver.Closed()

	default:
		flag.Usage()
		logw.Exitf(ctx, "protocol not supported")
	}
}
