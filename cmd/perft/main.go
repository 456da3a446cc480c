// perft is a movegen debugging tool. See: https://www.chessprogramming.org/Perft_Results.
package main

import (
	"context"
	"flag"
	"fmt"
	"time"

	"github.com/seekerror/logw"

	"github.com/umer-fa/morlock-don/pkg/board"
	"github.com/umer-fa/morlock-don/pkg/board/fen"
)

var (
	depth     = flag.Int("depth", 4, "Search depth")
	position  = flag.String("fen", "", "Start position (default to standard)")
	divide    = flag.Bool("divide", false, "Divide counts by initial move")
	chess960  = flag.Bool("chess960", false, "Interpret castling letters as Chess960 Shredder-FEN")
)

func main() {
	ctx := context.Background()
	flag.Parse()

	if *position == "" {
		*position = fen.StartPos
	}

	pos, err := fen.Parse(*position, *chess960)
	if err != nil {
		logw.Exitf(ctx, "invalid fen %q: %v", *position, err)
	}

	for i := 1; i <= *depth; i++ {
		start := time.Now()
		nodes := perft(pos, i, *divide && i == *depth)
		duration := time.Since(start)
		fmt.Printf("perft,%v,%v,%v,%v\n", *position, i, nodes, duration.Microseconds())
	}
}

func perft(pos *board.Position, depth int, divideOutput bool) int64 {
	if depth == 0 {
		return 1
	}

	var nodes int64
	for _, m := range pos.GenerateLegal(nil) {
		pos.DoMove(m, pos.GivesCheck(m))
		count := perft(pos, depth-1, false)
		pos.UndoMove(m)

		if divideOutput {
			fmt.Printf("%v: %v\n", m, count)
		}
		nodes += count
	}
	return nodes
}
