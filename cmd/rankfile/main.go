// Command rankfile runs a two-player chess rules engine behind a line-based
// console protocol on stdin/stdout.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/kallisti-chess/rankfile/pkg/engine"
	"github.com/kallisti-chess/rankfile/pkg/engine/console"
)

func init() {
	flag.Usage = func() {
		fmt.Fprint(os.Stderr, `usage: rankfile [options]

RANKFILE is a two-player chess rules engine driven over a line-based
console protocol.
Options:
`)
		flag.PrintDefaults()
	}
}

func main() {
	flag.Parse()
	ctx := context.Background()

	e := engine.New(ctx, "rankfile", "kallisti-chess")

	in := engine.ReadStdinLines(ctx)
	driver, out := console.NewDriver(ctx, e, in)
	go engine.WriteStdoutLines(ctx, out)

	<-driver.Closed()
}
