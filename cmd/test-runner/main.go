// Package main - test-runner
// Executable to run the invariant soak outside of go test.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/MRamiBalles/DevLearnAcademy/internal/platform/logger"
	"github.com/MRamiBalles/DevLearnAcademy/test"
)

func main() {
	steps := flag.Int("steps", 100000, "random steps per seed")
	seed := flag.Int64("seed", time.Now().UnixNano(), "random seed")
	flag.Parse()

	fmt.Println("DEVLEARN ACADEMY - SOAK TEST")
	fmt.Printf("seed=%d steps=%d\n\n", *seed, *steps)

	soak, err := test.NewSoakTest(*seed, logger.NewLogger())
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	soak.RunTest(context.Background(), *steps)
	soak.Close()
	results := soak.GetResults()
	fmt.Print(test.Summary(results))

	for _, r := range results {
		if !r.Passed {
			os.Exit(1)
		}
	}
}
