package main

import (
	"context"
	"fmt"
	"go/format"
	"log"
	"os"
	"time"

	"github.com/delaneyj/signalgraph/cmd/codegen/templates"
	"github.com/urfave/cli/v3"
)

const (
	genericParamCountKey = "count"
	outputKey            = "out"
)

func main() {
	cmd := &cli.Command{
		Name:  "generate",
		Usage: "Generate the typed Watch helpers for the reactive package",
		Flags: []cli.Flag{
			&cli.UintFlag{
				Name:  genericParamCountKey,
				Usage: "Highest number of sources a typed Watch takes",
				Value: 4,
			},
			&cli.StringFlag{
				Name:  outputKey,
				Usage: "File to write the generated code to",
				Value: "reactive/watch_generated.go",
			},
		},
		Action: generate,
	}
	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}

func generate(ctx context.Context, cmd *cli.Command) error {
	start := time.Now()
	log.Printf("Codegen for reactive started !")
	defer func() {
		log.Printf("Codegen for reactive finished in %v", time.Since(start))
	}()

	genericParamCount := int(cmd.Uint(genericParamCountKey))
	if genericParamCount < 1 {
		return fmt.Errorf("--%s must be at least 1", genericParamCountKey)
	}
	out := cmd.String(outputKey)

	contents, err := render(genericParamCount)
	if err != nil {
		return err
	}
	log.Printf("Writing %d Watch helpers to %s", genericParamCount, out)
	return os.WriteFile(out, contents, 0644)
}

func render(genericParamCount int) ([]byte, error) {
	formatted, err := format.Source([]byte(templates.WatchGen(genericParamCount)))
	if err != nil {
		return nil, fmt.Errorf("formatting generated code: %w", err)
	}
	return formatted, nil
}
