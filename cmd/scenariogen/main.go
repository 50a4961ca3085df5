// Package main implements scenariogen, an offline tool for authoring and
// validating scenario JSON files before handing them to the server's
// POST /games endpoint.
package main

import (
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := Execute(); err != nil {
		log.Fatal(err)
	}
}

func Execute() error {
	cmdRoot.AddCommand(cmdValidate)

	cmdRoot.AddCommand(cmdNew)
	cmdNew.Flags().StringVar(&argsNew.out, "out", "scenario.json", "path to write the generated scenario")
	cmdNew.Flags().StringVar(&argsNew.name, "name", "Untitled Action", "scenario name")
	cmdNew.Flags().IntVar(&argsNew.mapWidth, "map-width", 20, "map width in hexes")
	cmdNew.Flags().IntVar(&argsNew.mapHeight, "map-height", 20, "map height in hexes")
	cmdNew.Flags().StringVar(&argsNew.wind, "wind", "N", "wind direction (N, NE, E, SE, S, SW, W, NW)")
	cmdNew.Flags().StringVar(&argsNew.victory, "victory", "first_struck", "victory condition (first_struck, score_after_turns, first_side_struck_two_ships)")
	cmdNew.Flags().IntVar(&argsNew.turnLimit, "turn-limit", 0, "turn limit (required for score_after_turns)")

	return cmdRoot.Execute()
}

var cmdRoot = &cobra.Command{
	Use:   "scenariogen",
	Short: "Author and validate wsim scenario files",
	Long:  `scenariogen authors and validates the scenario JSON files the wsim server builds games from.`,
}

func errExit(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
