package main

import (
	"fmt"
	"log"

	"github.com/spf13/cobra"

	"github.com/ironhull/wsim/internal/service"
)

var cmdValidate = &cobra.Command{
	Use:   "validate <file>",
	Short: "validate a scenario file",
	Long:  `Load a scenario file and report whether it parses and builds a valid starting position.`,
	Run: func(cmd *cobra.Command, args []string) {
		if len(args) != 1 {
			log.Fatalf("error: expected exactly one scenario file\n")
		}
		sc, err := service.LoadScenarioFile(args[0])
		if err != nil {
			log.Fatalf("error: %v\n", err)
		}

		ships, err := sc.Build()
		if err != nil {
			log.Fatalf("error: %v\n", err)
		}

		p1, p2 := 0, 0
		for _, s := range ships {
			switch s.Side {
			case "P1":
				p1++
			case "P2":
				p2++
			}
		}
		if p1 == 0 || p2 == 0 {
			log.Fatalf("error: scenario %q has no ships on both sides (P1=%d, P2=%d)\n", sc.Name, p1, p2)
		}

		fmt.Printf("%q: %dx%d map, wind %s, %d ships (P1=%d, P2=%d), victory=%s\n",
			sc.Name, sc.MapWidth, sc.MapHeight, sc.Wind, len(ships), p1, p2, sc.VictoryCondition)
	},
}
