package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ironhull/wsim/internal/service"
)

var argsNew struct {
	out       string
	name      string
	mapWidth  int
	mapHeight int
	wind      string
	victory   string
	turnLimit int
}

var cmdNew = &cobra.Command{
	Use:   "new",
	Short: "generate a starter scenario file",
	Long:  `Write a two-frigate duel scenario template to disk, ready to edit by hand.`,
	Run: func(cmd *cobra.Command, args []string) {
		sc := service.Scenario{
			Name:             argsNew.name,
			MapWidth:         argsNew.mapWidth,
			MapHeight:        argsNew.mapHeight,
			Wind:             argsNew.wind,
			VictoryCondition: argsNew.victory,
			TurnLimit:        argsNew.turnLimit,
			Ships: []service.ScenarioShip{
				{
					Name:            "HMS Surprise",
					Side:            "P1",
					BowCol:          2,
					BowRow:          argsNew.mapHeight / 2,
					Facing:          "E",
					BattleSailSpeed: 3,
					GunsL:           14,
					GunsR:           14,
					CarronadesL:     2,
					CarronadesR:     2,
					Hull:            20,
					Rigging:         12,
					Crew:            200,
					Marines:         30,
				},
				{
					Name:            "Acheron",
					Side:            "P2",
					BowCol:          argsNew.mapWidth - 3,
					BowRow:          argsNew.mapHeight / 2,
					Facing:          "W",
					BattleSailSpeed: 3,
					GunsL:           14,
					GunsR:           14,
					CarronadesL:     2,
					CarronadesR:     2,
					Hull:            20,
					Rigging:         12,
					Crew:            200,
					Marines:         30,
				},
			},
		}

		if _, err := sc.Build(); err != nil {
			errExit("error: generated scenario does not build: %v", err)
		}

		data, err := json.MarshalIndent(sc, "", "  ")
		if err != nil {
			errExit("error: %v", err)
		}
		if err := os.WriteFile(argsNew.out, data, 0644); err != nil {
			errExit("error: %v", err)
		}
		fmt.Printf("wrote %s\n", argsNew.out)
	},
}
