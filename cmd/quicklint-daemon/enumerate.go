package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/skaji/quicklint-daemon/internal/schedule"
)

func newEnumerateCommand() *cobra.Command {
	var flipsPerLap int
	var maxLaps int
	var statePath string

	cmd := &cobra.Command{
		Use:   "enumerate",
		Short: "Drive the exhaustive schedule enumerator and print the schedules it explores",
		RunE: func(cmd *cobra.Command, args []string) error {
			enumerator := schedule.New()
			if statePath != "" {
				if restored, err := schedule.LoadState(statePath); err == nil {
					enumerator = restored
				}
			}

			for lap := 1; !enumerator.IsDone() && lap <= maxLaps; lap++ {
				flips := make([]bool, flipsPerLap)
				for i := range flips {
					flips[i] = enumerator.NextCoinFlip()
				}
				fmt.Printf("%s %s\n", color.CyanString("lap %4d:", lap), formatFlips(flips))
				enumerator.Lap()
			}

			if enumerator.IsDone() {
				fmt.Println(color.GreenString("enumeration exhausted"))
			} else {
				fmt.Println(color.YellowString("stopped after %d laps (not exhausted)", maxLaps))
			}

			if statePath != "" {
				return enumerator.SaveState(statePath)
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&flipsPerLap, "flips", 3, "number of coin flips to draw per lap")
	cmd.Flags().IntVar(&maxLaps, "max-laps", 64, "stop after this many laps even if not exhausted")
	cmd.Flags().StringVar(&statePath, "state", "", "msgpack file to resume enumeration position from and save it to")
	return cmd
}

func formatFlips(flips []bool) string {
	out := make([]byte, len(flips))
	for i, f := range flips {
		if f {
			out[i] = 'T'
		} else {
			out[i] = 'F'
		}
	}
	return string(out)
}
