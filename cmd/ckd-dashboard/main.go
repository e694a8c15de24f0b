// ckd-dashboard is the standalone interactive variant of the screening
// system: a terminal UI over the extended 24-parameter model, with
// slider-style widgets, a predict trigger, and a feature-importance chart
// when the loaded artifact carries importances. It talks to no server and
// persists nothing.
package main

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/pflag"

	"ckd-screening-server/internal/dashboard"
	"ckd-screening-server/internal/inference"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var artifactPath string

	flagSet := pflag.NewFlagSet("ckd-dashboard", pflag.ContinueOnError)
	flagSet.StringVar(&artifactPath, "model", "models/catboost_kidney_model.json", "path to the model artifact")
	flagSet.BoolP("help", "h", false, "show help")
	if err := flagSet.Parse(os.Args[1:]); err != nil {
		return err
	}
	if help, _ := flagSet.GetBool("help"); help {
		flagSet.PrintDefaults()
		return nil
	}

	model, err := inference.LoadModel(artifactPath)
	if err != nil {
		return err
	}

	program := tea.NewProgram(dashboard.New(model), tea.WithAltScreen())
	_, err = program.Run()
	return err
}
