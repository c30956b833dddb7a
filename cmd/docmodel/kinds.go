package main

import (
	"github.com/spf13/cobra"

	"github.com/jward/docmodel"
)

var kindsCmd = &cobra.Command{
	Use:   "kinds",
	Short: "List the syntax kinds the converter dispatches on",
	Args:  cobra.NoArgs,
	RunE:  runKinds,
}

func runKinds(cmd *cobra.Command, args []string) error {
	reg := docmodel.New().RegisteredKinds()

	kinds := CLIKinds{TypeConverterPriorities: reg.TypeConverterPriorities}
	for _, k := range reg.Declarations {
		kinds.Declarations = append(kinds.Declarations, k.String())
	}
	for _, k := range reg.TypeNodes {
		kinds.TypeNodes = append(kinds.TypeNodes, k.String())
	}
	return outputResult(stdout, flagFormat, CLIResult{Command: "kinds", Results: kinds})
}
