package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/phanxgames/motion"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate <definitions>",
	Short: "Check a definitions file",
	Long: `Parses a definitions file, validates every transition and easing and lists
the variant tables it declares. With --script, the script is checked against
the definitions too.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		script, _ := cmd.Flags().GetString("script")
		return runValidate(cmd.OutOrStdout(), args[0], script)
	},
}

func init() {
	validateCmd.Flags().String("script", "", "Script file to check against the definitions")
	rootCmd.AddCommand(validateCmd)
}

func runValidate(out io.Writer, defsPath, scriptPath string) error {
	defs, err := motion.LoadDefinitionsFile(defsPath)
	if err != nil {
		return err
	}
	for _, name := range defs.Tables() {
		tbl, _ := defs.Table(name)
		fmt.Fprintf(out, "%s: %s\n", name, strings.Join(tbl.Names(), ", "))
	}
	if scriptPath != "" {
		if _, err := motion.LoadScriptFile(scriptPath, defs); err != nil {
			return err
		}
		fmt.Fprintf(out, "script %s ok\n", scriptPath)
	}
	return nil
}
