package cli

import (
	"fmt"
	"github.com/spf13/cobra"
	"passguard/internal/util"
	"passguard/pkg/generator"
	"passguard/pkg/strength"
)

var (
	generateCmd = &cobra.Command{
		Use:   "generate",
		Short: "Generate secure random passwords",
		RunE: func(cmd *cobra.Command, args []string) error {
			return generateCommand()
		},
	}
)

func init() {
	generateCmd.Flags().IntVarP(&genLength, "length", "n", 16, "Password length")
	generateCmd.Flags().IntVarP(&genCount, "count", "c", 1, "Number of passwords to generate")
	generateCmd.Flags().BoolVar(&noUppercase, "no-uppercase", false, "Exclude uppercase letters")
	generateCmd.Flags().BoolVar(&noDigits, "no-digits", false, "Exclude digits")
	generateCmd.Flags().BoolVar(&noSymbols, "no-symbols", false, "Exclude symbols")

	rootCmd.AddCommand(generateCmd)
}

func generateCommand() error {
	util.ApplyCliSettings(verbose, profile, pprofPort)

	gen := generator.New()
	cfg := generator.Config{
		Length: genLength,
		Classes: generator.ClassSet{
			Lower:  true,
			Upper:  !noUppercase,
			Digit:  !noDigits,
			Symbol: !noSymbols,
		},
	}

	for i := 0; i < genCount; i++ {
		password, err := gen.Generate(cfg)
		if err != nil {
			return err
		}

		report := strength.Analyze(password)
		// Plain stdout, the password is the output of this command.
		fmt.Printf("%s  (%s, %.1f bits)\n", password, report.Label, report.Entropy)
	}

	return nil
}
