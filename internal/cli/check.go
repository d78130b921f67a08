package cli

import (
	"bufio"
	"context"
	"errors"
	"github.com/manifoldco/promptui"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"os"
	"passguard/internal/util"
	"passguard/pkg/hibp"
	"passguard/pkg/strength"
	"strings"
)

var (
	checkCmd = &cobra.Command{
		Use:   "check [passwords...]",
		Short: "Check passwords against the Pwned Passwords breach corpus",
		Long: "Check passwords against haveibeenpwned.com using k-anonymity: only the first " +
			"5 characters of each password's SHA-1 hash are sent over the network.",
		Args: func(cmd *cobra.Command, args []string) error {
			if !interactive && passwordFile == "" {
				if err := cobra.MinimumNArgs(1)(cmd, args); err != nil {
					return err
				}
			}

			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return checkCommand(args)
		},
	}
)

//goland:noinspection GoUnhandledErrorResult
func init() {
	checkCmd.Flags().StringVarP(&passwordFile, "file", "f", "", "Read passwords from a file (one per line)")
	checkCmd.Flags().BoolVarP(&withStrength, "strength", "s", false, "Include offline strength analysis in the output")
	checkCmd.Flags().BoolVarP(&interactive, "interactive", "n", false, "Interactive mode.")
	checkCmd.Flags().BoolVar(&hashed, "hashed", false, "If the supplied passwords will be Hexadecimal SHA1 hashes or plain text strings.")

	rootCmd.AddCommand(checkCmd)
}

func checkCommand(args []string) error {
	util.ApplyCliSettings(verbose, profile, pprofPort)

	client := hibp.NewClient()

	if interactive {
		return runInteractiveSession(client)
	}

	passwords := append([]string(nil), args...)
	if passwordFile != "" {
		fromFile, err := readPasswordFile(passwordFile)
		if err != nil {
			return err
		}
		passwords = append(passwords, fromFile...)
	}

	for _, password := range passwords {
		if err := checkOne(client, password); err != nil {
			return err
		}
	}

	return nil
}

func readPasswordFile(fileName string) ([]string, error) {
	file, err := os.Open(fileName)
	if err != nil {
		return nil, err
	}

	defer func(file *os.File) {
		if err = file.Close(); err != nil {
			log.Error().Err(err).Msg("error closing passwords file")
		}
	}(file)

	var passwords []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		if line := strings.TrimSpace(scanner.Text()); line != "" {
			passwords = append(passwords, line)
		}
	}

	return passwords, scanner.Err()
}

func runInteractiveSession(client *hibp.Client) error {
	var label string
	if hashed {
		label = "SHA1 Hex hash"
	} else {
		label = "Password"
	}

	prompt := promptui.Prompt{
		Label: label,
		Validate: func(input string) error {
			if len(input) == 0 {
				return errors.New("please enter a valid password")
			}

			if hashed {
				if _, err := hibp.ParseDigest(input); err != nil {
					return err
				}
			}
			return nil
		},
	}

	if !hashed {
		prompt.Mask = '*'
	} else {
		log.Info().Msgf("Flag 'hashed' is set. Please use SHA1 Hashed passwords.")
	}

	log.Info().Msgf("Running interactive session. ^C to exit")
	for {
		result, err := prompt.Run()
		if err != nil {
			if err.Error() == "^C" || err.Error() == "^D" {
				log.Info().Msgf("Goodbye")
				return nil
			}
			return err
		}

		if err = checkOne(client, result); err != nil {
			log.Error().Err(err).Msg("Error during query")
		}
	}
}

func checkOne(client *hibp.Client, password string) error {
	var (
		result hibp.Result
		err    error
	)

	if hashed {
		var digest hibp.Digest
		if digest, err = hibp.ParseDigest(password); err != nil {
			return err
		}
		result, err = client.CheckDigest(context.Background(), digest)
	} else {
		result, err = client.CheckPassword(context.Background(), password)
	}
	if err != nil {
		return err
	}

	if result.Found {
		p := message.NewPrinter(language.English)
		log.Warn().Msgf("BREACHED. Password found %s times in known data breaches. Change it immediately", p.Sprintf("%d", result.Count))
	} else {
		log.Info().Msgf("Safe. Password not found in any known breaches")
	}

	if withStrength && !hashed {
		printStrength(strength.Analyze(password))
	}

	return nil
}

func printStrength(report strength.Report) {
	filled := report.Score + 1
	bar := strings.Repeat("#", filled) + strings.Repeat("-", 5-filled)
	log.Info().Msgf("Strength: [%s] %s (%.1f bits)", bar, report.Label, report.Entropy)
	for _, w := range report.Warnings {
		log.Warn().Msgf("! %s", w.Message())
	}
}
