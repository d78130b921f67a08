// Copyright (c) 2022. Alvin Baena.
// SPDX-License-Identifier: MIT

package cli

import (
	"github.com/spf13/cobra"
)

var (
	rootCmd = &cobra.Command{
		Use:   "passguard [COMMAND] [OPTIONS]",
		Short: "Check password and email security against known data breaches",
		Long: "Check passwords against the Pwned Passwords (haveibeenpwned.com) corpus using " +
			"k-anonymity, check email addresses against public breach directories, score " +
			"password strength offline, and generate secure random passwords. Passwords are " +
			"never sent over the network, only the first 5 characters of their SHA-1 hash.",
	}
)

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Print more information on the processing")
	rootCmd.PersistentFlags().BoolVar(&profile, "profile", false, "Enable the profiling server (pprof) when running commands")
	rootCmd.PersistentFlags().Uint16Var(&pprofPort, "profile-port", 6060, "The port to use for the pprof server. Only used if the profile flag is set")
}

func Execute() error {
	return rootCmd.Execute()
}
