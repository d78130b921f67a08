// Copyright (c) 2022. Alvin Baena.
// SPDX-License-Identifier: MIT

package cli

var (
	// root
	verbose bool
	// root
	profile bool
	// root
	pprofPort uint16
	// check
	passwordFile string
	// check
	withStrength bool
	// check
	interactive bool
	// check
	hashed bool
	// generate
	genLength int
	// generate
	genCount int
	// generate
	noUppercase bool
	// generate
	noDigits bool
	// generate
	noSymbols bool
	// download
	outFile string
	// download
	threads int
	// download
	ranges int
	// download
	overwrite bool
	// serve
	selfTLS bool
	// serve
	tlsCert string
	// serve
	tlsKey string
	// serve
	port uint16
)
