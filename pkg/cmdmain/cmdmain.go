/*
Copyright 2024 The typesniff Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

     http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

// Package cmdmain contains the shared scaffolding for typesniff's
// command-line tools: the flag/exit/stream indirections cmd/typesniff
// builds on. It is adapted from perkeep.org/pkg/cmdmain, trimmed down
// from that package's multi-subcommand (camget/camput/camtool-style)
// dispatcher to a single-command shape, since this module has exactly
// one job rather than a family of modes.
package cmdmain

import (
	"flag"
	"fmt"
	"io"
	"os"

	"go4.org/legal"
)

var (
	FlagVersion = flag.Bool("version", false, "show version")
	FlagHelp    = flag.Bool("help", false, "print usage")
	FlagVerbose = flag.Bool("verbose", false, "extra debug logging")
	FlagLegal   = flag.Bool("legal", false, "show licenses for bundled third-party data")
)

var (
	// Stderr, Stdout, and Stdin are indirections so tests can swap them
	// out; production code should never need to touch these directly.
	Stderr io.Writer = os.Stderr
	Stdout io.Writer = os.Stdout
	Stdin  io.Reader = os.Stdin

	Exit = realExit
)

func realExit(code int) {
	os.Exit(code)
}

// Errorf prints to Stderr.
func Errorf(format string, args ...any) {
	fmt.Fprintf(Stderr, format, args...)
}

// PrintLicenses prints every license go4.org/legal has had registered
// against it for this program — the file(1) magic database notice the
// fixed-magic probes carry, in particular.
func PrintLicenses() {
	for _, text := range legal.Licenses() {
		fmt.Fprintln(Stderr, text)
	}
}
