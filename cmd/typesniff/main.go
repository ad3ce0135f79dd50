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

// Command typesniff reports the recognized media type of each file given
// on the command line.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/go4media/typesniff/pkg/cmdmain"
	"github.com/go4media/typesniff/pkg/typesniff"
	"github.com/go4media/typesniff/pkg/typesniff/probes"
)

func init() {
	// So plain log.Printf/log.Fatalf go where cmdmain.Stderr points,
	// same indirection perkeep's cmd/pk-get sets up in its own init().
	log.SetOutput(cmdmain.Stderr)
}

var (
	flagVersion = cmdmain.FlagVersion
	flagVerbose = cmdmain.FlagVerbose
	flagAll     = flag.Bool("all", false, "print every suggestion, not just the best one")
	flagExt     = flag.Bool("byext", false, "also try recognizing by filename extension alone")
)

const version = "0.1.0"

func main() {
	flag.Parse()

	if *cmdmain.FlagHelp {
		flag.PrintDefaults()
		return
	}
	if *flagVersion {
		fmt.Fprintf(cmdmain.Stdout, "typesniff version: %s\n", version)
		return
	}
	if *cmdmain.FlagLegal {
		cmdmain.PrintLicenses()
		return
	}

	if flag.NArg() == 0 {
		cmdmain.Errorf("Usage: typesniff [flags] file...\n")
		flag.PrintDefaults()
		cmdmain.Exit(1)
		return
	}

	registry := typesniff.NewRegistry()
	if err := probes.Register(registry); err != nil {
		log.Fatalf("registering probe catalog: %v", err)
	}

	exitCode := 0
	for _, name := range flag.Args() {
		if err := recognizeFile(registry, name); err != nil {
			cmdmain.Errorf("%s: %v\n", name, err)
			exitCode = 1
		}
	}
	cmdmain.Exit(exitCode)
}

// sizedFile adapts an *os.File into go4.org/readerutil.SizeReaderAt
// (ReadAt plus a Size method), which typesniff.NewReaderAtSource takes.
// *os.File itself has ReadAt but not Size, so this pairs it with the
// size obtained once, up front, via Stat.
type sizedFile struct {
	*os.File
	size int64
}

func (f sizedFile) Size() int64 { return f.size }

func recognizeFile(registry *typesniff.Registry, name string) error {
	f, err := os.Open(name)
	if err != nil {
		return err
	}
	defer f.Close()
	fi, err := f.Stat()
	if err != nil {
		return err
	}

	src := typesniff.NewReaderAtSource(sizedFile{f, fi.Size()})
	suggestions := registry.Recognize(src)
	if *flagExt {
		suggestions = append(suggestions, registry.RecognizeByExtension(name)...)
	}

	if len(suggestions) == 0 {
		fmt.Fprintf(cmdmain.Stdout, "%s: unknown\n", name)
		return nil
	}

	if *flagAll {
		for _, s := range suggestions {
			fmt.Fprintf(cmdmain.Stdout, "%s: %d%% %s\n", name, s.Probability, s.Label)
		}
		return nil
	}

	best := suggestions[0]
	for _, s := range suggestions[1:] {
		if s.Probability > best.Probability {
			best = s
		}
	}
	fmt.Fprintf(cmdmain.Stdout, "%s: %d%% %s\n", name, best.Probability, best.Label)
	if *flagVerbose {
		log.Printf("%s: %d candidate suggestion(s)", name, len(suggestions))
	}
	return nil
}
