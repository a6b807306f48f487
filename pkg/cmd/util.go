// Copyright Consensys Software Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with
// the License. You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on
// an "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied. See the License for the
// specific language governing permissions and limitations under the License.
//
// SPDX-License-Identifier: Apache-2.0
package cmd

import (
	"fmt"
	"os"
	"path"
	"strings"

	"github.com/consensys/go-quill/pkg/quill"
	"github.com/consensys/go-quill/pkg/util/source"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// GetFlag gets an expected flag, or panic if an error arises.
func GetFlag(cmd *cobra.Command, flag string) bool {
	r, err := cmd.Flags().GetBool(flag)
	if err != nil {
		fmt.Println(err)
		os.Exit(2)
	}

	return r
}

// ReadSourceFiles reads the source files named by a set of command-line
// arguments.  An argument naming a manifest (i.e. a toml file) is expanded
// into the source files the manifest declares.
func ReadSourceFiles(args []string) []source.File {
	var filenames []string
	//
	for _, arg := range args {
		// A directory argument means its enclosed manifest.
		if info, err := os.Stat(arg); err == nil && info.IsDir() {
			arg = path.Join(arg, "quill.toml")
		}
		//
		if path.Ext(arg) == ".toml" {
			manifest, err := quill.ReadManifest(arg)
			if err != nil {
				fmt.Println(err)
				os.Exit(2)
			}
			//
			filenames = append(filenames, manifest.SourceFilenames(path.Dir(arg))...)
		} else {
			filenames = append(filenames, arg)
		}
	}
	//
	files, err := source.ReadFiles(filenames...)
	if err != nil {
		fmt.Println(err)
		os.Exit(2)
	}
	//
	return files
}

// ReportErrors prints a set of syntax errors with appropriate highlighting,
// then exits.
func ReportErrors(errs []source.SyntaxError) {
	for _, err := range errs {
		printSyntaxError(&err)
	}
	//
	os.Exit(2)
}

// Print a syntax error with appropriate highlighting.
func printSyntaxError(err *source.SyntaxError) {
	var (
		line  = err.FirstEnclosingLine()
		span  = err.Span()
		width = terminalWidth()
	)
	// Print error + line number
	fmt.Printf("%s:%d: %s\n", err.SourceFile().Filename(), line.Number(), err.Message())
	// Print line itself
	fmt.Println(line.String())
	// Determine start of highlight within line
	start := span.Start() - line.Start()
	// Determine length of highlight, clipped to the line (and terminal).
	length := min(span.Length(), line.Length()-start, width-start)
	length = max(length, 1)
	// Print highlight
	fmt.Print(strings.Repeat(" ", start))
	fmt.Println(strings.Repeat("^", length))
}

// terminalWidth determines the width of the enclosing terminal or, failing
// that, a sensible default.
func terminalWidth() int {
	if width, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil {
		return width
	}
	//
	return 80
}
