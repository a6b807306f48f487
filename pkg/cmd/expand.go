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

	"github.com/consensys/go-quill/pkg/quill"
	"github.com/spf13/cobra"
)

// expandCmd represents the expand command
var expandCmd = &cobra.Command{
	Use:   "expand [flags] source_files",
	Short: "Run macro expansion over a set of source files.",
	Long: `Run macro expansion over a set of source files, printing the
	expanded source.  Source files can be given directly, or via a
	package manifest (quill.toml).`,
	Run: func(cmd *cobra.Command, args []string) {
		if len(args) == 0 {
			fmt.Println(cmd.UsageString())
			os.Exit(1)
		}
		//
		files := ReadSourceFiles(args)
		//
		unit, _, errs := quill.ExpandSourceFiles(files)
		if len(errs) > 0 {
			ReportErrors(errs)
		}
		//
		fmt.Print(quill.RenderExpanded(unit))
	},
}

func init() {
	rootCmd.AddCommand(expandCmd)
}
