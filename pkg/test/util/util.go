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
package util

import (
	"fmt"
	"os"
	"testing"

	"github.com/consensys/go-quill/pkg/quill"
	"github.com/consensys/go-quill/pkg/quill/lexer"
	"github.com/consensys/go-quill/pkg/util/source"
)

// TestDir locates the test fixtures, relative to the enclosing test package.
const TestDir = "../../testdata"

// Check expands a given source fixture and compares the result against its
// golden counterpart (i.e. name.expanded.ql).  The comparison is performed on
// token sequences, such that golden files are independent of the exact
// formatting the renderer produces.
func Check(t *testing.T, test string) {
	var (
		filename = fmt.Sprintf("%s/%s.ql", TestDir, test)
		golden   = fmt.Sprintf("%s/%s.expanded.ql", TestDir, test)
	)
	//
	files, err := source.ReadFiles(filename)
	if err != nil {
		t.Fatal(err)
	}
	//
	unit, _, errs := quill.ExpandSourceFiles(files)
	if len(errs) > 0 {
		for _, e := range errs {
			t.Error(e.Error())
		}
		//
		t.FailNow()
	}
	//
	expected, err := os.ReadFile(golden)
	if err != nil {
		t.Fatal(err)
	}
	//
	checkTokensMatch(t, string(expected), quill.RenderExpanded(unit))
}

// CheckInvalid expands a given source fixture (drawn from the invalid
// subdirectory), checking that expansion fails.
func CheckInvalid(t *testing.T, test string) {
	filename := fmt.Sprintf("%s/invalid/%s.ql", TestDir, test)
	//
	files, err := source.ReadFiles(filename)
	if err != nil {
		t.Fatal(err)
	}
	//
	_, _, errs := quill.ExpandSourceFiles(files)
	//
	if len(errs) == 0 {
		t.Fatalf("expected %s to be rejected", test)
	}
}

// checkTokensMatch compares two source texts token by token.
func checkTokensMatch(t *testing.T, expected string, actual string) {
	expectedToks := tokenise(t, "expected", expected)
	actualToks := tokenise(t, "actual", actual)
	//
	for i := 0; i < min(len(expectedToks), len(actualToks)); i++ {
		if expectedToks[i] != actualToks[i] {
			t.Fatalf("token %d: expected %q, got %q\n--- expanded source ---\n%s",
				i, expectedToks[i], actualToks[i], actual)
		}
	}
	//
	if len(expectedToks) != len(actualToks) {
		t.Fatalf("expected %d token(s), got %d\n--- expanded source ---\n%s",
			len(expectedToks), len(actualToks), actual)
	}
}

func tokenise(t *testing.T, name string, text string) []string {
	srcfile := source.NewSourceFile(name, []byte(text))
	//
	tokens, errs := lexer.Lex(srcfile)
	if len(errs) > 0 {
		t.Fatalf("%s does not tokenise: %s", name, errs[0].Message())
	}
	//
	var texts []string
	//
	for _, tok := range tokens {
		if tok.Kind != lexer.END_OF {
			texts = append(texts, srcfile.Text(tok.Span))
		}
	}
	//
	return texts
}
