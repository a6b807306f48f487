// Copyright Consensys Software Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may not use this
// file except in compliance with the License. You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software distributed under
// the License is distributed on an "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY
// KIND, either express or implied. See the License for the specific language governing
// permissions and limitations under the License.
package test

import (
	"testing"

	test_util "github.com/consensys/go-quill/pkg/test/util"
)

// ===================================================================
// Valid expansion tests.  Each test expands testdata/X.ql and checks
// the result against the golden file testdata/X.expanded.ql, comparing
// token sequences rather than raw text.
// ===================================================================

func Test_Valid_AttrUnit(t *testing.T) {
	test_util.Check(t, "attr_unit")
}

func Test_Valid_AttrQuoted(t *testing.T) {
	test_util.Check(t, "attr_quoted")
}

func Test_Valid_InjectModule(t *testing.T) {
	test_util.Check(t, "inject_module")
}

func Test_Valid_DeriveEmpty(t *testing.T) {
	test_util.Check(t, "derive_empty")
}

func Test_Valid_DerivePoint(t *testing.T) {
	test_util.Check(t, "derive_point")
}

func Test_Valid_SetBody(t *testing.T) {
	test_util.Check(t, "set_body")
}

func Test_Valid_GlobalsOrder(t *testing.T) {
	test_util.Check(t, "globals_order")
}

func Test_Valid_SpliceConst(t *testing.T) {
	test_util.Check(t, "splice_const")
}

// ===================================================================
// Invalid expansion tests.  Each test expands testdata/invalid/X.ql
// and checks that at least one error is reported.
// ===================================================================

func Test_Invalid_AssertFail(t *testing.T) {
	test_util.CheckInvalid(t, "assert_fail")
}

func Test_Invalid_BadInject(t *testing.T) {
	test_util.CheckInvalid(t, "bad_inject")
}

func Test_Invalid_UnknownTrait(t *testing.T) {
	test_util.CheckInvalid(t, "unknown_trait")
}

func Test_Invalid_DupDecl(t *testing.T) {
	test_util.CheckInvalid(t, "dup_decl")
}

func Test_Invalid_ImmutableGlobal(t *testing.T) {
	test_util.CheckInvalid(t, "immutable_global")
}
