// Copyright 2025 StreamNative, Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package inspect

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	config = NewConfig()

	out := &bytes.Buffer{}
	Cmd.SetOut(out)
	Cmd.SetArgs(args)
	err := Cmd.Execute()
	return out.String(), err
}

func TestInspect_Layout(t *testing.T) {
	out, err := run(t, "--capacity=16", "foo", "bar", "baz", "--locate", "foo,qux")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	assert.Equal(t, "entries: 3 buckets: 16 load: 0.188 resizes: 0", lines[0])
	assert.Equal(t, "[ 0] (empty)", lines[1])
	assert.Equal(t, "[ 2] bar", lines[3])
	assert.Equal(t, "[ 5] baz", lines[6])
	assert.Equal(t, "[10] foo", lines[11])
	assert.Equal(t, "chain lengths:", lines[17])
	assert.Equal(t, "  0: 13 buckets", lines[18])
	assert.Equal(t, "  1: 3 buckets", lines[19])
	assert.Equal(t, "foo -> bucket 10 (present: true)", lines[20])
	assert.True(t, strings.HasPrefix(lines[21], "qux -> bucket "))
	assert.True(t, strings.HasSuffix(lines[21], "(present: false)"))
}

func TestInspect_Generated(t *testing.T) {
	out, err := run(t, "-n", "100", "--hide-empty", "--histogram=false")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	assert.Equal(t, "entries: 100 buckets: 160 load: 0.625 resizes: 4", lines[0])
	assert.NotContains(t, out, "(empty)")
	assert.NotContains(t, out, "chain lengths:")

	chained := 0
	for _, line := range lines[1:] {
		chained += len(strings.Split(line, " -> "))
	}
	assert.Equal(t, 100, chained)
}

func TestInspect_Validation(t *testing.T) {
	_, err := run(t)
	assert.ErrorContains(t, err, "no keys given")

	_, err = run(t, "--count=-1")
	assert.ErrorContains(t, err, "count must not be negative")
}
