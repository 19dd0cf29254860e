// Copyright 2023 StreamNative, Inc.
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

package flag

import (
	"github.com/spf13/cobra"
)

const (
	DefaultCapacity    = 10
	DefaultMetricsAddr = "0.0.0.0:8080"
)

func Capacity(cmd *cobra.Command, conf *int) {
	cmd.Flags().IntVarP(conf, "capacity", "c", DefaultCapacity, "Initial number of buckets")
}

func Count(cmd *cobra.Command, conf *int, defaultCount int, usage string) {
	cmd.Flags().IntVarP(conf, "count", "n", defaultCount, usage)
}

func Prefix(cmd *cobra.Command, conf *string) {
	cmd.Flags().StringVarP(conf, "prefix", "p", "key", "Prefix of the generated keys")
}

func MetricsAddr(cmd *cobra.Command, conf *string) {
	cmd.Flags().StringVarP(conf, "metrics-addr", "m", DefaultMetricsAddr, "Metrics service bind address, empty to disable")
}
