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
	"fmt"
	"io"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/dustin/go-humanize/english"
	"github.com/emirpasic/gods/maps/treemap"
	"github.com/emirpasic/gods/utils"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/streamnative/chaintable/cmd/flag"
	"github.com/streamnative/chaintable/common/collection"
)

type Config struct {
	Capacity  int
	Count     int
	Prefix    string
	Locate    []string
	HideEmpty bool
	Histogram bool
}

func NewConfig() Config {
	return Config{
		Capacity:  flag.DefaultCapacity,
		Prefix:    "key",
		Histogram: true,
	}
}

var (
	config = NewConfig()

	Cmd = &cobra.Command{
		Use:   "inspect [keys...]",
		Short: "Print the bucket layout of a hash map",
		Long: `Insert the given keys, or generated ones, into a hash map and print every bucket
with its chain, followed by the distribution of the chain lengths`,
		PreRunE: validate,
		RunE:    exec,
	}
)

func init() {
	flag.Capacity(Cmd, &config.Capacity)
	flag.Count(Cmd, &config.Count, 0, "Number of keys to generate in addition to the given ones")
	flag.Prefix(Cmd, &config.Prefix)
	Cmd.Flags().StringSliceVar(&config.Locate, "locate", nil, "Keys whose bucket index is printed")
	Cmd.Flags().BoolVar(&config.HideEmpty, "hide-empty", false, "Do not print empty buckets")
	Cmd.Flags().BoolVar(&config.Histogram, "histogram", config.Histogram, "Print the chain length distribution")
}

func validate(_ *cobra.Command, args []string) error {
	if config.Count < 0 {
		return errors.New("count must not be negative")
	}
	if len(args) == 0 && config.Count == 0 {
		return errors.New("no keys given, pass keys as arguments or use --count")
	}
	return nil
}

func exec(cmd *cobra.Command, args []string) error {
	m, err := build(config, args)
	if err != nil {
		return errors.Wrap(err, "failed to build the table")
	}
	return errors.Wrap(render(cmd.OutOrStdout(), config, m), "failed to inspect the table")
}

func build(c Config, args []string) (*collection.Map[string, int], error) {
	m := collection.NewMap[string, int](c.Capacity)
	for i, k := range args {
		if err := m.Set(k, i); err != nil {
			return nil, err
		}
	}
	for i := 0; i < c.Count; i++ {
		if err := m.Set(fmt.Sprintf("%s%d", c.Prefix, i), len(args)+i); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func render(out io.Writer, c Config, m *collection.Map[string, int]) error {
	_, _ = fmt.Fprintf(out, "entries: %s buckets: %s load: %.3f resizes: %d\n",
		humanize.Comma(int64(m.Len())),
		humanize.Comma(int64(m.Capacity())),
		float64(m.Len())/float64(m.Capacity()),
		m.Resizes())

	lengths := treemap.NewWith(utils.IntComparator)
	width := len(fmt.Sprint(m.Capacity() - 1))

	for i := 0; i < m.Capacity(); i++ {
		chain := m.Bucket(i)

		count := 0
		if n, found := lengths.Get(len(chain)); found {
			count = n.(int)
		}
		lengths.Put(len(chain), count+1)

		if len(chain) == 0 {
			if !c.HideEmpty {
				_, _ = fmt.Fprintf(out, "[%*d] (empty)\n", width, i)
			}
			continue
		}

		keys := make([]string, len(chain))
		for j, e := range chain {
			keys[j] = e.Key
		}
		_, _ = fmt.Fprintf(out, "[%*d] %s\n", width, i, strings.Join(keys, " -> "))
	}

	if c.Histogram {
		_, _ = fmt.Fprintln(out, "chain lengths:")
		it := lengths.Iterator()
		for it.Next() {
			buckets := it.Value().(int)
			_, _ = fmt.Fprintf(out, "  %d: %s %s\n", it.Key().(int), humanize.Comma(int64(buckets)),
				english.PluralWord(buckets, "bucket", ""))
		}
	}

	for _, k := range c.Locate {
		index, err := m.IndexOf(k)
		if err != nil {
			return err
		}
		has, err := m.Has(k)
		if err != nil {
			return err
		}
		_, _ = fmt.Fprintf(out, "%s -> bucket %d (present: %t)\n", k, index, has)
	}
	return nil
}
