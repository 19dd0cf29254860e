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

package demo

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/streamnative/chaintable/cmd/flag"
	"github.com/streamnative/chaintable/common/collection"
)

const (
	VariantMap = "map"
	VariantSet = "set"
)

type Config struct {
	Variant  string
	Capacity int
	Count    int
	Prefix   string
}

func NewConfig() Config {
	return Config{
		Variant:  VariantMap,
		Capacity: flag.DefaultCapacity,
		Count:    100,
		Prefix:   "key",
	}
}

var (
	config = NewConfig()

	Cmd = &cobra.Command{
		Use:     "demo",
		Short:   "Run the reference scenario",
		Long:    `Fill a hash map or hash set with generated keys, then exercise lookups, removal and clear`,
		Args:    cobra.NoArgs,
		PreRunE: validate,
		RunE:    exec,
	}
)

func init() {
	Cmd.Flags().StringVar(&config.Variant, "variant", config.Variant, "Table variant: map or set")
	flag.Capacity(Cmd, &config.Capacity)
	flag.Count(Cmd, &config.Count, config.Count, "Number of keys to insert")
	flag.Prefix(Cmd, &config.Prefix)
}

func validate(*cobra.Command, []string) error {
	if config.Variant != VariantMap && config.Variant != VariantSet {
		return errors.Errorf("unknown variant %q, expected %q or %q", config.Variant, VariantMap, VariantSet)
	}
	if config.Count < 1 {
		return errors.New("count must be at least 1")
	}
	return nil
}

func exec(cmd *cobra.Command, _ []string) error {
	slog.Debug(
		"Running demo",
		slog.Any("config", config),
	)

	var err error
	if config.Variant == VariantSet {
		err = runSet(cmd.OutOrStdout(), config)
	} else {
		err = runMap(cmd.OutOrStdout(), config)
	}
	return errors.Wrapf(err, "%s demo failed", config.Variant)
}

func key(c Config, i int) string {
	return fmt.Sprintf("%s%d", c.Prefix, i)
}

func formatGet[V any](v V, found bool) string {
	if !found {
		return "<absent>"
	}
	return fmt.Sprint(v)
}

func runMap(out io.Writer, c Config) error {
	m := collection.NewMap[string, int](c.Capacity)
	for i := 0; i < c.Count; i++ {
		if err := m.Set(key(c, i), i); err != nil {
			return err
		}
	}

	last := key(c, c.Count-1)
	probe := key(c, c.Count/2+4)
	for _, k := range []string{probe, last} {
		v, found, err := m.Get(k)
		if err != nil {
			return err
		}
		_, _ = fmt.Fprintf(out, "get(%s) = %s\n", k, formatGet(v, found))
	}

	if _, _, err := m.Remove(last); err != nil {
		return err
	}
	has, err := m.Has(last)
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintf(out, "has(%s) = %t\n", last, has)

	printMap(out, m)
	_, _ = fmt.Fprintf(out, "capacity: %d resizes: %d\n", m.Capacity(), m.Resizes())

	m.Clear()
	printMap(out, m)

	v, found, err := m.Get("Hey")
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintf(out, "get(Hey) = %s\n", formatGet(v, found))
	if err := m.Set("Hey", len("Hey")); err != nil {
		return err
	}
	_, _ = fmt.Fprintf(out, "length: %d\n", m.Len())
	return nil
}

func printMap(out io.Writer, m *collection.Map[string, int]) {
	_, _ = fmt.Fprintf(out, "values: %v\n", m.Values())
	_, _ = fmt.Fprintf(out, "keys: %v\n", m.Keys())
	_, _ = fmt.Fprintf(out, "entries: %v\n", m.Entries())
	_, _ = fmt.Fprintf(out, "length: %d\n", m.Len())
}

func runSet(out io.Writer, c Config) error {
	s := collection.NewSet[string](c.Capacity)
	for i := 0; i < c.Count; i++ {
		if err := s.Add(key(c, i)); err != nil {
			return err
		}
	}

	last := key(c, c.Count-1)
	probe := key(c, c.Count/2+4)
	for _, k := range []string{probe, last} {
		has, err := s.Has(k)
		if err != nil {
			return err
		}
		_, _ = fmt.Fprintf(out, "has(%s) = %t\n", k, has)
	}

	if _, _, err := s.Remove(last); err != nil {
		return err
	}
	has, err := s.Has(last)
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintf(out, "has(%s) = %t\n", last, has)

	_, _ = fmt.Fprintf(out, "keys: %v\n", s.Keys())
	_, _ = fmt.Fprintf(out, "length: %d\n", s.Len())
	_, _ = fmt.Fprintf(out, "capacity: %d resizes: %d\n", s.Capacity(), s.Resizes())

	s.Clear()
	_, _ = fmt.Fprintf(out, "keys: %v\n", s.Keys())
	_, _ = fmt.Fprintf(out, "length: %d\n", s.Len())
	return nil
}
