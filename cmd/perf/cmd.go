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

package perf

import (
	"context"
	"io"
	"log/slog"
	"os"

	"github.com/fsnotify/fsnotify"
	"github.com/mitchellh/mapstructure"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/streamnative/chaintable/cmd/flag"
	"github.com/streamnative/chaintable/common/metric"
	"github.com/streamnative/chaintable/common/process"
	"github.com/streamnative/chaintable/perf"
)

var (
	Cmd = &cobra.Command{
		Use:   "perf",
		Short: "Chaintable perf client",
		Long:  `Load test a hash map guarded by a single lock, reporting latency quantiles and metrics`,
		RunE:  exec,
	}

	config      = perf.NewConfig()
	configFile  string
	metricsAddr string
)

func init() {
	Cmd.Flags().IntVarP(&config.Capacity, "capacity", "c", config.Capacity, "Initial number of buckets")
	Cmd.Flags().Float64VarP(&config.RequestRate, "rate", "r", config.RequestRate, "Request rate, ops/s")
	Cmd.Flags().Float64VarP(&config.ReadPercentage, "read-write-percent", "p", config.ReadPercentage, "Percentage of read requests, compared to total requests")
	Cmd.Flags().Uint32Var(&config.KeysCardinality, "keys-cardinality", config.KeysCardinality, "Number of distinct keys")
	Cmd.Flags().Uint32VarP(&config.ValueSize, "value-size", "s", config.ValueSize, "Size of the values to write")
	Cmd.Flags().DurationVar(&config.StatsInterval, "stats-interval", config.StatsInterval, "Interval between stats reports")
	Cmd.Flags().StringVarP(&configFile, "conf", "f", "", "Perf config file, reloaded when it changes")
	flag.MetricsAddr(Cmd, &metricsAddr)
}

// loadConfig merges the flags with the config file, if any. Flags that were
// set explicitly take precedence over the file.
func loadConfig(cmd *cobra.Command, v *viper.Viper) (perf.Config, error) {
	conf := perf.NewConfig()

	if err := v.BindPFlags(cmd.Flags()); err != nil {
		return conf, err
	}

	if configFile != "" {
		v.SetConfigType("yaml")
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return conf, errors.Wrap(err, "failed to read perf config")
		}
	}

	if err := v.Unmarshal(&conf, viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(), // default hook
		mapstructure.StringToSliceHookFunc(","),     // default hook
	))); err != nil {
		return conf, errors.Wrap(err, "failed to load perf config")
	}

	return conf, nil
}

type closer struct {
	cancel  context.CancelFunc
	metrics io.Closer
}

func (c *closer) Close() error {
	c.cancel()
	return process.CloseAll(c.metrics)
}

func exec(cmd *cobra.Command, _ []string) error {
	v := viper.New()

	conf, err := loadConfig(cmd, v)
	if err != nil {
		return err
	}

	p := perf.New(conf)

	if configFile != "" {
		v.OnConfigChange(func(e fsnotify.Event) {
			updated, err := loadConfig(cmd, v)
			if err != nil {
				slog.Warn(
					"Failed to reload perf config",
					slog.String("file", e.Name),
					slog.Any("error", err),
				)
				return
			}
			p.SetRequestRate(updated.RequestRate)
		})
		v.WatchConfig()
	}

	process.RunProcess(func() (io.Closer, error) {
		c := &closer{}

		if metricsAddr != "" {
			metrics, err := metric.Start(metricsAddr)
			if err != nil {
				return nil, err
			}
			c.metrics = metrics
		}

		var ctx context.Context
		ctx, c.cancel = context.WithCancel(context.Background())
		go func() {
			if err := p.Run(ctx); err != nil {
				slog.Error(
					"Perf has failed",
					slog.Any("error", err),
				)
				os.Exit(1)
			}
		}()
		return c, nil
	})
	return nil
}
