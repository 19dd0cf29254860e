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
	"fmt"
	"log/slog"
	"math"
	"math/rand"
	"sync/atomic"
	"time"

	"github.com/bmizerany/perks/quantile"
	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"golang.org/x/time/rate"

	"github.com/streamnative/chaintable/common/collection"
	"github.com/streamnative/chaintable/common/metric"
)

type Config struct {
	Capacity        int           `mapstructure:"capacity"`
	RequestRate     float64       `mapstructure:"rate"`
	ReadPercentage  float64       `mapstructure:"read-write-percent"`
	KeysCardinality uint32        `mapstructure:"keys-cardinality"`
	ValueSize       uint32        `mapstructure:"value-size"`
	StatsInterval   time.Duration `mapstructure:"stats-interval"`
}

func NewConfig() Config {
	return Config{
		Capacity:        collection.DefaultCapacity,
		RequestRate:     100.0,
		ReadPercentage:  80.0,
		KeysCardinality: 1000,
		ValueSize:       128,
		StatsInterval:   10 * time.Second,
	}
}

type Perf interface {
	// Run generates traffic until ctx is done or a table operation fails.
	Run(ctx context.Context) error

	// SetRequestRate changes the total request rate, ops/s, of a running perf.
	SetRequestRate(requestRate float64)
}

func New(config Config) Perf {
	p := &perf{
		config:       config,
		table:        newGuardedMap(config.Capacity),
		readLimiter:  rate.NewLimiter(0, 1),
		writeLimiter: rate.NewLimiter(0, 1),
	}
	p.SetRequestRate(config.RequestRate)
	return p
}

type perf struct {
	config    Config
	keys      []string
	table     *guardedMap
	failedOps atomic.Int64

	readLimiter  *rate.Limiter
	writeLimiter *rate.Limiter
}

const pausedPollInterval = 100 * time.Millisecond

func setRate(limiter *rate.Limiter, r float64) {
	if r <= 0 {
		limiter.SetLimit(0)
		limiter.SetBurst(0)
		return
	}
	limiter.SetLimit(rate.Limit(r))
	limiter.SetBurst(int(math.Max(1, r)))
}

// wait blocks until limiter grants an operation. A limiter with a zero rate
// is polled until the rate changes. It returns false once ctx is done.
func wait(ctx context.Context, limiter *rate.Limiter) bool {
	for {
		err := limiter.Wait(ctx)
		if err == nil {
			return true
		}
		if ctx.Err() != nil {
			return false
		}

		select {
		case <-time.After(pausedPollInterval):
		case <-ctx.Done():
			return false
		}
	}
}

func (p *perf) SetRequestRate(requestRate float64) {
	setRate(p.writeLimiter, requestRate*(100.0-p.config.ReadPercentage)/100)
	setRate(p.readLimiter, requestRate*p.config.ReadPercentage/100)
	slog.Info(
		"Updated request rate",
		slog.Float64("rate", requestRate),
	)
}

func (p *perf) Run(ctx context.Context) error {
	slog.Info(
		"Starting chaintable perf",
		slog.Any("config", p.config),
	)

	if p.config.KeysCardinality == 0 {
		return errors.New("keys cardinality must be greater than 0")
	}
	if p.config.StatsInterval <= 0 {
		return errors.New("stats interval must be greater than 0")
	}

	p.keys = make([]string, p.config.KeysCardinality)
	for i := uint32(0); i < p.config.KeysCardinality; i++ {
		p.keys[i] = uuid.NewString()
	}

	labels := metric.LabelsForTable("perf", "map")
	gauges := []metric.Gauge{
		metric.NewGauge("chaintable_perf_size", "Number of entries in the table", metric.Dimensionless, labels,
			func() int64 { return int64(p.table.stats().size) }),
		metric.NewGauge("chaintable_perf_capacity", "Number of buckets in the table", metric.Dimensionless, labels,
			func() int64 { return int64(p.table.stats().capacity) }),
		metric.NewGauge("chaintable_perf_resizes", "Number of times the table doubled", metric.Dimensionless, labels,
			func() int64 { return int64(p.table.stats().resizes) }),
	}
	defer func() {
		for _, g := range gauges {
			g.Unregister()
		}
	}()

	ctx, cancel := context.WithCancelCause(ctx)
	defer cancel(nil)

	writeLatencyCh := make(chan time.Duration)
	go p.generateWriteTraffic(ctx, cancel, writeLatencyCh)

	readLatencyCh := make(chan time.Duration)
	go p.generateReadTraffic(ctx, cancel, readLatencyCh)

	ticker := time.NewTicker(p.config.StatsInterval)
	defer ticker.Stop()

	wq := quantile.NewTargeted(0.50, 0.95, 0.99, 0.999, 1.0)
	rq := quantile.NewTargeted(0.50, 0.95, 0.99, 0.999, 1.0)
	writeOps := 0
	readOps := 0

	for {
		select {
		case <-ticker.C:
			seconds := p.config.StatsInterval.Seconds()
			writeRate := float64(writeOps) / seconds
			readRate := float64(readOps) / seconds
			failedOpsRate := float64(p.failedOps.Swap(0)) / seconds
			s := p.table.stats()
			slog.Info(fmt.Sprintf(`Stats - Total ops: %6.1f ops/s - Failed ops: %6.1f ops/s - Entries: %s - Buckets: %s
			Write ops %6.1f w/s  Latency us: 50%% %5.1f - 95%% %5.1f - 99%% %5.1f - 99.9%% %5.1f - max %6.1f
			Read  ops %6.1f r/s  Latency us: 50%% %5.1f - 95%% %5.1f - 99%% %5.1f - 99.9%% %5.1f - max %6.1f`,
				writeRate+readRate,
				failedOpsRate,
				humanize.Comma(int64(s.size)),
				humanize.Comma(int64(s.capacity)),
				writeRate,
				wq.Query(0.5),
				wq.Query(0.95),
				wq.Query(0.99),
				wq.Query(0.999),
				wq.Query(1.0),
				readRate,
				rq.Query(0.5),
				rq.Query(0.95),
				rq.Query(0.99),
				rq.Query(0.999),
				rq.Query(1.0),
			))

			wq.Reset()
			rq.Reset()
			writeOps = 0
			readOps = 0

		case wl := <-writeLatencyCh:
			writeOps++
			wq.Insert(float64(wl) / float64(time.Microsecond))

		case rl := <-readLatencyCh:
			readOps++
			rq.Insert(float64(rl) / float64(time.Microsecond))

		case <-ctx.Done():
			if err := context.Cause(ctx); !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded) {
				return errors.Wrap(err, "table operation failed")
			}
			return nil
		}
	}
}

func (p *perf) randomKey() string {
	return p.keys[rand.Intn(len(p.keys))]
}

func (p *perf) generateWriteTraffic(ctx context.Context, cancel context.CancelCauseFunc, latencyCh chan time.Duration) {
	latency := metric.NewLatencyHistogram("chaintable_perf_write_latency",
		"Latency of the writes to the table", metric.LabelsForTable("perf", "map"))

	value := make([]byte, p.config.ValueSize)

	for {
		if !wait(ctx, p.writeLimiter) {
			return
		}

		key := p.randomKey()

		start := time.Now()
		if err := p.table.set(key, value); err != nil {
			slog.Error(
				"Operation has failed",
				slog.String("key", key),
				slog.Any("error", err),
			)
			p.failedOps.Add(1)
			cancel(err)
			return
		}

		elapsed := time.Since(start)
		latency.Record(elapsed)
		slog.Debug(
			"Operation has succeeded",
			slog.String("key", key),
		)

		select {
		case latencyCh <- elapsed:
		case <-ctx.Done():
			return
		}
	}
}

func (p *perf) generateReadTraffic(ctx context.Context, cancel context.CancelCauseFunc, latencyCh chan time.Duration) {
	latency := metric.NewLatencyHistogram("chaintable_perf_read_latency",
		"Latency of the reads from the table", metric.LabelsForTable("perf", "map"))

	for {
		if !wait(ctx, p.readLimiter) {
			return
		}

		key := p.randomKey()

		start := time.Now()
		_, found, err := p.table.get(key)
		if err != nil {
			slog.Error(
				"Operation has failed",
				slog.String("key", key),
				slog.Any("error", err),
			)
			p.failedOps.Add(1)
			cancel(err)
			return
		}

		elapsed := time.Since(start)
		latency.Record(elapsed)
		slog.Debug(
			"Operation has succeeded",
			slog.String("key", key),
			slog.Bool("found", found),
		)

		select {
		case latencyCh <- elapsed:
		case <-ctx.Done():
			return
		}
	}
}
