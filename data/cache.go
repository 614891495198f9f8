// Copyright 2024
// SPDX-License-Identifier: Apache-2.0
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

package data

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"
	json "github.com/goccy/go-json"
	lru "github.com/hashicorp/golang-lru"
	"github.com/rs/zerolog/log"
	"github.com/sathyanand-dev/Portfolio-Optimizer/common"
	"github.com/sathyanand-dev/Portfolio-Optimizer/dataframe"
	"github.com/spf13/viper"
)

// Cache decorates a Provider with a TTL-expiring LRU tier and an optional
// redis tier. Entries are lz4-compressed JSON. Prices move slowly during a
// session so a short TTL keeps repeated optimize/backtest calls cheap
// without serving stale data.
type Cache struct {
	provider Provider
	local    *lru.Cache
	rdb      *redis.Client
	ttl      time.Duration
}

type cacheEntry struct {
	Expires time.Time
	Payload []byte
}

// framePayload is the serialized form of a dataframe. NaN is not
// representable in JSON so missing observations round-trip as null.
type framePayload struct {
	Dates    []time.Time  `json:"dates"`
	ColNames []string     `json:"colNames"`
	Vals     [][]*float64 `json:"vals"`
}

func NewCache(provider Provider) *Cache {
	size := viper.GetInt("cache.local_size")
	if size == 0 {
		size = 128
	}

	local, err := lru.New(size)
	if err != nil {
		log.Panic().Err(err).Msg("could not create LRU cache")
	}

	ttl := viper.GetDuration("cache.ttl")
	if ttl == 0 {
		ttl = 15 * time.Minute
	}

	var rdb *redis.Client
	if viper.GetBool("cache.redis") {
		opt, err := redis.ParseURL(viper.GetString("cache.redis_url"))
		if err != nil {
			log.Panic().Err(err).Msg("could not parse redis URL")
		}
		rdb = redis.NewClient(opt)
	}

	return &Cache{
		provider: provider,
		local:    local,
		rdb:      rdb,
		ttl:      ttl,
	}
}

func (c *Cache) GetPrices(ctx context.Context, symbols []string, begin, end time.Time) (*dataframe.DataFrame, error) {
	key := cacheKey(symbols, begin, end)

	if df, ok := c.localGet(key); ok {
		log.Debug().Str("Key", key).Msg("price cache hit (local)")
		return df, nil
	}

	if c.rdb != nil {
		if raw, err := c.rdb.Get(ctx, key).Bytes(); err == nil {
			if df, err := decodeFrame(raw); err == nil {
				log.Debug().Str("Key", key).Msg("price cache hit (redis)")
				c.local.Add(key, cacheEntry{Expires: time.Now().Add(c.ttl), Payload: raw})
				return df, nil
			}
		}
	}

	df, err := c.provider.GetPrices(ctx, symbols, begin, end)
	if err != nil {
		return nil, err
	}

	raw, err := encodeFrame(df)
	if err != nil {
		// the fetch succeeded; a cache encoding failure should not fail the request
		log.Warn().Err(err).Str("Key", key).Msg("could not encode prices for cache")
		return df, nil
	}

	c.local.Add(key, cacheEntry{Expires: time.Now().Add(c.ttl), Payload: raw})
	if c.rdb != nil {
		if err := c.rdb.Set(ctx, key, raw, c.ttl).Err(); err != nil {
			log.Warn().Err(err).Str("Key", key).Msg("could not store prices in redis")
		}
	}

	return df, nil
}

func (c *Cache) localGet(key string) (*dataframe.DataFrame, bool) {
	v, ok := c.local.Get(key)
	if !ok {
		return nil, false
	}

	entry := v.(cacheEntry)
	if time.Now().After(entry.Expires) {
		c.local.Remove(key)
		return nil, false
	}

	df, err := decodeFrame(entry.Payload)
	if err != nil {
		c.local.Remove(key)
		return nil, false
	}
	return df, true
}

func cacheKey(symbols []string, begin, end time.Time) string {
	sorted := make([]string, len(symbols))
	copy(sorted, symbols)
	sort.Strings(sorted)
	return fmt.Sprintf("prices:%s:%s:%s", strings.Join(sorted, ","),
		begin.Format("2006-01-02"), end.Format("2006-01-02"))
}

func encodeFrame(df *dataframe.DataFrame) ([]byte, error) {
	payload := framePayload{
		Dates:    df.Dates,
		ColNames: df.ColNames,
		Vals:     make([][]*float64, len(df.Vals)),
	}
	for colIdx := range df.Vals {
		col := make([]*float64, len(df.Vals[colIdx]))
		for rowIdx := range df.Vals[colIdx] {
			if !math.IsNaN(df.Vals[colIdx][rowIdx]) {
				v := df.Vals[colIdx][rowIdx]
				col[rowIdx] = &v
			}
		}
		payload.Vals[colIdx] = col
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return common.Compress(raw)
}

func decodeFrame(raw []byte) (*dataframe.DataFrame, error) {
	decompressed, err := common.Decompress(raw)
	if err != nil {
		return nil, err
	}
	var payload framePayload
	if err := json.Unmarshal(decompressed, &payload); err != nil {
		return nil, err
	}

	df := &dataframe.DataFrame{
		Dates:    payload.Dates,
		ColNames: payload.ColNames,
		Vals:     make([][]float64, len(payload.Vals)),
	}
	for colIdx := range payload.Vals {
		col := make([]float64, len(payload.Vals[colIdx]))
		for rowIdx, v := range payload.Vals[colIdx] {
			if v == nil {
				col[rowIdx] = math.NaN()
			} else {
				col[rowIdx] = *v
			}
		}
		df.Vals[colIdx] = col
	}
	return df, nil
}
