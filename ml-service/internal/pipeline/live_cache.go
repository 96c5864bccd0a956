/*******************************************************************************
* Contributors: BMC Helix, Inc.
*
* (c) Copyright 2020-2025 BMC Helix, Inc.

* SPDX-License-Identifier: Apache-2.0
*******************************************************************************/


package pipeline

import (
	"time"

	ttlcache "github.com/jellydator/ttlcache/v3"

	"plantpulse/ml-service/pkg/dto/telemetry"
)

const DefaultLiveTTL = 5 * time.Minute

// LiveCache keeps the last scored reading per machine for the live endpoint.
// Entries expire so a machine that stopped reporting drops off instead of
// serving stale state forever.
type LiveCache struct {
	cache *ttlcache.Cache[string, telemetry.ScoredReading]
}

func NewLiveCache(ttl time.Duration) *LiveCache {
	if ttl <= 0 {
		ttl = DefaultLiveTTL
	}
	lc := &LiveCache{
		cache: ttlcache.New[string, telemetry.ScoredReading](
			ttlcache.WithTTL[string, telemetry.ScoredReading](ttl),
			ttlcache.WithCapacity[string, telemetry.ScoredReading](1024),
		),
	}
	go lc.cache.Start()
	return lc
}

func (l *LiveCache) Update(reading telemetry.ScoredReading) {
	l.cache.Set(reading.MachineID, reading, ttlcache.DefaultTTL)
}

func (l *LiveCache) Latest(machineID string) (telemetry.ScoredReading, bool) {
	item := l.cache.Get(machineID)
	if item == nil {
		return telemetry.ScoredReading{}, false
	}
	return item.Value(), true
}

// Newest returns the most recent reading across all machines, for live calls
// that do not name a machine
func (l *LiveCache) Newest() (telemetry.ScoredReading, bool) {
	var newest telemetry.ScoredReading
	found := false
	l.cache.Range(func(item *ttlcache.Item[string, telemetry.ScoredReading]) bool {
		if !found || item.Value().Timestamp > newest.Timestamp {
			newest = item.Value()
			found = true
		}
		return true
	})
	return newest, found
}

func (l *LiveCache) Machines() []string {
	return l.cache.Keys()
}
