/*******************************************************************************
* Contributors: BMC Helix, Inc.
*
* (c) Copyright 2020-2025 BMC Helix, Inc.

* SPDX-License-Identifier: Apache-2.0
*******************************************************************************/

package registry

import (
	"time"

	"github.com/edgexfoundry/go-mod-core-contracts/v3/clients/logger"
	"github.com/jellydator/ttlcache/v3"

	pulseErrors "plantpulse/common/errors"
)

// DefaultModelCacheTTL bounds how long the scorer serves a stale snapshot
// after a promotion on the management side
const DefaultModelCacheTTL = 30 * time.Second

// ModelCache keeps deserialized model snapshots in front of the registry so
// the scoring hot path does not hit redis and disk per message. A nil
// snapshot (no active version yet) is cached too, so an empty registry does
// not turn every message into a registry read.
type ModelCache struct {
	registry RegistryInterface
	lc       logger.LoggingClient
	cache    *ttlcache.Cache[string, *LoadedModel]
	abSplit  bool
}

func NewModelCache(
	registry RegistryInterface,
	lc logger.LoggingClient,
	ttl time.Duration,
	abSplit bool,
) *ModelCache {
	if ttl <= 0 {
		ttl = DefaultModelCacheTTL
	}
	mc := &ModelCache{
		registry: registry,
		lc:       lc,
		cache: ttlcache.New[string, *LoadedModel](
			ttlcache.WithTTL[string, *LoadedModel](ttl),
			ttlcache.WithCapacity[string, *LoadedModel](8),
			// steady scoring traffic must not keep a stale snapshot alive
			ttlcache.WithDisableTouchOnHit[string, *LoadedModel](),
		),
		abSplit: abSplit,
	}
	go mc.cache.Start()
	return mc
}

// Serving returns the model snapshot to score with. In A/B mode every call
// goes through the registry's weighted draw since consecutive messages may
// land on different versions; otherwise the cached ACTIVE snapshot is
// reused until the TTL expires.
func (mc *ModelCache) Serving(modelType string) (*LoadedModel, pulseErrors.PulseError) {
	if mc.abSplit {
		return mc.registry.GetForABTest(modelType)
	}

	if item := mc.cache.Get(modelType); item != nil {
		return item.Value(), nil
	}

	loaded, err := mc.registry.GetActive(modelType)
	if err != nil {
		return nil, err
	}
	mc.cache.Set(modelType, loaded, ttlcache.DefaultTTL)
	if loaded != nil {
		mc.lc.Infof("serving %s model v%s", modelType, loaded.Version.Version)
	}
	return loaded, nil
}

// Invalidate drops the snapshot so the next message reloads from the
// registry, e.g. after a reset or an explicit promote notification
func (mc *ModelCache) Invalidate(modelType string) {
	mc.cache.Delete(modelType)
}
