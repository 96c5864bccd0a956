package registry

import (
	"testing"
	"time"

	"github.com/edgexfoundry/go-mod-core-contracts/v3/clients/logger"
	"github.com/stretchr/testify/assert"

	pulseErrors "plantpulse/common/errors"
	"plantpulse/ml-service/pkg/dto/ml"
)

type stubRegistry struct {
	active      *LoadedModel
	activeErr   pulseErrors.PulseError
	activeCalls int
	abCalls     int
}

func (s *stubRegistry) Register(RegisterRequest) (ml.ModelVersion, pulseErrors.PulseError) {
	return ml.ModelVersion{}, nil
}

func (s *stubRegistry) Promote(string, string) pulseErrors.PulseError { return nil }

func (s *stubRegistry) Rollback(string, string) (string, pulseErrors.PulseError) { return "", nil }

func (s *stubRegistry) GetActive(string) (*LoadedModel, pulseErrors.PulseError) {
	s.activeCalls++
	return s.active, s.activeErr
}

func (s *stubRegistry) GetForABTest(string) (*LoadedModel, pulseErrors.PulseError) {
	s.abCalls++
	return s.active, s.activeErr
}

func (s *stubRegistry) SetABTraffic(string, map[string]float64) pulseErrors.PulseError { return nil }

func (s *stubRegistry) Delete(string, string, bool) pulseErrors.PulseError { return nil }

func (s *stubRegistry) Deprecate(string, string) pulseErrors.PulseError { return nil }

func (s *stubRegistry) List(string) (ml.RegistrySummary, pulseErrors.PulseError) {
	return ml.RegistrySummary{}, nil
}

func TestModelCache_Serving(t *testing.T) {
	t.Run("Serving - Passed (second call comes from the cache)", func(t *testing.T) {
		stub := &stubRegistry{active: &LoadedModel{Version: ml.ModelVersion{Version: "1.0.0"}}}
		mc := NewModelCache(stub, new(logger.MockLogger), time.Minute, false)

		first, err := mc.Serving(ml.ModelTypeAnomalyDetection)
		assert.Nil(t, err)
		second, err := mc.Serving(ml.ModelTypeAnomalyDetection)
		assert.Nil(t, err)

		assert.Equal(t, "1.0.0", first.Version.Version)
		assert.Same(t, first, second)
		assert.Equal(t, 1, stub.activeCalls)
	})
	t.Run("Serving - Passed (empty registry result is cached too)", func(t *testing.T) {
		stub := &stubRegistry{}
		mc := NewModelCache(stub, new(logger.MockLogger), time.Minute, false)

		loaded, err := mc.Serving(ml.ModelTypeAnomalyDetection)
		assert.Nil(t, err)
		assert.Nil(t, loaded)

		_, err = mc.Serving(ml.ModelTypeAnomalyDetection)
		assert.Nil(t, err)
		assert.Equal(t, 1, stub.activeCalls)
	})
	t.Run("Serving - Passed (expired snapshot reloads)", func(t *testing.T) {
		stub := &stubRegistry{active: &LoadedModel{Version: ml.ModelVersion{Version: "1.0.0"}}}
		mc := NewModelCache(stub, new(logger.MockLogger), 20*time.Millisecond, false)

		_, err := mc.Serving(ml.ModelTypeAnomalyDetection)
		assert.Nil(t, err)
		time.Sleep(60 * time.Millisecond)
		_, err = mc.Serving(ml.ModelTypeAnomalyDetection)
		assert.Nil(t, err)

		assert.Equal(t, 2, stub.activeCalls)
	})
	t.Run("Serving - Passed (A/B mode draws every call)", func(t *testing.T) {
		stub := &stubRegistry{active: &LoadedModel{Version: ml.ModelVersion{Version: "1.0.0"}}}
		mc := NewModelCache(stub, new(logger.MockLogger), time.Minute, true)

		_, err := mc.Serving(ml.ModelTypeAnomalyDetection)
		assert.Nil(t, err)
		_, err = mc.Serving(ml.ModelTypeAnomalyDetection)
		assert.Nil(t, err)

		assert.Equal(t, 2, stub.abCalls)
		assert.Equal(t, 0, stub.activeCalls)
	})
	t.Run("Serving - Failed (registry error is not cached)", func(t *testing.T) {
		stub := &stubRegistry{
			activeErr: pulseErrors.NewCommonPulseError(pulseErrors.ErrorTypeDBError, "redis down"),
		}
		mc := NewModelCache(stub, new(logger.MockLogger), time.Minute, false)

		_, err := mc.Serving(ml.ModelTypeAnomalyDetection)
		assert.NotNil(t, err)
		_, err = mc.Serving(ml.ModelTypeAnomalyDetection)
		assert.NotNil(t, err)

		assert.Equal(t, 2, stub.activeCalls)
	})
}

func TestModelCache_Invalidate(t *testing.T) {
	stub := &stubRegistry{active: &LoadedModel{Version: ml.ModelVersion{Version: "1.0.0"}}}
	mc := NewModelCache(stub, new(logger.MockLogger), time.Minute, false)

	_, err := mc.Serving(ml.ModelTypeAnomalyDetection)
	assert.Nil(t, err)
	mc.Invalidate(ml.ModelTypeAnomalyDetection)
	_, err = mc.Serving(ml.ModelTypeAnomalyDetection)
	assert.Nil(t, err)

	assert.Equal(t, 2, stub.activeCalls)
}
