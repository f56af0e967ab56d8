package memory

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"joint-diagnostics/backend/internal/diagnostics"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newRedisMemory(t *testing.T, prefix string) (*miniredis.Miniredis, *RedisSession, diagnostics.ValueSource) {
	t.Helper()

	mr := miniredis.RunT(t)
	session := NewRedisSession(discardLogger(), RedisOptions{Addr: mr.Addr(), KeyPrefix: prefix})
	t.Cleanup(func() { _ = session.Close() })

	source, err := session.Service(context.Background(), diagnostics.MemoryServiceName)
	require.NoError(t, err)

	return mr, session, source
}

func TestRedisFetchValuesInKeyOrder(t *testing.T) {
	mr, _, source := newRedisMemory(t, "nao:")

	keys := diagnostics.JointKeys([]string{"HeadYaw"})
	require.NoError(t, mr.Set("nao:"+keys[0], "41.5"))
	require.NoError(t, mr.Set("nao:"+keys[1], "1"))
	require.NoError(t, mr.Set("nao:"+keys[2], "0.125"))

	values, err := source.FetchValues(context.Background(), keys)
	require.NoError(t, err)
	assert.Equal(t, []float64{41.5, 1, 0.125}, values)
}

func TestRedisFetchMissingKey(t *testing.T) {
	mr, _, source := newRedisMemory(t, "")

	keys := diagnostics.JointKeys([]string{"LHand"})
	require.NoError(t, mr.Set(keys[0], "50"))
	require.NoError(t, mr.Set(keys[2], "0.2"))

	_, err := source.FetchValues(context.Background(), keys)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMissingValue)
	assert.ErrorIs(t, err, diagnostics.ErrIncompleteSensorData)
	assert.Contains(t, err.Error(), "LHand/Hardness")
}

func TestRedisFetchInvalidNumber(t *testing.T) {
	mr, _, source := newRedisMemory(t, "")

	require.NoError(t, mr.Set("Device/SubDeviceList/HeadYaw/Temperature/Sensor/Value", "hot"))

	_, err := source.FetchValues(context.Background(), []string{"Device/SubDeviceList/HeadYaw/Temperature/Sensor/Value"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid value")
}

func TestRedisFetchNonFiniteNumber(t *testing.T) {
	for _, raw := range []string{"NaN", "Inf", "-Inf", "+Inf"} {
		t.Run(raw, func(t *testing.T) {
			mr, _, source := newRedisMemory(t, "")

			key := "Device/SubDeviceList/HeadYaw/Temperature/Sensor/Value"
			require.NoError(t, mr.Set(key, raw))

			_, err := source.FetchValues(context.Background(), []string{key})
			require.ErrorIs(t, err, diagnostics.ErrInvalidSensorData)
			assert.Contains(t, err.Error(), "HeadYaw/Temperature")
		})
	}
}

func TestRedisFetchNoKeys(t *testing.T) {
	_, _, source := newRedisMemory(t, "")

	values, err := source.FetchValues(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, values)
}

func TestRedisStoreValues(t *testing.T) {
	mr, _, source := newRedisMemory(t, "p/")

	mem, ok := source.(*RedisMemory)
	require.True(t, ok)

	require.NoError(t, mem.StoreValues(context.Background(), map[string]float64{"a": 1.5, "b": 2}))

	got, err := mr.Get("p/a")
	require.NoError(t, err)
	assert.Equal(t, "1.5", got)

	values, err := mem.FetchValues(context.Background(), []string{"b", "a"})
	require.NoError(t, err)
	assert.Equal(t, []float64{2, 1.5}, values)
}

func TestRedisFetchAfterServerGone(t *testing.T) {
	mr, _, source := newRedisMemory(t, "")
	mr.Close()

	_, err := source.FetchValues(context.Background(), []string{"x"})
	assert.Error(t, err)
}

func TestRedisServiceResolution(t *testing.T) {
	mr := miniredis.RunT(t)
	session := NewRedisSession(discardLogger(), RedisOptions{Addr: mr.Addr()})
	defer session.Close()

	_, err := session.Service(context.Background(), "ALMotion")
	assert.ErrorIs(t, err, ErrUnknownService)

	require.NoError(t, session.Ping(context.Background()))

	mr.Close()
	_, err = session.Service(context.Background(), diagnostics.MemoryServiceName)
	assert.Error(t, err)
}

func TestRedisReporterEndToEnd(t *testing.T) {
	mr := miniredis.RunT(t)
	session := NewRedisSession(discardLogger(), RedisOptions{Addr: mr.Addr()})
	defer session.Close()

	joints := []string{"HeadYaw", "LHand"}
	keys := diagnostics.JointKeys(joints)
	for i, v := range []string{"50", "0.5", "0.3", "75", "0.9", "0.4"} {
		require.NoError(t, mr.Set(keys[i], v))
	}

	sink := &captureSink{}
	r := diagnostics.New(context.Background(), discardLogger(), session, sink, joints, 70)

	assert.False(t, r.Publish(context.Background()))
	assert.Equal(t, "HIGH JOINT TEMPERATURE : LHand", r.StatusMessage())
	require.Len(t, sink.reports, 1)
	assert.Equal(t, diagnostics.LevelError, sink.reports[0].Summary.Level)

	mr.Del(keys[5])
	assert.False(t, r.Publish(context.Background()))
	assert.Len(t, sink.reports, 1, "missing sensor path publishes nothing")
}

type captureSink struct {
	reports []diagnostics.Report
}

func (c *captureSink) PublishReport(_ context.Context, r diagnostics.Report) error {
	c.reports = append(c.reports, r)
	return nil
}
