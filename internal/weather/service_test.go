package weather_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/airwise/airwise/internal/weather"
)

// slowness and failure are injected per test; the observation echoes
// the asked coordinates so slot sharing is visible in the result.
type fakeProvider struct {
	calls int64
	delay time.Duration

	mu  sync.Mutex
	err error
}

func (f *fakeProvider) Name() string { return "fake" }

func (f *fakeProvider) GetCurrentWeather(_ context.Context, lat, lon float64) (*weather.Observation, error) {
	atomic.AddInt64(&f.calls, 1)
	if f.delay > 0 {
		time.Sleep(f.delay)
	}

	f.mu.Lock()
	err := f.err
	f.mu.Unlock()
	if err != nil {
		return nil, err
	}

	return &weather.Observation{
		Lat:         lat,
		Lon:         lon,
		Temperature: 32.0,
		Humidity:    65.0,
		WindSpeed:   5.0,
		WindDeg:     45.0,
		Condition:   weather.ConditionHaze,
		Visibility:  4200,
		ObservedAt:  time.Now(),
		FetchedAt:   time.Now(),
	}, nil
}

func (f *fakeProvider) callCount() int64 { return atomic.LoadInt64(&f.calls) }

func (f *fakeProvider) fail(err error) {
	f.mu.Lock()
	f.err = err
	f.mu.Unlock()
}

func newService(p weather.Provider, opts ...func(*weather.ServiceConfig)) *weather.Service {
	cfg := weather.ServiceConfig{Provider: p, Logger: zerolog.Nop()}
	for _, opt := range opts {
		opt(&cfg)
	}
	return weather.NewService(cfg)
}

// stale resolves the fresh window immediately so the next call goes
// back to the provider without the test sleeping.
func stale(cfg *weather.ServiceConfig) { cfg.FreshFor = time.Nanosecond }

const (
	gurgaonLat = 28.4595
	gurgaonLon = 77.0266
)

func TestService_CachesWhileFresh(t *testing.T) {
	provider := &fakeProvider{}
	svc := newService(provider)

	first, err := svc.GetCurrentWeather(context.Background(), gurgaonLat, gurgaonLon)
	require.NoError(t, err)

	second, err := svc.GetCurrentWeather(context.Background(), gurgaonLat, gurgaonLon)
	require.NoError(t, err)

	assert.Same(t, first, second)
	assert.EqualValues(t, 1, provider.callCount())
}

func TestService_RefetchesOnceStale(t *testing.T) {
	provider := &fakeProvider{}
	svc := newService(provider, stale)

	_, err := svc.GetCurrentWeather(context.Background(), gurgaonLat, gurgaonLon)
	require.NoError(t, err)
	_, err = svc.GetCurrentWeather(context.Background(), gurgaonLat, gurgaonLon)
	require.NoError(t, err)

	assert.EqualValues(t, 2, provider.callCount())
}

func TestService_ServesPreviousObservationOnError(t *testing.T) {
	provider := &fakeProvider{}
	svc := newService(provider, stale)

	first, err := svc.GetCurrentWeather(context.Background(), gurgaonLat, gurgaonLon)
	require.NoError(t, err)

	provider.fail(errors.New("upstream down"))

	got, err := svc.GetCurrentWeather(context.Background(), gurgaonLat, gurgaonLon)
	require.NoError(t, err)
	assert.Same(t, first, got)
}

func TestService_ErrorOnceUnusablyOld(t *testing.T) {
	provider := &fakeProvider{}
	svc := newService(provider, stale, func(cfg *weather.ServiceConfig) {
		cfg.UsableFor = time.Nanosecond
	})

	_, err := svc.GetCurrentWeather(context.Background(), gurgaonLat, gurgaonLon)
	require.NoError(t, err)

	provider.fail(errors.New("upstream down"))

	_, err = svc.GetCurrentWeather(context.Background(), gurgaonLat, gurgaonLon)
	assert.ErrorIs(t, err, weather.ErrProviderUnavailable)
}

func TestService_ErrorWithNothingCached(t *testing.T) {
	provider := &fakeProvider{}
	provider.fail(errors.New("upstream down"))
	svc := newService(provider)

	_, err := svc.GetCurrentWeather(context.Background(), gurgaonLat, gurgaonLon)
	assert.ErrorIs(t, err, weather.ErrProviderUnavailable)
}

func TestService_RejectsBadCoordinates(t *testing.T) {
	provider := &fakeProvider{}
	svc := newService(provider)

	tests := []struct{ lat, lon float64 }{
		{91, 77},
		{-91, 77},
		{28, 181},
		{28, -181},
	}
	for _, tt := range tests {
		_, err := svc.GetCurrentWeather(context.Background(), tt.lat, tt.lon)
		assert.ErrorIs(t, err, weather.ErrInvalidCoordinates)
	}
	assert.EqualValues(t, 0, provider.callCount())
}

func TestService_NearbyQueriesShareASlot(t *testing.T) {
	provider := &fakeProvider{}
	svc := newService(provider)

	// Both round to the same two-decimal slot.
	_, err := svc.GetCurrentWeather(context.Background(), 28.4595, 77.0266)
	require.NoError(t, err)
	_, err = svc.GetCurrentWeather(context.Background(), 28.4612, 77.0281)
	require.NoError(t, err)

	assert.EqualValues(t, 1, provider.callCount())
}

func TestService_DistantQueriesGetOwnSlots(t *testing.T) {
	provider := &fakeProvider{}
	svc := newService(provider)

	_, err := svc.GetCurrentWeather(context.Background(), 28.4595, 77.0266) // Gurugram
	require.NoError(t, err)
	_, err = svc.GetCurrentWeather(context.Background(), 28.6139, 77.2090) // Delhi
	require.NoError(t, err)

	assert.EqualValues(t, 2, provider.callCount())
}

func TestService_ConcurrentCallersShareOneFetch(t *testing.T) {
	provider := &fakeProvider{delay: 30 * time.Millisecond}
	svc := newService(provider)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.GetCurrentWeather(context.Background(), gurgaonLat, gurgaonLon)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.EqualValues(t, 1, provider.callCount())
}

func TestService_ForgetForcesRefetch(t *testing.T) {
	provider := &fakeProvider{}
	svc := newService(provider)

	_, err := svc.GetCurrentWeather(context.Background(), gurgaonLat, gurgaonLon)
	require.NoError(t, err)

	svc.Forget()

	_, err = svc.GetCurrentWeather(context.Background(), gurgaonLat, gurgaonLon)
	require.NoError(t, err)
	assert.EqualValues(t, 2, provider.callCount())
}
