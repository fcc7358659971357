package registry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mochadwi/utcp-mcp-gateway/internal/domain"
)

type stubEngine struct {
	records      []domain.ToolRecord
	registerErr  error
	registered   []string
	toolsCalls   int
	registerHook func(spec domain.ProviderSpec)
}

func (s *stubEngine) RegisterProvider(_ context.Context, spec domain.ProviderSpec) ([]domain.ToolRecord, error) {
	if s.registerHook != nil {
		s.registerHook(spec)
	}
	if s.registerErr != nil {
		return nil, s.registerErr
	}
	s.registered = append(s.registered, spec.Name)
	return nil, nil
}

func (s *stubEngine) Tools(context.Context) ([]domain.ToolRecord, error) {
	s.toolsCalls++
	return s.records, nil
}

func (s *stubEngine) SearchTools(context.Context, string, int) ([]domain.ToolRecord, error) {
	return s.records, nil
}

func (s *stubEngine) RunScript(context.Context, string, time.Duration) (domain.RunResult, error) {
	return domain.RunResult{}, nil
}

func sampleRecords() []domain.ToolRecord {
	return []domain.ToolRecord{
		{Name: "weather.get-forecast", Provider: "weather", Description: "Fetch the forecast for a location."},
		{Name: "weather.get-alerts", Provider: "weather", Description: "List active weather alerts."},
		{Name: "weather.history", Provider: "weather", Description: "Historical observations."},
		{Name: "files.read", Provider: "files", Description: "Read a file from the workspace."},
	}
}

func TestRegisterProvidersIdempotent(t *testing.T) {
	engine := &stubEngine{}
	reg := New(engine, zap.NewNop())

	specs := []domain.ProviderSpec{{Name: "weather", Transport: domain.TransportRemote, URL: "https://api.example.com/utcp"}}
	require.NoError(t, reg.RegisterProviders(context.Background(), specs))
	require.NoError(t, reg.RegisterProviders(context.Background(), specs))

	assert.Equal(t, []string{"weather"}, engine.registered)
}

func TestRegisterProvidersWrapsFailure(t *testing.T) {
	engine := &stubEngine{registerErr: errors.New("connection refused")}
	reg := New(engine, zap.NewNop())

	err := reg.RegisterProviders(context.Background(), []domain.ProviderSpec{{Name: "weather"}})
	require.Error(t, err)
	code, ok := domain.CodeFrom(err)
	require.True(t, ok)
	assert.Equal(t, domain.CodeRegistration, code)
	assert.Contains(t, err.Error(), "weather")
}

func TestRefreshReplacesSnapshotWholesale(t *testing.T) {
	engine := &stubEngine{records: sampleRecords()}
	reg := New(engine, zap.NewNop())
	require.NoError(t, reg.Refresh(context.Background()))

	first := reg.Snapshot()
	assert.Len(t, first.Records, 4)
	assert.NotEmpty(t, first.ETag)

	engine.records = sampleRecords()[:1]
	require.NoError(t, reg.Refresh(context.Background()))

	second := reg.Snapshot()
	assert.Len(t, second.Records, 1)
	assert.NotEqual(t, first.ETag, second.ETag)
}

func TestLookupAcceptsEquivalentSpellings(t *testing.T) {
	engine := &stubEngine{records: sampleRecords()}
	reg := New(engine, zap.NewNop())
	require.NoError(t, reg.Refresh(context.Background()))

	for _, name := range []string{
		"weather.get-forecast",
		"weather_get_forecast",
		"WEATHER.GET-FORECAST",
	} {
		record, err := reg.Lookup(name)
		require.NoError(t, err, "lookup %q", name)
		assert.Equal(t, "weather.get-forecast", record.Name)
	}
}

func TestLookupUnknownToolIsNotFound(t *testing.T) {
	engine := &stubEngine{records: sampleRecords()}
	reg := New(engine, zap.NewNop())
	require.NoError(t, reg.Refresh(context.Background()))

	_, err := reg.Lookup("no.such-tool")
	require.Error(t, err)
	assert.True(t, domain.IsNotFound(err))
}

func TestDigestGroupsByProvider(t *testing.T) {
	engine := &stubEngine{records: sampleRecords()}
	reg := New(engine, zap.NewNop())
	require.NoError(t, reg.Refresh(context.Background()))

	digest := reg.Digest()
	assert.Contains(t, digest, "files: files.read")
	assert.Contains(t, digest, "weather: weather.get-alerts, weather.get-forecast")
	assert.Contains(t, digest, "(+1 more)")
}

func TestDigestEmptyRegistry(t *testing.T) {
	engine := &stubEngine{}
	reg := New(engine, zap.NewNop())
	require.NoError(t, reg.Refresh(context.Background()))

	assert.Equal(t, "no tools are currently registered", reg.Digest())
}

func TestSummariesTruncateLongDescriptions(t *testing.T) {
	long := ""
	for i := 0; i < 30; i++ {
		long += "verbose text "
	}
	engine := &stubEngine{records: []domain.ToolRecord{
		{Name: "a.tool", Provider: "a", Description: long},
	}}
	reg := New(engine, zap.NewNop())
	require.NoError(t, reg.Refresh(context.Background()))

	summaries := reg.Summaries()
	require.Len(t, summaries, 1)
	assert.LessOrEqual(t, len([]rune(summaries[0].Brief)), domain.RouterDescriptionChars+3)
}

func TestFullInterfaceRendersSchemas(t *testing.T) {
	engine := &stubEngine{records: []domain.ToolRecord{{
		Name:        "files.read",
		Provider:    "files",
		Description: "Read a file from the workspace.",
		Inputs: map[string]any{
			"type":       "object",
			"properties": map[string]any{"path": map[string]any{"type": "string"}},
			"required":   []any{"path"},
		},
	}}}
	reg := New(engine, zap.NewNop())
	require.NoError(t, reg.Refresh(context.Background()))

	rendered, err := reg.FullInterface("files_read")
	require.NoError(t, err)
	assert.Contains(t, rendered, "Tool: files.read")
	assert.Contains(t, rendered, `"path"`)
	assert.Contains(t, rendered, "(none declared)")
}
