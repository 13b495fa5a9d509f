package service

import (
	"context"
	"errors"
	"testing"

	"videofetch/internal/engine"
	"videofetch/internal/model"
	"videofetch/internal/persona"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeEngine scripts per-persona outcomes keyed by player client.
type fakeEngine struct {
	available bool
	failWith  map[string]error // player client -> error; absent means success
	info      *engine.RawInfo
	calls     []string // player clients, in call order
}

func (f *fakeEngine) ExtractMetadata(ctx context.Context, url string, opts engine.Options) (*engine.RawInfo, error) {
	f.calls = append(f.calls, opts.PlayerClient)
	if err, ok := f.failWith[opts.PlayerClient]; ok && err != nil {
		return nil, err
	}
	return f.info, nil
}

func (f *fakeEngine) ExtractAndDownload(ctx context.Context, url string, opts engine.Options) (string, *engine.RawInfo, error) {
	info, err := f.ExtractMetadata(ctx, url, opts)
	if err != nil {
		return "", nil, err
	}
	return info.PreparedFilename(), info, nil
}

func (f *fakeEngine) Available() bool { return f.available }

func testEngineConfig() *model.EngineConfig {
	return &model.EngineConfig{
		Binary:           "yt-dlp",
		SocketTimeout:    30,
		GeoBypassCountry: "US",
		RetryBackoffMS:   0,
	}
}

func sampleInfo() *engine.RawInfo {
	duration := 213.0
	return &engine.RawInfo{
		ID:         "abc123",
		Title:      "Sample Video",
		Thumbnail:  "https://example.com/t.jpg",
		Duration:   &duration,
		Channel:    "Sample Channel",
		ViewCount:  1234,
		WebpageURL: "https://example.com/watch?v=abc123",
		Formats: []engine.RawFormat{
			{FormatID: "22", Ext: "mp4", Protocol: "https", Height: 720, VCodec: "avc1", ACodec: "mp4a"},
			{FormatID: "140", Ext: "m4a", Protocol: "https", VCodec: "none", ACodec: "mp4a"},
		},
	}
}

func TestFetchMetadataFirstPersonaWins(t *testing.T) {
	eng := &fakeEngine{available: true, info: sampleInfo()}
	catalog := persona.NewCatalog(nil)
	svc := NewExtractService(eng, catalog, testEngineConfig(), 0)

	info, err := svc.FetchMetadata(context.Background(), "https://example.com/watch?v=abc123")
	require.NoError(t, err)

	// Only the first persona in catalog order was invoked
	personas := catalog.List()
	require.Equal(t, []string{personas[0].Client}, eng.calls)
	assert.Equal(t, "Sample Video", info.Title)
	assert.Equal(t, "abc123", info.VideoID)
	require.NotNil(t, info.Duration)
	assert.Equal(t, 213, *info.Duration)
	assert.False(t, info.UsedCredentials)
}

func TestFetchMetadataStopsAtFirstSuccess(t *testing.T) {
	catalog := persona.NewCatalog(nil)
	personas := catalog.List()
	require.GreaterOrEqual(t, len(personas), 3)

	// First two personas fail, third succeeds, rest never invoked.
	eng := &fakeEngine{
		available: true,
		info:      sampleInfo(),
		failWith: map[string]error{
			personas[0].Client: errors.New("HTTP Error 403: Forbidden"),
			personas[1].Client: errors.New("unable to extract player response"),
		},
	}
	svc := NewExtractService(eng, catalog, testEngineConfig(), 0)

	_, err := svc.FetchMetadata(context.Background(), "https://example.com/v")
	require.NoError(t, err)

	want := []string{personas[0].Client, personas[1].Client, personas[2].Client}
	assert.Equal(t, want, eng.calls)
}

func TestFetchMetadataAllPersonasFail(t *testing.T) {
	catalog := persona.NewCatalog(nil)
	failAll := map[string]error{}
	for _, p := range catalog.List() {
		failAll[p.Client] = errors.New("unable to download webpage")
	}
	eng := &fakeEngine{available: true, failWith: failAll}
	svc := NewExtractService(eng, catalog, testEngineConfig(), 0)

	_, err := svc.FetchMetadata(context.Background(), "https://example.com/v")
	require.Error(t, err)

	var extractionErr *model.ExtractionError
	require.ErrorAs(t, err, &extractionErr)
	assert.Len(t, extractionErr.Tried, len(catalog.List()))
	assert.False(t, extractionErr.AuthRequired)
	assert.Len(t, eng.calls, len(catalog.List()))
}

func TestFetchMetadataClassifiesAuthFailure(t *testing.T) {
	catalog := persona.NewCatalog(nil)
	failAll := map[string]error{}
	for _, p := range catalog.List() {
		failAll[p.Client] = errors.New("ERROR: Sign in to confirm you're not a bot")
	}
	eng := &fakeEngine{available: true, failWith: failAll}
	svc := NewExtractService(eng, catalog, testEngineConfig(), 0)

	_, err := svc.FetchMetadata(context.Background(), "https://example.com/v")
	require.Error(t, err)

	var extractionErr *model.ExtractionError
	require.ErrorAs(t, err, &extractionErr)
	assert.True(t, extractionErr.AuthRequired)
	assert.Contains(t, err.Error(), "cookies")
}

func TestFetchMetadataEngineUnavailable(t *testing.T) {
	eng := &fakeEngine{available: false}
	svc := NewExtractService(eng, persona.NewCatalog(nil), testEngineConfig(), 0)

	_, err := svc.FetchMetadata(context.Background(), "https://example.com/v")
	assert.ErrorIs(t, err, model.ErrEngineUnavailable)
	assert.Empty(t, eng.calls)
}

func TestFetchMetadataNormalizesFormats(t *testing.T) {
	eng := &fakeEngine{available: true, info: sampleInfo()}
	svc := NewExtractService(eng, persona.NewCatalog(nil), testEngineConfig(), 0)

	info, err := svc.FetchMetadata(context.Background(), "https://example.com/v")
	require.NoError(t, err)

	require.Len(t, info.Formats, 2)
	assert.Equal(t, "22", info.Formats[0].FormatID)
	assert.Equal(t, 720, info.Formats[0].Quality)
	assert.Equal(t, model.AudioOnly, info.Formats[1].Resolution)
	assert.Equal(t, 0, info.Formats[1].Quality)
}

func TestFetchFormatsListing(t *testing.T) {
	info := sampleInfo()
	// Segmented-streaming record: excluded from metadata normalization
	// but part of the full inventory.
	info.Formats = append(info.Formats, engine.RawFormat{
		FormatID: "hls-1", Ext: "mp4", Protocol: "m3u8_native", Height: 1080, VCodec: "avc1", ACodec: "mp4a",
	})
	eng := &fakeEngine{available: true, info: info}
	svc := NewExtractService(eng, persona.NewCatalog(nil), testEngineConfig(), 0)

	listing, err := svc.FetchFormats(context.Background(), "https://example.com/v")
	require.NoError(t, err)

	assert.True(t, listing.Success)
	assert.Equal(t, "abc123", listing.VideoID)
	assert.Equal(t, len(info.Formats), listing.Total)
	require.Len(t, listing.Formats, len(info.Formats))
	assert.Equal(t, "hls-1", listing.Formats[2].FormatID)
}

func TestFetchFormatsRetriesPersonas(t *testing.T) {
	catalog := persona.NewCatalog(nil)
	failFirst := map[string]error{
		catalog.List()[0].Client: errors.New("HTTP Error 403: Forbidden"),
	}
	eng := &fakeEngine{available: true, info: sampleInfo(), failWith: failFirst}
	svc := NewExtractService(eng, catalog, testEngineConfig(), 0)

	listing, err := svc.FetchFormats(context.Background(), "https://example.com/v")
	require.NoError(t, err)
	assert.True(t, listing.Success)

	// The first persona failed, the second answered; no further attempts.
	require.Len(t, eng.calls, 2)
}

func TestFetchMetadataCredentialedWinnerFlagged(t *testing.T) {
	creds := &persona.CredentialBundle{Path: "/tmp/cookies.txt"}
	catalog := persona.NewCatalog(creds)
	personas := catalog.List()
	require.NotNil(t, personas[len(personas)-1].Credentials,
		"the credentialed persona is expected to sit last in catalog order")

	// Fail every attempt until the last, credentialed persona. The
	// credentialed persona shares a player client with the plain web one,
	// so failures are scripted by call count rather than client tag.
	eng := &countingEngine{info: sampleInfo(), succeedAt: len(personas)}
	svc := NewExtractService(eng, catalog, testEngineConfig(), 0)

	info, err := svc.FetchMetadata(context.Background(), "https://example.com/v")
	require.NoError(t, err)
	assert.True(t, info.UsedCredentials)
}

// countingEngine fails every call before succeedAt (1-based).
type countingEngine struct {
	info      *engine.RawInfo
	succeedAt int
	calls     int
}

func (c *countingEngine) ExtractMetadata(ctx context.Context, url string, opts engine.Options) (*engine.RawInfo, error) {
	c.calls++
	if c.calls < c.succeedAt {
		return nil, errors.New("HTTP Error 403: Forbidden")
	}
	return c.info, nil
}

func (c *countingEngine) ExtractAndDownload(ctx context.Context, url string, opts engine.Options) (string, *engine.RawInfo, error) {
	info, err := c.ExtractMetadata(ctx, url, opts)
	if err != nil {
		return "", nil, err
	}
	return info.PreparedFilename(), info, nil
}

func (c *countingEngine) Available() bool { return true }
