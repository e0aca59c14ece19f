package source

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/satark-labs/scamintel/internal/config"
	"github.com/satark-labs/scamintel/internal/model"
)

func socialConfig(mirrors []string) config.SocialConfig {
	return config.SocialConfig{
		Mirrors:     mirrors,
		Query:       "%23CyberScam",
		TimeoutSecs: 10,
		MaxItems:    10,
	}
}

const socialPage = `<html><body>
<div class="timeline-item"><div class="tweet-content media-body">Got a call from 9876543210, total scam, beware!</div></div>
<div class="timeline-item"><div class="tweet-content media-body">Fake KYC fraud messages going around again.</div></div>
<div class="timeline-item"><div class="tweet-content media-body">Lovely weather in Mumbai today.</div></div>
</body></html>`

func TestSocial_ParsesPosts(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.URL.RawQuery, "q=%23CyberScam")
		fmt.Fprint(w, socialPage)
	}))
	defer srv.Close()

	f := NewSocial(socialConfig([]string{srv.URL}), "test-agent")
	items, err := f.Fetch(context.Background())

	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, []string{"9876543210"}, items[0].PhonesFound)
	assert.Equal(t, model.SourceSocial, items[0].Source)
	assert.Contains(t, items[1].Title, "Fake KYC fraud")
	assert.Empty(t, items[1].PhonesFound)
}

func TestSocial_FallsBackToNextMirror(t *testing.T) {
	t.Parallel()

	dead := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer dead.Close()

	alive := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, socialPage)
	}))
	defer alive.Close()

	f := NewSocial(socialConfig([]string{dead.URL, alive.URL}), "test-agent")
	items, err := f.Fetch(context.Background())

	require.NoError(t, err)
	assert.Len(t, items, 2)
}

func TestSocial_AllMirrorsFail(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	f := NewSocial(socialConfig([]string{srv.URL, srv.URL}), "test-agent")
	items, err := f.Fetch(context.Background())

	require.Error(t, err)
	assert.Empty(t, items)
}

func TestSocial_NoMirrorsConfigured(t *testing.T) {
	t.Parallel()

	f := NewSocial(socialConfig(nil), "test-agent")
	_, err := f.Fetch(context.Background())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "no mirrors")
}

func TestSocial_FirstMirrorStopsSearch(t *testing.T) {
	t.Parallel()

	var secondCalled bool
	first := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, socialPage)
	}))
	defer first.Close()
	second := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		secondCalled = true
		fmt.Fprint(w, socialPage)
	}))
	defer second.Close()

	f := NewSocial(socialConfig([]string{first.URL, second.URL}), "test-agent")
	_, err := f.Fetch(context.Background())

	require.NoError(t, err)
	assert.False(t, secondCalled)
}
