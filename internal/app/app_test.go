package app

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shoppit/backend/internal/chatbot"
	"github.com/shoppit/backend/internal/seed"
	"github.com/shoppit/backend/pkg/config"
)

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.SQLite.Path = ":memory:"
	cfg.Chatbot.ResponsePicker = chatbot.PickerRoundRobin
	cfg.FAQ.LoadAttempts = 2
	return cfg
}

func TestNew_EndToEndWithSeedData(t *testing.T) {
	ctx := context.Background()

	a, err := New(ctx, testConfig())
	require.NoError(t, err)
	defer a.Close()

	c, err := seed.Default()
	require.NoError(t, err)
	_, err = seed.NewLoader(a.DB).Load(ctx, c)
	require.NoError(t, err)

	require.NoError(t, a.LoadFAQs(ctx))
	assert.Equal(t, 15, a.FAQs.Size())

	resp := a.Chatbot.ProcessMessage(ctx, chatbot.Request{Message: "¿Realizan envíos internacionales?"})
	assert.Contains(t, resp.Response, "territorio nacional")

	resp = a.Chatbot.ProcessMessage(ctx, chatbot.Request{Message: "busco una camiseta roja", SessionID: resp.SessionID})
	assert.NotEmpty(t, resp.SuggestedProducts)
	assert.Contains(t, resp.Response, "Camiseta Roja Básica")

	conv, err := a.DB.GetConversation(ctx, resp.SessionID)
	require.NoError(t, err)
	assert.Equal(t, resp.SessionID, conv.SessionID)
}

func TestNew_RejectsMissingLexiconFile(t *testing.T) {
	cfg := testConfig()
	cfg.Lexicon.Path = "/nonexistent/lexicon.yaml"

	_, err := New(context.Background(), cfg)
	assert.Error(t, err)
}

func TestHandlers_WithoutRedis(t *testing.T) {
	a, err := New(context.Background(), testConfig())
	require.NoError(t, err)
	defer a.Close()

	h := a.Handlers()
	assert.NotNil(t, h.Chatbot)
	assert.NotNil(t, h.WebSocket)
	assert.Nil(t, a.Redis)
}

func TestScheduleFAQRefresh(t *testing.T) {
	a, err := New(context.Background(), testConfig())
	require.NoError(t, err)
	defer a.Close()

	_, err = a.ScheduleFAQRefresh("not a schedule")
	assert.Error(t, err)

	c, err := a.ScheduleFAQRefresh("*/5 * * * *")
	require.NoError(t, err)
	defer c.Stop()
	assert.Len(t, c.Entries(), 1)
}

func TestRefreshFAQs_PicksUpNewEntries(t *testing.T) {
	ctx := context.Background()

	a, err := New(ctx, testConfig())
	require.NoError(t, err)
	defer a.Close()

	require.NoError(t, a.LoadFAQs(ctx))
	assert.Equal(t, 0, a.FAQs.Size())

	c, err := seed.Default()
	require.NoError(t, err)
	_, err = seed.NewLoader(a.DB).Load(ctx, c)
	require.NoError(t, err)

	a.refreshFAQs()
	assert.Equal(t, 15, a.FAQs.Size())
}
