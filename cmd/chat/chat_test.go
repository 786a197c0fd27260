package chat

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"fjacquet/finance-advisor/cmd/root"
	"fjacquet/finance-advisor/internal/apperror"
	"fjacquet/finance-advisor/internal/config"
	"fjacquet/finance-advisor/internal/container"
	"fjacquet/finance-advisor/internal/logging"
	"fjacquet/finance-advisor/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeOllama answers generations and refuses embeddings, so the corpus is
// indexed with local embeddings.
func fakeOllama(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/generate":
			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(map[string]interface{}{"response": "Start with a small emergency fund."})
		case "/api/tags":
			_, _ = w.Write([]byte(`{"models":[]}`))
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func setup(t *testing.T, aiEnabled bool) *bytes.Buffer {
	t.Helper()
	dir := t.TempDir()
	cfg := config.Default()
	cfg.Categorization.RulesFile = filepath.Join(dir, "rules.yaml")
	cfg.Categorization.MerchantsFile = filepath.Join(dir, "merchants.yaml")
	if aiEnabled {
		cfg.AI.Enabled = true
		cfg.AI.Provider = config.ProviderOllama
		cfg.AI.OllamaURL = fakeOllama(t).URL
	}

	c, err := container.NewContainerWithLogger(context.Background(), cfg, logging.NewDiscardLogger())
	require.NoError(t, err)

	originalContainer, originalFlags := root.AppContainer, root.SharedFlags
	root.AppContainer = c
	root.SharedFlags = root.CommonFlags{Format: "json"}
	historyFile, topK = "", 0
	t.Cleanup(func() {
		_ = c.Close()
		root.AppContainer, root.SharedFlags = originalContainer, originalFlags
	})

	var out bytes.Buffer
	Cmd.SetOut(&out)
	searchCmd.SetOut(&out)
	return &out
}

func TestChatCommand_Metadata(t *testing.T) {
	assert.Equal(t, "chat <message>", Cmd.Use)
	assert.NotNil(t, Cmd.Flags().Lookup("history"))
	assert.Equal(t, "k", searchCmd.Flags().Lookup("top").Shorthand)
}

func TestChatCommand_RequiresAI(t *testing.T) {
	setup(t, false)
	err := Cmd.RunE(Cmd, []string{"hello"})
	require.Error(t, err)
	assert.Equal(t, apperror.KindServiceUnavailable, apperror.Kind(err))
}

func TestChatCommand_HistoryRoundTrip(t *testing.T) {
	out := setup(t, true)
	historyFile = filepath.Join(t.TempDir(), "history.json")

	require.NoError(t, Cmd.RunE(Cmd, []string{"How", "do", "I", "start", "saving?"}))
	var reply models.ChatReply
	require.NoError(t, json.Unmarshal(out.Bytes(), &reply))
	assert.Equal(t, "Start with a small emergency fund.", reply.Reply)
	assert.True(t, reply.Grounded)
	require.Len(t, reply.History, 2)
	assert.Equal(t, "How do I start saving?", reply.History[0].Content)

	info, err := os.Stat(historyFile)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	out.Reset()
	require.NoError(t, Cmd.RunE(Cmd, []string{"And then?"}))
	require.NoError(t, json.Unmarshal(out.Bytes(), &reply))
	assert.Len(t, reply.History, 4)

	saved, err := loadHistory(historyFile)
	require.NoError(t, err)
	assert.Len(t, saved, 4)
	assert.Equal(t, models.RoleAssistant, saved[3].Role)
}

func TestChatCommand_HistoryErrors(t *testing.T) {
	dir := t.TempDir()
	public := filepath.Join(dir, "public.json")
	require.NoError(t, os.WriteFile(public, []byte("[]"), 0o644))
	require.NoError(t, os.Chmod(public, 0o644))
	broken := filepath.Join(dir, "broken.json")
	require.NoError(t, os.WriteFile(broken, []byte("{not json"), 0o600))
	badRole := filepath.Join(dir, "role.json")
	require.NoError(t, os.WriteFile(badRole, []byte(`[{"role": "system", "content": "x"}]`), 0o600))

	tests := []struct {
		name string
		path string
	}{
		{"world readable", public},
		{"invalid json", broken},
		{"invalid role", badRole},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setup(t, true)
			historyFile = tt.path
			assert.Error(t, Cmd.RunE(Cmd, []string{"hello"}))
		})
	}
}

func TestSearchCommand(t *testing.T) {
	out := setup(t, false)
	topK = 2

	require.NoError(t, searchCmd.RunE(searchCmd, []string{"emergency", "fund"}))
	var got searchResult
	require.NoError(t, json.Unmarshal(out.Bytes(), &got))
	assert.Equal(t, "emergency fund", got.Query)
	require.Len(t, got.Results, 2)
	assert.Equal(t, "fk_002", got.Results[0].Document.ID)
}

func TestSearchCommand_InvalidTop(t *testing.T) {
	setup(t, false)
	topK = 21
	err := searchCmd.RunE(searchCmd, []string{"budget"})
	require.Error(t, err)
	assert.Equal(t, apperror.KindValidation, apperror.Kind(err))
}
