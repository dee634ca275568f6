package redis

import (
	"strings"
	"testing"
	"time"

	"assistante-suite/utils/jsonform"

	"github.com/stretchr/testify/require"
)

func TestEditorStateEncoding(t *testing.T) {
	at := time.Date(2025, 4, 1, 9, 0, 0, 0, time.UTC)
	snapshot := `{"services":[` + strings.Repeat(`{"title":"Gestion administrative"},`, 40) + `{}]}`
	state := jsonform.State{
		DocumentID: "home",
		Serialized: `{"title":"Accueil"}`,
		Revision:   7,
		Loaded:     true,
		Expanded:   []string{"section:", "section:services"},
		Mode:       jsonform.ModeRenaming,
		PendingRename: &jsonform.PendingRename{
			Path:    jsonform.Path{jsonform.Key("items"), jsonform.Index(2), jsonform.Key("title")},
			NewName: "heading",
		},
		History: []jsonform.HistoryEntry{{Snapshot: snapshot, Description: "Delete hero", At: at}},
	}

	data, err := EncodeState(state)
	require.NoError(t, err)
	require.Less(t, len(data), len(snapshot))

	back, err := DecodeState(data)
	require.NoError(t, err)
	require.Equal(t, state.DocumentID, back.DocumentID)
	require.Equal(t, state.Revision, back.Revision)
	require.Equal(t, state.Expanded, back.Expanded)
	require.Equal(t, jsonform.ModeRenaming, back.Mode)
	require.Equal(t, state.PendingRename.Path, back.PendingRename.Path)
	require.Nil(t, back.PendingAdd)
	require.Len(t, back.History, 1)
	require.Equal(t, snapshot, back.History[0].Snapshot)
	require.True(t, at.Equal(back.History[0].At))
}

func TestDecodeStateRejectsGarbage(t *testing.T) {
	_, err := DecodeState([]byte("not zstd"))
	require.Error(t, err)
}

func TestKeys(t *testing.T) {
	require.Equal(t, "assistante:pages:cache:home", BuildPageCacheKey("home"))
	require.Equal(t, "assistante:editor:state:admin:home", BuildEditorStateKey("admin", "home"))
	require.True(t, strings.HasPrefix(BuildAdminSessionKey("admin", "tok"), BuildAdminSessionPrefix("admin")))
	require.Equal(t, "assistante:ratelimit:newsletter:1.2.3.4", BuildRateLimitKey("newsletter", "1.2.3.4"))
}
