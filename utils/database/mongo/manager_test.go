package manager

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
)

func TestPageRecordBSON(t *testing.T) {
	at := time.Date(2025, 5, 2, 8, 30, 0, 0, time.UTC)
	rec := pageRecord{ID: "home", Title: "Accueil", Content: `{"b":1,"a":2}`, Revision: 3, UpdatedAt: at}

	data, err := bson.Marshal(rec)
	require.NoError(t, err)

	var raw bson.M
	require.NoError(t, bson.Unmarshal(data, &raw))
	require.Equal(t, "home", raw["_id"])
	require.Equal(t, int64(3), raw["revision"])

	var back pageRecord
	require.NoError(t, bson.Unmarshal(data, &back))
	doc := back.toDocument()
	require.Equal(t, `{"b":1,"a":2}`, string(doc.Content))
	require.True(t, at.Equal(doc.UpdatedAt))
}
