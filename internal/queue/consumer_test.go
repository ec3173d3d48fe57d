package queue

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatLine(t *testing.T) {
	line := FormatLine(PortalEvent{
		Type: EventPortalCreated, UserID: 3, PortalID: 9,
		Category: "QA", Link: "indeed.com", OccurredAt: "2024-03-05T10:00:00Z",
	})
	assert.Equal(t, `[2024-03-05T10:00:00Z] portal.created | user_id=3 | portal_id=9 | category="QA" | link="indeed.com"`+"\n", line)

	line = FormatLine(PortalEvent{Type: EventUserRegistered, UserID: 1, OccurredAt: "t"})
	assert.Equal(t, "[t] user.registered | user_id=1\n", line)
}

func TestHandleMessage_AppendsLines(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "logs")

	for _, ev := range []PortalEvent{
		{Type: EventPortalCreated, UserID: 1, PortalID: 2, OccurredAt: "a"},
		{Type: EventPortalDeleted, UserID: 1, PortalID: 2, OccurredAt: "b"},
	} {
		body, err := json.Marshal(ev)
		require.NoError(t, err)
		require.NoError(t, HandleMessage(dir, body))
	}

	data, err := os.ReadFile(filepath.Join(dir, LogFileName))
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSuffix(string(data), "\n"), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "portal.created")
	assert.Contains(t, lines[1], "portal.deleted")
}

func TestHandleMessage_RejectsGarbage(t *testing.T) {
	dir := t.TempDir()
	assert.Error(t, HandleMessage(dir, []byte("not json")))
	assert.Error(t, HandleMessage(dir, []byte(`{"user_id":1}`)))

	_, err := os.Stat(filepath.Join(dir, LogFileName))
	assert.True(t, os.IsNotExist(err))
}
