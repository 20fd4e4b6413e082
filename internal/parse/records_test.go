package parse

import (
	"errors"
	"testing"

	"github.com/Zuo-Peng/ai-session-dataset/internal/jsonl"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadRecords(t *testing.T) {
	path := writeSession(t, t.TempDir(), "dataset.jsonl",
		`{"session_id":"s","uuid":"u1","parent_uuid":null,"role":"user","content":"q"}`,
		`{"session_id":"s","uuid":"u2","parent_uuid":"u1","role":"assistant","content":"a","thinking":"t","tool_calls":[{"name":"Read","input":{"p":1}}]}`,
	)

	recs, err := ReadRecords(path)
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Nil(t, recs[0].ParentUUID)
	assert.Equal(t, "u1", *recs[1].ParentUUID)
	assert.Equal(t, "t", *recs[1].Thinking)
	assert.Equal(t, "Read", recs[1].ToolCalls[0].Name)
}

func TestReadRecordsMalformed(t *testing.T) {
	path := writeSession(t, t.TempDir(), "dataset.jsonl", `{"uuid":"u1","role":"user","content":"q"}`, `nope`)
	_, err := ReadRecords(path)
	var derr *jsonl.DecodeError
	require.True(t, errors.As(err, &derr))
	assert.Equal(t, 2, derr.Line)
}
