package sms

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeDirectory struct {
	relievers []Reliever
	listErr   error
	head      Head
	headErr   error
}

func (f *fakeDirectory) ListRelievers(_ context.Context) ([]Reliever, error) {
	return f.relievers, f.listErr
}

func (f *fakeDirectory) GetHeadAdmin(_ context.Context) (Head, error) {
	return f.head, f.headErr
}

var sweepNow = time.Date(2025, 1, 20, 15, 0, 0, 0, time.UTC)

func testRelievers() []Reliever {
	return []Reliever{
		{ID: 1, Name: "Luis", Contact: "+639460371457"},
		{ID: 2, Name: "Xander", Contact: "+639060158736"},
		{ID: 3, Name: "Mara", Contact: "+639170000001"},
	}
}

func dumpOf(t *testing.T, recs []map[string]any) json.RawMessage {
	t.Helper()
	raw, err := json.Marshal(map[string]any{"result": map[string]any{"sms": recs}})
	require.NoError(t, err)
	return raw
}

func newTestSweeper(transport Transport, dir Directory) *Sweeper {
	s := NewSweeper(ruleOnlyEngine(), transport, dir)
	s.now = func() time.Time { return sweepNow }
	return s
}

func TestSweepScenario(t *testing.T) {
	// 3 reliever messages from today, 2 from yesterday, 1 unknown sender
	recs := []map[string]any{
		{"number": "+639460371457", "message": "Yes I can", "date": "2025-01-20 08:00:00"},
		{"number": "639060158736", "message": "Sure, works for me", "date": "2025-01-20 09:30:00"},
		{"number": "+639170000001", "message": "hmm", "date": "2025-01-20 10:00:00"},
		{"number": "+639460371457", "message": "yes", "date": "2025-01-19 23:59:00"},
		{"number": "+639060158736", "message": "ok", "date": "2025-01-19 08:00:00"},
		{"number": "+630000000000", "message": "yes", "date": "2025-01-20 08:00:00"},
	}

	transport := &fakeTransport{dump: dumpOf(t, recs)}
	dir := &fakeDirectory{
		relievers: testRelievers(),
		head:      Head{Name: "Boss", Contact: "+639998887777"},
	}

	result, err := newTestSweeper(transport, dir).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 3, result.ClassifiedCount)
	require.Len(t, result.Notified, 2)
	assert.Equal(t, "Luis", result.Notified[0].Name)
	assert.Equal(t, "Xander", result.Notified[1].Name)

	sent := transport.Sent()
	require.Len(t, sent, 2, "one notification per agreeing reliever")
	for _, s := range sent {
		assert.Equal(t, "+639998887777", s.To)
	}
	assert.Contains(t, sent[0].Text, "Luis")
	assert.Contains(t, sent[0].Text, "Yes I can")
}

func TestSweepEmptyDump(t *testing.T) {
	transport := &fakeTransport{dump: json.RawMessage(`[]`)}
	dir := &fakeDirectory{relievers: testRelievers(), head: Head{Name: "Boss", Contact: "+1"}}

	result, err := newTestSweeper(transport, dir).Run(context.Background())
	require.NoError(t, err)

	assert.Zero(t, result.ClassifiedCount)
	assert.Empty(t, result.ClassifiedMessages)
	assert.Empty(t, result.Notified)
	assert.Empty(t, transport.Sent())
}

func TestSweepSkipsUnparseableTimestamps(t *testing.T) {
	recs := []map[string]any{
		{"number": "+639460371457", "message": "yes", "date": "not a date"},
		{"number": "+639060158736", "message": "yes"},
	}

	transport := &fakeTransport{dump: dumpOf(t, recs)}
	dir := &fakeDirectory{relievers: testRelievers(), head: Head{Name: "Boss", Contact: "+1"}}

	result, err := newTestSweeper(transport, dir).Run(context.Background())
	require.NoError(t, err)

	assert.Zero(t, result.ClassifiedCount)
}

func TestSweepNoHeadContact(t *testing.T) {
	recs := []map[string]any{
		{"number": "+639460371457", "message": "yes", "date": "2025-01-20 08:00:00"},
	}

	transport := &fakeTransport{dump: dumpOf(t, recs)}
	dir := &fakeDirectory{relievers: testRelievers(), headErr: ErrNoHeadContact}

	_, err := newTestSweeper(transport, dir).Run(context.Background())
	require.ErrorIs(t, err, ErrNoHeadContact)
	assert.Empty(t, transport.Sent())
}

func TestSweepNoTransport(t *testing.T) {
	dir := &fakeDirectory{relievers: testRelievers()}

	_, err := newTestSweeper(nil, dir).Run(context.Background())
	assert.ErrorIs(t, err, ErrNoTransport)
}

func TestSweepDumpFetchError(t *testing.T) {
	transport := &fakeTransport{dumpErr: errors.New("provider down")}
	dir := &fakeDirectory{relievers: testRelievers()}

	_, err := newTestSweeper(transport, dir).Run(context.Background())
	assert.Error(t, err)
}

func TestSweepNotifyFailureDoesNotAbort(t *testing.T) {
	recs := []map[string]any{
		{"number": "+639460371457", "message": "yes", "date": "2025-01-20 08:00:00"},
		{"number": "+639060158736", "message": "sure", "date": "2025-01-20 09:00:00"},
	}

	transport := &fakeTransport{dump: dumpOf(t, recs), sendErr: fmt.Errorf("send blocked")}
	dir := &fakeDirectory{relievers: testRelievers(), head: Head{Name: "Boss", Contact: "+1"}}

	result, err := newTestSweeper(transport, dir).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, result.ClassifiedCount)
	assert.Empty(t, result.Notified, "failed sends are recorded as not notified")
}

func TestSweepFlatDumpShape(t *testing.T) {
	raw, err := json.Marshal([]map[string]any{
		{"from": "+639460371457", "message": "yes", "timestamp": sweepNow.Add(-time.Hour).Unix()},
	})
	require.NoError(t, err)

	transport := &fakeTransport{dump: raw}
	dir := &fakeDirectory{relievers: testRelievers(), head: Head{Name: "Boss", Contact: "+1"}}

	result, err := newTestSweeper(transport, dir).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, result.ClassifiedCount)
	require.Len(t, result.Notified, 1)
}
