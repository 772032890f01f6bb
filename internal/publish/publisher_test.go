package publish

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"launchScope/internal/model"
	"launchScope/internal/pipeline"
	"launchScope/internal/tier"
)

type message struct {
	subject string
	data    []byte
}

type fakeConn struct {
	messages []message
	err      error
	closed   bool
}

func (f *fakeConn) Publish(subject string, data []byte) error {
	if f.err != nil {
		return f.err
	}
	f.messages = append(f.messages, message{subject: subject, data: data})
	return nil
}

func (f *fakeConn) Close() { f.closed = true }

func TestPublishUsesKindSubject(t *testing.T) {
	conn := &fakeConn{}
	p := New(conn, "monitor.", nil)

	p.Handler()(model.ClassifiedEvent{
		Tx:   model.ChainTransaction{Hash: "0x01"},
		Kind: model.KindTokenCreation,
	})
	require.NoError(t, p.PublishOutcome(pipeline.Outcome{ContractsCreated: 2, Tier: tier.Regular, Tiered: true}))

	require.Len(t, conn.messages, 2)
	assert.Equal(t, "monitor.token_creation", conn.messages[0].subject)
	assert.Equal(t, "monitor.enriched", conn.messages[1].subject)

	var ev model.ClassifiedEvent
	require.NoError(t, json.Unmarshal(conn.messages[0].data, &ev))
	assert.Equal(t, "0x01", ev.Tx.Hash)

	var out map[string]any
	require.NoError(t, json.Unmarshal(conn.messages[1].data, &out))
	assert.Equal(t, "regular", out["tier"])

	p.Close()
	assert.True(t, conn.closed)
}

func TestPublishError(t *testing.T) {
	conn := &fakeConn{err: errors.New("nats: connection closed")}
	p := New(conn, "", nil)

	err := p.Publish(model.ClassifiedEvent{Kind: model.KindBuy})
	require.Error(t, err)
	assert.Equal(t, "launches.buy", p.Subject("BUY"))

	// The handler only logs.
	p.Handler()(model.ClassifiedEvent{Kind: model.KindBuy})
}
