package p2p

import (
	"context"
	"fmt"

	"github.com/t00ts/pathfinder/common"
	"github.com/t00ts/pathfinder/felt"
	"github.com/t00ts/pathfinder/log"
)

// Client is the peer-agnostic P2P client: it frees sync's producers
// from managing peers directly, converting capability discovery and
// transport-level request/response into the two lazy streams and the
// head-propagation call sync needs.
type Client struct {
	transport Transport
	topic     string
	cache     *PeersWithCapability
	failures  *peerFailures
	log       log.Logger
}

// NewClient builds a Client. propagationTopic is the gossipsub topic
// PropagateNewHead publishes NewBlock::Id messages on.
func NewClient(transport Transport, propagationTopic string) *Client {
	return &Client{
		transport: transport,
		topic:     propagationTopic,
		cache:     NewPeersWithCapability(DefaultCapabilityTTL),
		failures:  newPeerFailures(),
		log:       log.New("component", "p2p"),
	}
}

// HeaderStream returns a lazy stream of headers between start and
// stop, see NewHeaderStream.
func (c *Client) HeaderStream(start, stop common.BlockNumber, reverse bool) *HeaderStream {
	return NewHeaderStream(c, start, stop, reverse)
}

// TransactionStream returns a lazy stream of one block's transactions,
// see NewTransactionStream.
func (c *Client) TransactionStream(block common.BlockNumber) *TransactionStream {
	return NewTransactionStream(c, block)
}

// PropagateNewHead broadcasts a new L2 head on the configured gossip
// topic. Best-effort: failures are returned to the caller, not
// retried here.
func (c *Client) PropagateNewHead(ctx context.Context, number common.BlockNumber, hash felt.Felt) error {
	c.log.Debug("propagating head", "number", number, "hash", hash, "topic", c.topic)
	if err := c.transport.Publish(ctx, c.topic, BlockID{Number: number, Hash: hash}); err != nil {
		return fmt.Errorf("p2p: propagate new head: %w", err)
	}
	return nil
}
