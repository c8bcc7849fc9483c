package p2p

import (
	"context"

	"github.com/libp2p/go-libp2p/core/peer"
	"github.com/t00ts/pathfinder/common"
	"github.com/t00ts/pathfinder/core/types"
	"github.com/t00ts/pathfinder/felt"
)

// Direction is the iteration direction of a sync request.
type Direction int

const (
	Forward Direction = iota
	Backward
)

// Iteration describes one paginated sync request: start at Start, move
// Step per item in Direction, stopping after Limit items.
type Iteration struct {
	Start     common.BlockNumber
	Direction Direction
	Limit     uint64
	Step      uint64
}

// BlockHeadersRequest requests a run of block headers.
type BlockHeadersRequest struct {
	Iteration Iteration
}

// SignedHeader is the wire shape of one L2 block header as received
// from a peer, before sync ever sees it: just enough to drive the
// sync driver's consistency checks, signature verification is out of
// scope for this core.
type SignedHeader struct {
	Number common.BlockNumber
	Hash   felt.Felt
	Root   felt.Felt
}

// HeaderResponse is the sealed set of frames a headers stream can
// yield: either one header, or Fin terminating this peer's response.
type HeaderResponse interface{ isHeaderResponse() }

type HeaderResponseHeader struct{ Header SignedHeader }
type HeaderResponseFin struct{}

func (HeaderResponseHeader) isHeaderResponse() {}
func (HeaderResponseFin) isHeaderResponse()    {}

// TransactionsRequest requests the transactions of a single block.
type TransactionsRequest struct {
	Iteration Iteration
}

// TransactionResponse is the sealed set of frames a transactions
// stream can yield.
type TransactionResponse interface{ isTransactionResponse() }

type TransactionResponseTransaction struct{ Transaction types.Transaction }
type TransactionResponseFin struct{}

func (TransactionResponseTransaction) isTransactionResponse() {}
func (TransactionResponseFin) isTransactionResponse()         {}

// Transport is the low-level collaborator this client consumes: the
// raw libp2p request/response protocol and gossipsub publish, kept
// out of scope here. A production implementation dials peers,
// manages streams and enforces codec-level framing; this package only
// needs the capability-discovery, request and publish surface.
type Transport interface {
	PeerID() peer.ID
	CapabilityProviders(ctx context.Context, capability string) (map[peer.ID]struct{}, error)
	SendHeadersSyncRequest(ctx context.Context, p peer.ID, req BlockHeadersRequest) (<-chan HeaderResponse, error)
	SendTransactionsSyncRequest(ctx context.Context, p peer.ID, req TransactionsRequest) (<-chan TransactionResponse, error)
	Publish(ctx context.Context, topic string, blockID BlockID) error
}

// BlockID is the minimal payload a NewBlock::Id head-propagation
// message carries.
type BlockID struct {
	Number common.BlockNumber
	Hash   felt.Felt
}
