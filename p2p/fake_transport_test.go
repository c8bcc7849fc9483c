package p2p

import (
	"context"

	"github.com/libp2p/go-libp2p/core/peer"
)

// fakeTransport is an in-memory Transport double driven entirely by
// test fixtures: per-peer canned frame sequences or errors, with call
// counters so tests can assert on rotation and rediscovery behavior.
type fakeTransport struct {
	self peer.ID

	providers    map[string]map[peer.ID]struct{}
	providersErr error

	headerErr    map[peer.ID]error
	headerFrames map[peer.ID][]HeaderResponse
	headerCalls  map[peer.ID]int

	txErr    map[peer.ID]error
	txFrames map[peer.ID][]TransactionResponse
	txCalls  map[peer.ID]int

	published  []BlockID
	publishErr error

	discoverCalls int
}

func newFakeTransport(self peer.ID) *fakeTransport {
	return &fakeTransport{
		self:         self,
		providers:    make(map[string]map[peer.ID]struct{}),
		headerErr:    make(map[peer.ID]error),
		headerFrames: make(map[peer.ID][]HeaderResponse),
		headerCalls:  make(map[peer.ID]int),
		txErr:        make(map[peer.ID]error),
		txFrames:     make(map[peer.ID][]TransactionResponse),
		txCalls:      make(map[peer.ID]int),
	}
}

func (f *fakeTransport) PeerID() peer.ID { return f.self }

func (f *fakeTransport) CapabilityProviders(ctx context.Context, capability string) (map[peer.ID]struct{}, error) {
	f.discoverCalls++
	if f.providersErr != nil {
		return nil, f.providersErr
	}
	out := make(map[peer.ID]struct{})
	for p := range f.providers[capability] {
		out[p] = struct{}{}
	}
	return out, nil
}

func (f *fakeTransport) SendHeadersSyncRequest(ctx context.Context, p peer.ID, req BlockHeadersRequest) (<-chan HeaderResponse, error) {
	f.headerCalls[p]++
	if err, ok := f.headerErr[p]; ok {
		return nil, err
	}
	ch := make(chan HeaderResponse, len(f.headerFrames[p]))
	for _, frame := range f.headerFrames[p] {
		ch <- frame
	}
	close(ch)
	return ch, nil
}

func (f *fakeTransport) SendTransactionsSyncRequest(ctx context.Context, p peer.ID, req TransactionsRequest) (<-chan TransactionResponse, error) {
	f.txCalls[p]++
	if err, ok := f.txErr[p]; ok {
		return nil, err
	}
	ch := make(chan TransactionResponse, len(f.txFrames[p]))
	for _, frame := range f.txFrames[p] {
		ch <- frame
	}
	close(ch)
	return ch, nil
}

func (f *fakeTransport) Publish(ctx context.Context, topic string, blockID BlockID) error {
	if f.publishErr != nil {
		return f.publishErr
	}
	f.published = append(f.published, blockID)
	return nil
}
