// Package sync implements the Sync Driver (component A), the Sync
// Status Publisher (component F) and the Composite-Head Reconciler
// (component G): the event loop that reconciles the two independent L1
// and L2 producers into one locally persisted chain view.
package sync

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/t00ts/pathfinder/common"
	"github.com/t00ts/pathfinder/core/types"
	"github.com/t00ts/pathfinder/event"
	"github.com/t00ts/pathfinder/log"
	"github.com/t00ts/pathfinder/state"
	"github.com/t00ts/pathfinder/storage"
)

// ErrStateRootMismatch is fatal: the Global State Updater's computed
// root disagrees with the root the L2 block claims.
var ErrStateRootMismatch = errors.New("sync: computed state root does not match block's state root")

// L1ProducerFactory spawns a new L1 producer given the last L1 log on
// record, or nil if the store has none yet. It returns the capacity-1
// event channel and a Subscription whose Err() reports the producer's
// outcome once the channel closes.
type L1ProducerFactory func(last *types.StateUpdateLog) (<-chan L1Event, event.Subscription)

// L2ProducerFactory spawns a new L2 producer given the last L2 block on
// record, or nil if the store has none yet.
type L2ProducerFactory func(last *types.StarknetBlock) (<-chan L2Event, event.Subscription)

// Driver runs the main sync event loop. It never returns nil
// from Run: Run blocks until ctx is cancelled (returning ctx.Err()) or
// a fatal condition occurs (store failure, state-root mismatch).
type Driver struct {
	store   *storage.Store
	updater *state.Updater
	status  *StatusCell
	log     log.Logger

	l1Factory L1ProducerFactory
	l2Factory L2ProducerFactory

	blockTime *blockTimeEWMA

	now func() time.Time
}

// NewDriver builds a Driver. now defaults to time.Now; tests override
// it for deterministic EWMA behavior.
func NewDriver(store *storage.Store, updater *state.Updater, status *StatusCell, l1 L1ProducerFactory, l2 L2ProducerFactory, logger log.Logger) *Driver {
	if logger == nil {
		logger = log.New("component", "sync")
	}
	return &Driver{
		store:     store,
		updater:   updater,
		status:    status,
		log:       logger,
		l1Factory: l1,
		l2Factory: l2,
		blockTime: newBlockTimeEWMA(),
		now:       time.Now,
	}
}

// Run executes the event loop until ctx is cancelled or a fatal error
// occurs. It is the only method that blocks; every handler it calls
// runs to completion synchronously before the next event is pulled,
// so each event is fully processed before the next one starts.
func (d *Driver) Run(ctx context.Context) error {
	var l1State storage.L1StateTable
	var blocks storage.StarknetBlocksTable

	var lastL1 *types.StateUpdateLog
	if err := d.store.View(func(r storage.Reader) error {
		latest, ok, err := l1State.GetLatest(r)
		if err != nil {
			return err
		}
		if ok {
			lastL1 = &latest
		}
		return nil
	}); err != nil {
		return fmt.Errorf("read initial L1 head: %w", err)
	}

	var lastL2 *types.StarknetBlock
	if err := d.store.View(func(r storage.Reader) error {
		block, ok, err := blocks.GetLatest(r)
		if err != nil {
			return err
		}
		if ok {
			lastL2 = &block
		}
		return nil
	}); err != nil {
		return fmt.Errorf("read initial L2 head: %w", err)
	}

	var scope event.SubscriptionScope
	defer scope.Close()

	l1ch, l1sub := d.l1Factory(lastL1)
	l1sub = scope.Track(l1sub)
	l2ch, l2sub := d.l2Factory(lastL2)
	l2sub = scope.Track(l2sub)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case ev, ok := <-l1ch:
			if !ok {
				d.log.Warn("L1 producer channel closed, respawning")
				if err := <-l1sub.Err(); err != nil {
					d.log.Error("L1 producer exited with error", "err", err)
				}
				lastL1, err := d.readLatestL1(&l1State)
				if err != nil {
					return err
				}
				l1ch, l1sub = d.l1Factory(lastL1)
				l1sub = scope.Track(l1sub)
				continue
			}
			if err := d.handleL1Event(ev); err != nil {
				return err
			}

		case ev, ok := <-l2ch:
			if !ok {
				d.log.Warn("L2 producer channel closed, respawning")
				if err := <-l2sub.Err(); err != nil {
					d.log.Error("L2 producer exited with error", "err", err)
				}
				lastL2, err := d.readLatestL2(&blocks)
				if err != nil {
					return err
				}
				l2ch, l2sub = d.l2Factory(lastL2)
				l2sub = scope.Track(l2sub)
				continue
			}
			if err := d.handleL2Event(ev); err != nil {
				return err
			}
		}
	}
}

func (d *Driver) readLatestL1(table *storage.L1StateTable) (*types.StateUpdateLog, error) {
	var out *types.StateUpdateLog
	err := d.store.View(func(r storage.Reader) error {
		latest, ok, err := table.GetLatest(r)
		if err != nil {
			return err
		}
		if ok {
			out = &latest
		}
		return nil
	})
	return out, err
}

func (d *Driver) readLatestL2(table *storage.StarknetBlocksTable) (*types.StarknetBlock, error) {
	var out *types.StarknetBlock
	err := d.store.View(func(r storage.Reader) error {
		block, ok, err := table.GetLatest(r)
		if err != nil {
			return err
		}
		if ok {
			out = &block
		}
		return nil
	})
	return out, err
}

func (d *Driver) handleL1Event(ev L1Event) error {
	var l1 storage.L1StateTable

	switch e := ev.(type) {
	case L1Update:
		tx := d.store.Begin()
		for _, entry := range e.Logs {
			if err := l1.Insert(tx.Writer(), entry); err != nil {
				tx.Rollback()
				return fmt.Errorf("insert L1 log: %w", err)
			}
		}
		if err := reconcileL1Forward(tx, e.Logs); err != nil {
			tx.Rollback()
			return fmt.Errorf("reconcile after L1 update: %w", err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit L1 update: %w", err)
		}
		switch len(e.Logs) {
		case 0:
		case 1:
			d.log.Info("L1 sync updated to block", "block", e.Logs[0].BlockNumber)
		default:
			d.log.Info("L1 sync updated with blocks", "from", e.Logs[0].BlockNumber, "to", e.Logs[len(e.Logs)-1].BlockNumber)
		}

	case L1Reorg:
		tx := d.store.Begin()
		if err := l1.Reorg(tx.Writer(), e.Tail); err != nil {
			tx.Rollback()
			return fmt.Errorf("delete L1 logs: %w", err)
		}
		if err := retractOnReorg(tx, e.Tail); err != nil {
			tx.Rollback()
			return fmt.Errorf("retract head after L1 reorg: %w", err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit L1 reorg: %w", err)
		}
		if e.Tail == common.Genesis {
			d.log.Warn("L1 reorg occurred, new L1 head is genesis")
		} else {
			d.log.Warn("L1 reorg occurred", "newHead", e.Tail.Prev())
		}

	case L1QueryUpdate:
		var reply L1QueryUpdateReply
		err := d.store.View(func(r storage.Reader) error {
			entry, ok, err := l1.Get(r, e.Block)
			reply = L1QueryUpdateReply{Log: entry, Found: ok}
			return err
		})
		if err != nil {
			return fmt.Errorf("query L1 update: %w", err)
		}
		e.Reply <- reply
	}
	return nil
}

func (d *Driver) handleL2Event(ev L2Event) error {
	var blocks storage.StarknetBlocksTable
	var txs storage.StarknetTransactionsTable
	var contracts storage.ContractCodeTable

	switch e := ev.(type) {
	case L2Update:
		if len(e.Txs) != len(e.Receipts) {
			return fmt.Errorf("sync: L2 update for block %d has %d txs but %d receipts", e.Block.Number, len(e.Txs), len(e.Receipts))
		}
		updateStart := d.now()
		tx := d.store.Begin()
		newRoot, err := d.updater.Update(state.StoreIndex{Tx: tx}, e.Diff)
		if err != nil {
			tx.Rollback()
			return fmt.Errorf("apply state diff: %w", err)
		}
		if newRoot != e.Block.Root {
			tx.Rollback()
			return fmt.Errorf("%w: block %d computed=%s want=%s", ErrStateRootMismatch, e.Block.Number, newRoot, e.Block.Root)
		}
		if err := blocks.Insert(tx.Writer(), e.Block); err != nil {
			tx.Rollback()
			return fmt.Errorf("insert L2 block: %w", err)
		}
		for i, t := range e.Txs {
			if err := txs.Put(tx.Writer(), uint64(e.Block.Number), uint32(i), t, e.Receipts[i]); err != nil {
				tx.Rollback()
				return fmt.Errorf("upsert transaction: %w", err)
			}
		}
		if err := reconcileL2Forward(tx, e.Block.Number, e.Block.Root); err != nil {
			tx.Rollback()
			return fmt.Errorf("reconcile after L2 update: %w", err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit L2 update: %w", err)
		}
		updateElapsed := d.now().Sub(updateStart)
		blockTime := d.blockTime.Observe(d.now())
		d.status.SetCurrent(e.Block.Hash)

		storageUpdates := 0
		for _, cu := range e.Diff.ContractUpdates {
			storageUpdates += len(cu.StorageUpdates)
		}
		d.log.Info("updated StarkNet state with block", "block", e.Block.Number)
		d.log.Debug("updated StarkNet state",
			"block", e.Block.Number,
			"blockTime", blockTime,
			"avgBlockTime", d.blockTime.Average(),
			"deployedContracts", len(e.Diff.DeployedContracts),
			"storageUpdates", storageUpdates,
			"updateTime", updateElapsed,
			"deployTime", e.Timings.ContractDeployment,
			"blockDownload", e.Timings.BlockDownload,
			"stateDiffDownload", e.Timings.StateDiffDownload,
		)

	case L2Reorg:
		tx := d.store.Begin()
		if err := blocks.Reorg(tx.Writer(), e.Tail); err != nil {
			tx.Rollback()
			return fmt.Errorf("delete L2 blocks: %w", err)
		}
		if err := txs.Reorg(tx.Writer(), uint64(e.Tail)); err != nil {
			tx.Rollback()
			return fmt.Errorf("delete L2 transactions: %w", err)
		}
		if err := retractOnReorg(tx, e.Tail); err != nil {
			tx.Rollback()
			return fmt.Errorf("retract head after L2 reorg: %w", err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit L2 reorg: %w", err)
		}
		if e.Tail == common.Genesis {
			d.log.Warn("L2 reorg occurred, new L2 head is genesis")
		} else {
			d.log.Warn("L2 reorg occurred", "newHead", e.Tail.Prev())
		}

	case L2NewContract:
		tx := d.store.Begin()
		inserted, err := contracts.Insert(tx.ReadWriter(), e.Contract)
		if err != nil {
			tx.Rollback()
			return fmt.Errorf("insert contract definition: %w", err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit new contract: %w", err)
		}
		d.log.Debug("contract definition inserted", "hash", e.Contract.Hash, "inserted", inserted)

	case L2QueryHash:
		var reply L2QueryHashReply
		err := d.store.View(func(r storage.Reader) error {
			block, ok, err := blocks.Get(r, e.Block)
			reply = L2QueryHashReply{Hash: block.Hash, Found: ok}
			return err
		})
		if err != nil {
			return fmt.Errorf("query block hash: %w", err)
		}
		e.Reply <- reply

	case L2QueryContractExistence:
		var result []bool
		err := d.store.View(func(r storage.Reader) error {
			var err error
			result, err = contracts.Exists(r, e.Hashes)
			return err
		})
		if err != nil {
			return fmt.Errorf("query contract existence: %w", err)
		}
		found := 0
		for _, ok := range result {
			if ok {
				found++
			}
		}
		d.log.Debug("contract existence query", "queried", len(e.Hashes), "found", found)
		e.Reply <- result
	}
	return nil
}
