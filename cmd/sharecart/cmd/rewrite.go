package cmd

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/ssargent/sharecart/pkg/cart"
	"github.com/ssargent/sharecart/pkg/cartfile"
	"github.com/ssargent/sharecart/pkg/journal"
)

// openStore returns the cart file store for the loaded config
func openStore() *cartfile.Store {
	return cartfile.New(cfg.CartPath, nil)
}

// openJournal opens the snapshot journal for the loaded config. Callers
// close it.
func openJournal() (*journal.Journal, error) {
	j, err := journal.Open(cfg.JournalDir, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open journal %s: %w", cfg.JournalDir, err)
	}
	j.SetLogger(logger)
	return j, nil
}

// rewrite describes one change to the cart file
type rewrite struct {
	// change maps the current record to the one to save
	change func(cart.Record) (cart.Record, error)
	// replacesBroken lets the change proceed when the current cart does not
	// parse. Nothing is journaled in that case.
	replacesBroken bool
}

// rewriteCart applies rw to the current cart, journals the current cart and
// saves the result. A failed change writes nothing.
// It returns the record as it reads back from disk and the snapshot id,
// which is empty when there was nothing to journal.
func rewriteCart(store *cartfile.Store, j *journal.Journal, log *zap.Logger, rw rewrite) (cart.Record, string, error) {
	current, err := store.Load()
	broken := err != nil && errors.Is(err, cart.ErrSyntax) && rw.replacesBroken
	if err != nil && !broken {
		return cart.Record{}, "", err
	}

	if broken {
		log.Warn("current cart does not parse, not journaling it", zap.String("path", store.Path()), zap.Error(err))
		current = cart.Record{}
	}

	next, err := rw.change(current)
	if err != nil {
		return cart.Record{}, "", err
	}

	snapshotID := ""
	if !broken && store.Exists() {
		entry, err := j.Append(current)
		if err != nil {
			return cart.Record{}, "", fmt.Errorf("failed to journal current cart: %w", err)
		}
		snapshotID = entry.ID
		log.Debug("journaled cart", zap.String("snapshot", snapshotID))
	}

	if err := store.Save(next); err != nil {
		return cart.Record{}, snapshotID, err
	}

	saved, err := store.Load()
	if err != nil {
		return cart.Record{}, snapshotID, err
	}
	log.Info("cart written", zap.String("path", store.Path()), zap.String("snapshot", snapshotID))
	return saved, snapshotID, nil
}
