package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/ssargent/sharecart/pkg/cart"
	"github.com/ssargent/sharecart/pkg/journal"
)

// maxBodyBytes bounds request bodies. A canonical cart is well under 2KB.
const maxBodyBytes = 64 << 10

// handleHealth reports whether the server is up and the cart file is present
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.metrics.RecordHealthCheck(true)
	sendSuccess(w, map[string]interface{}{
		"status":      "healthy",
		"cart_path":   s.store.Path(),
		"cart_exists": s.store.Exists(),
	})
}

// handleDecode decodes a text/plain cart body into a record
func (s *Server) handleDecode(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		sendError(w, "Failed to read request body", http.StatusBadRequest)
		return
	}

	record, err := s.codec.Decode(string(body))
	s.metrics.RecordCodecOperation("decode", err == nil)
	if err != nil {
		sendError(w, err.Error(), http.StatusBadRequest)
		return
	}

	sendSuccess(w, record)
}

// handleEncode encodes a JSON record into canonical cart text
func (s *Server) handleEncode(w http.ResponseWriter, r *http.Request) {
	record, ok := s.readRecord(w, r)
	if !ok {
		return
	}

	text := s.codec.Encode(record)
	s.metrics.RecordCodecOperation("encode", true)

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = io.WriteString(w, text)
}

// handleGetCart returns the record currently in the cart file
func (s *Server) handleGetCart(w http.ResponseWriter, r *http.Request) {
	record, err := s.store.Load()
	s.metrics.RecordCodecOperation("decode", err == nil)
	if err != nil {
		s.logger.Error("failed to load cart", zap.String("path", s.store.Path()), zap.Error(err))
		sendError(w, fmt.Sprintf("Failed to load cart: %v", err), http.StatusInternalServerError)
		return
	}

	sendSuccess(w, CartResponse{Path: s.store.Path(), Record: record})
}

// handlePutCart replaces the cart file with the posted record
func (s *Server) handlePutCart(w http.ResponseWriter, r *http.Request) {
	record, ok := s.readRecord(w, r)
	if !ok {
		return
	}

	s.writeCart(w, "put", cartChange{
		apply:          func(cart.Record) (cart.Record, error) { return record, nil },
		replacesBroken: true,
	})
}

// handlePatchCart applies field updates, in order, to the current record
func (s *Server) handlePatchCart(w http.ResponseWriter, r *http.Request) {
	var updates []FieldUpdate
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&updates); err != nil {
		sendError(w, "Invalid JSON in request body", http.StatusBadRequest)
		return
	}
	if len(updates) == 0 {
		sendError(w, "At least one field update is required", http.StatusBadRequest)
		return
	}

	s.writeCart(w, "patch", cartChange{
		apply: func(record cart.Record) (cart.Record, error) {
			for _, u := range updates {
				next, ok := record.With(u.Key, u.Value)
				if !ok {
					return record, badRequestError(fmt.Sprintf("Unknown cart field %q", u.Key))
				}
				record = next
			}
			return record, nil
		},
	})
}

// handleListSnapshots lists journal entries, newest first
func (s *Server) handleListSnapshots(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			sendError(w, "Invalid limit", http.StatusBadRequest)
			return
		}
		limit = n
	}

	entries, err := s.journal.List(limit)
	if err != nil {
		sendError(w, fmt.Sprintf("Failed to list snapshots: %v", err), http.StatusInternalServerError)
		return
	}
	if entries == nil {
		entries = []journal.Entry{}
	}

	sendSuccess(w, map[string]interface{}{
		"snapshots": entries,
		"count":     len(entries),
	})
}

// handleGetSnapshot returns one journal entry
func (s *Server) handleGetSnapshot(w http.ResponseWriter, r *http.Request) {
	entry, ok := s.lookupSnapshot(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	sendSuccess(w, entry)
}

// handleRestoreSnapshot writes a journal entry's record back to the cart file
func (s *Server) handleRestoreSnapshot(w http.ResponseWriter, r *http.Request) {
	entry, ok := s.lookupSnapshot(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	s.writeCart(w, "restore", cartChange{
		apply:          func(cart.Record) (cart.Record, error) { return entry.Record, nil },
		replacesBroken: true,
	})
}

func (s *Server) lookupSnapshot(w http.ResponseWriter, id string) (journal.Entry, bool) {
	entry, err := s.journal.Get(id)
	switch {
	case err == nil:
		return entry, true
	case errors.Is(err, journal.ErrInvalidID):
		sendError(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, journal.ErrNotFound):
		sendError(w, err.Error(), http.StatusNotFound)
	default:
		sendError(w, fmt.Sprintf("Failed to get snapshot: %v", err), http.StatusInternalServerError)
	}
	return journal.Entry{}, false
}

// readRecord decodes a JSON record body, answering 400 on failure
func (s *Server) readRecord(w http.ResponseWriter, r *http.Request) (cart.Record, bool) {
	var record cart.Record
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&record); err != nil {
		sendError(w, "Invalid JSON in request body", http.StatusBadRequest)
		return cart.Record{}, false
	}
	return record, true
}

// badRequestError is a change failure reported to the client as 400
type badRequestError string

func (e badRequestError) Error() string { return string(e) }

// cartChange describes one write to the cart file
type cartChange struct {
	// apply maps the current record to the one to save
	apply func(cart.Record) (cart.Record, error)
	// replacesBroken lets the write go ahead when the current cart does not
	// parse. Nothing is journaled in that case.
	replacesBroken bool
}

// writeCart loads the current cart, applies change, journals the current
// cart and saves the result, then answers with the record as it reads back
// from disk. Writes are serialized so concurrent requests never lose each
// other's changes.
func (s *Server) writeCart(w http.ResponseWriter, source string, change cartChange) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	current, err := s.store.Load()
	broken := err != nil && errors.Is(err, cart.ErrSyntax) && change.replacesBroken
	if err != nil && !broken {
		s.metrics.RecordCartWrite(source, false)
		s.logger.Error("failed to load cart", zap.String("path", s.store.Path()), zap.Error(err))
		sendError(w, fmt.Sprintf("Failed to load cart: %v", err), http.StatusInternalServerError)
		return
	}
	if broken {
		s.logger.Warn("skipping snapshot of unreadable cart", zap.String("path", s.store.Path()), zap.Error(err))
		current = cart.Record{}
	}

	next, err := change.apply(current)
	if err != nil {
		s.metrics.RecordCartWrite(source, false)
		var bad badRequestError
		if errors.As(err, &bad) {
			sendError(w, bad.Error(), http.StatusBadRequest)
			return
		}
		sendError(w, err.Error(), http.StatusInternalServerError)
		return
	}

	snapshotID := ""
	if !broken && s.store.Exists() {
		entry, err := s.journal.Append(current)
		s.metrics.RecordSnapshot(err == nil)
		if err != nil {
			s.metrics.RecordCartWrite(source, false)
			sendError(w, fmt.Sprintf("Failed to snapshot cart: %v", err), http.StatusInternalServerError)
			return
		}
		snapshotID = entry.ID
	}

	if err := s.store.Save(next); err != nil {
		s.metrics.RecordCartWrite(source, false)
		s.logger.Error("failed to save cart", zap.String("path", s.store.Path()), zap.Error(err))
		sendError(w, fmt.Sprintf("Failed to save cart: %v", err), http.StatusInternalServerError)
		return
	}
	s.metrics.RecordCodecOperation("encode", true)

	saved, err := s.store.Load()
	if err != nil {
		s.metrics.RecordCartWrite(source, false)
		sendError(w, fmt.Sprintf("Failed to reload cart: %v", err), http.StatusInternalServerError)
		return
	}

	s.metrics.RecordCartWrite(source, true)
	s.logger.Info("cart written",
		zap.String("source", source),
		zap.String("path", s.store.Path()),
		zap.String("snapshot", snapshotID),
	)
	sendSuccess(w, CartResponse{Path: s.store.Path(), Record: saved, SnapshotID: snapshotID})
}
