// Copyright 2025 walteh LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package transaction runs a mutation with commit and rollback hooks.
package transaction

import (
	"context"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/tb/pkg/errs"
)

// 📊 Status is where a transaction ended up
type Status string

const (
	StatusPending    Status = "pending"
	StatusCommitted  Status = "committed"
	StatusRolledBack Status = "rolled_back"
	StatusFailed     Status = "failed"
)

// Handler is one step of a transaction.
type Handler func(ctx context.Context) error

// Option configures a Transaction.
type Option func(*Transaction)

// WithCommit runs h after a successful execute.
func WithCommit(h Handler) Option {
	return func(t *Transaction) {
		t.commit = h
	}
}

// WithRollback runs h after a failed execute.
func WithRollback(h Handler) Option {
	return func(t *Transaction) {
		t.rollback = h
	}
}

// 🔄 Transaction pairs an execute step with commit and rollback steps
type Transaction struct {
	execute  Handler
	commit   Handler
	rollback Handler
	status   Status
}

// 🏭 New creates a pending transaction
func New(execute Handler, opts ...Option) (*Transaction, error) {
	if execute == nil {
		return nil, &errs.ArgumentError{Argument: "execute", Reason: "is required"}
	}

	t := &Transaction{execute: execute, status: StatusPending}
	for _, opt := range opts {
		opt(t)
	}
	return t, nil
}

// Status returns the current state.
func (t *Transaction) Status() Status {
	return t.status
}

// 🚀 Run executes the transaction.
//
// A failed execute is followed by rollback and its error is returned, joined
// with the rollback error if rollback fails too. A successful execute is
// followed by commit.
func (t *Transaction) Run(ctx context.Context) error {
	logger := zerolog.Ctx(ctx)

	if err := t.execute(ctx); err != nil {
		logger.Debug().Err(err).Msg("transaction failed, rolling back")

		if t.rollback == nil {
			t.status = StatusRolledBack
			return err
		}

		if rerr := t.rollback(ctx); rerr != nil {
			t.status = StatusFailed
			logger.Error().Err(rerr).Msg("rollback failed")
			return errors.Join(err, errors.Errorf("rolling back: %w", rerr))
		}

		t.status = StatusRolledBack
		return err
	}

	if t.commit != nil {
		if err := t.commit(ctx); err != nil {
			t.status = StatusFailed
			return errors.Errorf("committing: %w", err)
		}
	}

	t.status = StatusCommitted
	logger.Trace().Msg("transaction committed")

	return nil
}
