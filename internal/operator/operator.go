package operator

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/carson-networks/ledger-server/internal/ledger"
	"github.com/carson-networks/ledger-server/internal/operator/actions"
	"github.com/carson-networks/ledger-server/internal/storage"
)

// WriterSource opens a write transaction. *storage.Storage implements it.
type WriterSource interface {
	Write(ctx context.Context) (*storage.Writer, error)
}

// Operator is one worker. It runs each queued action in its own transaction.
type Operator struct {
	storage WriterSource
	queue   chan ActionItem
	logger  *logrus.Logger
}

func NewOperator(s WriterSource, queue chan ActionItem, logger *logrus.Logger) *Operator {
	return &Operator{
		storage: s,
		queue:   queue,
		logger:  logger,
	}
}

// Run processes items until the queue is closed.
func (o *Operator) Run() {
	for item := range o.queue {
		item.response <- ActionItemResponse{err: o.processItem(item)}
	}
}

func (o *Operator) processItem(item ActionItem) error {
	// The caller stopped waiting; don't open a transaction for it.
	if err := item.ctx.Err(); err != nil {
		return err
	}

	start := time.Now()
	writer, err := o.storage.Write(item.ctx)
	if err != nil {
		o.logResult(item.action, start, err)
		return err
	}

	if err = perform(item.ctx, item.action, writer); err != nil {
		if rbErr := writer.Rollback(); rbErr != nil {
			o.logger.WithError(rbErr).Warn("Operator.processItem.rollback")
		}
		o.logResult(item.action, start, err)
		return err
	}

	err = writer.Commit()
	o.logResult(item.action, start, err)
	return err
}

// perform turns a panicking action into an integrity error so the transaction
// is rolled back and the worker survives.
func perform(ctx context.Context, action actions.IAction, writer *storage.Writer) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = ledger.NewIntegrityError("action %s panicked: %v", actionName(action), r)
		}
	}()
	return action.Perform(ctx, writer)
}

// logResult logs failures the caller caused at Info and store failures at Error.
func (o *Operator) logResult(action actions.IAction, start time.Time, err error) {
	entry := o.logger.WithFields(logrus.Fields{
		"action":     actionName(action),
		"durationMs": time.Since(start).Milliseconds(),
	})
	switch ledger.KindOf(err) {
	case "":
		if err == nil {
			entry.Debug("Operator.action.Committed")
			return
		}
		entry.WithError(err).Error("Operator.action.Failed")
	case ledger.KindPersistence, ledger.KindIntegrity:
		entry.WithError(err).Error("Operator.action.Failed")
	default:
		entry.WithError(err).Info("Operator.action.Rejected")
	}
}

func actionName(action actions.IAction) string {
	name := fmt.Sprintf("%T", action)
	return name[strings.LastIndex(name, ".")+1:]
}

type ActionItem struct {
	ctx      context.Context
	action   actions.IAction
	response chan ActionItemResponse
}

type ActionItemResponse struct {
	err error
}
