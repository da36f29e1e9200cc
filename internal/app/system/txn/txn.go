// internal/app/system/txn/txn.go

// Package txn wraps multi-document writes in a MongoDB transaction when the
// deployment supports one (replica set or sharded cluster). On standalone
// servers — common in dev and CI — transactions are unavailable, so the
// callback runs without a session and callers rely on their conditional
// single-document updates plus compensation for consistency.
package txn

import (
	"context"
	"strings"

	"go.mongodb.org/mongo-driver/mongo"
)

// WithTransaction runs fn inside a session transaction against client. When
// the server reports that transactions are not supported, fn is re-run
// outside a session instead of failing. A nil client (store-level tests)
// also runs fn directly.
func WithTransaction(ctx context.Context, client *mongo.Client, fn func(ctx context.Context) error) error {
	if client == nil {
		return fn(ctx)
	}
	sess, err := client.StartSession()
	if err != nil {
		if IsNotSupported(err) {
			return fn(ctx)
		}
		return err
	}
	defer sess.EndSession(ctx)

	_, err = sess.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return nil, fn(sc)
	})
	if err != nil && IsNotSupported(err) {
		return fn(ctx)
	}
	return err
}

// Server error codes returned when transactions or sessions are unsupported:
// 20 IllegalOperation (transaction numbers on non-replset), 51 and 263 for
// operations illegal inside a multi-document transaction.
var notSupportedCodes = map[int32]bool{20: true, 51: true, 263: true}

// IsNotSupported reports whether err indicates the deployment cannot run
// multi-document transactions, as opposed to the transaction itself failing.
func IsNotSupported(err error) bool {
	if err == nil {
		return false
	}
	var cmdErr mongo.CommandError
	if ok := asCommandError(err, &cmdErr); ok {
		return notSupportedCodes[cmdErr.Code]
	}

	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "transaction") {
		if strings.Contains(msg, "replica set") ||
			strings.Contains(msg, "session") ||
			strings.Contains(msg, "illegal operation") {
			return true
		}
	}
	if strings.Contains(msg, "session") && strings.Contains(msg, "not supported") {
		return true
	}
	return false
}

func asCommandError(err error, target *mongo.CommandError) bool {
	if cmdErr, ok := err.(mongo.CommandError); ok {
		*target = cmdErr
		return true
	}
	return false
}
