// internal/app/system/txn/txn.go
package txn

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Mongo error codes returned when a deployment cannot run transactions.
var notSupportedCodes = map[int32]struct{}{
	20:  {}, // IllegalOperation: standalone server
	51:  {}, // IllegalOperation (older servers)
	263: {}, // OperationNotSupportedInTransaction
}

// Run executes fn inside a multi-document transaction. fn must use the ctx
// it is given so its writes join the transaction.
//
// A standalone server cannot run transactions. There the first write in fn
// fails before anything is applied, and fn is run once more without a
// transaction.
func Run(ctx context.Context, db *mongo.Database, log *zap.Logger, fn func(ctx context.Context) error) error {
	sess, err := db.Client().StartSession()
	if err != nil {
		return fmt.Errorf("start session: %w", err)
	}
	defer sess.EndSession(ctx)

	_, err = sess.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return nil, fn(sc)
	})
	if err == nil || !IsNotSupported(err) {
		return err
	}

	if log != nil {
		log.Warn("transactions not supported; running writes without one", zap.Error(err))
	}
	return fn(ctx)
}

// IsNotSupported reports whether err says the deployment cannot run a
// transaction, as opposed to a failure of the work inside one.
func IsNotSupported(err error) bool {
	if err == nil {
		return false
	}
	var ce mongo.CommandError
	if errors.As(err, &ce) {
		if _, ok := notSupportedCodes[ce.Code]; ok {
			return true
		}
	}

	msg := strings.ToLower(err.Error())
	has := func(s string) bool { return strings.Contains(msg, s) }
	switch {
	case has("transaction") && has("replica set"):
		return true
	case has("transaction") && has("session"):
		return true
	case has("transaction") && has("illegal operation"):
		return true
	case has("session") && has("not supported"):
		return true
	}
	return false
}
