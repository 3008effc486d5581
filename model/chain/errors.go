package chain

import (
	"errors"
	"fmt"
)

// Sentinel errors for conditions with no useful extra context.
var (
	// ErrNoPendingState is returned when an operation requiring a pending
	// state (push_transaction, finalize_block, commit_block, abort_block)
	// is invoked with none open.
	ErrNoPendingState = errors.New("no pending state: call start_block first")

	// ErrPendingStateExists is returned by start_block when a pending
	// state is already open (spec §4.4 precondition).
	ErrPendingStateExists = errors.New("pending state already exists")

	// ErrUnlinkableBlock is returned when a block does not connect to any
	// known ancestor in the fork database.
	ErrUnlinkableBlock = errors.New("block does not link to a known ancestor")

	// ErrUnknownTransaction is returned when a transaction reference
	// cannot be resolved.
	ErrUnknownTransaction = errors.New("unknown transaction")
)

// ConfigurationError indicates a constructor or component was initialized
// with invalid or inconsistent parameters.
type ConfigurationError struct {
	err error
}

func NewConfigurationError(err error) error { return ConfigurationError{err} }

func NewConfigurationErrorf(msg string, args ...interface{}) error {
	return ConfigurationError{fmt.Errorf(msg, args...)}
}

func (e ConfigurationError) Error() string { return e.err.Error() }
func (e ConfigurationError) Unwrap() error { return e.err }

// IsConfigurationError returns whether err is a ConfigurationError.
func IsConfigurationError(err error) bool {
	var e ConfigurationError
	return errors.As(err, &e)
}

// MissingBlockError indicates that no block with identifier BlockID is
// known to the fork database.
type MissingBlockError struct {
	BlockNum uint32
	BlockID  Identifier
}

func (e MissingBlockError) Error() string {
	return fmt.Sprintf("missing block at num %d with id %s", e.BlockNum, e.BlockID)
}

// IsMissingBlockError returns whether err is a MissingBlockError.
func IsMissingBlockError(err error) bool {
	var e MissingBlockError
	return errors.As(err, &e)
}

// InvalidBlockError indicates a block failed validation. It always wraps
// the underlying reason.
type InvalidBlockError struct {
	BlockID  Identifier
	BlockNum uint32
	Err      error
}

func NewInvalidBlockErrorf(blockID Identifier, blockNum uint32, msg string, args ...interface{}) error {
	return InvalidBlockError{BlockID: blockID, BlockNum: blockNum, Err: fmt.Errorf(msg, args...)}
}

func (e InvalidBlockError) Error() string {
	return fmt.Sprintf("invalid block %s at num %d: %s", e.BlockID, e.BlockNum, e.Err.Error())
}

func (e InvalidBlockError) Unwrap() error { return e.Err }

// IsInvalidBlockError returns whether err is an InvalidBlockError.
func IsInvalidBlockError(err error) bool {
	var e InvalidBlockError
	return errors.As(err, &e)
}

// ForkDatabaseError indicates an integrity violation inside the fork
// database (duplicate id, missing root, broken parent link). Per spec §7
// these are fatal to the current operation.
type ForkDatabaseError struct {
	err error
}

func NewForkDatabaseError(err error) error { return ForkDatabaseError{err} }

func NewForkDatabaseErrorf(msg string, args ...interface{}) error {
	return ForkDatabaseError{fmt.Errorf(msg, args...)}
}

func (e ForkDatabaseError) Error() string { return e.err.Error() }
func (e ForkDatabaseError) Unwrap() error { return e.err }

// IsForkDatabaseError returns whether err is a ForkDatabaseError.
func IsForkDatabaseError(err error) bool {
	var e ForkDatabaseError
	return errors.As(err, &e)
}

// TransactionObjectiveError is a transaction-level failure that must be
// surfaced as a hard-fail on every node that processes the transaction
// (spec §7).
type TransactionObjectiveError struct {
	TransactionID Identifier
	Err           error
}

func NewTransactionObjectiveErrorf(trxID Identifier, msg string, args ...interface{}) error {
	return TransactionObjectiveError{TransactionID: trxID, Err: fmt.Errorf(msg, args...)}
}

func (e TransactionObjectiveError) Error() string {
	return fmt.Sprintf("transaction %s failed objectively: %s", e.TransactionID, e.Err.Error())
}

func (e TransactionObjectiveError) Unwrap() error { return e.Err }

// IsTransactionObjectiveError returns whether err is a TransactionObjectiveError.
func IsTransactionObjectiveError(err error) bool {
	var e TransactionObjectiveError
	return errors.As(err, &e)
}

// TransactionSubjectiveError is a transaction-level failure whose
// treatment depends on context: objective (reject) during validation,
// logged-and-dropped during speculative execution (spec §7).
type TransactionSubjectiveError struct {
	TransactionID Identifier
	Err           error
}

func NewTransactionSubjectiveErrorf(trxID Identifier, msg string, args ...interface{}) error {
	return TransactionSubjectiveError{TransactionID: trxID, Err: fmt.Errorf(msg, args...)}
}

func (e TransactionSubjectiveError) Error() string {
	return fmt.Sprintf("transaction %s failed subjectively: %s", e.TransactionID, e.Err.Error())
}

func (e TransactionSubjectiveError) Unwrap() error { return e.Err }

// IsTransactionSubjectiveError returns whether err is a TransactionSubjectiveError.
func IsTransactionSubjectiveError(err error) bool {
	var e TransactionSubjectiveError
	return errors.As(err, &e)
}

// ProtocolFeatureBadBlockError indicates a protocol-feature activation
// request is invalid for the block it appears in. During validation this
// rejects the block; during speculation it is downgraded to subjective by
// the caller (spec §4.5, §7).
type ProtocolFeatureBadBlockError struct {
	err error
}

func NewProtocolFeatureBadBlockError(err error) error { return ProtocolFeatureBadBlockError{err} }

func NewProtocolFeatureBadBlockErrorf(msg string, args ...interface{}) error {
	return ProtocolFeatureBadBlockError{fmt.Errorf(msg, args...)}
}

func (e ProtocolFeatureBadBlockError) Error() string { return e.err.Error() }
func (e ProtocolFeatureBadBlockError) Unwrap() error  { return e.err }

// IsProtocolFeatureBadBlockError returns whether err is a ProtocolFeatureBadBlockError.
func IsProtocolFeatureBadBlockError(err error) bool {
	var e ProtocolFeatureBadBlockError
	return errors.As(err, &e)
}

// FatalError marks a failure spec §7 classifies as "fatal / allocation":
// unrecoverable, aborts the current pipeline step, and propagates to the
// caller rather than being caught and attached to a trace.
type FatalError struct {
	err error
}

func NewFatalErrorf(msg string, args ...interface{}) error {
	return FatalError{fmt.Errorf(msg, args...)}
}

func (e FatalError) Error() string { return e.err.Error() }
func (e FatalError) Unwrap() error { return e.err }

// IsFatalError returns whether err is a FatalError.
func IsFatalError(err error) bool {
	var e FatalError
	return errors.As(err, &e)
}
