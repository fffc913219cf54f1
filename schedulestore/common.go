package schedulestore

import (
	"errors"
)

var ErrRecordNotFound = errors.New("record not found")
var ErrRecordAlreadyExists = errors.New("record already exists")
var ErrConcurrencyConflict = errors.New("concurrency error, record version is stale")
var ErrMissingRecordName = errors.New("record has neither name nor generateName")
var ErrUnknownRecordKind = errors.New("unknown record kind")
var ErrUnsupportedSortField = errors.New("unsupported sort field")
var ErrNilRecord = errors.New("nil record supplied")
