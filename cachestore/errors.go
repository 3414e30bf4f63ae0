package cachestore

import (
	"net/http"

	"github.com/AliGym19/voiceverse-sub001/errcode"
)

const (
	errCodeEntryMiss   = 1
	errCodeStoreGet    = 2
	errCodeStoreSet    = 3
	errCodeStoreDrop   = 4
	errCodeSerialize   = 5
	errCodeDeserialize = 6
	errCodeBackend     = 7
)

var (
	// ErrEntryMiss means the key is absent. Corrupt entries are also
	// surfaced as a miss, never as a handler failure.
	ErrEntryMiss = errcode.New(
		errcode.ModuleCacheStore, errCodeEntryMiss,
		"cachestore", "entry miss",
		http.StatusNotFound,
	)

	// ErrStoreGet wraps unexpected backend read failures.
	ErrStoreGet = errcode.New(
		errcode.ModuleCacheStore, errCodeStoreGet,
		"cachestore", "store get failed",
		http.StatusInternalServerError,
	)

	// ErrStoreSet wraps backend write failures.
	ErrStoreSet = errcode.New(
		errcode.ModuleCacheStore, errCodeStoreSet,
		"cachestore", "store set failed",
		http.StatusInternalServerError,
	)

	// ErrStoreDrop wraps store deletion failures.
	ErrStoreDrop = errcode.New(
		errcode.ModuleCacheStore, errCodeStoreDrop,
		"cachestore", "store drop failed",
		http.StatusInternalServerError,
	)

	// ErrSerialize wraps entry serialization failures.
	ErrSerialize = errcode.New(
		errcode.ModuleCacheStore, errCodeSerialize,
		"cachestore", "serialize failed",
		http.StatusInternalServerError,
	)

	// ErrDeserialize wraps entry deserialization failures.
	ErrDeserialize = errcode.New(
		errcode.ModuleCacheStore, errCodeDeserialize,
		"cachestore", "deserialize failed",
		http.StatusInternalServerError,
	)

	// ErrBackend wraps backend-level failures (listing, opening).
	ErrBackend = errcode.New(
		errcode.ModuleCacheStore, errCodeBackend,
		"cachestore", "backend failure",
		http.StatusInternalServerError,
	)
)
