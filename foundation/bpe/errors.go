package bpe

import "errors"

// Set of errors returned by the tokenizer. Use errors.Is to check for them.
var (
	ErrInvalidVocabSize       = errors.New("invalid vocabulary size")
	ErrEmptyInput             = errors.New("empty input")
	ErrUnknownToken           = errors.New("unknown token")
	ErrDuplicateMerge         = errors.New("duplicate merge")
	ErrDisallowedSpecialToken = errors.New("disallowed special token")
	ErrCorruptVocabulary      = errors.New("corrupt vocabulary")
	ErrInvalidSpecialToken    = errors.New("invalid special token")
)
