package response

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
)

var (
	jsonBlockPattern     = regexp.MustCompile("(?s)```json[ \\t]*\\r?\\n?(.*?)```")
	trailingCommaPattern = regexp.MustCompile(`,\s*([}\]])`)
)

var (
	// ErrNoJSONBlock is returned when a reply contains no json-tagged fence at all.
	ErrNoJSONBlock = errors.New("no json block found")
	// ErrNoMatchingBlock is wrapped in a BlockError when every json block
	// decodes but none carries the expected key.
	ErrNoMatchingBlock = errors.New("no json block carries the expected key")
)

// BlockError reports a json block that was found but could not be used.
type BlockError struct {
	Block string
	Err   error
}

func (e *BlockError) Error() string {
	return fmt.Sprintf("malformed json block: %v", e.Err)
}

func (e *BlockError) Unwrap() error {
	return e.Err
}

// jsonBlocks returns the bodies of all json-tagged fences in document order.
func jsonBlocks(raw string) []string {
	matches := jsonBlockPattern.FindAllStringSubmatch(raw, -1)
	blocks := make([]string, 0, len(matches))
	for _, m := range matches {
		blocks = append(blocks, strings.TrimSpace(m[1]))
	}
	return blocks
}

// decodeObject parses a block as a JSON object, retrying once with trailing
// commas removed since models emit them often.
func decodeObject(block string) (map[string]json.RawMessage, error) {
	var obj map[string]json.RawMessage
	err := json.Unmarshal([]byte(block), &obj)
	if err == nil {
		return obj, nil
	}

	relaxed := trailingCommaPattern.ReplaceAllString(block, "$1")
	if relaxed != block {
		if retryErr := json.Unmarshal([]byte(relaxed), &obj); retryErr == nil {
			return obj, nil
		}
	}
	return nil, err
}

// findObject returns the first json block whose object carries any of keys.
// When no block qualifies the returned error describes the first failure.
func findObject(raw string, keys ...string) (map[string]json.RawMessage, error) {
	blocks := jsonBlocks(raw)
	if len(blocks) == 0 {
		return nil, ErrNoJSONBlock
	}

	var firstErr error
	for _, block := range blocks {
		obj, err := decodeObject(block)
		if err != nil {
			if firstErr == nil {
				firstErr = &BlockError{Block: block, Err: err}
			}
			continue
		}
		for _, key := range keys {
			if _, ok := obj[key]; ok {
				return obj, nil
			}
		}
	}

	if firstErr == nil {
		firstErr = &BlockError{
			Block: blocks[0],
			Err:   fmt.Errorf("%w: %s", ErrNoMatchingBlock, strings.Join(keys, ", ")),
		}
	}
	return nil, firstErr
}
