package handler

import (
	"bytes"
	"encoding/json"
	"math/big"
	"strconv"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"go-file-tree/pkg/apierror"
)

const (
	msgNameRequired      = "name is required"
	msgParentIDRequired  = "parentId is required"
	msgSizeInvalid       = "size must be a non-negative number"
	msgOrderedIDsArray   = "orderedIds must be an array"
	msgFilePatchRequired = "name or parentId required"
)

// check runs ozzo rules against value and turns the first failure into a 400.
func check(value any, rules ...validation.Rule) error {
	if err := validation.Validate(value, rules...); err != nil {
		return apierror.BadRequest(err.Error())
	}

	return nil
}

func requireName(name string) error {
	return check(strings.TrimSpace(name), validation.Required.Error(msgNameRequired))
}

// maxSizeExponent bounds the exponent big.Rat has to expand.
const maxSizeExponent = 30

// parseSize accepts a JSON number or a numeric string holding a whole,
// non-negative byte count that fits in an int64. Values like 10.0 or 1e3 are
// accepted only when they are exact integers.
func parseSize(raw json.RawMessage) (int64, error) {
	invalid := apierror.BadRequest(msgSizeInvalid)

	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return 0, invalid
	}

	var text string
	switch trimmed[0] {
	case '"':
		if err := json.Unmarshal(trimmed, &text); err != nil {
			return 0, invalid
		}
		text = strings.TrimSpace(text)
	case '-', '0', '1', '2', '3', '4', '5', '6', '7', '8', '9':
		text = string(trimmed)
	default:
		return 0, invalid
	}

	size, ok := parseWholeNumber(text)
	if !ok {
		return 0, invalid
	}
	if err := check(size, validation.Min(int64(0)).Error(msgSizeInvalid)); err != nil {
		return 0, err
	}

	return size, nil
}

// parseWholeNumber parses text as an exact int64. Decimal and exponent forms
// go through big.Rat so nothing is rounded.
func parseWholeNumber(text string) (int64, bool) {
	if text == "" || strings.Trim(text, "0123456789+-.eE") != "" {
		return 0, false
	}

	if value, err := strconv.ParseInt(text, 10, 64); err == nil {
		return value, true
	}

	if index := strings.IndexAny(text, "eE"); index >= 0 {
		exponent, err := strconv.Atoi(text[index+1:])
		if err != nil || exponent > maxSizeExponent || exponent < -maxSizeExponent {
			return 0, false
		}
	}

	rat, ok := new(big.Rat).SetString(text)
	if !ok || !rat.IsInt() || !rat.Num().IsInt64() {
		return 0, false
	}

	return rat.Num().Int64(), true
}

// parseOrderedIDs requires a JSON array. Non-string elements keep their slot
// but can never match a file.
func parseOrderedIDs(raw json.RawMessage) ([]string, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return nil, apierror.BadRequest(msgOrderedIDsArray)
	}

	var items []any
	if err := json.Unmarshal(trimmed, &items); err != nil {
		return nil, apierror.BadRequest(msgOrderedIDsArray)
	}

	ids := make([]string, len(items))
	for i, item := range items {
		if id, ok := item.(string); ok {
			ids[i] = id
		}
	}

	return ids, nil
}
