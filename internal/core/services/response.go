package services

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/custodia-labs/medreport/internal/core/domain"
)

const (
	jsonFence  = "```json"
	plainFence = "```"
)

// ParseModelResponse decodes a model reply into a payload.
//
// Models sometimes wrap JSON in a markdown code fence even when asked not
// to. One leading fence ("```json" or "```") and one trailing fence are
// stripped before decoding. Nothing else is tolerated: prose around the
// object is a decode error.
//
// Returns domain.ErrMalformedResponse wrapping the decoder error when the
// remaining text is not a JSON object.
func ParseModelResponse(text string) (domain.Payload, error) {
	body := strings.TrimSpace(text)

	if strings.HasPrefix(body, jsonFence) {
		body = body[len(jsonFence):]
	} else if strings.HasPrefix(body, plainFence) {
		body = body[len(plainFence):]
	}
	body = strings.TrimSuffix(body, plainFence)
	body = strings.TrimSpace(body)

	dec := json.NewDecoder(bytes.NewReader([]byte(body)))
	dec.UseNumber()

	var payload domain.Payload
	if err := dec.Decode(&payload); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrMalformedResponse, err)
	}
	if dec.More() {
		return nil, fmt.Errorf("%w: unexpected data after JSON object", domain.ErrMalformedResponse)
	}
	if payload == nil {
		return nil, fmt.Errorf("%w: expected a JSON object", domain.ErrMalformedResponse)
	}

	return payload, nil
}
