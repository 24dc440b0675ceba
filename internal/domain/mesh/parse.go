package mesh

import (
	"bytes"
	"encoding/json"
	"fmt"

	"golang.org/x/text/encoding"
	"golang.org/x/text/transform"
)

// Keys read from the status document. Everything else is ignored.
const (
	keyBackendState = "BackendState"
	keyAddresses    = "TailscaleIPs"
)

// ParseStatus decodes the output of `tailscale status --json`.
//
// The output must be valid UTF-8 (ErrProbeDecode otherwise) and a JSON object
// holding a string BackendState and a TailscaleIPs array of strings
// (ErrProbeParse otherwise). A null address list is read as empty; a null
// entry inside it is not.
func ParseStatus(out []byte) (NetworkSnapshot, error) {
	text, _, err := transform.Bytes(encoding.UTF8Validator, out)
	if err != nil {
		return NetworkSnapshot{}, fmt.Errorf("%w: %w", ErrProbeDecode, err)
	}

	var doc map[string]json.RawMessage
	if err := json.Unmarshal(text, &doc); err != nil {
		return NetworkSnapshot{}, fmt.Errorf("%w: %w", ErrProbeParse, err)
	}
	if doc == nil {
		return NetworkSnapshot{}, fmt.Errorf("%w: document is null", ErrProbeParse)
	}

	rawState, ok := doc[keyBackendState]
	if !ok {
		return NetworkSnapshot{}, fmt.Errorf("%w: missing %s", ErrProbeParse, keyBackendState)
	}
	var state string
	if bytes.Equal(bytes.TrimSpace(rawState), []byte("null")) {
		return NetworkSnapshot{}, fmt.Errorf("%w: %s is null", ErrProbeParse, keyBackendState)
	}
	if err := json.Unmarshal(rawState, &state); err != nil {
		return NetworkSnapshot{}, fmt.Errorf("%w: %s: %w", ErrProbeParse, keyBackendState, err)
	}

	rawAddrs, ok := doc[keyAddresses]
	if !ok {
		return NetworkSnapshot{}, fmt.Errorf("%w: missing %s", ErrProbeParse, keyAddresses)
	}
	var entries []*string
	if err := json.Unmarshal(rawAddrs, &entries); err != nil {
		return NetworkSnapshot{}, fmt.Errorf("%w: %s: %w", ErrProbeParse, keyAddresses, err)
	}
	addrs := make([]string, 0, len(entries))
	for i, e := range entries {
		if e == nil {
			return NetworkSnapshot{}, fmt.Errorf("%w: %s[%d] is null", ErrProbeParse, keyAddresses, i)
		}
		addrs = append(addrs, *e)
	}

	return NetworkSnapshot{
		BackendState:      BackendState(state),
		AssignedAddresses: addrs,
	}, nil
}
