package offers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

const DefaultOutputFile = "final_result.json"

type WriteOptions struct {
	// Extended also writes price range, badges and store url.
	Extended bool
}

// Encode renders the result as indented JSON without escaping HTML
// characters, restaurant names routinely contain `&`.
func (r Result) Encode(opts WriteOptions) ([]byte, error) {
	var out any
	if opts.Extended {
		extended := make(map[string][]Offer, len(r))
		for name, offers := range r {
			converted := make([]Offer, len(offers))
			for i, o := range offers {
				converted[i] = o.extended()
			}
			extended[name] = converted
		}
		out = extended
	} else {
		basic := make(map[string][]basicOffer, len(r))
		for name, offers := range r {
			converted := make([]basicOffer, len(offers))
			for i, o := range offers {
				converted[i] = o.basic()
			}
			basic[name] = converted
		}
		out = basic
	}

	buf := bytes.NewBuffer(nil)
	enc := json.NewEncoder(buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Write writes the result to `path` atomically, the file is either the
// complete result or untouched.
func (r Result) Write(path string, opts WriteOptions) error {
	payload, err := r.Encode(opts)
	if err != nil {
		return fmt.Errorf("encode result: %w", err)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output directory: %w", err)
		}
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, payload, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("rename %s: %w", tmp, err)
	}
	return nil
}
