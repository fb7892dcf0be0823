package lexicon

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// LoadEntriesFromFileJSON reads a lexicon file: a JSON array of objects with
// "phrase", "language", and "severity" fields. Unlike policy config, a broken
// lexicon file is a hard startup error; silently matching nothing would make
// every message look clean.
func LoadEntriesFromFileJSON(p string) ([]Entry, error) {

	f, err := os.Open(p)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	raw, err := io.ReadAll(f)
	if err != nil {
		return nil, err
	}

	var entries []Entry
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, err
	}

	for i, ent := range entries {
		if ent.Phrase == "" {
			return nil, fmt.Errorf("lexicon entry %d: empty phrase", i)
		}
		if ent.Severity <= 0 {
			return nil, fmt.Errorf("lexicon entry %d (%q): severity must be a positive integer", i, ent.Phrase)
		}
	}
	return entries, nil
}
