package lexicon

// DefaultEntries returns the built-in curated phrase set. Deployments with
// their own lists should use LoadEntriesFromFileJSON instead.
func DefaultEntries() []Entry {
	return []Entry{
		{"stupid", "english", 1},
		{"idiot", "english", 1},
		{"moron", "english", 1},
		{"dumb", "english", 1},
		{"ugly", "english", 2},
		{"fat", "english", 2},
		{"disgusting", "english", 2},
		{"gross", "english", 2},
		{"kill yourself", "english", 3},
		{"die", "english", 3},
		{"worthless", "english", 2},
		{"loser", "english", 1},
		{"trash", "english", 1},
		{"nobody likes you", "english", 3},
		{"you're nothing", "english", 3},
		{"pathetic", "english", 2},
		{"hate you", "english", 3},
		{"failure", "english", 1},
	}
}
