// The moderation package tree implements guardian's message-risk scoring
// engine: a lexicon trie matcher, single-message context heuristics, per-user
// offense history, time-of-day and repetition escalation, an optional external
// classifier signal, and the threshold classifier that combines them.
//
// The conversational surfaces around this engine (auth, sessions, admin CRUD)
// live in other services; this tree only needs a user id and message text.
package moderation
