package session

// Stats is a read-only snapshot of one user's accumulated counters.
type Stats struct {
	Likes     int
	GiftValue int
	Shares    int
}

type entry struct {
	stats  Stats
	avatar string
}

// Store accumulates engagement counters per username. Absent users read as
// all-zero; entries are created implicitly on first write.
type Store struct {
	users map[string]*entry
}

func NewStore() *Store {
	return &Store{users: make(map[string]*entry)}
}

func (s *Store) get(user string) *entry {
	e, ok := s.users[user]
	if !ok {
		e = &entry{}
		s.users[user] = e
	}
	return e
}

// RecordLike adds count likes for user and returns the new total.
// Negative counts contribute nothing, keeping the counter monotonic.
func (s *Store) RecordLike(user string, count int) int {
	e := s.get(user)
	if count > 0 {
		e.stats.Likes += count
	}
	return e.stats.Likes
}

// RecordGiftValue adds value (repeat count times per-unit value, already
// multiplied by the caller) and returns the new total.
func (s *Store) RecordGiftValue(user string, value int) int {
	e := s.get(user)
	if value > 0 {
		e.stats.GiftValue += value
	}
	return e.stats.GiftValue
}

// RecordShare counts one share for user and returns the new total.
func (s *Store) RecordShare(user string) int {
	e := s.get(user)
	e.stats.Shares++
	return e.stats.Shares
}

// SetAvatar overwrites the last-known avatar reference for user.
func (s *Store) SetAvatar(user, ref string) {
	if ref == "" {
		return
	}
	s.get(user).avatar = ref
}

// Avatar returns the last-known avatar reference for user, if any.
func (s *Store) Avatar(user string) string {
	if e, ok := s.users[user]; ok {
		return e.avatar
	}
	return ""
}

// Snapshot returns the current counters for user without creating an entry.
func (s *Store) Snapshot(user string) Stats {
	if e, ok := s.users[user]; ok {
		return e.stats
	}
	return Stats{}
}

// Reset drops all entries. Called when a new live connection replaces the
// current one and reset-on-reconnect is enabled.
func (s *Store) Reset() {
	s.users = make(map[string]*entry)
}

// Len returns the number of tracked users.
func (s *Store) Len() int {
	return len(s.users)
}
