package badger

import (
	"encoding/binary"
	"fmt"

	"github.com/poiesic/lunaris/core"
)

// Key prefixes for different data types
const (
	sessionRecordPrefix   = "sesrec"
	historyRecordPrefix   = "hisrec"
	historyIDSeq          = "hisrecseq"
	profileRecordPrefix   = "prorec"
	cardRecordPrefix      = "carrec"
	knowledgeRecordPrefix = "knorec"
)

// makeSessionKey generates a key for a session document by ID.
func makeSessionKey(sessionID string) []byte {
	return []byte(fmt.Sprintf("%s:%s", sessionRecordPrefix, sessionID))
}

// makeHistoryPrefix generates the key prefix shared by all history
// entries of a session. Format: prefix:sessionID:
func makeHistoryPrefix(sessionID string) []byte {
	return []byte(fmt.Sprintf("%s:%s:", historyRecordPrefix, sessionID))
}

// makeHistoryKey generates a composite key for a history entry.
// Format: prefix:sessionID:seq
func makeHistoryKey(sessionID string, seq uint64) []byte {
	prefixBytes := makeHistoryPrefix(sessionID)
	prefixSize := len(prefixBytes)
	buf := make([]byte, prefixSize+8)
	offset := copy(buf, prefixBytes)
	// Write in BigEndian order so lexicographic sort works correctly
	binary.BigEndian.PutUint64(buf[offset:], seq)
	return buf
}

// makeHistorySeekKey generates the largest possible history key for a
// session, used to seek reverse iterators to the newest entry.
func makeHistorySeekKey(sessionID string) []byte {
	prefixBytes := makeHistoryPrefix(sessionID)
	prefixSize := len(prefixBytes)
	buf := make([]byte, prefixSize+8)
	offset := copy(buf, prefixBytes)
	for i := 0; i < 8; i++ {
		buf[offset+i] = 0xFF
	}
	return buf
}

// makeProfileKey generates a key for a user profile by user ID.
func makeProfileKey(userID string) []byte {
	return []byte(fmt.Sprintf("%s:%s", profileRecordPrefix, userID))
}

// makeCardKey generates a key for a card by ID.
func makeCardKey(cardID string) []byte {
	return []byte(fmt.Sprintf("%s:%s", cardRecordPrefix, cardID))
}

// makeKnowledgeKey generates a key for a knowledge chunk by ID.
// Format: prefix:ID with the ID in 8 BigEndian bytes, so lexicographic
// key order matches numeric ID order; checkpointed resume scans rely on
// the two agreeing.
func makeKnowledgeKey(id core.ID) []byte {
	prefixBytes := []byte(knowledgeRecordPrefix + ":")
	prefixSize := len(prefixBytes)
	buf := make([]byte, prefixSize+8)
	offset := copy(buf, prefixBytes)
	binary.BigEndian.PutUint64(buf[offset:], uint64(id))
	return buf
}

// makeCheckpointKey generates a key for job checkpoints.
func makeCheckpointKey(jobName string) []byte {
	return []byte(fmt.Sprintf("%s:chkpt", jobName))
}
