package utils

import (
	"sync"
	"time"
)

var (
	memberLocks = make(map[string]time.Time)
	memberMutex = &sync.Mutex{}
)

// memberLockDuration bounds how long a lock survives when it is never released.
const memberLockDuration = 30 * time.Second

// CheckAndSetMemberLock takes the moderation lock for a member of a guild.
// It returns false while another action on the same member holds the lock.
func CheckAndSetMemberLock(guildID, userID string) bool {
	memberMutex.Lock()
	defer memberMutex.Unlock()

	key := guildID + "/" + userID
	if lockedAt, ok := memberLocks[key]; ok {
		if time.Since(lockedAt) < memberLockDuration {
			return false // Locked
		}
	}

	memberLocks[key] = time.Now()
	return true
}

// ReleaseMemberLock releases a lock taken by CheckAndSetMemberLock.
func ReleaseMemberLock(guildID, userID string) {
	memberMutex.Lock()
	defer memberMutex.Unlock()
	delete(memberLocks, guildID+"/"+userID)
}
