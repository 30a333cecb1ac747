package storage

import (
	"context"
	"sort"
	"sync"

	"adedonha/domain"
)

type userRecord struct {
	name    string
	coins   int
	friends map[string]struct{}
}

// MemoryRepo is the default user registry: process-lifetime maps behind a
// RWMutex. It gives no durability guarantee across restarts.
type MemoryRepo struct {
	locker sync.RWMutex
	users  map[string]*userRecord
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{users: make(map[string]*userRecord)}
}

func (mr *MemoryRepo) getOrCreateLocked(id, name string) *userRecord {
	rec, ok := mr.users[id]
	if !ok {
		if name == "" {
			name = "Player"
		}
		rec = &userRecord{name: name, coins: domain.StartingCoins, friends: make(map[string]struct{})}
		mr.users[id] = rec
	}
	return rec
}

func (mr *MemoryRepo) GetOrCreate(ctx context.Context, id, name string) (domain.User, error) {
	mr.locker.Lock()
	defer mr.locker.Unlock()

	rec := mr.getOrCreateLocked(id, name)
	return domain.User{Id: id, Name: rec.name, Coins: rec.coins}, nil
}

func (mr *MemoryRepo) Get(ctx context.Context, id string) (domain.User, error) {
	mr.locker.RLock()
	defer mr.locker.RUnlock()

	rec, ok := mr.users[id]
	if !ok {
		return domain.User{}, domain.ErrUserNotFound
	}

	friends := make([]string, 0, len(rec.friends))
	for fid := range rec.friends {
		friends = append(friends, fid)
	}
	sort.Strings(friends)

	return domain.User{Id: id, Name: rec.name, Coins: rec.coins, Friends: friends}, nil
}

func (mr *MemoryRepo) AddCoins(ctx context.Context, id string, delta int) error {
	mr.locker.Lock()
	defer mr.locker.Unlock()

	rec, ok := mr.users[id]
	if !ok {
		return domain.ErrUserNotFound
	}
	rec.coins += delta
	return nil
}

// AddFriend links both sides; unknown ids are created on the fly so a link
// can never be half-applied.
func (mr *MemoryRepo) AddFriend(ctx context.Context, userId, friendId string) error {
	mr.locker.Lock()
	defer mr.locker.Unlock()

	u := mr.getOrCreateLocked(userId, "")
	f := mr.getOrCreateLocked(friendId, "")
	u.friends[friendId] = struct{}{}
	f.friends[userId] = struct{}{}
	return nil
}

func (mr *MemoryRepo) TopByCoins(ctx context.Context, limit int) ([]domain.User, error) {
	mr.locker.RLock()
	defer mr.locker.RUnlock()

	list := make([]domain.User, 0, len(mr.users))
	for id, rec := range mr.users {
		list = append(list, domain.User{Id: id, Name: rec.name, Coins: rec.coins})
	}
	sort.SliceStable(list, func(i, j int) bool { return list[i].Coins > list[j].Coins })

	if limit > 0 && len(list) > limit {
		list = list[:limit]
	}
	return list, nil
}

func (mr *MemoryRepo) FriendsOf(ctx context.Context, id string) ([]domain.User, error) {
	mr.locker.RLock()
	defer mr.locker.RUnlock()

	rec, ok := mr.users[id]
	if !ok {
		return []domain.User{}, nil
	}

	list := make([]domain.User, 0, len(rec.friends))
	for fid := range rec.friends {
		frec, ok := mr.users[fid]
		if !ok {
			continue
		}
		list = append(list, domain.User{Id: fid, Name: frec.name, Coins: frec.coins})
	}
	sort.SliceStable(list, func(i, j int) bool { return list[i].Coins > list[j].Coins })
	return list, nil
}
