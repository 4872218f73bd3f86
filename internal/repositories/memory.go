package repositories

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/fritterhq/fritter/backend/internal/models"
)

// In-memory implementations of the repository interfaces. They back unit
// tests and single-node deployments without external stores. Every
// operation takes the store lock, so per-key reads and writes are
// linearizable; an edge insert updates both adjacency views under one
// critical section.

// MemorySignalRepository implements SignalRepository in process
type MemorySignalRepository struct {
	kind models.SignalKind

	mu         sync.RWMutex
	byUser     map[uint]map[string]bool
	byPost     map[string]map[uint]bool
	trueCount  map[string]int64
	falseCount map[string]int64
}

// NewMemorySignalRepository creates a repository bound to one relation kind
func NewMemorySignalRepository(kind models.SignalKind) *MemorySignalRepository {
	return &MemorySignalRepository{
		kind:       kind,
		byUser:     map[uint]map[string]bool{},
		byPost:     map[string]map[uint]bool{},
		trueCount:  map[string]int64{},
		falseCount: map[string]int64{},
	}
}

func (r *MemorySignalRepository) Kind() models.SignalKind {
	return r.kind
}

func (r *MemorySignalRepository) Get(userID uint, postID string) (*models.Signal, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	value, ok := r.byUser[userID][postID]
	if !ok {
		return nil, ErrNotFound
	}
	return &models.Signal{Kind: r.kind, UserID: userID, PostID: postID, Value: value}, nil
}

func (r *MemorySignalRepository) Put(userID uint, postID string, value bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if prev, ok := r.byUser[userID][postID]; ok {
		if prev == value {
			return nil
		}
		r.decrCount(postID, prev)
	}
	if r.byUser[userID] == nil {
		r.byUser[userID] = map[string]bool{}
	}
	if r.byPost[postID] == nil {
		r.byPost[postID] = map[uint]bool{}
	}
	r.byUser[userID][postID] = value
	r.byPost[postID][userID] = value
	r.incrCount(postID, value)
	return nil
}

func (r *MemorySignalRepository) Remove(userID uint, postID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	value, ok := r.byUser[userID][postID]
	if !ok {
		return false, nil
	}
	delete(r.byUser[userID], postID)
	delete(r.byPost[postID], userID)
	r.decrCount(postID, value)
	return true, nil
}

func (r *MemorySignalRepository) TallyByUser(userID uint) (*models.UserTally, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	tally := &models.UserTally{TruePostIDs: []string{}, FalsePostIDs: []string{}}
	for postID, value := range r.byUser[userID] {
		if value {
			tally.TruePostIDs = append(tally.TruePostIDs, postID)
		} else {
			tally.FalsePostIDs = append(tally.FalsePostIDs, postID)
		}
	}
	return tally, nil
}

func (r *MemorySignalRepository) TallyByItem(postID string) (*models.PostTally, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	tally := &models.PostTally{TrueUserIDs: []uint{}, FalseUserIDs: []uint{}}
	for userID, value := range r.byPost[postID] {
		if value {
			tally.TrueUserIDs = append(tally.TrueUserIDs, userID)
		} else {
			tally.FalseUserIDs = append(tally.FalseUserIDs, userID)
		}
	}
	return tally, nil
}

func (r *MemorySignalRepository) CountTrue(postID string) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.trueCount[postID], nil
}

func (r *MemorySignalRepository) CountFalse(postID string) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.falseCount[postID], nil
}

func (r *MemorySignalRepository) RemoveAllForUser(userID uint) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var removed int64
	for postID, value := range r.byUser[userID] {
		delete(r.byPost[postID], userID)
		r.decrCount(postID, value)
		removed++
	}
	delete(r.byUser, userID)
	return removed, nil
}

func (r *MemorySignalRepository) RemoveAllForItem(postID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var removed int64
	for userID := range r.byPost[postID] {
		delete(r.byUser[userID], postID)
		removed++
	}
	delete(r.byPost, postID)
	delete(r.trueCount, postID)
	delete(r.falseCount, postID)
	return removed, nil
}

func (r *MemorySignalRepository) incrCount(postID string, value bool) {
	if value {
		r.trueCount[postID]++
	} else {
		r.falseCount[postID]++
	}
}

func (r *MemorySignalRepository) decrCount(postID string, value bool) {
	if value {
		r.trueCount[postID]--
	} else {
		r.falseCount[postID]--
	}
}

// MemoryFollowRepository implements FollowRepository in process
type MemoryFollowRepository struct {
	mu        sync.RWMutex
	records   map[uint]bool
	following map[uint]map[uint]bool
	followers map[uint]map[uint]bool
}

// NewMemoryFollowRepository creates a new MemoryFollowRepository
func NewMemoryFollowRepository() *MemoryFollowRepository {
	return &MemoryFollowRepository{
		records:   map[uint]bool{},
		following: map[uint]map[uint]bool{},
		followers: map[uint]map[uint]bool{},
	}
}

func (r *MemoryFollowRepository) EnsureRecord(userID uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records[userID] = true
	return nil
}

func (r *MemoryFollowRepository) HasRecord(userID uint) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.records[userID], nil
}

func (r *MemoryFollowRepository) AddEdge(followerID, followeeID uint) error {
	if followerID == followeeID {
		return ErrSelfFollow
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.following[followerID][followeeID] {
		return ErrAlreadyFollowing
	}
	if r.following[followerID] == nil {
		r.following[followerID] = map[uint]bool{}
	}
	if r.followers[followeeID] == nil {
		r.followers[followeeID] = map[uint]bool{}
	}
	r.following[followerID][followeeID] = true
	r.followers[followeeID][followerID] = true
	return nil
}

func (r *MemoryFollowRepository) RemoveEdge(followerID, followeeID uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.removeEdgeLocked(followerID, followeeID)
}

func (r *MemoryFollowRepository) removeEdgeLocked(followerID, followeeID uint) error {
	if !r.following[followerID][followeeID] {
		return ErrNotFollowing
	}
	delete(r.following[followerID], followeeID)
	delete(r.followers[followeeID], followerID)
	return nil
}

func (r *MemoryFollowRepository) IsFollowing(followerID, followeeID uint) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.following[followerID][followeeID], nil
}

func (r *MemoryFollowRepository) Following(userID uint) ([]uint, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return idSet(r.following[userID]), nil
}

func (r *MemoryFollowRepository) Followers(userID uint) ([]uint, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return idSet(r.followers[userID]), nil
}

func (r *MemoryFollowRepository) RemoveAllReferences(userID uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	var failed []error
	for followerID := range r.followers[userID] {
		if err := r.removeEdgeLocked(followerID, userID); err != nil {
			failed = append(failed, err)
		}
	}
	for followeeID := range r.following[userID] {
		if err := r.removeEdgeLocked(userID, followeeID); err != nil {
			failed = append(failed, err)
		}
	}
	delete(r.following, userID)
	delete(r.followers, userID)
	delete(r.records, userID)
	if len(failed) > 0 {
		return &PartialCascadeError{Errs: failed}
	}
	return nil
}

func idSet(m map[uint]bool) []uint {
	ids := make([]uint, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	return ids
}

// MemoryPostRepository implements PostRepository in process
type MemoryPostRepository struct {
	mu    sync.RWMutex
	posts map[string]models.Post
}

// NewMemoryPostRepository creates a new MemoryPostRepository
func NewMemoryPostRepository() *MemoryPostRepository {
	return &MemoryPostRepository{posts: map[string]models.Post{}}
}

func (r *MemoryPostRepository) CreatePost(_ context.Context, post *models.Post) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if post.ID == "" {
		post.ID = uuid.NewString()
	}
	if post.CreatedAt.IsZero() {
		post.CreatedAt = time.Now()
	}
	post.UpdatedAt = post.CreatedAt
	r.posts[post.ID] = *post
	return nil
}

func (r *MemoryPostRepository) GetPostByID(_ context.Context, id string) (*models.Post, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	post, ok := r.posts[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &post, nil
}

func (r *MemoryPostRepository) GetPostsByAuthors(_ context.Context, authorIDs []uint) ([]models.Post, error) {
	authors := map[uint]bool{}
	for _, id := range authorIDs {
		authors[id] = true
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	posts := []models.Post{}
	for _, post := range r.posts {
		if authors[post.AuthorID] {
			posts = append(posts, post)
		}
	}
	sortNewestFirst(posts)
	return posts, nil
}

func (r *MemoryPostRepository) GetAllPosts(_ context.Context) ([]models.Post, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	posts := make([]models.Post, 0, len(r.posts))
	for _, post := range r.posts {
		posts = append(posts, post)
	}
	sortNewestFirst(posts)
	return posts, nil
}

func (r *MemoryPostRepository) DeletePost(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.posts[id]; !ok {
		return ErrNotFound
	}
	delete(r.posts, id)
	return nil
}

func (r *MemoryPostRepository) DeletePostsByAuthor(_ context.Context, authorID uint) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var removed int64
	for id, post := range r.posts {
		if post.AuthorID == authorID {
			delete(r.posts, id)
			removed++
		}
	}
	return removed, nil
}

func sortNewestFirst(posts []models.Post) {
	sort.Slice(posts, func(i, j int) bool {
		if !posts[i].CreatedAt.Equal(posts[j].CreatedAt) {
			return posts[i].CreatedAt.After(posts[j].CreatedAt)
		}
		return posts[i].ID < posts[j].ID
	})
}

// MemoryUserRepository implements UserRepository in process
type MemoryUserRepository struct {
	mu     sync.RWMutex
	nextID uint
	users  map[uint]models.User
}

// NewMemoryUserRepository creates a new MemoryUserRepository
func NewMemoryUserRepository() *MemoryUserRepository {
	return &MemoryUserRepository{nextID: 1, users: map[uint]models.User{}}
}

func (r *MemoryUserRepository) CreateUser(user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if user.ID == 0 {
		user.ID = r.nextID
		r.nextID++
	} else if user.ID >= r.nextID {
		r.nextID = user.ID + 1
	}
	r.users[user.ID] = *user
	return nil
}

func (r *MemoryUserRepository) GetUserByID(id uint) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	user, ok := r.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &user, nil
}

func (r *MemoryUserRepository) GetUserByEmail(email string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, user := range r.users {
		if user.Email == email {
			u := user
			return &u, nil
		}
	}
	return nil, ErrNotFound
}

func (r *MemoryUserRepository) GetUserByFirebaseUID(firebaseUID string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, user := range r.users {
		if user.FirebaseUID == firebaseUID {
			u := user
			return &u, nil
		}
	}
	return nil, ErrNotFound
}

func (r *MemoryUserRepository) GetUsernames(ids []uint) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	usernames := []string{}
	for _, id := range ids {
		if user, ok := r.users[id]; ok {
			usernames = append(usernames, user.Username)
		}
	}
	return usernames, nil
}

func (r *MemoryUserRepository) DeleteUser(id uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.users, id)
	return nil
}
