package service

import (
	"context"
	"errors"
	"sort"

	"agora/internal/models"
)

// Hand-written repository stubs backed by maps. They return the same error
// shapes as the real repositories.

type stubUserRepo struct {
	users       map[uint]*models.User
	createErr   error
	createCalls int
}

func newStubUserRepo(users ...*models.User) *stubUserRepo {
	m := make(map[uint]*models.User)
	for _, u := range users {
		m[u.ID] = u
	}
	return &stubUserRepo{users: m}
}

func (s *stubUserRepo) Create(_ context.Context, user *models.User) error {
	s.createCalls++
	if s.createErr != nil {
		return s.createErr
	}
	user.ID = uint(len(s.users) + 1)
	s.users[user.ID] = user
	return nil
}

func (s *stubUserRepo) GetByID(_ context.Context, id uint) (*models.User, error) {
	user, ok := s.users[id]
	if !ok {
		return nil, models.NewNotFoundError("User", id)
	}
	return user, nil
}

func (s *stubUserRepo) GetCredentials(ctx context.Context, id uint) (*models.User, error) {
	return s.GetByID(ctx, id)
}

func (s *stubUserRepo) GetByNickname(_ context.Context, nickname string) (*models.User, error) {
	for _, u := range s.users {
		if u.Nickname == nickname {
			return u, nil
		}
	}
	return nil, nil
}

func (s *stubUserRepo) List(_ context.Context, limit, offset int) ([]models.User, error) {
	ids := make([]int, 0, len(s.users))
	for id := range s.users {
		ids = append(ids, int(id))
	}
	sort.Ints(ids)

	var out []models.User
	for i, id := range ids {
		if i < offset {
			continue
		}
		if len(out) >= limit {
			break
		}
		out = append(out, *s.users[uint(id)])
	}
	return out, nil
}

type stubPostRepo struct {
	posts       map[uint]*models.Post
	nextID      uint
	updateCalls int
	deleteCalls int
}

func newStubPostRepo(posts ...*models.Post) *stubPostRepo {
	m := make(map[uint]*models.Post)
	var maxID uint
	for _, p := range posts {
		m[p.ID] = p
		if p.ID > maxID {
			maxID = p.ID
		}
	}
	return &stubPostRepo{posts: m, nextID: maxID + 1}
}

func (s *stubPostRepo) Create(_ context.Context, post *models.Post) error {
	post.ID = s.nextID
	s.nextID++
	s.posts[post.ID] = post
	return nil
}

func (s *stubPostRepo) GetByID(_ context.Context, id uint) (*models.Post, error) {
	post, ok := s.posts[id]
	if !ok {
		return nil, models.NewNotFoundError("Post", id)
	}
	clone := *post
	return &clone, nil
}

func (s *stubPostRepo) List(_ context.Context, limit, offset int) ([]*models.Post, error) {
	ids := make([]int, 0, len(s.posts))
	for id := range s.posts {
		ids = append(ids, int(id))
	}
	sort.Sort(sort.Reverse(sort.IntSlice(ids)))

	var out []*models.Post
	for i, id := range ids {
		if i < offset {
			continue
		}
		if len(out) >= limit {
			break
		}
		out = append(out, s.posts[uint(id)])
	}
	return out, nil
}

func (s *stubPostRepo) ListByAuthor(_ context.Context, userID uint) ([]*models.Post, error) {
	var out []*models.Post
	for _, p := range s.posts {
		if p.UserID == userID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (s *stubPostRepo) Update(_ context.Context, post *models.Post) error {
	s.updateCalls++
	if _, ok := s.posts[post.ID]; !ok {
		return errors.New("post vanished")
	}
	clone := *post
	s.posts[post.ID] = &clone
	return nil
}

func (s *stubPostRepo) Delete(_ context.Context, id uint) error {
	s.deleteCalls++
	delete(s.posts, id)
	return nil
}

type stubCommentRepo struct {
	comments map[uint]*models.Comment
	nextID   uint
}

func newStubCommentRepo() *stubCommentRepo {
	return &stubCommentRepo{comments: make(map[uint]*models.Comment), nextID: 1}
}

func (s *stubCommentRepo) Create(_ context.Context, comment *models.Comment) error {
	comment.ID = s.nextID
	s.nextID++
	s.comments[comment.ID] = comment
	return nil
}

func (s *stubCommentRepo) GetByID(_ context.Context, id uint) (*models.Comment, error) {
	comment, ok := s.comments[id]
	if !ok {
		return nil, models.NewNotFoundError("Comment", id)
	}
	return comment, nil
}

func (s *stubCommentRepo) ListByPost(_ context.Context, postID uint) ([]*models.Comment, error) {
	var out []*models.Comment
	for _, c := range s.comments {
		if c.PostID == postID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (s *stubCommentRepo) ListByAuthor(_ context.Context, userID uint) ([]*models.Comment, error) {
	var out []*models.Comment
	for _, c := range s.comments {
		if c.UserID == userID {
			out = append(out, c)
		}
	}
	return out, nil
}

// resolverForTokens returns a ResolveCallerFunc over a fixed token table.
func resolverForTokens(tokens map[string]uint) ResolveCallerFunc {
	return func(token string) (uint, error) {
		if token == "" {
			return 0, models.NewUnauthenticatedError("Authorization required")
		}
		userID, ok := tokens[token]
		if !ok {
			return 0, models.NewUnauthenticatedError("Invalid or expired token")
		}
		return userID, nil
	}
}

// appErrCode extracts the AppError code, or "" when err is not an AppError.
func appErrCode(err error) string {
	var appErr *models.AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return ""
}
