// Package service contains the business logic layer between handlers and
// repositories.
package service

import (
	"context"
	"strings"

	"agora/internal/auth"
	"agora/internal/cache"
	"agora/internal/models"
	"agora/internal/repository"
)

// ResolveCallerFunc maps a bearer token to a user id. Errors from it carry
// the UNAUTHENTICATED code.
type ResolveCallerFunc func(token string) (uint, error)

// CreatePostInput holds the fields accepted when creating a post.
type CreatePostInput struct {
	UserID  uint
	Title   string
	Content string
}

// UpdatePostInput holds a full replacement of a post's mutable fields.
type UpdatePostInput struct {
	Token   string
	PostID  uint
	Title   string
	Content string
}

// PatchPostInput holds a partial update. Nil fields are left untouched.
type PatchPostInput struct {
	Token   string
	PostID  uint
	Title   *string
	Content *string
}

// DeletePostInput identifies the post to remove and the caller's token.
type DeletePostInput struct {
	Token  string
	PostID uint
}

// PostService implements post operations. Mutations check resource existence
// before caller identity, so a bad token against a missing post still yields
// a not-found error.
type PostService struct {
	postRepo      repository.PostRepository
	userRepo      repository.UserRepository
	resolveCaller ResolveCallerFunc
}

// NewPostService creates a PostService.
func NewPostService(postRepo repository.PostRepository, userRepo repository.UserRepository, resolveCaller ResolveCallerFunc) *PostService {
	return &PostService{
		postRepo:      postRepo,
		userRepo:      userRepo,
		resolveCaller: resolveCaller,
	}
}

func validatePostFields(title, content string) error {
	if strings.TrimSpace(title) == "" {
		return models.NewValidationError("Title is required")
	}
	if len(title) > 300 {
		return models.NewValidationError("Title must be at most 300 characters")
	}
	if strings.TrimSpace(content) == "" {
		return models.NewValidationError("Content is required")
	}
	return nil
}

// Create stores a new post for an existing author.
func (s *PostService) Create(ctx context.Context, input CreatePostInput) (*models.Post, error) {
	if err := validatePostFields(input.Title, input.Content); err != nil {
		return nil, err
	}

	if _, err := s.userRepo.GetByID(ctx, input.UserID); err != nil {
		return nil, err
	}

	post := &models.Post{
		Title:   input.Title,
		Content: input.Content,
		UserID:  input.UserID,
	}
	if err := s.postRepo.Create(ctx, post); err != nil {
		return nil, err
	}

	cache.InvalidatePost(ctx, post.ID, post.UserID)

	created, err := s.postRepo.GetByID(ctx, post.ID)
	if err != nil {
		return post, nil
	}
	return created, nil
}

// GetByID returns a single post with its author preloaded.
func (s *PostService) GetByID(ctx context.Context, id uint) (*models.Post, error) {
	return s.postRepo.GetByID(ctx, id)
}

// recentPageSize is the one page shape served from the shared list cache.
// Other limits would collide on the same key and return the wrong slice.
const recentPageSize = 20

// List returns recent posts, newest first. The default first page is served
// through the cache; any other limit or offset goes to storage.
func (s *PostService) List(ctx context.Context, limit, offset int) ([]*models.Post, error) {
	if offset == 0 && limit == recentPageSize {
		var posts []*models.Post
		err := cache.Aside(ctx, cache.PostsListKey(), &posts, cache.ListTTL, func() error {
			fetched, err := s.postRepo.List(ctx, limit, offset)
			if err != nil {
				return err
			}
			posts = fetched
			return nil
		})
		if err != nil {
			return nil, err
		}
		return posts, nil
	}
	return s.postRepo.List(ctx, limit, offset)
}

// ListByAuthor returns all posts by a user, newest first. The author must
// exist.
func (s *PostService) ListByAuthor(ctx context.Context, userID uint) ([]*models.Post, error) {
	if _, err := s.userRepo.GetByID(ctx, userID); err != nil {
		return nil, err
	}

	var posts []*models.Post
	err := cache.Aside(ctx, cache.UserPostsKey(userID), &posts, cache.ListTTL, func() error {
		fetched, err := s.postRepo.ListByAuthor(ctx, userID)
		if err != nil {
			return err
		}
		posts = fetched
		return nil
	})
	if err != nil {
		return nil, err
	}
	return posts, nil
}

// authorizeMutation loads the post, resolves the caller from the token and
// verifies ownership, in that order.
func (s *PostService) authorizeMutation(ctx context.Context, token string, postID uint) (*models.Post, error) {
	post, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}

	callerID, err := s.resolveCaller(token)
	if err != nil {
		return nil, err
	}

	if err := auth.AuthorizeMutation(callerID, post.UserID); err != nil {
		return nil, err
	}
	return post, nil
}

// Update replaces the post's title and content.
func (s *PostService) Update(ctx context.Context, input UpdatePostInput) (*models.Post, error) {
	post, err := s.authorizeMutation(ctx, input.Token, input.PostID)
	if err != nil {
		return nil, err
	}

	if err := validatePostFields(input.Title, input.Content); err != nil {
		return nil, err
	}

	post.Title = input.Title
	post.Content = input.Content
	if err := s.postRepo.Update(ctx, post); err != nil {
		return nil, err
	}

	cache.InvalidatePost(ctx, post.ID, post.UserID)
	return post, nil
}

// Patch updates only the fields present in the input.
func (s *PostService) Patch(ctx context.Context, input PatchPostInput) (*models.Post, error) {
	post, err := s.authorizeMutation(ctx, input.Token, input.PostID)
	if err != nil {
		return nil, err
	}

	title := post.Title
	content := post.Content
	if input.Title != nil {
		title = *input.Title
	}
	if input.Content != nil {
		content = *input.Content
	}
	if err := validatePostFields(title, content); err != nil {
		return nil, err
	}

	post.Title = title
	post.Content = content
	if err := s.postRepo.Update(ctx, post); err != nil {
		return nil, err
	}

	cache.InvalidatePost(ctx, post.ID, post.UserID)
	return post, nil
}

// Delete removes the post and returns its last state.
func (s *PostService) Delete(ctx context.Context, input DeletePostInput) (*models.Post, error) {
	post, err := s.authorizeMutation(ctx, input.Token, input.PostID)
	if err != nil {
		return nil, err
	}

	if err := s.postRepo.Delete(ctx, post.ID); err != nil {
		return nil, err
	}

	cache.InvalidatePost(ctx, post.ID, post.UserID)
	return post, nil
}
