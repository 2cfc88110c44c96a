package service

import (
	"context"
	"strings"

	"agora/internal/cache"
	"agora/internal/models"
	"agora/internal/repository"
)

// CreateCommentInput holds the fields accepted when creating a comment.
type CreateCommentInput struct {
	UserID  uint
	PostID  uint
	Content string
}

// CommentService implements comment operations.
type CommentService struct {
	commentRepo repository.CommentRepository
	postRepo    repository.PostRepository
	userRepo    repository.UserRepository
}

// NewCommentService creates a CommentService.
func NewCommentService(commentRepo repository.CommentRepository, postRepo repository.PostRepository, userRepo repository.UserRepository) *CommentService {
	return &CommentService{
		commentRepo: commentRepo,
		postRepo:    postRepo,
		userRepo:    userRepo,
	}
}

// Create stores a new comment. Both the author and the target post must
// exist.
func (s *CommentService) Create(ctx context.Context, input CreateCommentInput) (*models.Comment, error) {
	if strings.TrimSpace(input.Content) == "" {
		return nil, models.NewValidationError("Content is required")
	}

	if _, err := s.userRepo.GetByID(ctx, input.UserID); err != nil {
		return nil, err
	}
	if _, err := s.postRepo.GetByID(ctx, input.PostID); err != nil {
		return nil, err
	}

	comment := &models.Comment{
		Content: input.Content,
		UserID:  input.UserID,
		PostID:  input.PostID,
	}
	if err := s.commentRepo.Create(ctx, comment); err != nil {
		return nil, err
	}

	cache.Invalidate(ctx, cache.PostCommentsKey(input.PostID), cache.UserCommentsKey(input.UserID))

	created, err := s.commentRepo.GetByID(ctx, comment.ID)
	if err != nil {
		return comment, nil
	}
	return created, nil
}

// ListByPost returns a post's comments, newest first. The post must exist.
func (s *CommentService) ListByPost(ctx context.Context, postID uint) ([]*models.Comment, error) {
	if _, err := s.postRepo.GetByID(ctx, postID); err != nil {
		return nil, err
	}

	var comments []*models.Comment
	err := cache.Aside(ctx, cache.PostCommentsKey(postID), &comments, cache.CommentsTTL, func() error {
		fetched, err := s.commentRepo.ListByPost(ctx, postID)
		if err != nil {
			return err
		}
		comments = fetched
		return nil
	})
	if err != nil {
		return nil, err
	}
	return comments, nil
}

// ListByAuthor returns a user's comments, newest first. The user must exist.
func (s *CommentService) ListByAuthor(ctx context.Context, userID uint) ([]*models.Comment, error) {
	if _, err := s.userRepo.GetByID(ctx, userID); err != nil {
		return nil, err
	}

	var comments []*models.Comment
	err := cache.Aside(ctx, cache.UserCommentsKey(userID), &comments, cache.CommentsTTL, func() error {
		fetched, err := s.commentRepo.ListByAuthor(ctx, userID)
		if err != nil {
			return err
		}
		comments = fetched
		return nil
	})
	if err != nil {
		return nil, err
	}
	return comments, nil
}
